package monitor

// Sink receives the monitor's edge-triggered notifications. The GUI layer
// implements this to show and hide speech bubbles; events fire only on
// state changes, never on a poll that observes the same lists as the last
// one.
type Sink interface {
	// WaitingChanged delivers the current list of sessions awaiting tool
	// approval. Fired when the list becomes non-empty or its composition
	// changes.
	WaitingChanged(messages []string)

	// WaitingCleared fires when the last pending approval goes away.
	WaitingCleared()

	// FinishedChanged delivers the current list of sessions whose
	// assistant reply is sitting unread.
	FinishedChanged(messages []string)

	// FinishedCleared fires when the finished list empties, either
	// naturally or through DismissFinished.
	FinishedCleared()
}
