package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// logSink is the headless stand-in for the widget: it prints each event as
// one tab-separated line per message, with embedded newlines flattened so
// downstream tools can consume the stream line by line.
type logSink struct {
	mu  sync.Mutex
	out io.Writer
	log *logrus.Entry
}

func newLogSink(out io.Writer, log *logrus.Entry) *logSink {
	return &logSink{out: out, log: log}
}

func (s *logSink) WaitingChanged(messages []string) {
	s.log.WithField("count", len(messages)).Info("sessions waiting for approval")
	s.print("WAITING", messages)
}

func (s *logSink) WaitingCleared() {
	s.log.Info("no sessions waiting")
	s.print("WAITING_CLEAR", nil)
}

func (s *logSink) FinishedChanged(messages []string) {
	s.log.WithField("count", len(messages)).Info("sessions finished")
	s.print("FINISHED", messages)
}

func (s *logSink) FinishedCleared() {
	s.log.Info("finished sessions cleared")
	s.print("FINISHED_CLEAR", nil)
}

func (s *logSink) print(kind string, messages []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(messages) == 0 {
		fmt.Fprintf(s.out, "%s\n", kind)
		return
	}
	for _, msg := range messages {
		fmt.Fprintf(s.out, "%s\t%s\n", kind, strings.ReplaceAll(msg, "\n", " | "))
	}
}
