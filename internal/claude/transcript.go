package claude

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Record types the monitor classifies. Transcripts contain other record
// types (summaries, system events); those are skipped.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Tail summarizes the end of a session transcript for the finished check.
type Tail struct {
	Users      int    // user records seen
	Assistants int    // assistant records seen
	LastRole   string // role of the record nearest the end ("" if none)
	Prompt     string // most recent user prompt text, if any
}

// Finished reports whether the tail means "assistant replied and nothing is
// pending": the record nearest the end is an assistant turn and the session
// had at least one full user/assistant exchange.
func (t Tail) Finished() bool {
	return t.LastRole == roleAssistant && t.Users >= 1 && t.Assistants >= 1
}

// transcriptRecord is the minimal structural view of one NDJSON record.
// message.content stays raw because assistant records (and tool results)
// carry structured content the monitor never inspects.
type transcriptRecord struct {
	Type    string `json:"type"`
	Message struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// ScanTail reads a transcript and classifies its records from the end
// backward. It stops early once two of each role and a prompt have been
// seen; that bound is an optimization, the Finished predicate only needs
// one of each. Unparseable lines are skipped — the file is owned by the
// assistant tool and the newest line may be mid-append.
func ScanTail(path string) (Tail, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tail{}, fmt.Errorf("failed to read transcript: %w", err)
	}

	var tail Tail
	lines := bytes.Split(data, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		var rec transcriptRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		switch rec.Type {
		case roleUser:
			tail.Users++
			if tail.Prompt == "" {
				if p := promptText(rec.Message.Content); p != "" {
					tail.Prompt = p
				}
			}
		case roleAssistant:
			tail.Assistants++
		default:
			continue
		}
		if tail.LastRole == "" {
			tail.LastRole = rec.Type
		}
		if tail.Users >= 2 && tail.Assistants >= 2 && tail.Prompt != "" {
			break
		}
	}
	return tail, nil
}

// FinishedMessage renders the two-line notification for a finished session:
// the prompt that was answered and the project folder it belongs to.
func FinishedMessage(prompt, projectDirName string) string {
	if prompt == "" {
		prompt = "(no prompt)"
	}
	return fmt.Sprintf("✅ %s\n📁 %s", truncate(prompt, 30), ProjectFolder(projectDirName))
}

// truncate limits s to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// promptText extracts a user prompt when content is a plain string.
// Tool results arrive as user records with structured content; those yield
// no prompt. Whitespace is collapsed so the prompt fits on one line.
func promptText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}
