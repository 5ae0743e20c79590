package claude

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTranscript(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestScanTail_FullExchangeFinishes(t *testing.T) {
	path := writeTranscript(t, []string{
		`{"type":"user","message":{"content":"first question"}}`,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"a1"}]}}`,
		`{"type":"user","message":{"content":"add dark mode to settings"}}`,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"a2"}]}}`,
	})

	tail, err := ScanTail(path)
	require.NoError(t, err)

	assert.True(t, tail.Finished())
	assert.Equal(t, "assistant", tail.LastRole)
	assert.Equal(t, "add dark mode to settings", tail.Prompt)
}

func TestScanTail_UserOnlyNeverFinishes(t *testing.T) {
	path := writeTranscript(t, []string{
		`{"type":"user","message":{"content":"hello?"}}`,
		`{"type":"user","message":{"content":"anyone there?"}}`,
	})

	tail, err := ScanTail(path)
	require.NoError(t, err)

	assert.False(t, tail.Finished())
	assert.Equal(t, "user", tail.LastRole)
}

func TestScanTail_UserLastMeansStillTyping(t *testing.T) {
	path := writeTranscript(t, []string{
		`{"type":"user","message":{"content":"q1"}}`,
		`{"type":"assistant","message":{"content":[]}}`,
		`{"type":"user","message":{"content":"q2"}}`,
	})

	tail, err := ScanTail(path)
	require.NoError(t, err)

	assert.False(t, tail.Finished())
}

func TestScanTail_SingleExchangeQualifies(t *testing.T) {
	// The 2-of-each early exit is an optimization; one of each is enough
	path := writeTranscript(t, []string{
		`{"type":"user","message":{"content":"only question"}}`,
		`{"type":"assistant","message":{"content":[]}}`,
	})

	tail, err := ScanTail(path)
	require.NoError(t, err)

	assert.True(t, tail.Finished())
	assert.Equal(t, "only question", tail.Prompt)
}

func TestScanTail_SkipsUnclassifiedAndBrokenLines(t *testing.T) {
	path := writeTranscript(t, []string{
		`{"type":"user","message":{"content":"real prompt"}}`,
		`{"type":"assistant","message":{"content":[]}}`,
		`{"type":"summary","summary":"whatever"}`,
		`{"type":"assistant","message":{"content":[]}`, // mid-append, no closing brace
	})

	tail, err := ScanTail(path)
	require.NoError(t, err)

	assert.True(t, tail.Finished())
	assert.Equal(t, "assistant", tail.LastRole)
}

func TestScanTail_StructuredUserContentYieldsNoPrompt(t *testing.T) {
	// Tool results come back as user records with structured content
	path := writeTranscript(t, []string{
		`{"type":"user","message":{"content":[{"type":"tool_result","content":"ok"}]}}`,
		`{"type":"assistant","message":{"content":[]}}`,
	})

	tail, err := ScanTail(path)
	require.NoError(t, err)

	assert.True(t, tail.Finished())
	assert.Empty(t, tail.Prompt)
}

func TestScanTail_CollapsesPromptWhitespace(t *testing.T) {
	path := writeTranscript(t, []string{
		`{"type":"user","message":{"content":"line one\nline   two"}}`,
		`{"type":"assistant","message":{"content":[]}}`,
	})

	tail, err := ScanTail(path)
	require.NoError(t, err)
	assert.Equal(t, "line one line two", tail.Prompt)
}

func TestScanTail_MissingFile(t *testing.T) {
	_, err := ScanTail(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestFinishedMessage(t *testing.T) {
	got := FinishedMessage("add dark mode to settings please", "-Users-x-proj")
	assert.Equal(t, "✅ add dark mode to settings plea…\n📁 x/proj", got)

	got = FinishedMessage("short", "-Users-x-proj")
	assert.Equal(t, "✅ short\n📁 x/proj", got)

	got = FinishedMessage("", "-Users-x-proj")
	assert.Equal(t, "✅ (no prompt)\n📁 x/proj", got)
}
