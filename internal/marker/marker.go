package marker

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Validation windows for tool-approval markers. Hooks create a marker when a
// tool invocation needs permission and remove it when the tool completes; the
// monitor reaps anything the hooks missed.
const (
	// TTL is the maximum age before a marker is considered abandoned.
	TTL = 120 * time.Second

	// MinAge debounces instantaneous create/delete races: a marker younger
	// than this is not shown yet (and not deleted either).
	MinAge = 2 * time.Second

	// TranscriptSkew is how much newer the session transcript may be than
	// the marker file before we conclude the tool already finished and the
	// hook lost the cleanup race.
	TranscriptSkew = 2 * time.Second
)

// Tool identifies which kind of tool invocation is awaiting approval.
type Tool int

const (
	ToolOther Tool = iota
	ToolBash
	ToolEdit
	ToolWrite
	ToolRead
)

// ParseTool maps the marker's tool field to a Tool. Unknown or missing
// values map to ToolOther rather than being rejected; hook scripts on other
// machines may be newer than this binary.
func ParseTool(s string) Tool {
	switch s {
	case "Bash":
		return ToolBash
	case "Edit":
		return ToolEdit
	case "Write":
		return ToolWrite
	case "Read":
		return ToolRead
	default:
		return ToolOther
	}
}

// Icon returns the display glyph for the tool kind.
func (t Tool) Icon() string {
	switch t {
	case ToolBash:
		return "🖥️"
	case ToolEdit:
		return "✏️"
	case ToolWrite:
		return "📝"
	case ToolRead:
		return "📖"
	default:
		return "🔧"
	}
}

// Name returns the tool's display name, used when the marker carries no
// command text.
func (t Tool) Name() string {
	switch t {
	case ToolBash:
		return "Bash"
	case ToolEdit:
		return "Edit"
	case ToolWrite:
		return "Write"
	case ToolRead:
		return "Read"
	default:
		return "Tool"
	}
}

// Marker is one tool-approval marker file, written by the hook scripts as
// <sessionId>.json in the marker directory.
type Marker struct {
	Tool       Tool
	Command    string
	WorkingDir string
	CreatedAt  time.Time
	Session    string
	Remote     bool
}

// markerJSON is the on-disk schema: {tool, cmd, cwd, time, session}.
// Remote hooks additionally set remote=true; the monitor carries it but
// never branches on it.
type markerJSON struct {
	Tool    string `json:"tool"`
	Cmd     string `json:"cmd"`
	Cwd     string `json:"cwd"`
	Time    int64  `json:"time"`
	Session string `json:"session"`
	Remote  bool   `json:"remote"`
}

// Parse decodes a single marker JSON object. A parse error or a missing
// required field means the file may be mid-write by a hook; callers must
// skip such markers without deleting them.
func Parse(data []byte) (*Marker, error) {
	var raw markerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse marker: %w", err)
	}
	if raw.Session == "" {
		return nil, fmt.Errorf("marker missing session")
	}
	if raw.Time <= 0 {
		return nil, fmt.Errorf("marker missing time")
	}
	return &Marker{
		Tool:       ParseTool(raw.Tool),
		Command:    raw.Cmd,
		WorkingDir: raw.Cwd,
		CreatedAt:  time.Unix(raw.Time, 0),
		Session:    raw.Session,
		Remote:     raw.Remote,
	}, nil
}

// Age returns how long ago the producing hook created the marker.
func (m *Marker) Age(now time.Time) time.Duration {
	return now.Sub(m.CreatedAt)
}

// Expired reports whether the marker is past its TTL.
func (m *Marker) Expired(now time.Time) bool {
	return m.Age(now) > TTL
}

// TooFresh reports whether the marker is inside the debounce window.
func (m *Marker) TooFresh(now time.Time) bool {
	return m.Age(now) <= MinAge
}

// Message renders the two-line notification text for this marker:
// tool glyph plus command on the first line, folder on the second.
func (m *Marker) Message() string {
	label := strings.TrimSpace(m.Command)
	if label == "" {
		label = m.Tool.Name()
	}
	return fmt.Sprintf("%s %s\n📁 %s", m.Tool.Icon(), truncate(label, 20), shortPath(m.WorkingDir))
}

// truncate limits s to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// shortPath reduces an absolute working directory to its last two path
// segments, e.g. "/Users/x/proj" -> "x/proj".
func shortPath(p string) string {
	p = filepath.Clean(p)
	dir, base := filepath.Split(p)
	parent := filepath.Base(filepath.Clean(dir))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return p
	}
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return parent + "/" + base
}
