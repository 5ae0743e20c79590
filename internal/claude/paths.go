package claude

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ConfigDir returns the Claude config directory.
// Priority: 1) CLAUDE_CONFIG_DIR env, 2) ~/.claude
func ConfigDir() string {
	if envDir := os.Getenv("CLAUDE_CONFIG_DIR"); envDir != "" {
		return expandTilde(envDir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude")
}

// ProjectsDir returns the transcript tree under a Claude config directory:
// one subdirectory per project, each holding <sessionId>.jsonl files.
func ProjectsDir(configDir string) string {
	return filepath.Join(configDir, "projects")
}

// TranscriptInfo describes a located session transcript.
type TranscriptInfo struct {
	Path    string
	Project string // project directory name, e.g. "-Users-x-proj"
	ModTime time.Time
}

// FindTranscript locates the transcript for a session among the project
// directories. Returns false when the session has no transcript (or the
// tree is unreadable, which is treated the same way).
func FindTranscript(projectsDir, sessionID string) (TranscriptInfo, bool) {
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return TranscriptInfo{}, false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(projectsDir, entry.Name(), sessionID+".jsonl")
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		return TranscriptInfo{
			Path:    path,
			Project: entry.Name(),
			ModTime: info.ModTime(),
		}, true
	}
	return TranscriptInfo{}, false
}

// ProjectFolder derives a short folder label from a project directory name.
// Claude encodes the project path with dashes ("-Users-x-proj"); the last
// two segments read naturally as "x/proj".
func ProjectFolder(projectDirName string) string {
	var parts []string
	for _, seg := range strings.Split(projectDirName, "-") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) == 0 {
		return projectDirName
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}
