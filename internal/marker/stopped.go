package marker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// StoppedTTL is how long a stop marker keeps suppressing finished
// notifications before the sweep removes it.
const StoppedTTL = 300 * time.Second

// stoppedJSON is the stop-marker schema; hooks write {time, ...} when a
// session is explicitly stopped or cleared. Extra fields are ignored.
type stoppedJSON struct {
	Time int64 `json:"time"`
}

// Stopped reports whether a stop marker exists for the session.
func Stopped(dir, session string) bool {
	_, err := os.Stat(filepath.Join(dir, session+".json"))
	return err == nil
}

// SweepStopped deletes stop markers older than StoppedTTL. The createdAt
// timestamp inside the file is authoritative; if the file is unreadable or
// mid-write, the file's mtime decides instead. A missing directory is fine.
func SweepStopped(dir string, now time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		createdAt := time.Time{}
		if data, err := os.ReadFile(path); err == nil {
			var raw stoppedJSON
			if err := json.Unmarshal(data, &raw); err == nil && raw.Time > 0 {
				createdAt = time.Unix(raw.Time, 0)
			}
		}
		if createdAt.IsZero() {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			createdAt = info.ModTime()
		}
		if now.Sub(createdAt) > StoppedTTL {
			_ = os.Remove(path)
		}
	}
}
