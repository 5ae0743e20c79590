package marker

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeStopMarker(t *testing.T, dir, session string, createdAt time.Time) string {
	t.Helper()
	path := filepath.Join(dir, session+".json")
	data := fmt.Sprintf(`{"time":%d}`, createdAt.Unix())
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing stop marker: %v", err)
	}
	return path
}

func TestStopped(t *testing.T) {
	dir := t.TempDir()
	writeStopMarker(t, dir, "s1", time.Now())

	if !Stopped(dir, "s1") {
		t.Error("Stopped(s1) = false, want true")
	}
	if Stopped(dir, "s2") {
		t.Error("Stopped(s2) = true, want false")
	}
}

func TestSweepStopped_RemovesOnlyExpired(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := writeStopMarker(t, dir, "old", now.Add(-10*time.Minute))
	fresh := writeStopMarker(t, dir, "fresh", now.Add(-1*time.Minute))

	SweepStopped(dir, now)

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expired stop marker was not removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh stop marker was removed: %v", err)
	}
}

func TestSweepStopped_UnreadableFallsBackToMtime(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	path := filepath.Join(dir, "garbled.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := now.Add(-10 * time.Minute)
	if err := os.Chtimes(path, stale, stale); err != nil {
		t.Fatal(err)
	}

	SweepStopped(dir, now)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("garbled stop marker past TTL by mtime was not removed")
	}
}

func TestSweepStopped_MissingDir(t *testing.T) {
	// Must not panic or create anything
	SweepStopped(filepath.Join(t.TempDir(), "nope"), time.Now())
}
