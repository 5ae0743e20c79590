package monitor

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// watchMarkers wakes the poll loop as soon as a marker appears or vanishes,
// so approvals surface faster than the tick cadence. The watcher is an
// accelerator only: if it can't start, the monitor degrades to pure
// polling.
func (m *Monitor) watchMarkers(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.log.WithError(err).Warn("marker watcher unavailable, relying on polling")
		return
	}
	defer watcher.Close()

	m.mu.Lock()
	dirs := []string{m.cfg.MarkerDir, m.cfg.StoppedDir}
	m.mu.Unlock()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			m.log.WithField("dir", dir).WithError(err).Debug("not watching directory")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0 {
				select {
				case m.wake <- struct{}{}:
				default:
					// A poll is already queued
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.log.WithError(err).Debug("marker watcher error")
		}
	}
}
