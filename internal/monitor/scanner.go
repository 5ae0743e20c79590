package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mechanical-echo/maxwell-popup/internal/claude"
	"github.com/mechanical-echo/maxwell-popup/internal/config"
	"github.com/mechanical-echo/maxwell-popup/internal/marker"
)

// Finished-session mtime window: younger means the session is likely still
// streaming a reply, older means nobody cares anymore.
const (
	finishedMinAge = 5 * time.Second
	finishedMaxAge = 300 * time.Second
)

// Runner executes one command on a remote host and returns its stdout.
// *ssh.Connection satisfies it; tests substitute a stub.
type Runner interface {
	RunCommand(command string) (string, error)
}

// finishedEntry pairs a finished message with the session that produced it,
// so the reconciler can re-check the dismissal set at apply time.
type finishedEntry struct {
	session string
	message string
}

// pollResult is what one scan pass hands to the reconciler.
type pollResult struct {
	waiting  []string
	finished []finishedEntry
}

// scan runs one full poll: local markers, remote markers per enabled host,
// then the finished-session pass. It only touches the filesystem and SSH;
// all shared state was snapshotted by the caller.
func (m *Monitor) scan(cfg *config.Config, now time.Time, dismissed map[string]struct{}) pollResult {
	var res pollResult

	projectsDir := m.projectsDir(cfg)

	local, active := m.scanLocalMarkers(cfg, projectsDir, now)
	res.waiting = append(res.waiting, local...)

	for _, host := range cfg.EnabledHosts() {
		msgs := m.scanRemoteMarkers(cfg, host, now, active)
		res.waiting = append(res.waiting, msgs...)
	}

	res.finished = m.scanFinished(cfg, projectsDir, now, active, dismissed)
	return res
}

func (m *Monitor) projectsDir(cfg *config.Config) string {
	configDir := cfg.ClaudeConfigDir
	if configDir == "" {
		configDir = claude.ConfigDir()
	}
	return claude.ProjectsDir(configDir)
}

// scanLocalMarkers walks the local marker directory in listing order and
// returns one message per valid marker plus the set of sessions that still
// have a marker on disk afterwards. Reaping happens here: expired markers
// and markers whose transcript moved on are deleted as a side effect.
func (m *Monitor) scanLocalMarkers(cfg *config.Config, projectsDir string, now time.Time) ([]string, map[string]struct{}) {
	active := make(map[string]struct{})
	entries, err := os.ReadDir(cfg.MarkerDir)
	if err != nil {
		// Missing directory just means no hooks have fired yet
		return nil, active
	}

	var messages []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(cfg.MarkerDir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		mk, err := marker.Parse(data)
		if err != nil {
			// Possibly mid-write by a hook; leave the file alone. The file
			// is named <sessionId>.json, so the session still counts as
			// having a pending approval this tick
			m.log.WithField("file", entry.Name()).WithError(err).Debug("skipping unparseable marker")
			active[strings.TrimSuffix(entry.Name(), ".json")] = struct{}{}
			continue
		}
		active[mk.Session] = struct{}{}

		// If the transcript kept moving after the marker was written, the
		// tool already completed and the hook lost the cleanup race
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if t, ok := claude.FindTranscript(projectsDir, mk.Session); ok {
			if t.ModTime.Sub(info.ModTime()) > marker.TranscriptSkew {
				m.reap(path, mk.Session, "transcript newer than marker")
				delete(active, mk.Session)
				continue
			}
		}

		if mk.Expired(now) {
			m.reap(path, mk.Session, "marker expired")
			delete(active, mk.Session)
			continue
		}
		if mk.TooFresh(now) {
			// Still inside the debounce window: hold the session as active
			// but don't show it yet
			continue
		}

		messages = append(messages, mk.Message())
	}
	return messages, active
}

func (m *Monitor) reap(path, session, reason string) {
	if err := os.Remove(path); err != nil {
		m.log.WithField("session", session).WithError(err).Debug("failed to reap marker")
		return
	}
	m.log.WithField("session", session).Debug("reaped marker: " + reason)
}

// scanRemoteMarkers lists one host's markers with a single remote cat and
// parses each output line as an independent marker. Remote files are
// outside this process's write authority, so only the age window applies;
// no transcript check and no reaping. Any transport failure yields zero
// messages for the host and the poll moves on.
func (m *Monitor) scanRemoteMarkers(cfg *config.Config, host config.RemoteHost, now time.Time, active map[string]struct{}) []string {
	runner, err := m.runnerFor(host)
	if err != nil {
		m.log.WithField("host", host.Name).WithError(err).Warn("remote scan skipped")
		return nil
	}

	listCmd := fmt.Sprintf("cat %s/*.json 2>/dev/null || true", cfg.RemoteMarkerDir)
	output, err := runner.RunCommand(listCmd)
	if err != nil {
		m.log.WithField("host", host.Name).WithError(err).Warn("remote scan failed")
		return nil
	}

	var messages []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		mk, err := marker.Parse([]byte(line))
		if err != nil {
			continue
		}
		active[mk.Session] = struct{}{}
		if mk.Expired(now) || mk.TooFresh(now) {
			continue
		}
		messages = append(messages, fmt.Sprintf("[%s] %s", host.Name, mk.Message()))
	}
	return messages
}

// scanFinished decides, per transcript, whether the assistant replied and
// the user hasn't looked yet. Stop markers past their TTL are swept first
// as independent housekeeping.
func (m *Monitor) scanFinished(cfg *config.Config, projectsDir string, now time.Time, active, dismissed map[string]struct{}) []finishedEntry {
	marker.SweepStopped(cfg.StoppedDir, now)

	projects, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil
	}

	var entries []finishedEntry
	for _, project := range projects {
		if !project.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(projectsDir, project.Name()))
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() || filepath.Ext(file.Name()) != ".jsonl" {
				continue
			}
			session := strings.TrimSuffix(file.Name(), ".jsonl")

			// Cheap metadata-only filters first
			if _, ok := dismissed[session]; ok {
				continue
			}
			if marker.Stopped(cfg.StoppedDir, session) {
				continue
			}
			info, err := file.Info()
			if err != nil {
				continue
			}
			age := now.Sub(info.ModTime())
			if age <= finishedMinAge || age >= finishedMaxAge {
				continue
			}
			// A pending approval outranks "finished"
			if _, ok := active[session]; ok {
				continue
			}

			path := filepath.Join(projectsDir, project.Name(), file.Name())
			tail, err := claude.ScanTail(path)
			if err != nil {
				continue
			}
			if !tail.Finished() {
				continue
			}
			entries = append(entries, finishedEntry{
				session: session,
				message: claude.FinishedMessage(tail.Prompt, project.Name()),
			})
		}
	}
	return entries
}
