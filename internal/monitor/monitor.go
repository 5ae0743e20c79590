package monitor

import (
	"context"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mechanical-echo/maxwell-popup/internal/config"
	"github.com/mechanical-echo/maxwell-popup/internal/ssh"
)

// Monitor is the session activity monitor. One instance owns all mutable
// state (previous lists, dismissal set); every mutation happens under mu,
// so poll results apply one at a time in completion order even when a slow
// poll overlaps the next tick.
type Monitor struct {
	cfgPath string
	sink    Sink
	log     *logrus.Entry
	pool    *ssh.Pool

	// runnerFor resolves a remote host to something that can run a command
	// on it. Replaced in tests.
	runnerFor func(config.RemoteHost) (Runner, error)

	// now is the clock, replaced in tests.
	now func() time.Time

	// wake requests an immediate poll outside the tick cadence.
	wake chan struct{}

	mu           sync.Mutex
	cfg          *config.Config
	prevWaiting  []string
	prevFinished []string
	finishedIDs  map[string]struct{}
	dismissed    map[string]struct{}
}

// New creates a monitor reading its configuration from cfgPath. A missing
// config file is fine; the monitor then watches only the local machine.
func New(cfgPath string, sink Sink, log *logrus.Entry) (*Monitor, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		cfgPath:     cfgPath,
		sink:        sink,
		log:         log,
		pool:        ssh.NewPool(),
		now:         time.Now,
		wake:        make(chan struct{}, 1),
		cfg:         cfg,
		finishedIDs: make(map[string]struct{}),
		dismissed:   make(map[string]struct{}),
	}
	m.runnerFor = m.pooledRunner
	m.registerHosts(cfg)

	// Create the local marker directories so the change watcher has
	// something to attach to before the first hook fires
	_ = os.MkdirAll(cfg.MarkerDir, 0o755)
	_ = os.MkdirAll(cfg.StoppedDir, 0o755)

	return m, nil
}

func (m *Monitor) pooledRunner(host config.RemoteHost) (Runner, error) {
	return m.pool.Get(host.Name)
}

func (m *Monitor) registerHosts(cfg *config.Config) {
	hosts := cfg.EnabledHosts()
	names := make([]string, 0, len(hosts))
	for _, h := range hosts {
		names = append(names, h.Name)
		m.pool.Register(h.Name, ssh.Config{
			Host:         h.Host,
			User:         h.User,
			IdentityFile: h.IdentityFile,
		})
	}
	// Hosts deleted or disabled in the config must not keep their
	// ControlMaster sockets open
	m.pool.Prune(names)
}

// ReloadConfig re-reads the config file. The new host list and directories
// take effect on the next poll, not retroactively.
func (m *Monitor) ReloadConfig() error {
	cfg, err := config.Load(m.cfgPath)
	if err != nil {
		return err
	}
	m.registerHosts(cfg)

	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()

	m.log.Info("configuration reloaded")
	return nil
}

// Run polls until the context is canceled. Each tick dispatches the scan
// onto its own goroutine so the scheduler itself never blocks on a slow
// remote host; a poll that overruns the tick simply applies late.
func (m *Monitor) Run(ctx context.Context) {
	m.mu.Lock()
	interval := m.cfg.PollInterval()
	m.mu.Unlock()

	// The watcher binds to the marker directories from the startup config;
	// a reload that moves marker_dir degrades to pure polling until restart
	go m.watchMarkers(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.WithField("interval", interval).Info("session monitor started")
	m.dispatchPoll()

	for {
		select {
		case <-ctx.Done():
			m.pool.CloseAll()
			m.log.Info("session monitor stopped")
			return
		case <-ticker.C:
			m.dispatchPoll()
		case <-m.wake:
			m.dispatchPoll()
		}
	}
}

func (m *Monitor) dispatchPoll() {
	go m.PollOnce()
}

// PollOnce runs a single scan-and-apply pass synchronously. Run calls it on
// background goroutines; the headless --once mode and tests call it
// directly.
func (m *Monitor) PollOnce() {
	m.mu.Lock()
	cfg := m.cfg
	dismissed := make(map[string]struct{}, len(m.dismissed))
	for id := range m.dismissed {
		dismissed[id] = struct{}{}
	}
	m.mu.Unlock()

	res := m.scan(cfg, m.now(), dismissed)
	m.apply(res)
}

// apply reconciles one poll's result against the previous tick. Both
// channels are edge-triggered on order-sensitive value equality.
func (m *Monitor) apply(res pollResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Waiting channel
	if len(res.waiting) == 0 {
		if len(m.prevWaiting) > 0 {
			m.sink.WaitingCleared()
		}
	} else if !slices.Equal(res.waiting, m.prevWaiting) {
		m.sink.WaitingChanged(res.waiting)
	}
	m.prevWaiting = res.waiting

	// Finished channel. Re-filter against the live dismissal set: a dismiss
	// command may have landed while this poll was out scanning.
	messages := make([]string, 0, len(res.finished))
	ids := make(map[string]struct{}, len(res.finished))
	for _, e := range res.finished {
		if _, ok := m.dismissed[e.session]; ok {
			continue
		}
		messages = append(messages, e.message)
		ids[e.session] = struct{}{}
	}

	if len(messages) == 0 {
		if len(m.prevFinished) > 0 {
			m.sink.FinishedCleared()
			// Sessions that aged out become eligible to notify again
			m.dismissed = make(map[string]struct{})
		}
		m.prevFinished = nil
	} else if !slices.Equal(messages, m.prevFinished) {
		m.sink.FinishedChanged(messages)
		m.prevFinished = messages
	} else {
		m.prevFinished = messages
	}
	m.finishedIDs = ids
}

// DismissFinished acknowledges the current finished batch: those sessions
// stop notifying immediately, without waiting for the next poll's natural
// transition.
func (m *Monitor) DismissFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.finishedIDs {
		m.dismissed[id] = struct{}{}
	}
	m.finishedIDs = make(map[string]struct{})

	if len(m.prevFinished) > 0 {
		m.prevFinished = nil
		m.sink.FinishedCleared()
	}
}
