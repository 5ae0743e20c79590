package ssh

import (
	"sync"
)

// Pool manages a collection of SSH connections keyed by host name.
// Connections are reused across poll ticks so the ControlMaster socket
// stays warm instead of paying a full handshake every two seconds.
type Pool struct {
	mu          sync.RWMutex
	connections map[string]*Connection // host name -> connection
	configs     map[string]Config      // host name -> config for reconnection
}

// NewPool creates a new connection pool
func NewPool() *Pool {
	return &Pool{
		connections: make(map[string]*Connection),
		configs:     make(map[string]Config),
	}
}

// Register adds a host configuration to the pool without connecting.
// Registering a host again with a different config drops the old connection.
func (p *Pool) Register(name string, cfg Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old, exists := p.configs[name]; exists && old != cfg {
		if conn, ok := p.connections[name]; ok {
			_ = conn.CloseControlMaster()
			delete(p.connections, name)
		}
	}
	p.configs[name] = cfg
}

// Get returns a connection for the given host, creating one if needed
func (p *Pool) Get(name string) (*Connection, error) {
	p.mu.RLock()
	conn, exists := p.connections[name]
	p.mu.RUnlock()

	if exists {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if conn, exists := p.connections[name]; exists {
		return conn, nil
	}

	cfg, hasCfg := p.configs[name]
	if !hasCfg {
		// Try to use the name directly as hostname
		cfg = Config{Host: name}
	}

	conn = NewConnection(cfg)
	p.connections[name] = conn
	return conn, nil
}

// Prune drops every pooled host not present in keep, closing its
// ControlMaster. Called on config reload so hosts deleted from the config
// don't hold sockets open for the life of the process.
func (p *Pool) Prune(keep []string) {
	keepSet := make(map[string]bool, len(keep))
	for _, name := range keep {
		keepSet[name] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for name, conn := range p.connections {
		if keepSet[name] {
			continue
		}
		_ = conn.CloseControlMaster()
		delete(p.connections, name)
	}
	for name := range p.configs {
		if !keepSet[name] {
			delete(p.configs, name)
		}
	}
}

// Remove drops a host from the pool and closes its connection
func (p *Pool) Remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.connections[name]; ok {
		_ = conn.CloseControlMaster()
		delete(p.connections, name)
	}
	delete(p.configs, name)
}

// CloseAll closes every pooled connection
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, conn := range p.connections {
		_ = conn.CloseControlMaster()
		delete(p.connections, name)
	}
}
