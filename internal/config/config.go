package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the TOML config file for user preferences
const ConfigFileName = "config.toml"

// defaultPollInterval is how often the monitor rescans when the config
// doesn't say otherwise.
const defaultPollInterval = 2 * time.Second

// RemoteHost defines one remote machine whose approval markers the monitor
// lists over SSH. Hosts are scanned in the order they appear in the file.
type RemoteHost struct {
	// Name is the display label prefixed to messages from this host
	Name string `toml:"name"`

	// Host is the hostname or IP to connect to
	Host string `toml:"host"`

	// User is the SSH username (optional, defaults to ssh config)
	User string `toml:"user"`

	// IdentityFile is the path to a private key (supports ~ expansion)
	IdentityFile string `toml:"identity_file"`

	// Enabled toggles scanning without removing the host entry
	Enabled bool `toml:"enabled"`
}

// Config represents the monitor configuration in TOML format
type Config struct {
	// PollIntervalSeconds is the scan cadence (default: 2)
	PollIntervalSeconds int `toml:"poll_interval_seconds"`

	// MarkerDir holds tool-approval markers written by the local hooks
	// Default: <tmp>/maxwell/approvals
	MarkerDir string `toml:"marker_dir"`

	// StoppedDir holds stop markers written when a session is cleared
	// Default: <tmp>/maxwell/stopped
	StoppedDir string `toml:"stopped_dir"`

	// RemoteMarkerDir is where hooks write approval markers on remote
	// hosts. Fixed /tmp path because the remote tmp dir is not knowable
	// from here. Default: /tmp/maxwell/approvals
	RemoteMarkerDir string `toml:"remote_marker_dir"`

	// ClaudeConfigDir overrides the Claude config directory used to find
	// session transcripts (default: CLAUDE_CONFIG_DIR env, then ~/.claude)
	ClaudeConfigDir string `toml:"claude_config_dir"`

	// RemoteHosts lists remote machines to scan, in order
	RemoteHosts []RemoteHost `toml:"remote_hosts"`
}

// DefaultPath returns the config file location: $MAXWELL_CONFIG_DIR or
// ~/.maxwell, plus config.toml.
func DefaultPath() string {
	dir := os.Getenv("MAXWELL_CONFIG_DIR")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".maxwell")
	}
	return filepath.Join(expandTilde(dir), ConfigFileName)
}

// Load reads the config file at path. A missing file is not an error: the
// monitor runs fine on defaults with no remote hosts.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = int(defaultPollInterval.Seconds())
	}
	if c.MarkerDir == "" {
		c.MarkerDir = filepath.Join(os.TempDir(), "maxwell", "approvals")
	}
	if c.StoppedDir == "" {
		c.StoppedDir = filepath.Join(os.TempDir(), "maxwell", "stopped")
	}
	if c.RemoteMarkerDir == "" {
		c.RemoteMarkerDir = "/tmp/maxwell/approvals"
	}
	c.MarkerDir = expandTilde(c.MarkerDir)
	c.StoppedDir = expandTilde(c.StoppedDir)
	c.ClaudeConfigDir = expandTilde(c.ClaudeConfigDir)
}

// PollInterval returns the scan cadence as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// EnabledHosts returns the remote hosts to scan, preserving config order
func (c *Config) EnabledHosts() []RemoteHost {
	var hosts []RemoteHost
	for _, h := range c.RemoteHosts {
		if h.Enabled && h.Host != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// expandTilde expands ~ to the user's home directory
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
