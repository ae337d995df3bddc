// Package daemon manages the berth daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Node      NodeConfig      `toml:"node"`
	API       APIConfig       `toml:"api"`
	Store     StoreConfig     `toml:"store"`
	Tracker   TrackerConfig   `toml:"tracker"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// NodeConfig identifies this node.
type NodeConfig struct {
	ID     string `toml:"id"`
	Region string `toml:"region"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StoreConfig selects and tunes the task store backend.
type StoreConfig struct {
	Backend string      `toml:"backend"` // "sqlite", "redis" or "memory"
	Dir     string      `toml:"dir"`     // sqlite data directory
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig connects the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// TrackerConfig tunes the task-state core.
type TrackerConfig struct {
	LaunchTimeout string `toml:"launch_timeout"` // window before an unstarted task is overdue
	ReapInterval  string `toml:"reap_interval"`
	ReapOverdue   bool   `toml:"reap_overdue"`
	WarmCache     bool   `toml:"warm_cache"` // load every app at startup
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := berthHome()
	return Config{
		Node: NodeConfig{
			Region: "auto",
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7513,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Dir:     filepath.Join(homeDir, "data"),
			Redis: RedisConfig{
				Addr: "127.0.0.1:6379",
			},
		},
		Tracker: TrackerConfig{
			LaunchTimeout: "5m",
			ReapInterval:  "30s",
			ReapOverdue:   true,
			WarmCache:     true,
		},
	}
}

// LoadConfig reads config from ~/.berth/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(berthHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.berth/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(berthHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// berthHome returns the berth data directory.
func berthHome() string {
	if env := os.Getenv("BERTH_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".berth")
}

// BerthHome is exported for use by other packages.
func BerthHome() string {
	return berthHome()
}
