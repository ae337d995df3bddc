package daemon

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 7513 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 7513)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "sqlite")
	}
	if cfg.Tracker.LaunchTimeout != "5m" {
		t.Errorf("Tracker.LaunchTimeout = %q, want %q", cfg.Tracker.LaunchTimeout, "5m")
	}
	if !cfg.Tracker.ReapOverdue {
		t.Error("Tracker.ReapOverdue should default on")
	}
	if !cfg.Tracker.WarmCache {
		t.Error("Tracker.WarmCache should default on")
	}
}

func TestLoadConfig_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("BERTH_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 7513 {
		t.Errorf("API.Port = %d, want the default 7513", cfg.API.Port)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("BERTH_HOME", home)

	cfg := DefaultConfig()
	cfg.API.Port = 9000
	cfg.Store.Backend = "redis"
	cfg.Store.Redis.Addr = "redis.internal:6379"
	cfg.Tracker.LaunchTimeout = "2m"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", loaded.API.Port)
	}
	if loaded.Store.Backend != "redis" {
		t.Errorf("Store.Backend = %q, want %q", loaded.Store.Backend, "redis")
	}
	if loaded.Store.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Store.Redis.Addr = %q, want %q", loaded.Store.Redis.Addr, "redis.internal:6379")
	}
	if loaded.Tracker.LaunchTimeout != "2m" {
		t.Errorf("Tracker.LaunchTimeout = %q, want %q", loaded.Tracker.LaunchTimeout, "2m")
	}
}

func TestBerthHome_EnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("BERTH_HOME", home)

	if got := BerthHome(); got != home {
		t.Errorf("BerthHome() = %q, want %q", got, home)
	}
	cfg := DefaultConfig()
	if want := filepath.Join(home, "data"); cfg.Store.Dir != want {
		t.Errorf("Store.Dir = %q, want %q", cfg.Store.Dir, want)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"5m", 5 * time.Minute},
		{"30s", 30 * time.Second},
		{"1h", time.Hour},
		{"", time.Minute},          // Fallback
		{"not-a-dur", time.Minute}, // Fallback
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseDuration(tt.input, time.Minute)
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
