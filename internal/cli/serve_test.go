package cli

import (
	"testing"

	"github.com/berth-cluster/berth/internal/daemon"
)

func TestApplyServeFlags(t *testing.T) {
	tests := []struct {
		name        string
		host        string
		port        int
		store       string
		wantHost    string
		wantPort    int
		wantBackend string
	}{
		{"unset flags keep config", "", 0, "", "127.0.0.1", 7513, "sqlite"},
		{"host and port override", "0.0.0.0", 9000, "", "0.0.0.0", 9000, "sqlite"},
		{"store backend override", "", 0, "memory", "127.0.0.1", 7513, "memory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serveHost, servePort, serveStore = tt.host, tt.port, tt.store
			defer func() { serveHost, servePort, serveStore = "", 0, "" }()

			cfg := daemon.DefaultConfig()
			applyServeFlags(&cfg)

			if cfg.API.Host != tt.wantHost || cfg.API.Port != tt.wantPort {
				t.Errorf("API = %s:%d, want %s:%d",
					cfg.API.Host, cfg.API.Port, tt.wantHost, tt.wantPort)
			}
			if cfg.Store.Backend != tt.wantBackend {
				t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, tt.wantBackend)
			}
		})
	}
}
