package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/berth-cluster/berth/internal/api"
	"github.com/berth-cluster/berth/internal/health"
	"github.com/berth-cluster/berth/internal/infra/metrics"
	"github.com/berth-cluster/berth/internal/infra/store"
	"github.com/berth-cluster/berth/internal/infra/tracker"
)

// Daemon is the core berth runtime. It wires together all services.
type Daemon struct {
	Config  Config
	Store   store.KV
	Tracker *tracker.Tracker
	Reaper  *tracker.Reaper // nil when overdue reaping is off
	Health  *health.Checker
	Server  *api.Server
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	kv, err := openStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// Every store operation lands in the Prometheus collectors.
	instrumented := store.Instrument(kv)

	trackerCfg := tracker.Config{
		LaunchTimeout: parseDuration(cfg.Tracker.LaunchTimeout, tracker.DefaultConfig().LaunchTimeout),
	}
	tr := tracker.New(instrumented, trackerCfg)

	// API server over the tracker
	srv := api.NewServer(tr)

	// Enable Prometheus /metrics if configured
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	// Health checker probing the store
	checker := health.NewChecker(instrumented)
	srv.SetChecker(checker)

	d := &Daemon{
		Config:  cfg,
		Store:   instrumented,
		Tracker: tr,
		Health:  checker,
		Server:  srv,
	}

	if cfg.Tracker.ReapOverdue {
		interval := parseDuration(cfg.Tracker.ReapInterval, 30*time.Second)
		d.Reaper = tracker.NewReaper(tr, interval)
	}

	return d, nil
}

// openStore opens the configured task store backend.
func openStore(cfg StoreConfig) (store.KV, error) {
	switch cfg.Backend {
	case "", "sqlite":
		dir := cfg.Dir
		if dir == "" {
			dir = filepath.Join(berthHome(), "data")
		}
		return store.OpenSQLite(dir)
	case "redis":
		return store.OpenRedis(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case "memory":
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Warm the cache so the first requests after a restart do not all
	// stampede the store.
	if d.Config.Tracker.WarmCache {
		if err := d.Tracker.LoadAll(ctx); err != nil {
			log.Printf("[daemon] cache warm-up failed: %v (starting cold)", err)
		} else {
			apps, tasks := d.Tracker.Stats()
			log.Printf("[daemon] cache warmed: %d apps, %d tasks", apps, tasks)
		}
	}

	// Health checker (always runs)
	go d.Health.Run(ctx)

	// Overdue reaper (if enabled)
	if d.Reaper != nil {
		go d.Reaper.Run(ctx)
	}

	// Cache gauges
	go d.sampleCacheMetrics(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.Store.Close()
	}()

	fmt.Printf("berth serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// sampleCacheMetrics keeps the cache-size gauges current while the
// daemon runs.
func (d *Daemon) sampleCacheMetrics(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			apps, tasks := d.Tracker.Stats()
			metrics.CachedApps.Set(float64(apps))
			metrics.CachedTasks.Set(float64(tasks))
		}
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Store != nil {
		_ = d.Store.Close()
	}
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
