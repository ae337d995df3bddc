// Package health runs the periodic self-checks behind the daemon's
// health endpoint. Every check probes the task store, the one external
// dependency the tracker cannot live without.
package health

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/berth-cluster/berth/internal/infra/metrics"
	"github.com/berth-cluster/berth/internal/infra/store"
)

// Check defines a single health check.
type Check struct {
	Name    string
	CheckFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks against the task store.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker creates a health checker probing the given store.
func NewChecker(kv store.KV) *Checker {
	return &Checker{
		interval: 60 * time.Second,
		checks: []Check{
			{
				Name: "store_ping",
				CheckFn: func(ctx context.Context) error {
					return kv.Ping(ctx)
				},
			},
			{
				Name: "store_roundtrip",
				CheckFn: func(ctx context.Context) error {
					return roundtrip(ctx, kv)
				},
			},
		},
	}
}

// roundtrip writes, reads back and deletes a probe record, proving the
// store accepts the full task-record cycle and not just connections.
// Probe keys live outside the task: namespace so a crash mid-probe can
// never leave a record a cache load would pick up.
func roundtrip(ctx context.Context, kv store.KV) error {
	key := "probe:" + uuid.NewString()
	want := []byte("ok")
	if err := kv.Put(ctx, key, want); err != nil {
		return fmt.Errorf("probe put: %w", err)
	}
	got, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("probe get: %w", err)
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("probe read back %q, wrote %q", got, want)
	}
	if err := kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("probe delete: %w", err)
	}
	return nil
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce runs every check one time and records the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}
