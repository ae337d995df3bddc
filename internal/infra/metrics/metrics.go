// Package metrics provides the Prometheus collectors for berth. The
// tracker core emits nothing itself; the store wrapper, API handlers
// and reaper record everything from outside.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Store ──────────────────────────────────────────────────────────────────

// StoreOpLatency tracks persistent store operation duration in seconds.
var StoreOpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "berth",
	Name:      "store_op_latency_seconds",
	Help:      "Persistent store operation duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"op"})

// StoreOpFailures tracks failed store operations. A miss on get is not
// a failure.
var StoreOpFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "berth",
	Name:      "store_op_failures_total",
	Help:      "Total failed persistent store operations.",
}, []string{"op"})

// ─── Reconciler ─────────────────────────────────────────────────────────────

// StatusUpdates tracks processed status reports by outcome
// (persisted, deduped, expunged, rejected).
var StatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "berth",
	Name:      "status_updates_total",
	Help:      "Total processed status reports by outcome.",
}, []string{"outcome"})

// ─── Cache ──────────────────────────────────────────────────────────────────

// CachedApps tracks applications currently resident in the task cache.
var CachedApps = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "berth",
	Name:      "cached_apps",
	Help:      "Applications currently resident in the task cache.",
})

// CachedTasks tracks task records currently resident in the task cache.
var CachedTasks = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "berth",
	Name:      "cached_tasks",
	Help:      "Task records currently resident in the task cache.",
})

// ─── Reaper ─────────────────────────────────────────────────────────────────

// OverdueReaped tracks tasks expunged for missing their launch deadline.
var OverdueReaped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "berth",
	Name:      "overdue_reaped_total",
	Help:      "Total tasks expunged for missing their launch deadline.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "berth",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
