// Package api provides the HTTP server for berth. It exposes the task
// lifecycle and status-report endpoints schedulers and executors talk
// to, plus health and operational endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/berth-cluster/berth/internal/health"
	"github.com/berth-cluster/berth/internal/infra/tracker"
)

// Server is the berth HTTP API server.
type Server struct {
	tracker        *tracker.Tracker
	checker        *health.Checker // nil until SetChecker
	metricsEnabled bool
	now            func() time.Time // injectable for tests
}

// NewServer creates a new API server over the tracker.
func NewServer(tr *tracker.Tracker) *Server {
	return &Server{tracker: tr, now: time.Now}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetChecker wires the periodic health checker into /health.
func (s *Server) SetChecker(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check for load balancers and orchestration
	r.Get("/health", s.handleHealth)

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": "0.1.0",
		})
	})

	// Task lifecycle and status ingestion
	r.Route("/v1", func(r chi.Router) {
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks/overdue", s.handleOverdueTasks)
		r.Get("/tasks/{id}", s.handleGetTask)
		r.Delete("/tasks/{id}", s.handleTerminateTask)
		r.Post("/status", s.handleStatusUpdate)
		r.Get("/apps", s.handleListApps)
		r.Get("/apps/*", s.handleAppTasks)
		r.Post("/shutdown", s.handleShutdown)
		r.Post("/cache/clear", s.handleClearCache)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
