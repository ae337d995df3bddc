package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/berth-cluster/berth/internal/domain"
	"github.com/berth-cluster/berth/internal/infra/metrics"
)

// ─── Task API (/v1/*) ───────────────────────────────────────────────────────
// Schedulers register launches and kills here; executors report status.
// Application paths contain slashes, so they ride in JSON bodies or in
// the /apps/* wildcard, never in a single path segment.

// --- POST /v1/tasks ---

// createTaskRequest is the launch record a scheduler registers after
// handing a task to the cluster.
type createTaskRequest struct {
	AppPath    string            `json:"app_path"`
	Host       string            `json:"host"`
	Ports      []int             `json:"ports,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	app, err := domain.ParseAppPath(req.AppPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Host == "" {
		writeError(w, http.StatusBadRequest, "host is required")
		return
	}

	task := domain.NewStagedTask(app, req.Host, req.Ports, req.Attributes, s.now().UnixMilli())
	if err := s.tracker.Created(r.Context(), app, task); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// --- POST /v1/status ---

// statusReport is one executor status report.
type statusReport struct {
	TaskID    string `json:"task_id"`
	State     string `json:"state"`
	Health    string `json:"health,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

func (s *Server) handleStatusUpdate(w http.ResponseWriter, r *http.Request) {
	var req statusReport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	app, err := domain.ParseTaskID(req.TaskID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state := domain.TaskState(req.State)
	if !state.Valid() {
		writeError(w, http.StatusBadRequest, "unknown state "+req.State)
		return
	}
	health, err := domain.ParseHealth(req.Health)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := s.tracker.StatusUpdate(r.Context(), app, domain.TaskStatus{
		TaskID:    req.TaskID,
		State:     state,
		Health:    health,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			metrics.StatusUpdates.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.StatusUpdates.WithLabelValues(outcome.String()).Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"outcome": outcome.String(),
	})
}

// --- /v1/tasks/{id} ---

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	app, err := domain.ParseTaskID(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.tracker.GetTask(r.Context(), app, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task "+id+" not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTerminateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	app, err := domain.ParseTaskID(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.tracker.Terminated(r.Context(), app, id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
}

// --- GET /v1/tasks/overdue ---

func (s *Server) handleOverdueTasks(w http.ResponseWriter, r *http.Request) {
	overdue := s.tracker.OverdueTasks(s.now())
	if overdue == nil {
		overdue = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": overdue,
	})
}

// --- GET /v1/apps ---

// appSummary is one row of the application listing.
type appSummary struct {
	AppPath string `json:"app_path"`
	Tasks   int    `json:"tasks"`
}

func (s *Server) handleListApps(w http.ResponseWriter, r *http.Request) {
	apps := s.tracker.Apps()
	out := make([]appSummary, 0, len(apps))
	for _, app := range apps {
		tasks, err := s.tracker.GetTasks(r.Context(), app)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, appSummary{AppPath: app.String(), Tasks: len(tasks)})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"apps": out,
	})
}

// --- GET /v1/apps/* ---

func (s *Server) handleAppTasks(w http.ResponseWriter, r *http.Request) {
	app, err := domain.ParseAppPath("/" + chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := s.tracker.GetTasks(r.Context(), app)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"app_path": app.String(),
		"tasks":    tasks,
	})
}

// --- POST /v1/shutdown ---

// shutdownRequest names the application to evict from the cache. The
// store is untouched; surviving records reload on the next touch.
type shutdownRequest struct {
	AppPath string `json:"app_path"`
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	var req shutdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	app, err := domain.ParseAppPath(req.AppPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.tracker.Shutdown(app)
	w.WriteHeader(http.StatusOK)
}

// --- POST /v1/cache/clear ---

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.tracker.ClearCache()
	w.WriteHeader(http.StatusOK)
}

// --- GET /health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker != nil && !s.checker.IsHealthy() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "degraded",
			"checks": s.checker.Statuses(),
		})
		return
	}

	resp := map[string]interface{}{"status": "ok"}
	if s.checker != nil {
		resp["checks"] = s.checker.Statuses()
	}
	writeJSON(w, http.StatusOK, resp)
}
