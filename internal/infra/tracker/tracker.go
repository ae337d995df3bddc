// Package tracker is the authoritative task-state core: a per-application
// task cache over the persistent store, the lifecycle operations that
// mutate it, and the status reconciler that keeps store writes down to
// what each report actually changes.
//
// The tracker itself emits no logs and no metrics. The store wrapper,
// API handlers and reaper observe it from outside.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/berth-cluster/berth/internal/domain"
	"github.com/berth-cluster/berth/internal/infra/store"
)

// taskKeyPrefix namespaces task records in the shared store.
const taskKeyPrefix = "task:"

// taskKey derives the store key for a task identifier.
func taskKey(taskID string) string { return taskKeyPrefix + taskID }

// appKeyPrefix returns the store-key prefix shared by every task of app.
// Identifiers embed the application's safe path, so one prefix scan
// selects exactly one application's records.
func appKeyPrefix(app domain.AppPath) string {
	return taskKeyPrefix + domain.TaskIDPrefix(app)
}

// Config bounds the tracker's time-based behavior.
type Config struct {
	// LaunchTimeout is how long a task may sit staged without its first
	// RUNNING report before the overdue scan flags it.
	LaunchTimeout time.Duration
}

// DefaultConfig returns the stock five-minute launch window.
func DefaultConfig() Config {
	return Config{LaunchTimeout: 5 * time.Minute}
}

// ─── Tracker ────────────────────────────────────────────────────────────────

// Tracker is safe for concurrent use. Operations touching one application
// are serialized, store round-trips included; different applications
// proceed fully in parallel.
type Tracker struct {
	store store.KV
	cfg   Config

	mu   sync.Mutex
	apps map[domain.AppPath]*appEntry

	now func() time.Time // injectable for tests
}

// appEntry holds one application's cached tasks. Its mutex serializes
// every operation on the application, so concurrent first touches
// coalesce into a single store load and the reconciler's
// read-compare-write never races with itself.
type appEntry struct {
	mu     sync.Mutex
	loaded bool
	tasks  map[string]domain.Task
}

// New creates a tracker over the given store. Nothing is loaded until an
// application is first touched.
func New(kv store.KV, cfg Config) *Tracker {
	return &Tracker{
		store: kv,
		cfg:   cfg,
		apps:  make(map[domain.AppPath]*appEntry),
		now:   time.Now,
	}
}

// entry returns the cache slot for app, creating it unloaded on first
// touch. The tracker mutex guards only the map; per-application work
// happens under the entry's own lock.
func (t *Tracker) entry(app domain.AppPath) *appEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.apps[app]
	if !ok {
		e = &appEntry{tasks: make(map[string]domain.Task)}
		t.apps[app] = e
	}
	return e
}

// loadLocked fills the entry from the store on first touch. Caller holds
// e.mu. An application with no records loads as an empty, valid set.
// The entry is only marked loaded after every record is in, so a failed
// load leaves the next touch to retry from scratch.
func (t *Tracker) loadLocked(ctx context.Context, app domain.AppPath, e *appEntry) error {
	if e.loaded {
		return nil
	}
	keys, err := t.store.Keys(ctx, appKeyPrefix(app))
	if err != nil {
		return fmt.Errorf("list tasks of %s: %w", app, err)
	}
	tasks := make(map[string]domain.Task, len(keys))
	for _, key := range keys {
		raw, err := t.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // expunged between scan and read
			}
			return fmt.Errorf("load %s: %w", key, err)
		}
		var task domain.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		// Dotted segments can make one app's prefix match another's ids
		// ("/v2" scans up "/v2.1/api" records); keep only our own.
		if owner, err := domain.ParseTaskID(task.ID); err != nil || owner != app {
			continue
		}
		tasks[task.ID] = task
	}
	e.tasks = tasks
	e.loaded = true
	return nil
}

func (t *Tracker) persist(ctx context.Context, task domain.Task) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode %s: %w", task.ID, err)
	}
	if err := t.store.Put(ctx, taskKey(task.ID), raw); err != nil {
		return fmt.Errorf("persist %s: %w", task.ID, err)
	}
	return nil
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// FetchApp returns the application's tasks keyed by identifier, loading
// them from the store on first touch. Concurrent first touches share one
// load. Callers get clones and can mutate them freely.
func (t *Tracker) FetchApp(ctx context.Context, app domain.AppPath) (map[string]domain.Task, error) {
	e := t.entry(app)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := t.loadLocked(ctx, app, e); err != nil {
		return nil, err
	}
	out := make(map[string]domain.Task, len(e.tasks))
	for id, task := range e.tasks {
		out[id] = task.Clone()
	}
	return out, nil
}

// GetTask returns one task, or nil when the application has no task with
// that identifier.
func (t *Tracker) GetTask(ctx context.Context, app domain.AppPath, taskID string) (*domain.Task, error) {
	e := t.entry(app)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := t.loadLocked(ctx, app, e); err != nil {
		return nil, err
	}
	task, ok := e.tasks[taskID]
	if !ok {
		return nil, nil
	}
	c := task.Clone()
	return &c, nil
}

// GetTasks returns the application's tasks in identifier order.
func (t *Tracker) GetTasks(ctx context.Context, app domain.AppPath) ([]domain.Task, error) {
	e := t.entry(app)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := t.loadLocked(ctx, app, e); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(e.tasks))
	for _, task := range e.tasks {
		tasks = append(tasks, task.Clone())
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// Contains reports whether the application currently has any tasks,
// loading it on first touch like every other read.
func (t *Tracker) Contains(ctx context.Context, app domain.AppPath) (bool, error) {
	e := t.entry(app)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := t.loadLocked(ctx, app, e); err != nil {
		return false, err
	}
	return len(e.tasks) > 0, nil
}

// snapshot copies the entry map so scans can walk it without holding the
// tracker mutex while per-app locks are taken. An entry mid store
// round-trip then only delays its own application.
func (t *Tracker) snapshot() map[domain.AppPath]*appEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := make(map[domain.AppPath]*appEntry, len(t.apps))
	for app, e := range t.apps {
		m[app] = e
	}
	return m
}

// Apps returns the cached applications holding at least one task, in
// path order. Purely a cache view: nothing is loaded.
func (t *Tracker) Apps() []domain.AppPath {
	var apps []domain.AppPath
	for app, e := range t.snapshot() {
		e.mu.Lock()
		if len(e.tasks) > 0 {
			apps = append(apps, app)
		}
		e.mu.Unlock()
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i] < apps[j] })
	return apps
}

// Stats reports how many applications and task records are resident in
// the cache right now.
func (t *Tracker) Stats() (apps, tasks int) {
	for _, e := range t.snapshot() {
		e.mu.Lock()
		apps++
		tasks += len(e.tasks)
		e.mu.Unlock()
	}
	return apps, tasks
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// Created records a launched task: the full record is persisted first,
// then mirrored into the cache. Reporting an identifier that already
// exists overwrites both copies.
func (t *Tracker) Created(ctx context.Context, app domain.AppPath, task domain.Task) error {
	e := t.entry(app)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := t.loadLocked(ctx, app, e); err != nil {
		return err
	}
	if err := t.persist(ctx, task); err != nil {
		return err
	}
	e.tasks[task.ID] = task.Clone()
	return nil
}

// Terminated forgets a task: store record first, cache second. Tasks
// already gone on either side are a success, so retried kills and races
// with the reaper stay quiet.
func (t *Tracker) Terminated(ctx context.Context, app domain.AppPath, taskID string) error {
	e := t.entry(app)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := t.store.Delete(ctx, taskKey(taskID)); err != nil {
		return fmt.Errorf("expunge %s: %w", taskID, err)
	}
	delete(e.tasks, taskID)
	return nil
}

// Shutdown evicts an application from the cache without touching the
// store. Records still persisted reappear on the next load; that reload
// is the intended way to re-sync an application's view.
func (t *Tracker) Shutdown(app domain.AppPath) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.apps, app)
}

// ClearCache drops every cached application. Each one reloads from the
// store on its next touch; the recovery path when cache and store are
// suspected to have diverged.
func (t *Tracker) ClearCache() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apps = make(map[domain.AppPath]*appEntry)
}

// ─── Status Reconciliation ──────────────────────────────────────────────────

// UpdateOutcome reports what a status report did to tracker state.
// Meaningful only when StatusUpdate returns no error.
type UpdateOutcome int

const (
	// OutcomePersisted: the report changed state or health, so the merged
	// record was written through.
	OutcomePersisted UpdateOutcome = iota
	// OutcomeDeduped: the report matched the stored status on both
	// dimensions, so nothing was written anywhere.
	OutcomeDeduped
	// OutcomeExpunged: a terminal report removed the task entirely.
	OutcomeExpunged
)

// String returns the label used in logs and metrics.
func (o UpdateOutcome) String() string {
	switch o {
	case OutcomePersisted:
		return "persisted"
	case OutcomeDeduped:
		return "deduped"
	case OutcomeExpunged:
		return "expunged"
	default:
		return "unknown"
	}
}

// StatusUpdate reconciles one executor status report against tracker
// state. Reports naming a task the application does not have fail with
// ErrTaskNotFound and touch nothing. Terminal states expunge the task:
// exactly one store delete, never a write. Non-terminal states persist
// the merged record only when the report moves the lifecycle state or
// the health verdict; echoes of what is already stored write nothing.
//
// The first RUNNING report stamps StartedAt from the report timestamp,
// falling back to the tracker clock; once set it is never rewritten, so
// restarts observed later cannot move it backwards.
func (t *Tracker) StatusUpdate(ctx context.Context, app domain.AppPath, status domain.TaskStatus) (UpdateOutcome, error) {
	e := t.entry(app)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := t.loadLocked(ctx, app, e); err != nil {
		return OutcomeDeduped, err
	}

	task, ok := e.tasks[status.TaskID]
	if !ok {
		return OutcomeDeduped, fmt.Errorf("%w: task %s of app %s", domain.ErrTaskNotFound, status.TaskID, app)
	}

	if status.State.IsTerminal() {
		if err := t.store.Delete(ctx, taskKey(status.TaskID)); err != nil {
			return OutcomeDeduped, fmt.Errorf("expunge %s: %w", status.TaskID, err)
		}
		delete(e.tasks, status.TaskID)
		return OutcomeExpunged, nil
	}

	if prev := task.Status; prev != nil && prev.State == status.State && prev.Health == status.Health {
		return OutcomeDeduped, nil
	}

	task.Status = &status
	if status.State == domain.TaskRunning && task.StartedAt == domain.TimeNever {
		if status.Timestamp != domain.TimeNever {
			task.StartedAt = status.Timestamp
		} else {
			task.StartedAt = t.now().UnixMilli()
		}
	}
	if err := t.persist(ctx, task); err != nil {
		return OutcomeDeduped, err
	}
	e.tasks[task.ID] = task
	return OutcomePersisted, nil
}

// ─── Warm-up ────────────────────────────────────────────────────────────────

// LoadAll warms the cache with every application that has records in the
// store: one namespace scan, then each application loads through the
// usual per-app path. Keys that do not parse as task identifiers are
// someone else's and are skipped.
func (t *Tracker) LoadAll(ctx context.Context) error {
	keys, err := t.store.Keys(ctx, taskKeyPrefix)
	if err != nil {
		return fmt.Errorf("scan store: %w", err)
	}
	seen := make(map[domain.AppPath]bool)
	for _, key := range keys {
		app, err := domain.ParseTaskID(key[len(taskKeyPrefix):])
		if err != nil {
			continue
		}
		seen[app] = true
	}
	for app := range seen {
		if _, err := t.FetchApp(ctx, app); err != nil {
			return err
		}
	}
	return nil
}
