package domain

import (
	"encoding/json"
	"fmt"
)

// TaskState is the lifecycle state carried by executor status reports.
type TaskState string

const (
	TaskStaging  TaskState = "STAGING"
	TaskStarting TaskState = "STARTING"
	TaskRunning  TaskState = "RUNNING"
	TaskFinished TaskState = "FINISHED"
	TaskFailed   TaskState = "FAILED"
	TaskKilled   TaskState = "KILLED"
	TaskLost     TaskState = "LOST"
	TaskError    TaskState = "ERROR"
)

// IsTerminal reports whether a task in this state is gone for good.
// Terminal reports expunge the task record instead of updating it.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskFinished, TaskFailed, TaskKilled, TaskLost, TaskError:
		return true
	}
	return false
}

// Valid reports whether s is one of the known lifecycle states.
func (s TaskState) Valid() bool {
	switch s {
	case TaskStaging, TaskStarting, TaskRunning,
		TaskFinished, TaskFailed, TaskKilled, TaskLost, TaskError:
		return true
	}
	return false
}

// Health is the tri-state health verdict attached to status reports.
// Tasks without health checks stay HealthUnknown forever; the first
// probe result flips them healthy or unhealthy, and the flip counts as
// a reportable change even when the lifecycle state stands still.
type Health int

const (
	HealthUnknown Health = iota
	HealthHealthy
	HealthUnhealthy
)

// String returns the wire form used in JSON and CLI output.
func (h Health) String() string {
	switch h {
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// ParseHealth maps the wire form back to a Health. The empty string is
// HealthUnknown: reports that carry no verdict leave the flag unset.
func ParseHealth(s string) (Health, error) {
	switch s {
	case "", "unknown":
		return HealthUnknown, nil
	case "healthy":
		return HealthHealthy, nil
	case "unhealthy":
		return HealthUnhealthy, nil
	}
	return HealthUnknown, fmt.Errorf("%w: health %q", ErrUnknownState, s)
}

// MarshalJSON encodes the wire form.
func (h Health) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.String() + `"`), nil
}

// UnmarshalJSON decodes the wire form. A JSON null leaves the value
// unchanged, per the json.Unmarshaler convention.
func (h *Health) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHealth(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// TimeNever is the sentinel for the task timestamps: zero means the
// event has not happened. It is a plain value, not a null; overdue
// arithmetic treats it literally.
const TimeNever int64 = 0

// TaskStatus is one executor status report, and also the last report
// retained on a task record.
type TaskStatus struct {
	TaskID    string    `json:"task_id"`
	State     TaskState `json:"state"`
	Health    Health    `json:"health"`
	Timestamp int64     `json:"timestamp,omitempty"` // epoch millis of the report
}

// Task is one launched instance of an application.
type Task struct {
	ID         string            `json:"id"`
	Host       string            `json:"host"`
	Ports      []int             `json:"ports,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	StagedAt   int64             `json:"staged_at"`  // epoch millis, TimeNever until launched
	StartedAt  int64             `json:"started_at"` // epoch millis, TimeNever until first RUNNING
	Status     *TaskStatus       `json:"status,omitempty"`
}

// NewStagedTask builds the record for a freshly launched task: a minted
// identifier, the placement the launcher chose, and StagedAt stamped now.
func NewStagedTask(app AppPath, host string, ports []int, attrs map[string]string, nowMillis int64) Task {
	return Task{
		ID:         NewTaskID(app),
		Host:       host,
		Ports:      append([]int(nil), ports...),
		Attributes: cloneAttrs(attrs),
		StagedAt:   nowMillis,
		StartedAt:  TimeNever,
	}
}

// Clone returns a deep copy. Cached records hand out clones so callers
// can never mutate tracker state behind its back.
func (t Task) Clone() Task {
	c := t
	c.Ports = append([]int(nil), t.Ports...)
	c.Attributes = cloneAttrs(t.Attributes)
	if t.Status != nil {
		s := *t.Status
		c.Status = &s
	}
	return c
}

func cloneAttrs(attrs map[string]string) map[string]string {
	if attrs == nil {
		return nil
	}
	c := make(map[string]string, len(attrs))
	for k, v := range attrs {
		c[k] = v
	}
	return c
}
