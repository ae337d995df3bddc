package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

// ─── Task State Tests ────────────────────────────────────────────────────────

func TestTaskState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    TaskState
		terminal bool
	}{
		{TaskStaging, false},
		{TaskStarting, false},
		{TaskRunning, false},
		{TaskFinished, true},
		{TaskFailed, true},
		{TaskKilled, true},
		{TaskLost, true},
		{TaskError, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestTaskState_Valid(t *testing.T) {
	for _, s := range []TaskState{TaskStaging, TaskStarting, TaskRunning, TaskFinished, TaskFailed, TaskKilled, TaskLost, TaskError} {
		if !s.Valid() {
			t.Errorf("Valid(%s) = false, want true", s)
		}
	}
	if TaskState("REBOOTING").Valid() {
		t.Error("Valid(REBOOTING) = true, want false")
	}
}

// ─── Health Tests ────────────────────────────────────────────────────────────

func TestHealth_ParseAndString(t *testing.T) {
	tests := []struct {
		in      string
		want    Health
		wantErr bool
	}{
		{"", HealthUnknown, false},
		{"unknown", HealthUnknown, false},
		{"healthy", HealthHealthy, false},
		{"unhealthy", HealthUnhealthy, false},
		{"degraded", HealthUnknown, true},
	}
	for _, tt := range tests {
		got, err := ParseHealth(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHealth(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHealth(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if HealthHealthy.String() != "healthy" || HealthUnhealthy.String() != "unhealthy" || HealthUnknown.String() != "unknown" {
		t.Error("Health.String() wire forms changed")
	}
}

func TestHealth_JSON(t *testing.T) {
	var status TaskStatus
	raw := `{"task_id":"web.0b1d0c3e-5f4a-4c2b-9e8d-7a6f5e4d3c2b","state":"RUNNING","health":"unhealthy"}`
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Health != HealthUnhealthy {
		t.Errorf("Health = %v, want HealthUnhealthy", status.Health)
	}

	out, err := json.Marshal(TaskStatus{State: TaskRunning, Health: HealthHealthy})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `"health":"healthy"`; !strings.Contains(string(out), want) {
		t.Errorf("marshal = %s, want it to contain %s", out, want)
	}
}

func TestHealth_UnmarshalNull(t *testing.T) {
	h := HealthHealthy
	if err := json.Unmarshal([]byte(`null`), &h); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if h != HealthHealthy {
		t.Errorf("null overwrote Health with %v, want HealthHealthy kept", h)
	}

	var status TaskStatus
	if err := json.Unmarshal([]byte(`{"state":"RUNNING","health":null}`), &status); err != nil {
		t.Fatalf("unmarshal status with null health: %v", err)
	}
	if status.Health != HealthUnknown {
		t.Errorf("Health = %v, want HealthUnknown", status.Health)
	}

	if err := json.Unmarshal([]byte(`5`), &h); err == nil {
		t.Error("unmarshal of a number succeeded, want a type error")
	}
}

// ─── Task Tests ──────────────────────────────────────────────────────────────

func TestNewStagedTask(t *testing.T) {
	task := NewStagedTask("/prod/api", "node-7", []int{8080, 8443}, map[string]string{"rack": "r2"}, 1700000000000)

	if app, err := ParseTaskID(task.ID); err != nil || app != "/prod/api" {
		t.Errorf("minted id %q parses to (%q, %v), want /prod/api", task.ID, app, err)
	}
	if task.StagedAt != 1700000000000 {
		t.Errorf("StagedAt = %d, want 1700000000000", task.StagedAt)
	}
	if task.StartedAt != TimeNever {
		t.Errorf("StartedAt = %d, want TimeNever", task.StartedAt)
	}
	if task.Status != nil {
		t.Error("fresh task carries a status report")
	}
}

func TestTask_CloneIsolation(t *testing.T) {
	orig := Task{
		ID:         "web.0b1d0c3e-5f4a-4c2b-9e8d-7a6f5e4d3c2b",
		Host:       "node-1",
		Ports:      []int{80},
		Attributes: map[string]string{"zone": "a"},
		StagedAt:   1,
		Status:     &TaskStatus{State: TaskRunning},
	}
	c := orig.Clone()
	c.Ports[0] = 9999
	c.Attributes["zone"] = "b"
	c.Status.State = TaskFailed

	if orig.Ports[0] != 80 {
		t.Error("clone shares the ports slice")
	}
	if orig.Attributes["zone"] != "a" {
		t.Error("clone shares the attributes map")
	}
	if orig.Status.State != TaskRunning {
		t.Error("clone shares the status pointer")
	}
}
