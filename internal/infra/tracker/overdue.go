package tracker

import (
	"sort"
	"time"

	"github.com/berth-cluster/berth/internal/domain"
)

// OverdueTasks returns every cached task that was handed to the cluster
// but never confirmed running inside the launch window: StartedAt still
// zero and StagedAt strictly more than LaunchTimeout before now.
//
// The zero StagedAt sentinel takes part in the arithmetic like any other
// value, so a record that never recorded staging counts as overdue as
// soon as now itself exceeds the window. Status reports play no part;
// the two timestamps alone decide. Results come back in identifier order.
func (t *Tracker) OverdueTasks(now time.Time) []domain.Task {
	deadline := now.UnixMilli() - t.cfg.LaunchTimeout.Milliseconds()

	var overdue []domain.Task
	for _, e := range t.snapshot() {
		e.mu.Lock()
		for _, task := range e.tasks {
			if task.StartedAt == domain.TimeNever && task.StagedAt < deadline {
				overdue = append(overdue, task.Clone())
			}
		}
		e.mu.Unlock()
	}
	sort.Slice(overdue, func(i, j int) bool { return overdue[i].ID < overdue[j].ID })
	return overdue
}
