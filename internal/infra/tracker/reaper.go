package tracker

import (
	"context"
	"log"
	"time"

	"github.com/berth-cluster/berth/internal/domain"
	"github.com/berth-cluster/berth/internal/infra/metrics"
)

// Reaper periodically expunges tasks that missed their launch window.
// It only forgets tracker state; telling the execution layer to kill
// anything is the scheduler's business, not ours.
type Reaper struct {
	tracker  *Tracker
	interval time.Duration
	now      func() time.Time // injectable for tests
}

// NewReaper creates a reaper sweeping once per interval.
func NewReaper(tr *Tracker, interval time.Duration) *Reaper {
	return &Reaper{tracker: tr, interval: interval, now: time.Now}
}

// Run blocks until ctx is done, sweeping once per interval.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep expunges every currently overdue task and returns how many went.
// One failed expunge never stops the rest of the sweep.
func (r *Reaper) Sweep(ctx context.Context) int {
	reaped := 0
	for _, task := range r.tracker.OverdueTasks(r.now()) {
		app, err := domain.ParseTaskID(task.ID)
		if err != nil {
			continue
		}
		if err := r.tracker.Terminated(ctx, app, task.ID); err != nil {
			log.Printf("[reaper] expunge %s: %v", task.ID, err)
			continue
		}
		metrics.OverdueReaped.Inc()
		log.Printf("[reaper] expunged overdue task %s of %s (staged at %d)", task.ID, app, task.StagedAt)
		reaped++
	}
	return reaped
}
