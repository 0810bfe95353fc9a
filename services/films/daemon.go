package films

import (
	"animfilms-backend/internal/chrono"
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultInterval = 24 * time.Hour

// Status is what the daemon knows about the last finished refresh.
type Status struct {
	Outcome    RefreshOutcome `json:"outcome"`
	Err        string         `json:"error,omitempty"`
	FinishedAt time.Time      `json:"finishedAt"`
	// Runs is the amount of refreshes that finished since the daemon started.
	Runs int `json:"runs"`
}

// Daemon runs a Job once immediately and then on every interval.
type Daemon struct {
	job      Job
	interval time.Duration
	cron     chrono.IntervalAPI

	lock   sync.RWMutex
	status Status
	done   chan struct{}
}

func NewDaemon(job Job, cron chrono.IntervalAPI, interval time.Duration) *Daemon {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Daemon{
		job:      job,
		interval: interval,
		cron:     cron,
		done:     make(chan struct{}, 1),
	}
}

func (d *Daemon) run(ctx context.Context) {
	outcome, err := d.job.Run(ctx)
	if err != nil {
		slog.WarnContext(ctx, "refresh aborted", "err", err)
	} else {
		slog.InfoContext(ctx, "refresh finished", "summary", outcome.Summary(), "took", outcome.Duration)
	}

	d.lock.Lock()
	d.status.Outcome = outcome
	d.status.Err = ""
	if err != nil {
		d.status.Err = err.Error()
	}
	d.status.FinishedAt = time.Now()
	d.status.Runs++
	d.lock.Unlock()

	select {
	case d.done <- struct{}{}:
	default:
	}
}

// Start schedules the refresh, runs are detached from the cancellation of
// ctx so a cycle in progress is never cut off halfway through its writes.
func (d *Daemon) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "start daemon", "task", "refresh films", "every", d.interval)

	runCtx := context.WithoutCancel(ctx)
	return d.cron.Every(d.interval, func() {
		d.run(runCtx)
	})
}

// Stop stops scheduling refreshes and waits for the running one to finish.
func (d *Daemon) Stop() {
	d.cron.Stop()
}

// LastStatus returns the status of the last finished refresh, ok is false
// if no refresh has finished yet.
func (d *Daemon) LastStatus() (status Status, ok bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.status, d.status.Runs > 0
}

// Finished receives a value whenever a refresh finishes and nobody was
// waiting on the previous one.
func (d *Daemon) Finished() <-chan struct{} {
	return d.done
}
