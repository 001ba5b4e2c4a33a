// Package retention periodically removes old read notifications.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cristianoliveira/appfeed/internal/logging"
)

// Cleaner deletes read notifications older than a number of days.
type Cleaner interface {
	CleanupRead(ctx context.Context, olderThanDays int, dryRun bool) (int64, error)
}

// Job runs a Cleaner on a cron schedule.
type Job struct {
	cleaner  Cleaner
	days     int
	schedule cron.Schedule
	spec     string

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	last    time.Time
	deleted int64
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New creates a job that removes read notifications older than days
// every time spec fires.
func New(cleaner Cleaner, spec string, days int) (*Job, error) {
	if days < 0 {
		return nil, fmt.Errorf("retention: days must be >= 0, got %d", days)
	}
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("retention: invalid schedule %q: %w", spec, err)
	}
	return &Job{cleaner: cleaner, days: days, schedule: schedule, spec: spec}, nil
}

// Next returns the first run time after t.
func (j *Job) Next(t time.Time) time.Time {
	return j.schedule.Next(t)
}

// RunOnce performs one cleanup pass immediately.
func (j *Job) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := j.cleaner.CleanupRead(ctx, j.days, false)
	if err != nil {
		logging.Error("retention cleanup failed", "days", j.days, "error", err)
		return 0, fmt.Errorf("retention: %w", err)
	}

	j.mu.Lock()
	j.last = time.Now()
	j.deleted += deleted
	j.mu.Unlock()

	logging.Info("retention cleanup finished", "days", j.days, "deleted", deleted)
	return deleted, nil
}

// Stats returns the time of the last successful pass and the total number
// of notifications removed so far.
func (j *Job) Stats() (time.Time, int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last, j.deleted
}

// Start schedules the job. Runs stop when ctx is cancelled or Stop is called.
func (j *Job) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return
	}
	j.cron = cron.New(cron.WithParser(parser))
	j.cron.Schedule(j.schedule, cron.FuncJob(func() {
		_, _ = j.RunOnce(ctx)
	}))
	j.cron.Start()
	j.running = true
	logging.Info("retention job scheduled", "schedule", j.spec, "days", j.days, "next", j.schedule.Next(time.Now()))

	go func() {
		<-ctx.Done()
		j.Stop()
	}()
}

// Stop unschedules the job and waits for a running pass to finish.
func (j *Job) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	c := j.cron
	j.running = false
	j.cron = nil
	j.mu.Unlock()

	<-c.Stop().Done()
}
