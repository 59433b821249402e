// Package scheduler runs recurring jobs on robfig/cron.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"eventbot/internal/ports/output"
)

var _ output.JobRunner = (*CronRunner)(nil)

// CronRunner registers constant-delay jobs on a single cron instance. A
// panicking job is recovered and logged; it keeps its schedule.
type CronRunner struct {
	cron *cron.Cron
}

func NewCronRunner(logger *slog.Logger) *CronRunner {
	l := cronLogger{logger: logger}
	return &CronRunner{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l)),
		),
	}
}

// Every schedules fn every interval, first firing one interval from now.
// Intervals below one second are rounded up by cron.
func (r *CronRunner) Every(interval time.Duration, fn func()) func() {
	id := r.cron.Schedule(cron.Every(interval), cron.FuncJob(fn))
	return func() { r.cron.Remove(id) }
}

// Start runs the scheduler in its own goroutine.
func (r *CronRunner) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (r *CronRunner) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduler: jobs still running at shutdown")
	}
}

// Len is the number of registered jobs.
func (r *CronRunner) Len() int {
	return len(r.cron.Entries())
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
