package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Runner performs one ingestion cycle.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) RunOnce(ctx context.Context) error { return f(ctx) }

// Scheduler owns the daemon loop: one run immediately, then one per interval.
// Runs are sequential, so a slow run delays the next tick instead of
// overlapping it.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that invokes runner every interval.
func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It runs one immediate cycle, then waits interval after
// each cycle finishes. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	for {
		s.runOnce(ctx)

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("shutting down scheduler")
			return nil
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.runner.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err, "duration", time.Since(start).Round(time.Millisecond).String())
		return
	}
	next := time.Now().Add(s.interval)
	s.logger.Debug("scheduled run complete", "next_run", next.Format(time.RFC3339))
}
