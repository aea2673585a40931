// Package jobs runs periodic maintenance next to the bot.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron"

	"github.com/multicco/sportbot4-sub000/core/logger"
)

// DefaultSchedule runs the sweep hourly.
const DefaultSchedule = "@every 1h"

// DefaultAbandonAfter is how long a session may stay in progress.
const DefaultAbandonAfter = 12 * time.Hour

// StaleSessions is the storage the sweeper needs.
type StaleSessions interface {
	AbandonStaleSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper abandons sessions left in progress for longer than After.
type Sweeper struct {
	Store StaleSessions
	After time.Duration
	Now   func() time.Time
}

// RunOnce sweeps immediately and returns the number of abandoned sessions.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	if s.Store == nil {
		return 0, errors.New("jobs: sweeper without store")
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	after := s.After
	if after <= 0 {
		after = DefaultAbandonAfter
	}

	start := time.Now()
	cutoff := now().Add(-after)
	n, err := s.Store.AbandonStaleSessions(ctx, cutoff)
	if err != nil {
		logger.Error(ctx, "jobs", "sweep.failed",
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return 0, fmt.Errorf("abandon stale sessions: %w", err)
	}
	logger.Info(ctx, "jobs", "sweep.done",
		slog.Int64("abandoned", n),
		slog.Time("cutoff", cutoff),
		slog.Duration("duration", logger.Took(start)),
	)
	return n, nil
}

// Scheduler owns the cron runner.
type Scheduler struct {
	c    *cron.Cron
	once sync.Once
}

// Start schedules s on spec (robfig/cron syntax, e.g. "@every 30m" or
// "0 0 * * * *") and starts the runner.
func Start(ctx context.Context, spec string, s *Sweeper) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	c := cron.New()
	err := c.AddFunc(spec, func() {
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("jobs: bad schedule %q: %w", spec, err)
	}
	c.Start()
	logger.Info(ctx, "jobs", "scheduler.started", slog.String("schedule", spec))
	return &Scheduler{c: c}, nil
}

// Stop halts the runner. A sweep already running finishes on its own.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}
	s.once.Do(s.c.Stop)
}
