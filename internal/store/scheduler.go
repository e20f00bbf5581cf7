package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunFunc executes one scheduled task, normally by forwarding it to the
// analysis service as a squad run.
type RunFunc func(ctx context.Context, squad, task string) error

// Scheduler drives enabled cron jobs while the gateway is up. It ticks once
// a minute, stamps last_run/next_run on due jobs, and hands each one to the
// run callback. Run failures are logged and never fatal; the job simply
// fires again at its next interval.
type Scheduler struct {
	store    *Store
	run      RunFunc
	interval time.Duration
	log      *zap.Logger
}

// NewScheduler creates a scheduler with the default one-minute tick.
func NewScheduler(store *Store, run RunFunc, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		store:    store,
		run:      run,
		interval: time.Minute,
		log:      log,
	}
}

// Start launches the scheduler loop. It stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.log.Info("scheduler started", zap.Duration("tick", s.interval))
		for {
			select {
			case <-ctx.Done():
				s.log.Info("scheduler stopped")
				return
			case now := <-ticker.C:
				s.Tick(ctx, now.UTC())
			}
		}
	}()
}

// Tick runs one scheduler pass at the given time.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	for _, job := range s.store.StartDue(now) {
		s.log.Info("executing cron job",
			zap.String("id", job.ID),
			zap.String("name", job.Name),
			zap.String("squad", job.Squad),
		)
		if s.run == nil {
			continue
		}
		if err := s.run(ctx, job.Squad, job.Task); err != nil {
			s.log.Error("cron job failed", zap.String("id", job.ID), zap.Error(err))
		}
	}
}
