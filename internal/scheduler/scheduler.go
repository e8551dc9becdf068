package scheduler

import (
	"context"
	"log/slog"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-lookup/internal/store"
)

const defaultInterval = time.Hour

// Scheduler periodically removes preference records that have not been
// updated within maxAge.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     store.Store
	clock     clock.Clock
	logger    *slog.Logger
	interval  time.Duration
	maxAge    time.Duration
}

// New creates a new Scheduler. A non-positive maxAge disables pruning.
func New(st store.Store, interval, maxAge time.Duration, clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     st,
		clock:     clk,
		logger:    logger,
		interval:  interval,
		maxAge:    maxAge,
	}
}

// Start schedules the prune job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.maxAge <= 0 {
		s.logger.Info("scheduler: preference retention disabled; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.PruneOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// PruneOnce runs a single retention pass and returns the number of removed
// records.
func (s *Scheduler) PruneOnce(ctx context.Context) int {
	cutoff := s.clock.Now().Add(-s.maxAge)
	removed, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		s.logger.Error("scheduler: prune failed", "cutoff", cutoff, "error", err)
		return 0
	}
	s.logger.Debug("scheduler: prune completed", "cutoff", cutoff, "removed", removed)
	return removed
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
