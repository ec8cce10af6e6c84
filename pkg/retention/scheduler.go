package retention

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a cleanup with fixed options on a cron schedule.
type Scheduler struct {
	engine   *Engine
	schedule string
	options  CleanupOptions
	logger   *slog.Logger
	cron     *cron.Cron
	ctx      context.Context
}

// NewScheduler validates schedule, a standard five field cron expression or
// a descriptor such as "@daily".
func NewScheduler(logger *slog.Logger, engine *Engine, schedule string, opts CleanupOptions) (*Scheduler, error) {
	_, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid retention schedule '%s': %w", schedule, err)
	}

	return &Scheduler{
		engine:   engine,
		schedule: schedule,
		options:  opts,
		logger:   logger.With("module", "retention_scheduler"),
	}, nil
}

// Start registers the cleanup job and returns; cleanups run until ctx is
// done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return fmt.Errorf("failed to add retention job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Retention scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the schedule and waits for a running cleanup to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	result, err := s.engine.Cleanup(s.ctx, s.options)
	if err != nil {
		deleted := 0
		if result != nil {
			deleted = result.DeletedCount
		}

		s.logger.Error("Scheduled cleanup failed", "deleted", deleted, "error", err)

		return
	}

	s.logger.Info("Scheduled cleanup finished", "deleted", result.DeletedCount, "freed_bytes", result.FreedBytes)
}
