package events

import (
	"context"
	"sync/atomic"
	"time"

	"report-service/core/server"

	"go.uber.org/zap"
)

// Runner executes one reconciliation pass.
type Runner interface {
	Run(ctx context.Context, rootID string) (int, error)
}

// Scheduler triggers the reconciliation pass at a fixed interval. An
// unconfigured root id disables the pass but keeps the loop alive, so the
// service still serves the stored log.
type Scheduler struct {
	runner   Runner
	rootID   string
	interval time.Duration
	logger   *zap.Logger

	executions atomic.Int64
}

func NewScheduler(runner Runner, rootID string, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		rootID:   rootID,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the scheduling loop until the context is cancelled. The first
// pass runs immediately, subsequent passes at the configured interval. Run
// errors are logged and the loop keeps going.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Executions returns how many passes the scheduler has triggered.
func (s *Scheduler) Executions() int64 {
	return s.executions.Load()
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.rootID == "" || s.rootID == server.PlaceholderRootID {
		s.logger.Warn("Root node id not configured, skipping scheduled synchronization")
		return
	}

	s.executions.Add(1)
	count, err := s.runner.Run(ctx, s.rootID)
	if err != nil {
		s.logger.Error("Scheduled synchronization failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("Scheduled synchronization saved new events", zap.Int("count", count))
	}
}
