package events_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"report-service/core/server"
	"report-service/feature/events"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingRunner struct {
	calls atomic.Int64
	err   error
}

func (r *countingRunner) Run(ctx context.Context, rootID string) (int, error) {
	r.calls.Add(1)
	if r.err != nil {
		return 0, r.err
	}
	return 1, nil
}

func TestSchedulerRunsImmediately(t *testing.T) {
	runner := &countingRunner{}
	s := events.NewScheduler(runner, "root-node", time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return runner.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, int64(1), s.Executions())
}

func TestSchedulerSkipsUnconfiguredRoot(t *testing.T) {
	runner := &countingRunner{}
	s := events.NewScheduler(runner, server.PlaceholderRootID, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	assert.Equal(t, int64(0), runner.calls.Load())
	assert.Equal(t, int64(0), s.Executions())
}

func TestSchedulerSurvivesRunErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("repository down")}
	s := events.NewScheduler(runner, "root-node", 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	// The loop keeps ticking despite every run failing.
	assert.Eventually(t, func() bool {
		return runner.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
