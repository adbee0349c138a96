package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanroute/vanroute-api/pkg/logger"
)

func TestEnqueueRunsJobOnPool(t *testing.T) {
	logger.Setup("test")
	w := NewWorker(2)
	defer w.Shutdown()

	done := make(chan struct{})
	w.Enqueue(func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job was never processed")
	}

	require.Eventually(t, func() bool {
		return w.GetStats().FinishedJobs == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEnqueueRunsSynchronouslyWhenQueueFull(t *testing.T) {
	logger.Setup("test")
	w := NewWorker(1)

	started := make(chan struct{})
	release := make(chan struct{})
	w.Enqueue(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	// The single processor is blocked, so these fill the buffer exactly
	for i := 0; i < cap(w.queue); i++ {
		w.Enqueue(func(ctx context.Context) error { return nil })
	}

	var ran atomic.Bool
	w.Enqueue(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	assert.True(t, ran.Load(), "overflow job must run in the caller")

	close(release)
	w.Shutdown()
}

func TestEnqueueAsyncCountsFailures(t *testing.T) {
	logger.Setup("test")
	w := NewWorker(1)
	defer w.Shutdown()

	w.EnqueueAsync(func(ctx context.Context) error {
		return errors.New("gateway indisponível")
	})

	require.Eventually(t, func() bool {
		stats := w.GetStats()
		return stats.FinishedJobs == 1 && stats.FailedJobs == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleEveryImmediateRunsAtStartup(t *testing.T) {
	logger.Setup("test")
	w := NewWorker(1)
	defer w.Shutdown()

	ran := make(chan struct{})
	w.ScheduleEveryImmediate(time.Hour, func(ctx context.Context) error {
		close(ran)
		return nil
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job did not run at startup")
	}
}
