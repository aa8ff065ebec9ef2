package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/usecase"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	mu       sync.Mutex
	calls    int
	inFlight int32
	overlap  atomic.Bool
	err      error
	onCall   func(n int)
}

func (r *countingRunner) RunCycle(context.Context) (usecase.CycleResult, error) {
	if atomic.AddInt32(&r.inFlight, 1) > 1 {
		r.overlap.Store(true)
	}
	defer atomic.AddInt32(&r.inFlight, -1)

	r.mu.Lock()
	r.calls++
	n := r.calls
	r.mu.Unlock()
	if r.onCall != nil {
		r.onCall(n)
	}
	time.Sleep(5 * time.Millisecond)
	return usecase.CycleResult{Stored: 1}, r.err
}

func TestRunOnce_PropagatesAbort(t *testing.T) {
	runner := &countingRunner{err: errors.New("cloud fetch failed")}

	err := RunOnce(context.Background(), runner, logging.NewNop())
	require.EqualError(t, err, "cloud fetch failed")
	require.Equal(t, 1, runner.calls)
}

func TestRunLoop_RunsUntilCancelledWithoutOverlap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &countingRunner{onCall: func(n int) {
		if n == 3 {
			cancel()
		}
	}}

	done := make(chan struct{})
	go func() {
		RunLoop(ctx, runner, time.Millisecond, logging.NewNop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	require.Equal(t, 3, runner.calls)
	require.False(t, runner.overlap.Load())
}

func TestRunLoop_KeepsGoingAfterAbortedCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &countingRunner{err: errors.New("roster read failed"), onCall: func(n int) {
		if n == 2 {
			cancel()
		}
	}}

	RunLoop(ctx, runner, time.Millisecond, logging.NewNop())
	require.Equal(t, 2, runner.calls)
}
