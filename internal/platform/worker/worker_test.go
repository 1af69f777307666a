package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunTicksUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks atomic.Int64

	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, Config{
			Name:       "test",
			Interval:   10 * time.Millisecond,
			RunOnStart: true,
			OnTick:     func(context.Context) { ticks.Add(1) },
		})
	}()

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRunOnStartDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ticks atomic.Int64

	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, Config{
			Name:     "test",
			Interval: time.Hour,
			OnTick:   func(context.Context) { ticks.Add(1) },
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	require.Zero(t, ticks.Load())
}
