/*
File: stress_test.go
Description: Tests for the resource-exhaustion workers: growth, limits,
cancellation and cleanup.
*/

package stress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iuu77/MonkeyBrain/pkg/stress"
)

// TestMemoryHogGrowsAndStopsAtLimit tests heap growth up to MaxMB
func TestMemoryHogGrowsAndStopsAtLimit(t *testing.T) {
	hog := &stress.MemoryHog{ChunkMB: 1, MaxMB: 4, Interval: time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := hog.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Run released everything on exit.
	assert.Equal(t, 0, hog.HeldMB())
}

// TestMemoryHogCancellation tests prompt stop on cancel
func TestMemoryHogCancellation(t *testing.T) {
	hog := &stress.MemoryHog{ChunkMB: 1, MaxMB: 64, Interval: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- hog.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("memory hog did not stop after cancellation")
	}
}

// TestFDHogHoldsAndReleases tests descriptor accumulation and cleanup
func TestFDHogHoldsAndReleases(t *testing.T) {
	hog := &stress.FDHog{Max: 16, Dir: t.TempDir()}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := hog.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, hog.Held())
}

// TestThreadHogStops tests that parked threads unwind on cancel
func TestThreadHogStops(t *testing.T) {
	hog := &stress.ThreadHog{Count: 8}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- hog.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("thread hog did not stop after cancellation")
	}
}

// TestCrasherFuse tests the deliberate failure after the fuse elapses
func TestCrasherFuse(t *testing.T) {
	crasher := &stress.Crasher{Fuse: 5 * time.Millisecond}
	err := crasher.Run(context.Background())
	assert.ErrorIs(t, err, stress.ErrDeliberateCrash)
}

// TestCrasherCancelBeatsFuse tests that cancellation wins over the fuse
func TestCrasherCancelBeatsFuse(t *testing.T) {
	crasher := &stress.Crasher{Fuse: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := crasher.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, stress.ErrDeliberateCrash))
}

// TestRunAllPropagatesWorkerError tests error surfacing from RunAll
func TestRunAllPropagatesWorkerError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	workers := []stress.Stresser{
		&stress.Crasher{Fuse: 5 * time.Millisecond},
		&stress.MemoryHog{ChunkMB: 1, MaxMB: 2, Interval: time.Millisecond},
	}
	err := stress.RunAll(ctx, workers, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, stress.ErrDeliberateCrash)
	assert.Contains(t, err.Error(), "crash")
}

// TestRunAllCleanStop tests that cancellation alone yields no error
func TestRunAllCleanStop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	workers := []stress.Stresser{
		&stress.MemoryHog{ChunkMB: 1, MaxMB: 2, Interval: time.Millisecond},
		&stress.ThreadHog{Count: 4},
	}
	assert.NoError(t, stress.RunAll(ctx, workers, nil))
}

// TestDefaultsRegistry tests the built-in worker set
func TestDefaultsRegistry(t *testing.T) {
	set := stress.Defaults(nil)
	assert.Equal(t, []string{"crash", "fd", "memory", "thread"}, stress.Names(set))
	for name, w := range set {
		assert.Equal(t, name, w.Name())
	}
}
