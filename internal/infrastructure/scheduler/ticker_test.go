package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewTickerScheduler(20*time.Millisecond, time.UTC)
	if err := s.Start(context.Background(), func(time.Time) { runs.Add(1) }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(75 * time.Millisecond)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	got := runs.Load()
	if got < 3 {
		t.Fatalf("expected at least 3 runs, got %d", got)
	}
	time.Sleep(50 * time.Millisecond)
	if runs.Load() != got {
		t.Fatal("job ran after Stop")
	}
}

func TestTickerJobsNeverOverlap(t *testing.T) {
	t.Parallel()

	var inFlight, overlaps atomic.Int32
	s := NewTickerScheduler(5*time.Millisecond, nil)
	_ = s.Start(context.Background(), func(time.Time) {
		if inFlight.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
	})
	time.Sleep(80 * time.Millisecond)
	_ = s.Stop(context.Background())

	if overlaps.Load() != 0 {
		t.Fatalf("jobs overlapped %d times", overlaps.Load())
	}
}

func TestTickerStopWaitsForRunningJob(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var finished atomic.Bool
	s := NewTickerScheduler(time.Hour, time.UTC)
	_ = s.Start(context.Background(), func(time.Time) {
		<-release
		finished.Store(true)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline while job blocks, got %v", err)
	}
	close(release)
	time.Sleep(10 * time.Millisecond)
	if !finished.Load() {
		t.Fatal("job should complete after release")
	}
}

func TestTickerRejectsBadInterval(t *testing.T) {
	t.Parallel()

	if err := NewTickerScheduler(0, nil).Start(context.Background(), func(time.Time) {}); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}
