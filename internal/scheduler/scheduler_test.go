package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDriver struct {
	stuckCalls   atomic.Int64
	enqueueCalls atomic.Int64
	purgeCalls   atomic.Int64
	stuckErr     error
	enqueueErr   error
	purgeErr     error
}

func (d *fakeDriver) FailStuckJobs(ctx context.Context) (int, error) {
	d.stuckCalls.Add(1)
	return 1, d.stuckErr
}

func (d *fakeDriver) EnqueueDueSources(ctx context.Context) (int, error) {
	d.enqueueCalls.Add(1)
	return 2, d.enqueueErr
}

func (d *fakeDriver) PurgeExpiredIdempotency(ctx context.Context) (int, error) {
	d.purgeCalls.Add(1)
	return 3, d.purgeErr
}

func waitUntil(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", d)
}

func TestScheduler_SweepsOnInterval(t *testing.T) {
	d := &fakeDriver{}
	s := NewScheduler(d, 20*time.Millisecond)
	s.Start()
	defer s.Stop()

	// One immediate sweep plus at least one ticked sweep.
	waitUntil(t, 2*time.Second, func() bool {
		return d.stuckCalls.Load() >= 2 && d.enqueueCalls.Load() >= 2 && d.purgeCalls.Load() >= 2
	})
}

func TestScheduler_ErrorsDoNotStopLoop(t *testing.T) {
	d := &fakeDriver{
		stuckErr:   errors.New("db closed"),
		enqueueErr: errors.New("db closed"),
		purgeErr:   errors.New("db closed"),
	}
	s := NewScheduler(d, 15*time.Millisecond)
	s.Start()
	defer s.Stop()

	waitUntil(t, 2*time.Second, func() bool { return d.enqueueCalls.Load() >= 3 })
}

func TestScheduler_StopHaltsSweeps(t *testing.T) {
	d := &fakeDriver{}
	s := NewScheduler(d, 10*time.Millisecond)
	s.Start()

	waitUntil(t, 2*time.Second, func() bool { return d.enqueueCalls.Load() >= 2 })
	s.Stop()

	after := d.enqueueCalls.Load()
	time.Sleep(50 * time.Millisecond)
	if got := d.enqueueCalls.Load(); got != after {
		t.Errorf("sweeps after Stop: %d -> %d, want no change", after, got)
	}
}

func TestScheduler_StopIsIdempotentAndSafeBeforeStart(t *testing.T) {
	s := NewScheduler(&fakeDriver{}, time.Hour)
	s.Stop() // never started
	s.Stop()

	s2 := NewScheduler(&fakeDriver{}, time.Hour)
	s2.Start()
	s2.Stop()
	s2.Stop()
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&fakeDriver{}, 0)
	if s.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", s.interval)
	}
}
