package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// waitUntil polls cond until it returns true or the deadline passes.
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

func TestPool_RunsSubmittedJobs(t *testing.T) {
	var mu sync.Mutex
	ran := map[string]bool{}

	p := NewPool(2, 8, time.Second, func(ctx context.Context, jobID string) error {
		mu.Lock()
		ran[jobID] = true
		mu.Unlock()
		return nil
	})
	defer p.Stop(time.Second)

	for _, id := range []string{"a", "b", "c"} {
		if err := p.Submit(id); err != nil {
			t.Fatalf("Submit(%s): %v", id, err)
		}
	}

	waitUntil(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) == 3
	})
	for _, id := range []string{"a", "b", "c"} {
		if !ran[id] {
			t.Errorf("job %s never ran", id)
		}
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	var current, peak, done int64

	p := NewPool(2, 16, time.Second, func(ctx context.Context, jobID string) error {
		n := atomic.AddInt64(&current, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		atomic.AddInt64(&done, 1)
		return nil
	})
	defer p.Stop(time.Second)

	for i := 0; i < 6; i++ {
		if err := p.Submit("job"); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	waitUntil(t, 3*time.Second, func() bool { return atomic.LoadInt64(&done) == 6 })
	if got := atomic.LoadInt64(&peak); got > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", got)
	}
}

func TestPool_Submit_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	p := NewPool(1, 1, 5*time.Second, func(ctx context.Context, jobID string) error {
		started <- struct{}{}
		<-release
		return nil
	})
	defer func() {
		close(release)
		p.Stop(time.Second)
	}()

	// a occupies the single worker.
	if err := p.Submit("a"); err != nil {
		t.Fatalf("Submit(a): %v", err)
	}
	<-started

	// b is taken off the queue by the dispatcher, which then blocks waiting
	// for a worker slot.
	if err := p.Submit("b"); err != nil {
		t.Fatalf("Submit(b): %v", err)
	}
	waitUntil(t, 2*time.Second, func() bool { return p.QueueDepth() == 0 })

	// c fills the queue, d has nowhere to go.
	if err := p.Submit("c"); err != nil {
		t.Fatalf("Submit(c): %v", err)
	}
	if err := p.Submit("d"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit(d) = %v, want ErrQueueFull", err)
	}
}

func TestPool_JobTimeout(t *testing.T) {
	errCh := make(chan error, 1)

	p := NewPool(1, 1, 30*time.Millisecond, func(ctx context.Context, jobID string) error {
		<-ctx.Done()
		errCh <- ctx.Err()
		return ctx.Err()
	})
	defer p.Stop(time.Second)

	if err := p.Submit("slow"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("job context error = %v, want deadline exceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was never cut off by the deadline")
	}
}

func TestPool_SurvivesPanickingRunner(t *testing.T) {
	ranOK := make(chan struct{}, 1)

	p := NewPool(1, 4, time.Second, func(ctx context.Context, jobID string) error {
		if jobID == "boom" {
			panic("runner exploded")
		}
		ranOK <- struct{}{}
		return nil
	})
	defer p.Stop(time.Second)

	if err := p.Submit("boom"); err != nil {
		t.Fatalf("Submit(boom): %v", err)
	}
	if err := p.Submit("ok"); err != nil {
		t.Fatalf("Submit(ok): %v", err)
	}
	select {
	case <-ranOK:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not survive a panicking runner")
	}
}

func TestPool_Stop_CancelsInFlight(t *testing.T) {
	started := make(chan struct{}, 1)
	errCh := make(chan error, 1)

	p := NewPool(1, 1, time.Minute, func(ctx context.Context, jobID string) error {
		started <- struct{}{}
		<-ctx.Done()
		errCh <- ctx.Err()
		return ctx.Err()
	})

	if err := p.Submit("long"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	if err := p.Stop(2 * time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("job context error = %v, want canceled", err)
		}
	default:
		t.Fatal("in-flight job was not canceled before Stop returned")
	}

	if err := p.Submit("late"); !errors.Is(err, ErrStopped) {
		t.Errorf("Submit after Stop = %v, want ErrStopped", err)
	}
	if err := p.Stop(time.Second); err != nil {
		t.Errorf("second Stop = %v, want nil", err)
	}
}

func TestPool_Stop_DrainTimeout(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	p := NewPool(1, 1, time.Minute, func(ctx context.Context, jobID string) error {
		started <- struct{}{}
		<-release // ignores ctx on purpose
		return nil
	})

	if err := p.Submit("stuck"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	if err := p.Stop(30 * time.Millisecond); err == nil {
		t.Error("Stop should report a drain timeout for a job that ignores its context")
	}
	close(release)
}

func TestNewPool_Defaults(t *testing.T) {
	p := NewPool(0, 0, 0, func(ctx context.Context, jobID string) error { return nil })
	defer p.Stop(time.Second)

	if cap(p.queue) != 64 {
		t.Errorf("queue cap = %d, want 64", cap(p.queue))
	}
	if p.jobTimeout != 10*time.Minute {
		t.Errorf("jobTimeout = %v, want 10m", p.jobTimeout)
	}
}
