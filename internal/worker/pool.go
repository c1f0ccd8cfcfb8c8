// Package worker – bounded sync-job execution
//
// The pool decouples job creation from job execution. Services enqueue job
// IDs with Submit and a dispatcher goroutine hands them to the runner, with
// a weighted semaphore capping how many jobs run at once and a per-job
// deadline bounding how long any single run may take.
//
// Submit never blocks: a full queue is reported to the caller, and the job
// row it references stays pending for a later sweep. Stop cancels in-flight
// job contexts and waits for the pool to drain.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Runner executes one queued sync job to completion. It owns all status
// bookkeeping for the job, including converting its own panics into a
// failure; the pool only bounds concurrency and lifetime.
type Runner func(ctx context.Context, jobID string) error

// Pool errors returned by Submit.
var (
	// ErrQueueFull means the submission queue is at capacity.
	ErrQueueFull = errors.New("worker: queue full")
	// ErrStopped means the pool is shutting down and accepts no new work.
	ErrStopped = errors.New("worker: pool stopped")
)

// Pool runs queued jobs through a Runner with bounded concurrency.
type Pool struct {
	runner     Runner
	queue      chan string
	sem        *semaphore.Weighted
	jobTimeout time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewPool starts a pool executing up to workers jobs concurrently, holding
// at most queueSize pending submissions, and cutting each run off after
// jobTimeout. Non-positive arguments fall back to 4 workers, a queue of 64
// and a 10 minute deadline.
func NewPool(workers, queueSize int, jobTimeout time.Duration, runner Runner) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		runner:     runner,
		queue:      make(chan string, queueSize),
		sem:        semaphore.NewWeighted(int64(workers)),
		jobTimeout: jobTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}
	p.wg.Add(1)
	go p.dispatch()
	return p
}

// Submit queues a job ID for execution without blocking.
func (p *Pool) Submit(jobID string) error {
	if p.stopped.Load() {
		return ErrStopped
	}
	select {
	case p.queue <- jobID:
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueDepth reports how many submissions are waiting for a worker.
func (p *Pool) QueueDepth() int {
	return len(p.queue)
}

// Stop rejects further submissions, cancels in-flight job contexts and waits
// up to timeout for everything to drain. Queued-but-unstarted job IDs are
// dropped; their rows stay pending for the next sweep.
func (p *Pool) Stop(timeout time.Duration) error {
	if p.stopped.Swap(true) {
		return nil
	}
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("worker pool drain timed out after %s", timeout)
	}
}

func (p *Pool) dispatch() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case jobID := <-p.queue:
			if err := p.sem.Acquire(p.ctx, 1); err != nil {
				return
			}
			p.wg.Add(1)
			go p.run(jobID)
		}
	}
}

func (p *Pool) run(jobID string) {
	defer p.wg.Done()
	defer p.sem.Release(1)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("job_id", jobID).Interface("panic", r).Msg("sync job panicked past runner recovery")
		}
	}()

	ctx, cancel := context.WithTimeout(p.ctx, p.jobTimeout)
	defer cancel()

	if err := p.runner(ctx, jobID); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("sync job failed")
	}
}
