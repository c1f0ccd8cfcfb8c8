// Package scheduler – periodic sync driver
//
// The scheduler owns the background cadence of the sync subsystem. On a
// fixed interval it asks the driver to fail jobs that have been running
// suspiciously long and to enqueue scheduled jobs for every source whose
// last successful sync is older than its refresh window. Sweep errors are
// logged and the loop keeps ticking; one bad pass never stops the driver.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// SyncDriver is the slice of the sync service the scheduler needs.
type SyncDriver interface {
	// FailStuckJobs marks jobs that exceeded their running deadline as failed
	// and reports how many were swept.
	FailStuckJobs(ctx context.Context) (int, error)
	// EnqueueDueSources creates and submits scheduled jobs for sources due a
	// refresh, reporting how many were enqueued.
	EnqueueDueSources(ctx context.Context) (int, error)
	// PurgeExpiredIdempotency reclaims replay records past their TTL,
	// reporting how many rows were dropped.
	PurgeExpiredIdempotency(ctx context.Context) (int, error)
}

// Scheduler runs the driver on a fixed interval until stopped.
type Scheduler struct {
	driver   SyncDriver
	interval time.Duration

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// NewScheduler builds a scheduler ticking every interval. Non-positive
// intervals fall back to 5 minutes.
func NewScheduler(driver SyncDriver, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		driver:   driver,
		interval: interval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. The first sweep runs immediately.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.loop()
	})
}

// Stop halts the loop and waits for any sweep in progress to finish. Safe to
// call more than once and before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	if s.started.Load() {
		<-s.done
	}
}

func (s *Scheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()
	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep runs one pass. Each pass gets at most one interval of wall time so a
// slow database can never back passes up behind each other.
func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if n, err := s.driver.FailStuckJobs(ctx); err != nil {
		log.Error().Err(err).Msg("stuck job sweep failed")
	} else if n > 0 {
		log.Warn().Int("jobs", n).Msg("marked stuck sync jobs as failed")
	}

	if n, err := s.driver.EnqueueDueSources(ctx); err != nil {
		log.Error().Err(err).Msg("scheduled sync sweep failed")
	} else if n > 0 {
		log.Info().Int("sources", n).Msg("enqueued scheduled sync jobs")
	}

	if n, err := s.driver.PurgeExpiredIdempotency(ctx); err != nil {
		log.Error().Err(err).Msg("idempotency purge failed")
	} else if n > 0 {
		log.Debug().Int("records", n).Msg("purged expired idempotency records")
	}
}
