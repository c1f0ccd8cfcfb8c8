// Package services – SyncService
//
// This file implements the sync orchestrator: it decides whether a sync may
// start (cooldown, single-active-job rule, idempotent retries), hands
// accepted jobs to the worker queue, and executes them against the platform
// providers. Execution is page-at-a-time with incremental progress counters,
// so pollers watching a job see it advance while it runs.
//
// Job rows double as the concurrency control: at most one PENDING or
// IN_PROGRESS job exists per source, and every status transition is guarded
// at the SQL level, so a worker racing a stuck-job sweep cannot resurrect a
// job the sweep already failed.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/observability"
	"github.com/tbourn/go-review-backend/internal/provider"
	"github.com/tbourn/go-review-backend/internal/repo"
)

// JobQueue hands accepted jobs to the background execution layer. The worker
// pool implements it; tests substitute fakes.
type JobQueue interface {
	// Submit enqueues a job for execution without blocking. It returns an
	// error when the queue is full or shutting down.
	Submit(jobID string) error
}

// BrandSyncResult is the per-source outcome of a brand-wide sync trigger.
// One brand request fans out to every source, and each source accepts or
// refuses independently.
type BrandSyncResult struct {
	SourceID          string `json:"source_id"`
	JobID             string `json:"job_id,omitempty"`
	Status            string `json:"status"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// Per-source outcomes reported by TriggerBrand.
const (
	BrandSyncQueued      = "queued"
	BrandSyncRateLimited = "rate_limited"
	BrandSyncInProgress  = "sync_in_progress"
	BrandSyncInactive    = "inactive"
	BrandSyncError       = "error"
)

// SyncService orchestrates review synchronization jobs end to end: admission
// control on the trigger side, paged fetch-and-import on the execution side.
type SyncService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Providers resolves a source's platform to its fetch client.
	Providers *provider.Registry

	// Importer persists fetched reviews with create/update/skip semantics.
	Importer *ImportService

	// Invalidator refreshes the derived layers after an import touched raw
	// rows.
	Invalidator *Invalidator

	// Queue hands accepted jobs to the worker pool. Wired after
	// construction because the pool's runner is ExecuteJob on this service.
	Queue JobQueue

	// ManualCooldown is the per-source spacing between counting manual
	// syncs. Failed manual runs do not count.
	ManualCooldown time.Duration

	// ScheduledEvery is how far a completed (or failed) sync pushes the
	// source's next scheduled run.
	ScheduledEvery time.Duration

	// InitialBackfill bounds how far back the first sync of a source
	// reaches when it has never synced before.
	InitialBackfill time.Duration

	// PageSize and MaxPages bound one job's provider traffic.
	PageSize int
	MaxPages int

	// StuckAfter is how long a job may stay IN_PROGRESS before the sweep
	// declares it dead.
	StuckAfter time.Duration

	// IdempotencyTTL is how long a manual trigger's idempotency key replays
	// the original job instead of creating a new one.
	IdempotencyTTL time.Duration
}

// NewSyncService constructs a SyncService with production defaults: 24h
// manual cooldown and scheduling interval, 90-day initial backfill, 50
// reviews per page over at most 20 pages, and a 30-minute stuck threshold.
func NewSyncService(db *gorm.DB, providers *provider.Registry, importer *ImportService, inv *Invalidator) *SyncService {
	return &SyncService{
		DB:              db,
		Providers:       providers,
		Importer:        importer,
		Invalidator:     inv,
		ManualCooldown:  24 * time.Hour,
		ScheduledEvery:  24 * time.Hour,
		InitialBackfill: 90 * 24 * time.Hour,
		PageSize:        50,
		MaxPages:        20,
		StuckAfter:      30 * time.Minute,
		IdempotencyTTL:  24 * time.Hour,
	}
}

// TriggerManual admits a user-requested sync of one source. The returned
// bool reports an idempotent replay: true means idemKey matched a previous
// trigger and the original job is returned without any new side effects.
//
// Admission checks run in order: idempotency replay, source exists and is
// active, manual cooldown (failed runs excluded), single active job. A
// cooldown rejection carries the remaining wait as a *RateLimitError.
func (s *SyncService) TriggerManual(ctx context.Context, userID, sourceID, idemKey string) (*domain.SyncJob, bool, error) {
	tr := otel.Tracer("services/sync")
	ctx, span := tr.Start(ctx, "TriggerManual", trace.WithAttributes(
		attribute.String("source.id", sourceID),
	))
	defer span.End()

	now := time.Now().UTC()

	if idemKey != "" {
		job, ok, err := s.replay(ctx, userID, sourceID, idemKey, now)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return job, true, nil
		}
	}

	src, err := repo.GetSource(ctx, s.DB, sourceID)
	if err != nil {
		if isNotFound(err) {
			return nil, false, ErrSourceNotFound
		}
		return nil, false, err
	}
	if !src.Active {
		return nil, false, ErrSourceInactive
	}

	last, err := repo.LastManualJob(ctx, s.DB, src.ID)
	if err == nil {
		retryAt := last.CreatedAt.Add(s.ManualCooldown)
		if now.Before(retryAt) {
			return nil, false, &RateLimitError{RetryAfter: retryAt.Sub(now)}
		}
	} else if !isNotFound(err) {
		return nil, false, err
	}

	if _, err := repo.GetActiveJob(ctx, s.DB, src.ID); err == nil {
		return nil, false, ErrSyncInProgress
	} else if !isNotFound(err) {
		return nil, false, err
	}

	var job *domain.SyncJob
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		j, err := repo.CreateSyncJob(ctx, tx, src.ID, domain.JobTypeManual)
		if err != nil {
			return err
		}
		if idemKey != "" {
			if _, err := repo.CreateIdempotency(ctx, tx, userID, src.ID, idemKey, j.ID, http.StatusAccepted, s.IdempotencyTTL); err != nil {
				return err
			}
		}
		job = j
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// Lost a same-key race; the winner's job is the canonical answer.
		job, ok, rerr := s.replay(ctx, userID, sourceID, idemKey, now)
		if rerr == nil && ok {
			return job, true, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	if err := s.submit(ctx, job); err != nil {
		return nil, false, err
	}
	log.Info().
		Str("job_id", job.ID).
		Str("source_id", src.ID).
		Str("user_id", userID).
		Msg("manual sync queued")
	return job, false, nil
}

// replay resolves an idempotency key to its original job. The bool reports
// whether a usable record was found; a record pointing at a purged job falls
// through to normal trigger handling.
func (s *SyncService) replay(ctx context.Context, userID, sourceID, idemKey string, now time.Time) (*domain.SyncJob, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, sourceID, idemKey, now)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	job, err := repo.GetSyncJob(ctx, s.DB, rec.JobID)
	if err != nil {
		if isNotFound(err) {
			log.Warn().
				Str("job_id", rec.JobID).
				Str("source_id", sourceID).
				Msg("idempotency record points at missing job")
			return nil, false, nil
		}
		return nil, false, err
	}
	return job, true, nil
}

// TriggerInitial starts the backfill job of a freshly created source. No
// cooldown applies; the single-active-job rule still does.
func (s *SyncService) TriggerInitial(ctx context.Context, src *domain.ReviewSource) (*domain.SyncJob, error) {
	return s.launch(ctx, src, domain.JobTypeInitial)
}

// TriggerBrand fans a manual sync out to every source of the brand. Each
// source accepts or refuses on its own (cooldown, busy, inactive); the
// caller gets the full outcome list rather than an all-or-nothing error.
func (s *SyncService) TriggerBrand(ctx context.Context, userID, brandID string) ([]BrandSyncResult, error) {
	tr := otel.Tracer("services/sync")
	ctx, span := tr.Start(ctx, "TriggerBrand", trace.WithAttributes(
		attribute.String("brand.id", brandID),
	))
	defer span.End()

	srcs, err := repo.ListSources(ctx, s.DB, brandID)
	if err != nil {
		return nil, err
	}

	results := make([]BrandSyncResult, 0, len(srcs))
	for i := range srcs {
		src := &srcs[i]
		res := BrandSyncResult{SourceID: src.ID}
		job, _, err := s.TriggerManual(ctx, userID, src.ID, "")
		var rl *RateLimitError
		switch {
		case err == nil:
			res.Status = BrandSyncQueued
			res.JobID = job.ID
		case errors.As(err, &rl):
			res.Status = BrandSyncRateLimited
			res.RetryAfterSeconds = int((rl.RetryAfter + time.Second - 1) / time.Second)
		case errors.Is(err, ErrSyncInProgress):
			res.Status = BrandSyncInProgress
		case errors.Is(err, ErrSourceInactive):
			res.Status = BrandSyncInactive
		default:
			log.Warn().
				Err(err).
				Str("source_id", src.ID).
				Str("brand_id", brandID).
				Msg("brand sync trigger failed for source")
			res.Status = BrandSyncError
		}
		results = append(results, res)
	}
	return results, nil
}

// launch creates and enqueues a job of the given type, enforcing only the
// single-active-job rule. Used by the initial and scheduled paths, which
// have no cooldown.
func (s *SyncService) launch(ctx context.Context, src *domain.ReviewSource, jobType domain.JobType) (*domain.SyncJob, error) {
	if _, err := repo.GetActiveJob(ctx, s.DB, src.ID); err == nil {
		return nil, ErrSyncInProgress
	} else if !isNotFound(err) {
		return nil, err
	}
	job, err := repo.CreateSyncJob(ctx, s.DB, src.ID, jobType)
	if err != nil {
		return nil, err
	}
	if err := s.submit(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// submit hands the job to the worker queue. A rejected submission fails the
// job immediately so it does not occupy the source's active slot forever.
func (s *SyncService) submit(ctx context.Context, job *domain.SyncJob) error {
	if err := s.Queue.Submit(job.ID); err != nil {
		now := time.Now().UTC()
		if ferr := repo.MarkJobFailed(ctx, s.DB, job.ID, "worker queue rejected job: "+err.Error(), now); ferr != nil && !isNotFound(ferr) {
			log.Error().
				Err(ferr).
				Str("job_id", job.ID).
				Msg("failed to mark unqueued job as failed")
		}
		job.Status = domain.JobStatusFailed
		return fmt.Errorf("enqueue sync job %s: %w", job.ID, err)
	}
	return nil
}

// ExecuteJob runs one queued job to completion. It is the worker pool's
// runner and owns all job status bookkeeping, including converting its own
// panics into a FAILED transition.
//
// The fetch window starts at the source's last successful sync, or
// InitialBackfill ago for a first sync. Pages import as they arrive:
// progress counters update per page, and the aggregate days touched so far
// are rebuilt even when a later page fails, so committed rows are never left
// behind stale derived data.
func (s *SyncService) ExecuteJob(ctx context.Context, jobID string) (err error) {
	tr := otel.Tracer("services/sync")
	ctx, span := tr.Start(ctx, "ExecuteJob", trace.WithAttributes(
		attribute.String("job.id", jobID),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("job_id", jobID).
				Msg("sync job panicked")
			bg := context.WithoutCancel(ctx)
			if ferr := repo.MarkJobFailed(bg, s.DB, jobID, fmt.Sprintf("panic: %v", r), time.Now().UTC()); ferr == nil {
				observability.JobFinished("failed")
			} else if !isNotFound(ferr) {
				log.Error().
					Err(ferr).
					Str("job_id", jobID).
					Msg("failed to mark panicked job as failed")
			}
			err = fmt.Errorf("sync job %s panicked: %v", jobID, r)
		}
	}()

	job, err := repo.GetSyncJob(ctx, s.DB, jobID)
	if err != nil {
		if isNotFound(err) {
			log.Warn().Str("job_id", jobID).Msg("queued sync job no longer exists")
			return nil
		}
		return err
	}
	if job.Status != domain.JobStatusPending {
		// Already executed, or the stuck sweep got to it first.
		return nil
	}

	src, err := repo.GetSource(ctx, s.DB, job.SourceID)
	if err != nil {
		if isNotFound(err) {
			return s.failJob(ctx, job, nil, nil, errors.New("source deleted before sync started"))
		}
		return err
	}
	if !src.Active {
		return s.failJob(ctx, job, src, nil, errors.New("source deactivated before sync started"))
	}
	client, err := s.Providers.Client(src.Platform)
	if err != nil {
		return s.failJob(ctx, job, src, nil, err)
	}

	now := time.Now().UTC()
	if err := repo.MarkJobStarted(ctx, s.DB, job.ID, now); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	since := now.Add(-s.InitialBackfill)
	if src.LastSyncedAt != nil {
		since = *src.LastSyncedAt
	}

	touched := make(map[string]struct{})
	cursor := ""
	for page := 0; page < s.MaxPages; page++ {
		pg, ferr := client.FetchPage(ctx, src, since, cursor, s.PageSize)
		if ferr != nil {
			return s.failJob(ctx, job, src, dayList(touched), fmt.Errorf("fetch page %d: %w", page+1, ferr))
		}
		if len(pg.Reviews) > 0 {
			counts, days, ierr := s.Importer.ImportBatch(ctx, src.ID, pg.Reviews)
			observability.ReviewsImported(string(src.Platform), counts.New, counts.Updated)
			if perr := repo.AddJobProgress(ctx, s.DB, job.ID, counts.Fetched, counts.New, counts.Updated); perr != nil && !isNotFound(perr) {
				log.Warn().
					Err(perr).
					Str("job_id", job.ID).
					Msg("failed to record sync progress")
			}
			for _, d := range days {
				touched[d] = struct{}{}
			}
			if ierr != nil {
				return s.failJob(ctx, job, src, dayList(touched), fmt.Errorf("import batch: %w", ierr))
			}
		}
		if pg.NextCursor == "" {
			break
		}
		cursor = pg.NextCursor
	}

	days := dayList(touched)
	if len(days) > 0 {
		if ierr := s.Invalidator.ReviewsImported(ctx, src, days); ierr != nil {
			return s.failJob(ctx, job, src, nil,
				fmt.Errorf("%w: %v", ErrAggregateRebuild, ierr))
		}
	}

	done := time.Now().UTC()
	if err := repo.MarkJobCompleted(ctx, s.DB, job.ID, done); err != nil {
		if isNotFound(err) {
			// The stuck sweep failed the job while it was finishing. Its
			// verdict stands; the imported rows and rebuilt aggregates stay.
			log.Warn().Str("job_id", job.ID).Msg("sync job was failed externally before completion")
			return nil
		}
		return err
	}
	observability.JobFinished("completed")
	if err := repo.UpdateSourceSyncState(ctx, s.DB, src.ID, done, domain.JobStatusCompleted, nil, done.Add(s.ScheduledEvery)); err != nil {
		log.Error().
			Err(err).
			Str("source_id", src.ID).
			Msg("failed to record source sync outcome")
	}
	log.Info().
		Str("job_id", job.ID).
		Str("source_id", src.ID).
		Strs("days", days).
		Msg("sync job completed")
	return nil
}

// failJob records a terminal failure: the job transitions to FAILED, the
// source's denormalized sync state advances, and any aggregate days already
// touched by committed pages are rebuilt. Bookkeeping runs on a
// cancellation-free context so a job killed by its deadline still lands in
// FAILED instead of waiting for the stuck sweep.
func (s *SyncService) failJob(ctx context.Context, job *domain.SyncJob, src *domain.ReviewSource, days []string, cause error) error {
	bg := context.WithoutCancel(ctx)
	now := time.Now().UTC()
	msg := cause.Error()

	if err := repo.MarkJobFailed(bg, s.DB, job.ID, msg, now); err == nil {
		observability.JobFinished("failed")
	} else if !isNotFound(err) {
		log.Error().
			Err(err).
			Str("job_id", job.ID).
			Msg("failed to mark sync job as failed")
	}
	if src != nil {
		serr := msg
		if err := repo.UpdateSourceSyncState(bg, s.DB, src.ID, now, domain.JobStatusFailed, &serr, now.Add(s.ScheduledEvery)); err != nil {
			log.Error().
				Err(err).
				Str("source_id", src.ID).
				Msg("failed to record source sync outcome")
		}
		if len(days) > 0 {
			if ierr := s.Invalidator.ReviewsImported(bg, src, days); ierr != nil {
				log.Error().
					Err(ierr).
					Str("source_id", src.ID).
					Msg("aggregate rebuild after failed sync also failed")
			}
		}
	}
	return cause
}

// JobStatus returns one job by ID for status polling.
func (s *SyncService) JobStatus(ctx context.Context, jobID string) (*domain.SyncJob, error) {
	job, err := repo.GetSyncJob(ctx, s.DB, jobID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListSourceJobs returns one page of a source's job history, newest first,
// together with the total count for pagination metadata.
func (s *SyncService) ListSourceJobs(ctx context.Context, sourceID string, page, pageSize int) ([]domain.SyncJob, int64, error) {
	if _, err := repo.GetSource(ctx, s.DB, sourceID); err != nil {
		if isNotFound(err) {
			return nil, 0, ErrSourceNotFound
		}
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	total, err := repo.CountSourceJobs(ctx, s.DB, sourceID)
	if err != nil {
		return nil, 0, err
	}
	jobs, err := repo.ListSourceJobsPage(ctx, s.DB, sourceID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListStuck returns jobs that have been IN_PROGRESS longer than StuckAfter,
// oldest first. Read-only; FailStuckJobs is the corrective action.
func (s *SyncService) ListStuck(ctx context.Context) ([]domain.SyncJob, error) {
	cutoff := time.Now().UTC().Add(-s.StuckAfter)
	return repo.ListStuckJobs(ctx, s.DB, cutoff)
}

// FailStuckJobs fails every job that exceeded its execution deadline,
// freeing the source's active slot. A job that races to completion while
// the sweep runs is skipped; its guarded transition already won. Returns
// how many jobs were failed.
func (s *SyncService) FailStuckJobs(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	jobs, err := repo.ListStuckJobs(ctx, s.DB, now.Add(-s.StuckAfter))
	if err != nil {
		return 0, err
	}

	failed := 0
	var firstErr error
	for i := range jobs {
		job := &jobs[i]
		err := repo.MarkJobFailed(ctx, s.DB, job.ID, "sync job exceeded execution deadline", now)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		failed++
		observability.JobFinished("stuck")
		serr := "sync job exceeded execution deadline"
		if uerr := repo.UpdateSourceSyncState(ctx, s.DB, job.SourceID, now, domain.JobStatusFailed, &serr, now.Add(s.ScheduledEvery)); uerr != nil {
			log.Error().
				Err(uerr).
				Str("source_id", job.SourceID).
				Msg("failed to record source sync outcome")
		}
		log.Warn().
			Str("job_id", job.ID).
			Str("source_id", job.SourceID).
			Time("started_at", *job.StartedAt).
			Msg("stuck sync job failed by sweep")
	}
	return failed, firstErr
}

// EnqueueDueSources creates and enqueues a scheduled job for every active
// source whose next sync time has arrived. Sources with an active job are
// skipped; they will be due again once it finishes. Returns how many jobs
// were enqueued.
func (s *SyncService) EnqueueDueSources(ctx context.Context) (int, error) {
	srcs, err := repo.ListDueSources(ctx, s.DB, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for i := range srcs {
		src := &srcs[i]
		job, err := s.launch(ctx, src, domain.JobTypeScheduled)
		if errors.Is(err, ErrSyncInProgress) {
			continue
		}
		if err != nil {
			log.Warn().
				Err(err).
				Str("source_id", src.ID).
				Msg("failed to enqueue scheduled sync")
			continue
		}
		enqueued++
		log.Info().
			Str("job_id", job.ID).
			Str("source_id", src.ID).
			Msg("scheduled sync queued")
	}
	return enqueued, nil
}

// PurgeExpiredIdempotency drops idempotency records whose TTL window has
// closed. They stop answering replays the moment they expire; this sweep
// only reclaims the rows.
func (s *SyncService) PurgeExpiredIdempotency(ctx context.Context) (int, error) {
	n, err := repo.PurgeIdempotency(ctx, s.DB, time.Now().UTC())
	return int(n), err
}
