// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the SyncJob
// model.
//
// Lifecycle writes enforce the one-directional status machine at the SQL
// level: every transition update carries a WHERE clause on the expected
// current status, so a job can never move backwards (or out of a terminal
// state) even if two workers race on it. A transition that matches no row
// returns ErrNotFound, which callers treat as "job missing or already past
// that state".
//
// Functions:
//
//   - CreateSyncJob(ctx, db, sourceID, jobType) -> *domain.SyncJob, error
//     Inserts a new PENDING job for the source.
//
//   - GetSyncJob(ctx, db, id) -> *domain.SyncJob, error
//     Fetches one job, or ErrNotFound.
//
//   - GetActiveJob(ctx, db, sourceID) -> *domain.SyncJob, error
//     Returns the single pending/in-progress job of a source, if any.
//
//   - LastManualJob(ctx, db, sourceID) -> *domain.SyncJob, error
//     Returns the newest manual job that counts against the cooldown.
//
//   - MarkJobStarted / MarkJobCompleted / MarkJobFailed
//     Guarded status transitions with timestamps and error capture.
//
//   - AddJobProgress(ctx, db, id, fetched, created, updated) -> error
//     Increments the progress counters of a running job.
//
//   - CountSourceJobs / ListSourceJobsPage
//     Pagination pair for per-source job history.
//
//   - ListStuckJobs(ctx, db, startedBefore) -> []domain.SyncJob, error
//     Operator query for jobs running longer than expected.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// CreateSyncJob inserts a new job in PENDING state for the given source and
// type. The job ID is a randomly generated UUID, and CreatedAt is set to UTC.
// The single-active-job rule is enforced by the orchestrator before calling
// this, and re-checked by the worker's guarded start transition.
func CreateSyncJob(ctx context.Context, db *gorm.DB, sourceID string, jobType domain.JobType) (*domain.SyncJob, error) {
	j := &domain.SyncJob{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		Type:      jobType,
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

// GetSyncJob fetches a single job by ID, or ErrNotFound if missing.
func GetSyncJob(ctx context.Context, db *gorm.DB, id string) (*domain.SyncJob, error) {
	var j domain.SyncJob
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// GetActiveJob returns the job currently occupying sourceID's active slot,
// i.e. the one in PENDING or IN_PROGRESS state. At most one such job exists
// per source at any time. Returns ErrNotFound when the slot is free.
func GetActiveJob(ctx context.Context, db *gorm.DB, sourceID string) (*domain.SyncJob, error) {
	var j domain.SyncJob
	err := db.WithContext(ctx).
		Where("source_id = ? AND status IN ?", sourceID,
			[]domain.JobStatus{domain.JobStatusPending, domain.JobStatusInProgress}).
		Order("created_at desc").
		First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// LastManualJob returns the most recently created MANUAL job of a source
// that counts against the 24-hour cooldown. Failed runs are excluded: a
// manual sync that failed does not burn the user's retry budget. Returns
// ErrNotFound when no counting manual job exists.
func LastManualJob(ctx context.Context, db *gorm.DB, sourceID string) (*domain.SyncJob, error) {
	var j domain.SyncJob
	err := db.WithContext(ctx).
		Where("source_id = ? AND type = ? AND status <> ?",
			sourceID, domain.JobTypeManual, domain.JobStatusFailed).
		Order("created_at desc").
		First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// MarkJobStarted transitions a job from PENDING to IN_PROGRESS and records
// the start time. The guarded WHERE clause makes the transition a no-op if
// the job already started, completed, or failed; in that case ErrNotFound is
// returned.
func MarkJobStarted(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.SyncJob{}).
		Where("id = ? AND status = ?", id, domain.JobStatusPending).
		Updates(map[string]any{
			"status":     domain.JobStatusInProgress,
			"started_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkJobCompleted transitions a job from IN_PROGRESS to COMPLETED and
// records the completion time. Returns ErrNotFound if the job is not
// currently running.
func MarkJobCompleted(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.SyncJob{}).
		Where("id = ? AND status = ?", id, domain.JobStatusInProgress).
		Updates(map[string]any{
			"status":       domain.JobStatusCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkJobFailed transitions a job to FAILED from either non-terminal state
// and records the error message and completion time. Terminal jobs are never
// overwritten; attempting to fail one returns ErrNotFound.
func MarkJobFailed(ctx context.Context, db *gorm.DB, id, msg string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.SyncJob{}).
		Where("id = ? AND status IN ?", id,
			[]domain.JobStatus{domain.JobStatusPending, domain.JobStatusInProgress}).
		Updates(map[string]any{
			"status":        domain.JobStatusFailed,
			"error_message": msg,
			"completed_at":  at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddJobProgress increments the fetched/new/updated counters of a job by the
// given deltas. The worker calls this after every imported batch so pollers
// observe partial progress while the job is IN_PROGRESS. Returns ErrNotFound
// if the job does not exist.
func AddJobProgress(ctx context.Context, db *gorm.DB, id string, fetched, created, updated int) error {
	res := db.WithContext(ctx).
		Model(&domain.SyncJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"fetched_count": gorm.Expr("fetched_count + ?", fetched),
			"new_count":     gorm.Expr("new_count + ?", created),
			"updated_count": gorm.Expr("updated_count + ?", updated),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountSourceJobs returns the total number of jobs recorded for a source.
func CountSourceJobs(ctx context.Context, db *gorm.DB, sourceID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.SyncJob{}).
		Where("source_id = ?", sourceID).
		Count(&total).Error
	return total, err
}

// ListSourceJobsPage returns a paginated slice of a source's jobs, newest
// first. Use CountSourceJobs to obtain the total for pagination metadata.
func ListSourceJobsPage(ctx context.Context, db *gorm.DB, sourceID string, offset, limit int) ([]domain.SyncJob, error) {
	var out []domain.SyncJob
	err := db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListStuckJobs returns jobs still IN_PROGRESS whose start time is at or
// before startedBefore. These are candidates for operator intervention;
// nothing here cancels them.
func ListStuckJobs(ctx context.Context, db *gorm.DB, startedBefore time.Time) ([]domain.SyncJob, error) {
	var out []domain.SyncJob
	err := db.WithContext(ctx).
		Where("status = ? AND started_at IS NOT NULL AND started_at <= ?",
			domain.JobStatusInProgress, startedBefore).
		Order("started_at asc").
		Find(&out).Error
	return out, err
}
