// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ReviewSource model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a source is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateSource(ctx, db, src) -> error
//     Inserts a new ReviewSource row with UUID primary key and UTC timestamps.
//
//   - GetSource(ctx, db, id) -> *domain.ReviewSource, error
//     Fetches a single source by ID, or ErrNotFound if missing.
//
//   - ListSources(ctx, db, brandID) -> []domain.ReviewSource, error
//     Returns all non-deleted sources of a brand, newest first.
//
//   - ListDueSources(ctx, db, now) -> []domain.ReviewSource, error
//     Returns active sources whose next scheduled sync time has passed.
//
//   - UpdateSourceSyncState(ctx, db, id, ...) -> error
//     Writes the denormalized last-sync outcome and next schedule.
//
//   - SoftDeleteSourceCascade(ctx, db, id) -> error
//     Transactionally soft-deletes a source and everything it owns.
//
// This repository is designed to be wrapped by higher-level services
// (see services.SourceService and services.SyncService) which enforce
// business rules such as credential validation and sync rate limits.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSource inserts a new ReviewSource row. The caller provides the brand,
// platform identity, and credentials on src; this function mints the UUID and
// UTC creation timestamp. The (brand_id, platform, external_profile_id)
// triple must be unique; violations surface as the raw DB error for the
// service layer to translate.
func CreateSource(ctx context.Context, db *gorm.DB, src *domain.ReviewSource) error {
	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	if src.CreatedAt.IsZero() {
		src.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(src).Error
}

// GetSource fetches a single source by its ID. If the record does not exist
// (or is soft-deleted), it returns ErrNotFound. On other DB errors, the raw
// error is returned.
func GetSource(ctx context.Context, db *gorm.DB, id string) (*domain.ReviewSource, error) {
	var src domain.ReviewSource
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&src).Error
	if err != nil {
		return nil, err
	}
	return &src, nil
}

// ListSources returns all non-deleted sources belonging to brandID, ordered
// by creation time descending (most recent first). It returns an empty slice
// if the brand has no sources. On DB error, it returns the error.
func ListSources(ctx context.Context, db *gorm.DB, brandID string) ([]domain.ReviewSource, error) {
	var out []domain.ReviewSource
	err := db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListDueSources returns every active, non-deleted source whose
// NextScheduledSyncAt has passed relative to now. Sources that have never
// been scheduled (NULL next time) are not considered due; the sync services
// set the next time on creation and after every job completion.
func ListDueSources(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.ReviewSource, error) {
	var out []domain.ReviewSource
	err := db.WithContext(ctx).
		Where("active = ? AND next_scheduled_sync_at IS NOT NULL AND next_scheduled_sync_at <= ?", true, now).
		Order("next_scheduled_sync_at asc").
		Find(&out).Error
	return out, err
}

// UpdateSourceSyncState writes the denormalized outcome of the most recent
// sync job onto the source: when it ran, how it ended, its error message (nil
// clears a previous error), and when the next scheduled sync is due. If no
// rows are affected (source missing or soft-deleted), it returns ErrNotFound.
func UpdateSourceSyncState(ctx context.Context, db *gorm.DB, id string, syncedAt time.Time, status domain.JobStatus, syncErr *string, next time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.ReviewSource{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_synced_at":         syncedAt,
			"last_sync_status":       status,
			"last_sync_error":        syncErr,
			"next_scheduled_sync_at": next,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetSourceActive toggles the active flag of a source. Inactive sources are
// skipped by the scheduler and rejected by the manual sync trigger. Returns
// ErrNotFound if the source does not exist.
func SetSourceActive(ctx context.Context, db *gorm.DB, id string, active bool) error {
	res := db.WithContext(ctx).
		Model(&domain.ReviewSource{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteSourceCascade soft-deletes a source together with everything it
// owns: reviews, sync jobs, dashboard aggregates, and AI summaries. The walk
// runs in a single transaction so a partially deleted source is never
// observable. SentimentChange audit rows are intentionally left untouched;
// they are append-only history tied to (now soft-deleted) reviews.
//
// Returns ErrNotFound if the source does not exist or was already deleted.
func SoftDeleteSourceCascade(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.ReviewSource{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("source_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("source_id = ?", id).Delete(&domain.SyncJob{}).Error; err != nil {
			return err
		}
		if err := tx.Where("source_id = ?", id).Delete(&domain.DashboardAggregate{}).Error; err != nil {
			return err
		}
		return tx.Where("source_id = ?", id).Delete(&domain.AISummary{}).Error
	})
}
