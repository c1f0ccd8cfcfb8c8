// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds the cheap statistics queries: the row
// counts and high-water timestamps the HTTP layer folds into weak ETags,
// and the classification tallies behind the dashboard's accuracy figure.
// Each function is context-aware and safe to call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// AggregatesStats returns metadata about the dashboard aggregates of the
// given sources: the total number of rows and the maximum CalculatedAt
// timestamp among them. The HTTP layer derives weak ETags from this pair so
// unchanged dashboards can be answered with 304.
//
// When the sources have no aggregates, the returned count is 0 and
// maxCalculatedAt is nil.
//
// Return values:
//   - count:           total aggregate rows across sourceIDs
//   - maxCalculatedAt: pointer to the greatest CalculatedAt, or nil if no rows
//   - err:             database error, if any
func AggregatesStats(ctx context.Context, db *gorm.DB, sourceIDs []string) (count int64, maxCalculatedAt *time.Time, err error) {
	if len(sourceIDs) == 0 {
		return 0, nil, nil
	}
	q := db.WithContext(ctx).Model(&domain.DashboardAggregate{}).Where("source_id IN ?", sourceIDs)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest calculated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CalculatedAt time.Time
	}
	if err = q.Select("calculated_at").Order("calculated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CalculatedAt, nil
}

// ClassificationStats counts, across the given sources, how many sentiment
// changes were initial AI classifications and how many were manual user
// corrections. The dashboard reports corrections/initial as the classifier
// accuracy signal. Audit rows of soft-deleted reviews are excluded.
//
// Return values:
//   - initial:     rows with reason "ai_initial"
//   - corrections: rows with reason "user_correction"
//   - err:         database error, if any
func ClassificationStats(ctx context.Context, db *gorm.DB, sourceIDs []string) (initial, corrections int64, err error) {
	if len(sourceIDs) == 0 {
		return 0, 0, nil
	}

	base := func() *gorm.DB {
		return db.WithContext(ctx).
			Model(&domain.SentimentChange{}).
			Joins("JOIN reviews ON reviews.id = sentiment_changes.review_id").
			Where("reviews.source_id IN ? AND reviews.deleted_at IS NULL", sourceIDs)
	}

	if err = base().Where("sentiment_changes.reason = ?", domain.ChangeReasonAIInitial).Count(&initial).Error; err != nil {
		return 0, 0, err
	}
	if err = base().Where("sentiment_changes.reason = ?", domain.ChangeReasonUserCorrection).Count(&corrections).Error; err != nil {
		return 0, 0, err
	}
	return initial, corrections, nil
}
