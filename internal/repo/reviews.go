// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review
// model and its append-only SentimentChange history.
//
// The repository follows a "thin" approach: it performs persistence and
// simple query composition, leaving import semantics (create vs. update vs.
// skip) and classification to the services package.
//
// Error semantics:
//   - When a review is not found, functions return ErrNotFound.
//   - Concurrent duplicate inserts on (source_id, external_id) surface as
//     the raw DB unique-violation error; the importer recovers by re-reading
//     the row and falling back to its update-or-skip path.
//
// Functions:
//
//   - FindReviewByExternalID(ctx, db, sourceID, externalID)
//     Looks a review up by its import identity.
//
//   - CreateReview(ctx, db, r) / UpdateReviewContent(ctx, db, ...)
//     The two write paths used by the importer.
//
//   - UpdateReviewSentiment(ctx, db, id, sentiment, confidence)
//     Applies a classification or manual correction to the row.
//
//   - CreateSentimentChange(ctx, db, c) / ListSentimentChanges(ctx, db, reviewID)
//     Append and read the audit history.
//
//   - GetReview, ListRecentReviews, ListRecentNegativeReviews, ReviewDayStats
//     Read paths used by the summary cache, dashboard, and rebuilder.
package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// FindReviewByExternalID fetches the review identified by the import-natural
// key (source_id, external_id). Returns ErrNotFound when no such review
// exists; the importer treats that as "insert a new row".
func FindReviewByExternalID(ctx context.Context, db *gorm.DB, sourceID, externalID string) (*domain.Review, error) {
	var r domain.Review
	err := db.WithContext(ctx).
		Where("source_id = ? AND external_id = ?", sourceID, externalID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReview fetches a single review by its ID, or ErrNotFound if missing.
func GetReview(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	var r domain.Review
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview inserts a new review row. The caller provides all imported
// fields on r; this function mints the UUID and fills FetchedAt/CreatedAt
// with the current UTC time when unset. A concurrent insert for the same
// (source_id, external_id) surfaces as the raw unique-violation error.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.FetchedAt.IsZero() {
		r.FetchedAt = now
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	return db.WithContext(ctx).Create(r).Error
}

// UpdateReviewContent rewrites the imported fields of an existing review
// after its content hash changed upstream: content, hash, author, rating,
// and the fetch timestamp. Sentiment is left untouched; reclassification is
// the importer's decision. Returns ErrNotFound if no row was updated.
func UpdateReviewContent(ctx context.Context, db *gorm.DB, id, content, contentHash, author string, rating int, fetchedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":      content,
			"content_hash": contentHash,
			"author":       author,
			"rating":       rating,
			"fetched_at":   fetchedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateReviewSentiment sets the sentiment label and classifier confidence
// on a review. Used both by the initial AI classification and by manual
// corrections (which record confidence 1). Returns ErrNotFound if no row was
// updated.
func UpdateReviewSentiment(ctx context.Context, db *gorm.DB, id string, s domain.Sentiment, confidence float64) error {
	res := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sentiment":            s,
			"sentiment_confidence": confidence,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateSentimentChange appends one audit row to a review's sentiment
// history. The row is immutable once written; there is deliberately no
// update or delete counterpart.
func CreateSentimentChange(ctx context.Context, db *gorm.DB, c *domain.SentimentChange) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(c).Error
}

// ListSentimentChanges returns the full audit history of a review, oldest
// first, so the initial classification is always the first element.
func ListSentimentChanges(ctx context.Context, db *gorm.DB, reviewID string) ([]domain.SentimentChange, error) {
	var out []domain.SentimentChange
	err := db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// ListRecentReviews returns up to limit reviews of one source ordered by
// publication time descending. This is the input window for AI summary
// generation.
func ListRecentReviews(ctx context.Context, db *gorm.DB, sourceID string, limit int) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("published_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListRecentNegativeReviews returns up to limit negative reviews across the
// given sources, newest first. The dashboard shows these alongside the
// aggregates so owners can react to recent criticism.
func ListRecentNegativeReviews(ctx context.Context, db *gorm.DB, sourceIDs []string, limit int) ([]domain.Review, error) {
	if len(sourceIDs) == 0 {
		return []domain.Review{}, nil
	}
	var out []domain.Review
	err := db.WithContext(ctx).
		Where("source_id IN ? AND sentiment = ?", sourceIDs, domain.SentimentNegative).
		Order("published_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DayStats is the derived shape of one (source, day) bucket, computed
// directly in SQL from non-deleted reviews.
type DayStats struct {
	Total    int64
	Average  float64
	Positive int64
	Negative int64
	Neutral  int64
}

// ReviewDayStats computes the aggregate numbers for every non-deleted review
// of sourceID published on the given UTC day (domain.DateLayout form). A day
// with no reviews yields the zero DayStats, not an error.
func ReviewDayStats(ctx context.Context, db *gorm.DB, sourceID, day string) (DayStats, error) {
	start, err := time.ParseInLocation(domain.DateLayout, day, time.UTC)
	if err != nil {
		return DayStats{}, err
	}
	end := start.Add(24 * time.Hour)

	var row struct {
		Total    int64
		Average  sql.NullFloat64
		Positive int64
		Negative int64
		Neutral  int64
	}
	err = db.WithContext(ctx).
		Model(&domain.Review{}).
		Select(`COUNT(*) AS total,
			AVG(rating) AS average,
			COALESCE(SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END), 0) AS positive,
			COALESCE(SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END), 0) AS negative,
			COALESCE(SUM(CASE WHEN sentiment = 'neutral' THEN 1 ELSE 0 END), 0) AS neutral`).
		Where("source_id = ? AND published_at >= ? AND published_at < ?", sourceID, start, end).
		Scan(&row).Error
	if err != nil {
		return DayStats{}, err
	}
	return DayStats{
		Total:    row.Total,
		Average:  row.Average.Float64,
		Positive: row.Positive,
		Negative: row.Negative,
		Neutral:  row.Neutral,
	}, nil
}
