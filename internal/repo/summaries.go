// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the AISummary
// model.
//
// A source's "current" summary is the most recently generated row whose
// ValidUntil lies in the future. Invalidation expires rows in place (sets
// ValidUntil to now) rather than deleting them, preserving the generation
// and token-cost history for auditing.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// CreateSummary persists one generation event for a source. GeneratedAt and
// ValidUntil define the validity window; the caller computes both.
func CreateSummary(ctx context.Context, db *gorm.DB, sourceID, text, model string, tokenCount int, generatedAt, validUntil time.Time) (*domain.AISummary, error) {
	s := &domain.AISummary{
		ID:          uuid.NewString(),
		SourceID:    sourceID,
		Summary:     text,
		Model:       model,
		TokenCount:  tokenCount,
		GeneratedAt: generatedAt,
		ValidUntil:  validUntil,
		CreatedAt:   generatedAt,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// CurrentSummary returns the newest summary of a source that is still valid
// at the given instant, or ErrNotFound when every row has expired (or none
// exists).
func CurrentSummary(ctx context.Context, db *gorm.DB, sourceID string, now time.Time) (*domain.AISummary, error) {
	var s domain.AISummary
	err := db.WithContext(ctx).
		Where("source_id = ? AND valid_until > ?", sourceID, now).
		Order("generated_at desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LatestSummary returns the newest summary of a source regardless of
// validity, or ErrNotFound if the source was never summarized. Used as the
// degraded fallback when regeneration fails.
func LatestSummary(ctx context.Context, db *gorm.DB, sourceID string) (*domain.AISummary, error) {
	var s domain.AISummary
	err := db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("generated_at desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ExpireSummaries sets ValidUntil to now on every still-valid summary of the
// source, forcing the next read to regenerate. It returns the number of rows
// expired; zero is not an error (there may simply be nothing valid to
// expire).
func ExpireSummaries(ctx context.Context, db *gorm.DB, sourceID string, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.AISummary{}).
		Where("source_id = ? AND valid_until > ?", sourceID, now).
		Update("valid_until", now)
	return res.RowsAffected, res.Error
}
