// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// DashboardAggregate model: the materialized per-(source, day) rollups the
// dashboard reads instead of scanning raw reviews.
//
// Aggregates are upserted by natural key (source_id, date) and always fully
// replaced, never patched incrementally, so a recalculation after any review
// mutation is correct without delta tracking. Concurrent recalculation of
// the same (source, date) is last-write-wins, which is safe because every
// write is a complete derived recompute.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// UpsertAggregate inserts or fully replaces the aggregate row identified by
// (sourceID, date). All derived columns are overwritten on conflict,
// including CalculatedAt, so the row always reflects the latest recompute.
// It returns the written aggregate.
func UpsertAggregate(ctx context.Context, db *gorm.DB, sourceID, date string, stats DayStats, calculatedAt time.Time) (*domain.DashboardAggregate, error) {
	agg := &domain.DashboardAggregate{
		ID:            uuid.NewString(),
		SourceID:      sourceID,
		Date:          date,
		TotalReviews:  int(stats.Total),
		AverageRating: stats.Average,
		PositiveCount: int(stats.Positive),
		NegativeCount: int(stats.Negative),
		NeutralCount:  int(stats.Neutral),
		CalculatedAt:  calculatedAt,
		CreatedAt:     calculatedAt,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_reviews", "average_rating",
				"positive_count", "negative_count", "neutral_count",
				"calculated_at", "updated_at",
			}),
		}).
		Create(agg).Error
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// GetAggregate fetches the aggregate row for (sourceID, date), or
// ErrNotFound if that day was never calculated.
func GetAggregate(ctx context.Context, db *gorm.DB, sourceID, date string) (*domain.DashboardAggregate, error) {
	var agg domain.DashboardAggregate
	err := db.WithContext(ctx).
		Where("source_id = ? AND date = ?", sourceID, date).
		First(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// ListAggregates returns the aggregate rows of the given sources whose date
// falls inside [from, to] (both in domain.DateLayout form), ordered by date
// ascending then source. The lexicographic comparison is exact for
// YYYY-MM-DD strings. An empty source list yields an empty result.
func ListAggregates(ctx context.Context, db *gorm.DB, sourceIDs []string, from, to string) ([]domain.DashboardAggregate, error) {
	if len(sourceIDs) == 0 {
		return []domain.DashboardAggregate{}, nil
	}
	var out []domain.DashboardAggregate
	err := db.WithContext(ctx).
		Where("source_id IN ? AND date >= ? AND date <= ?", sourceIDs, from, to).
		Order("date asc, source_id asc").
		Find(&out).Error
	return out, err
}
