// Package services – AggregateService
//
// This file implements the Aggregate Rebuilder. One DashboardAggregate row
// exists per (source, day); every recalculation recomputes the row entirely
// from the raw reviews of that day and upserts it, so a rebuild after any
// review mutation is correct without delta tracking and a repeated rebuild
// is idempotent. Brand-wide views combine rows with a review-count-weighted
// average, never a naive mean of per-source averages.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/repo"
)

// AggregateService recomputes the materialized per-(source, day) rollups the
// dashboard reads.
type AggregateService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewAggregateService constructs an AggregateService.
func NewAggregateService(db *gorm.DB) *AggregateService {
	return &AggregateService{DB: db}
}

// RecalculateDay rebuilds the aggregate row for one (source, day) bucket
// from the non-deleted reviews published that day. A day with no reviews
// writes a zero row, which keeps the dashboard honest after deletions.
func (s *AggregateService) RecalculateDay(ctx context.Context, sourceID, day string) (*domain.DashboardAggregate, error) {
	stats, err := repo.ReviewDayStats(ctx, s.DB, sourceID, day)
	if err != nil {
		return nil, err
	}
	return repo.UpsertAggregate(ctx, s.DB, sourceID, day, stats, time.Now().UTC())
}

// RecalculateDays rebuilds every listed day for the source, stopping at the
// first failure. Days are independent rows, so the ones already rebuilt stay
// rebuilt.
func (s *AggregateService) RecalculateDays(ctx context.Context, sourceID string, days []string) error {
	for _, day := range days {
		if _, err := s.RecalculateDay(ctx, sourceID, day); err != nil {
			return err
		}
	}
	return nil
}

// Rollup is the combined view over a set of aggregate rows: summed counts
// and a review-count-weighted average rating.
type Rollup struct {
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NeutralCount  int     `json:"neutral_count"`
}

// RollupAggregates combines aggregate rows across sources and days. The
// average is weighted by each row's review count, so a location with thirty
// reviews pulls the brand average three times as hard as one with ten.
func RollupAggregates(rows []domain.DashboardAggregate) Rollup {
	var out Rollup
	var weighted float64
	for _, row := range rows {
		out.TotalReviews += row.TotalReviews
		out.PositiveCount += row.PositiveCount
		out.NegativeCount += row.NegativeCount
		out.NeutralCount += row.NeutralCount
		weighted += row.AverageRating * float64(row.TotalReviews)
	}
	if out.TotalReviews > 0 {
		out.AverageRating = weighted / float64(out.TotalReviews)
	}
	return out
}
