// Package services – Invalidator
//
// This file coordinates derived-data invalidation. Every review mutation
// (import batch, manual sentiment correction) leaves three layers stale: the
// per-(source, day) aggregates, the source's AI summary, and any cached
// dashboard responses for the brand. The Invalidator walks them in that
// order. Aggregates are rebuilt eagerly because the dashboard reads them
// directly; summaries are only expired, since regeneration costs a model
// call and is deferred to the next read.
//
// Cached dashboards are evicted even when a rebuild step fails: serving a
// miss against slightly stale aggregates beats serving a cached response
// that is known to be wrong.
package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-review-backend/internal/cache"
	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/observability"
)

// dashboardCachePrefix is the key prefix under which every cached dashboard
// response of a brand lives. Eviction by brand is a prefix sweep.
func dashboardCachePrefix(brandID string) string {
	return "dash:" + brandID + ":"
}

// Invalidator fans a review mutation out to every derived layer that depends
// on the raw rows.
type Invalidator struct {
	// Aggregates rebuilds the per-day rollups.
	Aggregates *AggregateService

	// Summaries expires the source's summary cache.
	Summaries *SummaryService

	// Cache holds rendered dashboard responses. May be nil when response
	// caching is disabled.
	Cache cache.Store
}

// NewInvalidator constructs an Invalidator over the given derived layers.
func NewInvalidator(agg *AggregateService, sum *SummaryService, store cache.Store) *Invalidator {
	return &Invalidator{Aggregates: agg, Summaries: sum, Cache: store}
}

// ReviewsImported refreshes everything derived from src after an import
// touched the given aggregate days. A batch that created or updated nothing
// passes no days and is a no-op.
func (inv *Invalidator) ReviewsImported(ctx context.Context, src *domain.ReviewSource, days []string) error {
	if len(days) == 0 {
		return nil
	}
	return inv.refresh(ctx, src, days)
}

// SentimentCorrected refreshes everything derived from src after a manual
// sentiment correction on a review published on the given day.
func (inv *Invalidator) SentimentCorrected(ctx context.Context, src *domain.ReviewSource, day string) error {
	return inv.refresh(ctx, src, []string{day})
}

// refresh rebuilds aggregates, expires summaries, and evicts the brand's
// cached dashboards. The first error is returned, but the cache eviction
// always runs: a failed rebuild must not leave a stale response being served.
func (inv *Invalidator) refresh(ctx context.Context, src *domain.ReviewSource, days []string) error {
	var firstErr error
	if err := inv.Aggregates.RecalculateDays(ctx, src.ID, days); err != nil {
		log.Error().
			Err(err).
			Str("source_id", src.ID).
			Strs("days", days).
			Msg("aggregate rebuild failed")
		firstErr = err
	}
	if _, err := inv.Summaries.Invalidate(ctx, src.ID); err != nil {
		log.Error().
			Err(err).
			Str("source_id", src.ID).
			Msg("summary invalidation failed")
		if firstErr == nil {
			firstErr = err
		}
	}
	if inv.Cache != nil {
		observability.DashboardCacheEvicted(inv.Cache.EvictPrefix(dashboardCachePrefix(src.BrandID)))
	}
	return firstErr
}
