// Package services – SummaryService
//
// This file implements the AI summary cache. Summaries are generated lazily:
// the first dashboard read after an invalidation (or after the TTL lapses)
// pays the model call, and every read inside the validity window is served
// from the stored row. Generation failures degrade to the most recent stale
// summary instead of failing the dashboard; only the explicit regeneration
// endpoint surfaces model errors to the caller.
//
// Concurrent reads of an expired summary may both generate. That is accepted:
// each write is a complete new row and CurrentSummary always serves the
// newest valid one, so the race costs a duplicate model call, not
// correctness.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/ai"
	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/observability"
	"github.com/tbourn/go-review-backend/internal/repo"
)

// noDataSummaryText is returned for sources that have no imported reviews.
// It is never persisted and never costs a model call.
const noDataSummaryText = "No reviews have been imported for this source yet."

// SummaryService generates and caches natural-language summaries of a
// source's recent reviews.
type SummaryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Summarizer produces the summary text. A nil Summarizer disables
	// generation; reads then serve whatever rows already exist.
	Summarizer ai.Summarizer

	// TTL is the validity window of a generated summary.
	TTL time.Duration

	// MaxReviews caps how many recent reviews feed one generation call.
	MaxReviews int
}

// NewSummaryService constructs a SummaryService with a 24h validity window
// over the 100 most recent reviews.
func NewSummaryService(db *gorm.DB, summarizer ai.Summarizer) *SummaryService {
	return &SummaryService{
		DB:         db,
		Summarizer: summarizer,
		TTL:        24 * time.Hour,
		MaxReviews: 100,
	}
}

// Current returns the summary to display for src: the stored row when one is
// still valid, a freshly generated (and persisted) one when not, a fixed
// placeholder when the source has no reviews, and the newest stale row when
// generation fails or is disabled. The placeholder is not persisted. A (nil,
// nil) return means there is nothing to show; the dashboard omits the
// section.
func (s *SummaryService) Current(ctx context.Context, src *domain.ReviewSource) (*domain.AISummary, error) {
	tr := otel.Tracer("services/summary")
	ctx, span := tr.Start(ctx, "Current", trace.WithAttributes(
		attribute.String("source.id", src.ID),
	))
	defer span.End()

	now := time.Now().UTC()
	cur, err := repo.CurrentSummary(ctx, s.DB, src.ID, now)
	if err == nil {
		return cur, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	reviews, err := repo.ListRecentReviews(ctx, s.DB, src.ID, s.MaxReviews)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return &domain.AISummary{
			SourceID:    src.ID,
			Summary:     noDataSummaryText,
			Model:       "none",
			GeneratedAt: now,
			ValidUntil:  now,
		}, nil
	}

	if s.Summarizer == nil {
		return s.stale(ctx, src.ID)
	}
	gen, err := s.generate(ctx, src, reviews, now)
	if err != nil {
		log.Warn().
			Err(err).
			Str("source_id", src.ID).
			Msg("summary generation failed, serving stale summary")
		return s.stale(ctx, src.ID)
	}
	return gen, nil
}

// Regenerate discards any valid summary of the source and generates a new one
// immediately. Unlike Current it does not absorb failures: a model error is
// returned to the caller and the previously stored rows are left untouched.
func (s *SummaryService) Regenerate(ctx context.Context, sourceID string) (*domain.AISummary, error) {
	tr := otel.Tracer("services/summary")
	ctx, span := tr.Start(ctx, "Regenerate", trace.WithAttributes(
		attribute.String("source.id", sourceID),
	))
	defer span.End()

	src, err := repo.GetSource(ctx, s.DB, sourceID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSourceNotFound
		}
		return nil, err
	}

	reviews, err := repo.ListRecentReviews(ctx, s.DB, src.ID, s.MaxReviews)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, ErrNoReviewData
	}
	if s.Summarizer == nil {
		return nil, ErrSummaryDisabled
	}

	now := time.Now().UTC()
	sum, err := s.summarize(ctx, src, reviews)
	if err != nil {
		return nil, err
	}

	var out *domain.AISummary
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.ExpireSummaries(ctx, tx, src.ID, now); err != nil {
			return err
		}
		created, err := repo.CreateSummary(ctx, tx, src.ID, sum.Text, sum.Model, sum.TokenCount, now, now.Add(s.TTL))
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.SummaryGenerated(string(src.Platform))
	return out, nil
}

// Invalidate expires every still-valid summary of the source so the next
// dashboard read regenerates. Returns how many rows were expired.
func (s *SummaryService) Invalidate(ctx context.Context, sourceID string) (int64, error) {
	return repo.ExpireSummaries(ctx, s.DB, sourceID, time.Now().UTC())
}

// generate runs the model over the review window and persists the result as
// the new current summary.
func (s *SummaryService) generate(ctx context.Context, src *domain.ReviewSource, reviews []domain.Review, now time.Time) (*domain.AISummary, error) {
	sum, err := s.summarize(ctx, src, reviews)
	if err != nil {
		return nil, err
	}
	out, err := repo.CreateSummary(ctx, s.DB, src.ID, sum.Text, sum.Model, sum.TokenCount, now, now.Add(s.TTL))
	if err != nil {
		return nil, err
	}
	observability.SummaryGenerated(string(src.Platform))
	return out, nil
}

// summarize adapts the stored reviews into the model input shape and invokes
// the summarizer.
func (s *SummaryService) summarize(ctx context.Context, src *domain.ReviewSource, reviews []domain.Review) (ai.Summary, error) {
	in := make([]ai.ReviewInput, 0, len(reviews))
	for _, r := range reviews {
		in = append(in, ai.ReviewInput{Rating: r.Rating, Content: r.Content})
	}
	return s.Summarizer.Summarize(ctx, src.Platform, src.DisplayName, in)
}

// stale serves the newest summary regardless of validity, or (nil, nil) when
// the source was never summarized.
func (s *SummaryService) stale(ctx context.Context, sourceID string) (*domain.AISummary, error) {
	last, err := repo.LatestSummary(ctx, s.DB, sourceID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return last, nil
}
