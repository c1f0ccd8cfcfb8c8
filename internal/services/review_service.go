// Package services – ReviewService
//
// This file implements manual sentiment corrections. A correction rewrites
// the review's label at confidence 1, appends a USER_CORRECTION row to the
// audit history, and refreshes the derived layers for the day the review was
// published. Correcting a review to the label it already has is a no-op and
// leaves no audit row.
//
// The label write and the audit row commit together; the derived refresh
// runs after the commit. A refresh failure therefore leaves the correction
// in place and is reported as ErrAggregateRebuild alongside the updated
// review, so callers can distinguish "nothing happened" from "persisted but
// dashboard stale".
package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/repo"
)

// ReviewService applies manual sentiment corrections and serves the audit
// history behind them.
type ReviewService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Invalidator refreshes the derived layers after a correction.
	Invalidator *Invalidator
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB, inv *Invalidator) *ReviewService {
	return &ReviewService{DB: db, Invalidator: inv}
}

// CorrectSentiment sets a review's sentiment to the user-chosen label. On a
// partial failure the returned review reflects the committed correction and
// the error wraps ErrAggregateRebuild.
func (s *ReviewService) CorrectSentiment(ctx context.Context, userID, reviewID string, sentiment domain.Sentiment) (*domain.Review, error) {
	tr := otel.Tracer("services/review")
	ctx, span := tr.Start(ctx, "CorrectSentiment", trace.WithAttributes(
		attribute.String("review.id", reviewID),
		attribute.String("sentiment", string(sentiment)),
	))
	defer span.End()

	if !sentiment.Valid() {
		return nil, ErrInvalidSentiment
	}

	rev, err := repo.GetReview(ctx, s.DB, reviewID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if rev.Sentiment == sentiment {
		return rev, nil
	}

	old := rev.Sentiment
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateReviewSentiment(ctx, tx, rev.ID, sentiment, 1); err != nil {
			return err
		}
		return repo.CreateSentimentChange(ctx, tx, &domain.SentimentChange{
			ReviewID:     rev.ID,
			OldSentiment: &old,
			NewSentiment: sentiment,
			Actor:        &userID,
			Reason:       domain.ChangeReasonUserCorrection,
		})
	})
	if err != nil {
		return nil, err
	}
	rev.Sentiment = sentiment
	rev.SentimentConfidence = 1

	src, err := repo.GetSource(ctx, s.DB, rev.SourceID)
	if err != nil {
		return rev, fmt.Errorf("%w: load source: %v", ErrAggregateRebuild, err)
	}
	if err := s.Invalidator.SentimentCorrected(ctx, src, domain.DayOf(rev.PublishedAt)); err != nil {
		return rev, fmt.Errorf("%w: %v", ErrAggregateRebuild, err)
	}
	return rev, nil
}

// History returns a review's full sentiment audit trail, oldest first. The
// first entry is always the initial AI classification.
func (s *ReviewService) History(ctx context.Context, reviewID string) ([]domain.SentimentChange, error) {
	if _, err := repo.GetReview(ctx, s.DB, reviewID); err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return repo.ListSentimentChanges(ctx, s.DB, reviewID)
}
