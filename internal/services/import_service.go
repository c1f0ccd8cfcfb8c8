// Package services – ImportService
//
// This file implements the Review Importer: given one fetched batch for one
// source, it decides create / update / skip per review using the stored
// content hash, classifies newly inserted reviews, and records every
// sentiment assignment in the append-only audit trail. Re-running an import
// with unchanged data is a no-op by construction, which is what makes
// overlapping manual and scheduled syncs safe.
//
// Each review is committed independently, so a failure partway through a
// batch never corrupts rows that were already written; the caller receives
// the counts accumulated so far together with the error.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/ai"
	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/provider"
	"github.com/tbourn/go-review-backend/internal/repo"
)

// ImportCounts is the outcome of one imported batch, merged into the owning
// sync job's progress counters.
type ImportCounts struct {
	Fetched int
	New     int
	Updated int
}

// ImportService persists fetched reviews for a source. It owns the
// create/update/skip decision, initial classification, and the audit trail.
type ImportService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Classifier assigns sentiment to new or changed review content.
	Classifier ai.Classifier
}

// NewImportService constructs an ImportService.
func NewImportService(db *gorm.DB, classifier ai.Classifier) *ImportService {
	return &ImportService{DB: db, Classifier: classifier}
}

// ImportBatch applies one fetched batch to the review store. Per review,
// looked up by (sourceID, external id):
//
//   - not found: insert with a freshly computed content hash, classify, and
//     record the initial sentiment in the audit trail;
//   - found with a different content hash: rewrite content in place (same
//     row, never a duplicate) and reclassify, auditing the change when the
//     label moved;
//   - found with an identical hash: skip.
//
// It returns the counts and the set of UTC days (domain.DateLayout) whose
// aggregates are now stale. A concurrent insert losing the unique-constraint
// race on (source_id, external_id) is re-read and falls through to the
// update-or-skip path instead of surfacing the violation.
func (s *ImportService) ImportBatch(ctx context.Context, sourceID string, batch []provider.Review) (ImportCounts, []string, error) {
	counts := ImportCounts{Fetched: len(batch)}
	touched := make(map[string]struct{})

	for _, fetched := range batch {
		outcome, day, err := s.importOne(ctx, sourceID, fetched)
		if err != nil {
			return counts, dayList(touched), err
		}
		switch outcome {
		case importCreated:
			counts.New++
			touched[day] = struct{}{}
		case importUpdated:
			counts.Updated++
			touched[day] = struct{}{}
		}
	}
	return counts, dayList(touched), nil
}

// importOne outcomes.
type importOutcome int

const (
	importSkipped importOutcome = iota
	importCreated
	importUpdated
)

// importOne applies one fetched review and reports the aggregate day it
// staled. Updates bucket by the stored row's publication day, since that is
// the day whose aggregate now disagrees with the raw data.
func (s *ImportService) importOne(ctx context.Context, sourceID string, fetched provider.Review) (importOutcome, string, error) {
	hash := HashContent(fetched.Content)

	existing, err := repo.FindReviewByExternalID(ctx, s.DB, sourceID, fetched.ExternalID)
	switch {
	case err == nil:
		return s.updateOrSkip(ctx, existing, fetched, hash)
	case isNotFound(err):
		outcome, day, cerr := s.create(ctx, sourceID, fetched, hash)
		if cerr != nil && isDuplicate(cerr) {
			// Lost a concurrent insert race; the row exists now.
			existing, rerr := repo.FindReviewByExternalID(ctx, s.DB, sourceID, fetched.ExternalID)
			if rerr != nil {
				return importSkipped, "", rerr
			}
			return s.updateOrSkip(ctx, existing, fetched, hash)
		}
		return outcome, day, cerr
	default:
		return importSkipped, "", err
	}
}

// create inserts the review and its AI_INITIAL audit row atomically.
func (s *ImportService) create(ctx context.Context, sourceID string, fetched provider.Review, hash string) (importOutcome, string, error) {
	cls := s.classify(ctx, fetched.Content, fetched.Rating)

	r := &domain.Review{
		SourceID:            sourceID,
		ExternalID:          fetched.ExternalID,
		Author:              fetched.Author,
		Content:             fetched.Content,
		ContentHash:         hash,
		Rating:              fetched.Rating,
		Sentiment:           cls.Sentiment,
		SentimentConfidence: cls.Confidence,
		PublishedAt:         fetched.PublishedAt.UTC(),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateReview(ctx, tx, r); err != nil {
			return err
		}
		return repo.CreateSentimentChange(ctx, tx, &domain.SentimentChange{
			ReviewID:     r.ID,
			OldSentiment: nil,
			NewSentiment: cls.Sentiment,
			Actor:        nil,
			Reason:       domain.ChangeReasonAIInitial,
		})
	})
	if err != nil {
		return importSkipped, "", err
	}
	return importCreated, domain.DayOf(r.PublishedAt), nil
}

// updateOrSkip rewrites the row when the content hash moved, reclassifying
// and auditing a label change, and skips otherwise.
func (s *ImportService) updateOrSkip(ctx context.Context, existing *domain.Review, fetched provider.Review, hash string) (importOutcome, string, error) {
	if existing.ContentHash == hash {
		return importSkipped, "", nil
	}

	cls := s.classify(ctx, fetched.Content, fetched.Rating)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateReviewContent(ctx, tx, existing.ID, fetched.Content, hash, fetched.Author, fetched.Rating, time.Now().UTC()); err != nil {
			return err
		}
		if cls.Sentiment == existing.Sentiment {
			return nil
		}
		if err := repo.UpdateReviewSentiment(ctx, tx, existing.ID, cls.Sentiment, cls.Confidence); err != nil {
			return err
		}
		old := existing.Sentiment
		return repo.CreateSentimentChange(ctx, tx, &domain.SentimentChange{
			ReviewID:     existing.ID,
			OldSentiment: &old,
			NewSentiment: cls.Sentiment,
			Actor:        nil,
			Reason:       domain.ChangeReasonAIReanalysis,
		})
	})
	if err != nil {
		return importSkipped, "", err
	}
	return importUpdated, domain.DayOf(existing.PublishedAt), nil
}

// classify asks the classifier for a label, falling back to a rating-derived
// label when the classifier is unavailable or errors. A broken classifier
// must not abort an import; its result is only a starting label that manual
// correction can fix.
func (s *ImportService) classify(ctx context.Context, content string, rating int) ai.Classification {
	if s.Classifier != nil {
		cls, err := s.Classifier.Classify(ctx, content, rating)
		if err == nil {
			return cls
		}
		log.Warn().Err(err).Msg("classifier failed, falling back to rating")
	}
	switch {
	case rating >= 4:
		return ai.Classification{Sentiment: domain.SentimentPositive}
	case rating >= 1 && rating <= 2:
		return ai.Classification{Sentiment: domain.SentimentNegative}
	default:
		return ai.Classification{Sentiment: domain.SentimentNeutral}
	}
}

// HashContent returns the SHA-256 hex digest used to detect silent edits of
// the same external review across imports.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// dayList flattens the touched-day set into a sorted slice.
func dayList(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
