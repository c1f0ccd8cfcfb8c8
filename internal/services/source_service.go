// Package services – SourceService
//
// This file implements review source management: registering a (brand,
// platform, profile) feed with validated credentials, listing and fetching
// sources, toggling activity, and cascading soft deletion. Creating a source
// immediately queues its initial backfill; if that enqueue fails the source
// still exists and the next scheduled sweep (or a manual trigger) picks it
// up.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/cache"
	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/repo"
)

// CreateSourceInput carries the fields needed to register a review source.
type CreateSourceInput struct {
	BrandID           string
	Platform          domain.Platform
	ExternalProfileID string
	DisplayName       string
	Credentials       domain.SourceCredentials
}

// SourceService manages the lifecycle of review sources.
type SourceService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Sync queues the initial backfill of newly created sources.
	Sync *SyncService

	// Cache holds rendered dashboard responses; mutations evict the
	// owning brand's entries. May be nil.
	Cache cache.Store
}

// NewSourceService constructs a SourceService.
func NewSourceService(db *gorm.DB, sync *SyncService, store cache.Store) *SourceService {
	return &SourceService{DB: db, Sync: sync, Cache: store}
}

// Create registers a new review source and queues its initial backfill job.
// The credential set is validated against the platform before anything is
// written; a duplicate (brand, platform, profile) identity is rejected with
// ErrDuplicateSource. The returned job is the queued backfill, or nil when
// queueing it failed (the source itself is still created).
func (s *SourceService) Create(ctx context.Context, in CreateSourceInput) (*domain.ReviewSource, *domain.SyncJob, error) {
	in.Credentials.Platform = in.Platform
	if err := in.Credentials.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	next := time.Now().UTC().Add(s.Sync.ScheduledEvery)
	src := &domain.ReviewSource{
		BrandID:             strings.TrimSpace(in.BrandID),
		Platform:            in.Platform,
		ExternalProfileID:   strings.TrimSpace(in.ExternalProfileID),
		DisplayName:         strings.TrimSpace(in.DisplayName),
		Credentials:         in.Credentials,
		Active:              true,
		NextScheduledSyncAt: &next,
	}
	if err := repo.CreateSource(ctx, s.DB, src); err != nil {
		if isDuplicate(err) {
			return nil, nil, ErrDuplicateSource
		}
		return nil, nil, err
	}
	s.evictBrand(src.BrandID)

	job, err := s.Sync.TriggerInitial(ctx, src)
	if err != nil {
		log.Warn().
			Err(err).
			Str("source_id", src.ID).
			Msg("initial sync could not be queued, deferring to scheduler")
		job = nil
	}
	log.Info().
		Str("source_id", src.ID).
		Str("brand_id", src.BrandID).
		Str("platform", string(src.Platform)).
		Msg("review source created")
	return src, job, nil
}

// List returns every non-deleted source of a brand.
func (s *SourceService) List(ctx context.Context, brandID string) ([]domain.ReviewSource, error) {
	return repo.ListSources(ctx, s.DB, brandID)
}

// Get returns one source by ID, or ErrSourceNotFound.
func (s *SourceService) Get(ctx context.Context, id string) (*domain.ReviewSource, error) {
	src, err := repo.GetSource(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSourceNotFound
		}
		return nil, err
	}
	return src, nil
}

// SetActive toggles whether a source participates in scheduling and accepts
// sync triggers, and returns the updated source.
func (s *SourceService) SetActive(ctx context.Context, id string, active bool) (*domain.ReviewSource, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := repo.SetSourceActive(ctx, s.DB, id, active); err != nil {
		if isNotFound(err) {
			return nil, ErrSourceNotFound
		}
		return nil, err
	}
	src.Active = active
	s.evictBrand(src.BrandID)
	return src, nil
}

// Delete soft-deletes a source and everything derived from it: reviews,
// jobs, aggregates, and summaries. The sentiment audit history is kept for
// compliance. Cached dashboards of the brand are evicted.
func (s *SourceService) Delete(ctx context.Context, id string) error {
	src, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := repo.SoftDeleteSourceCascade(ctx, s.DB, id); err != nil {
		return err
	}
	s.evictBrand(src.BrandID)
	log.Info().
		Str("source_id", src.ID).
		Str("brand_id", src.BrandID).
		Msg("review source deleted")
	return nil
}

func (s *SourceService) evictBrand(brandID string) {
	if s.Cache != nil {
		s.Cache.EvictPrefix(dashboardCachePrefix(brandID))
	}
}
