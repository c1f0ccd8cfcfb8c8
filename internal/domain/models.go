// Package domain defines the persistence models for review sources, imported
// reviews, sync jobs, and the derived dashboard records. These types are
// mapped with GORM and form the core data layer of the review monitoring
// application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// DateLayout is the canonical YYYY-MM-DD form used for aggregate day buckets.
const DateLayout = "2006-01-02"

// DayOf returns the UTC calendar day of t in DateLayout form. Aggregates are
// bucketed by the review's published timestamp converted to UTC.
func DayOf(t time.Time) string { return t.UTC().Format(DateLayout) }

// ReviewSource represents one configured external review feed: a (brand,
// platform, profile) triple together with the credentials needed to pull
// reviews from that platform.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - BrandID: identifier of the owning brand; indexed for brand-level rollups.
//   - Platform: external platform enum ("google", "facebook", "trustpilot").
//   - ExternalProfileID: the platform-side profile identifier (place ID,
//     page ID, or business unit ID).
//   - DisplayName: human-readable label shown on the dashboard.
//   - Credentials: per-platform credential variant, stored as a JSON text
//     column and never serialized into API responses.
//   - Active: inactive sources are excluded from scheduling and manual syncs.
//   - LastSyncedAt / LastSyncStatus / LastSyncError: outcome of the most
//     recent sync job, denormalized for cheap source listings.
//   - NextScheduledSyncAt: when the periodic driver should next sync this
//     source; indexed so due-source scans stay cheap.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker; deleted sources are excluded from
//     scheduling and aggregation.
type ReviewSource struct {
	ID                  string            `json:"id"                  gorm:"type:char(36);primaryKey"`
	BrandID             string            `json:"brand_id"            gorm:"type:varchar(64);not null;index:idx_brand_sources;uniqueIndex:ux_source_identity,priority:1"`
	Platform            Platform          `json:"platform"            gorm:"type:varchar(16);not null;check:platform IN ('google','facebook','trustpilot');uniqueIndex:ux_source_identity,priority:2"`
	ExternalProfileID   string            `json:"external_profile_id" gorm:"type:varchar(128);not null;uniqueIndex:ux_source_identity,priority:3"`
	DisplayName         string            `json:"display_name"        gorm:"type:varchar(255);not null;default:''"`
	Credentials         SourceCredentials `json:"-"                   gorm:"type:text;not null"`
	Active              bool              `json:"active"              gorm:"not null;default:true"`
	LastSyncedAt        *time.Time        `json:"last_synced_at,omitempty"`
	LastSyncStatus      *JobStatus        `json:"last_sync_status,omitempty" gorm:"type:varchar(16)"`
	LastSyncError       *string           `json:"last_sync_error,omitempty"  gorm:"type:text"`
	NextScheduledSyncAt *time.Time        `json:"next_scheduled_sync_at,omitempty" gorm:"index"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	DeletedAt           gorm.DeletedAt    `json:"-"                   gorm:"index"`
}

// TableName returns the database table name for ReviewSource.
func (ReviewSource) TableName() string { return "review_sources" }

// Review represents a single customer review imported from an external
// platform. A review is identified by (source, external id) and is never
// duplicated: re-imports either update the row in place (changed content
// hash) or skip it.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - SourceID: foreign key to the owning source.
//   - ExternalID: the platform's review identifier, unique per source.
//   - Author: reviewer display name as supplied by the platform.
//   - Content: raw review text.
//   - ContentHash: SHA-256 hex of the content, used to detect silent edits
//     of the same external review across imports.
//   - Rating: integer star rating, constrained to [1,5].
//   - Sentiment: classified tone ("positive", "negative", "neutral").
//   - SentimentConfidence: classifier confidence in [0,1]; 1.0 for manual
//     corrections.
//   - PublishedAt: origin-supplied publication time; aggregates bucket by
//     its UTC calendar day.
//   - FetchedAt: when the import persisted or last touched this row.
//   - DeletedAt: soft deletion marker (set by the source cascade).
//   - Source: FK association, ensures cascade delete/update.
type Review struct {
	ID                  string         `json:"id"          gorm:"type:char(36);primaryKey"`
	SourceID            string         `json:"source_id"   gorm:"type:char(36);not null;uniqueIndex:ux_review_identity,priority:1;index:idx_review_day,priority:1"`
	ExternalID          string         `json:"external_id" gorm:"type:varchar(128);not null;uniqueIndex:ux_review_identity,priority:2"`
	Author              string         `json:"author"      gorm:"type:varchar(255);not null;default:''"`
	Content             string         `json:"content"     gorm:"type:text;not null"`
	ContentHash         string         `json:"-"           gorm:"type:char(64);not null"`
	Rating              int            `json:"rating"      gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Sentiment           Sentiment      `json:"sentiment"   gorm:"type:varchar(16);not null;check:sentiment IN ('positive','negative','neutral')"`
	SentimentConfidence float64        `json:"sentiment_confidence" gorm:"not null;default:0;check:sentiment_confidence >= 0 AND sentiment_confidence <= 1"`
	PublishedAt         time.Time      `json:"published_at" gorm:"not null;index:idx_review_day,priority:2"`
	FetchedAt           time.Time      `json:"fetched_at"   gorm:"not null"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-"           gorm:"index"`

	// Source is the owning review feed. Reviews are cascade-deleted if
	// their source is removed.
	Source ReviewSource `json:"-" gorm:"foreignKey:SourceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// SentimentChange is the append-only audit trail of sentiment mutations on a
// review. Every classification writes exactly one row, including the very
// first AI pass, so classification accuracy can be measured as corrections
// over initial classifications. Rows are never updated or deleted.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - ReviewID: foreign key to the mutated review.
//   - OldSentiment: sentiment before the change; nil for the initial
//     classification.
//   - NewSentiment: sentiment after the change.
//   - Actor: user identifier for manual corrections; nil means the system
//     (AI classifier) made the change.
//   - Reason: why the change happened ("ai_initial", "ai_reanalysis",
//     "user_correction").
//   - CreatedAt: when the change was recorded.
type SentimentChange struct {
	ID           string       `json:"id"            gorm:"type:char(36);primaryKey"`
	ReviewID     string       `json:"review_id"     gorm:"type:char(36);not null;index:idx_review_changes,priority:1"`
	OldSentiment *Sentiment   `json:"old_sentiment" gorm:"type:varchar(16)"`
	NewSentiment Sentiment    `json:"new_sentiment" gorm:"type:varchar(16);not null;check:new_sentiment IN ('positive','negative','neutral')"`
	Actor        *string      `json:"actor"         gorm:"type:varchar(64)"`
	Reason       ChangeReason `json:"reason"        gorm:"type:varchar(32);not null;check:reason IN ('ai_initial','ai_reanalysis','user_correction')"`
	CreatedAt    time.Time    `json:"created_at"    gorm:"index:idx_review_changes,priority:2"`

	// Review is the mutated review. History is cascade-deleted only if the
	// underlying review row is hard-deleted.
	Review Review `json:"-" gorm:"foreignKey:ReviewID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SentimentChange.
func (SentimentChange) TableName() string { return "sentiment_changes" }

// SyncJob represents one import attempt against one source. Jobs move through
// a one-directional lifecycle (pending, in_progress, then completed or
// failed) and at most one non-terminal job may exist per source at a time.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - SourceID: foreign key to the synced source.
//   - Type: how the job was initiated ("initial", "scheduled", "manual").
//   - Status: lifecycle state; transitions are validated by
//     JobStatus.CanTransition and never move backwards.
//   - FetchedCount / NewCount / UpdatedCount: progress counters written
//     incrementally while the job runs, so pollers see partial progress.
//   - ErrorMessage: terminal failure description for failed jobs.
//   - StartedAt / CompletedAt: execution window timestamps.
//   - Source: FK association, ensures cascade delete/update.
type SyncJob struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	SourceID     string         `json:"source_id"     gorm:"type:char(36);not null;index:idx_source_jobs,priority:1"`
	Type         JobType        `json:"type"          gorm:"type:varchar(16);not null;check:type IN ('initial','scheduled','manual')"`
	Status       JobStatus      `json:"status"        gorm:"type:varchar(16);not null;check:status IN ('pending','in_progress','completed','failed');index:idx_source_jobs,priority:2"`
	FetchedCount int            `json:"fetched_count" gorm:"not null;default:0"`
	NewCount     int            `json:"new_count"     gorm:"not null;default:0"`
	UpdatedCount int            `json:"updated_count" gorm:"not null;default:0"`
	ErrorMessage *string        `json:"error_message,omitempty" gorm:"type:text"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`

	// Source is the synced review feed. Jobs are cascade-deleted if their
	// source is removed.
	Source ReviewSource `json:"-" gorm:"foreignKey:SourceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SyncJob.
func (SyncJob) TableName() string { return "sync_jobs" }

// Active reports whether the job still occupies its source's single active
// slot, i.e. it is pending or in progress.
func (j SyncJob) Active() bool { return !j.Status.Terminal() }

// DashboardAggregate is the materialized per-(source, day) rollup the
// dashboard reads instead of scanning raw reviews. It is derived entirely
// from Review rows and fully replaced on every recalculation, never patched
// incrementally.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - SourceID / Date: natural key; Date is the UTC day in DateLayout form.
//   - TotalReviews: reviews published on that day.
//   - AverageRating: arithmetic mean of ratings for that day.
//   - PositiveCount / NegativeCount / NeutralCount: per-sentiment counts.
//   - CalculatedAt: when the rebuilder last recomputed this row.
type DashboardAggregate struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	SourceID      string         `json:"source_id"      gorm:"type:char(36);not null;uniqueIndex:ux_aggregate_source_date,priority:1"`
	Date          string         `json:"date"           gorm:"type:char(10);not null;uniqueIndex:ux_aggregate_source_date,priority:2"`
	TotalReviews  int            `json:"total_reviews"  gorm:"not null;default:0"`
	AverageRating float64        `json:"average_rating" gorm:"not null;default:0"`
	PositiveCount int            `json:"positive_count" gorm:"not null;default:0"`
	NegativeCount int            `json:"negative_count" gorm:"not null;default:0"`
	NeutralCount  int            `json:"neutral_count"  gorm:"not null;default:0"`
	CalculatedAt  time.Time      `json:"calculated_at"  gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`

	// Source is the aggregated review feed. Aggregates are cascade-deleted
	// if their source is removed.
	Source ReviewSource `json:"-" gorm:"foreignKey:SourceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for DashboardAggregate.
func (DashboardAggregate) TableName() string { return "dashboard_aggregates" }

// AISummary is one generation event of the natural-language review summary
// for a source. The "current" summary is the most recently generated row
// whose ValidUntil is still in the future; invalidation expires the row in
// place rather than deleting it, preserving the generation/cost history.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - SourceID: foreign key to the summarized source.
//   - Summary: generated text.
//   - Model: identifier of the model that produced the text.
//   - TokenCount: tokens consumed by the generation call.
//   - GeneratedAt / ValidUntil: validity window of this generation.
type AISummary struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	SourceID    string         `json:"source_id"    gorm:"type:char(36);not null;index:idx_source_summaries,priority:1"`
	Summary     string         `json:"summary"      gorm:"type:text;not null"`
	Model       string         `json:"model"        gorm:"type:varchar(64);not null"`
	TokenCount  int            `json:"token_count"  gorm:"not null;default:0"`
	GeneratedAt time.Time      `json:"generated_at" gorm:"not null;index:idx_source_summaries,priority:2"`
	ValidUntil  time.Time      `json:"valid_until"  gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`

	// Source is the summarized review feed. Summaries are cascade-deleted
	// if their source is removed.
	Source ReviewSource `json:"-" gorm:"foreignKey:SourceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for AISummary.
func (AISummary) TableName() string { return "ai_summaries" }
