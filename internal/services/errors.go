// Package services defines the business logic of the review sync subsystem:
// source configuration, sync orchestration, review import, aggregate
// rebuilding, summary caching, and invalidation. This file centralizes the
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import (
	"errors"
	"fmt"
	"time"
)

// Source and review errors.
var (
	// ErrSourceNotFound indicates that the requested review source does not
	// exist or has been deleted.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSourceInactive is returned when a sync is requested for a source
	// that has been deactivated.
	ErrSourceInactive = errors.New("source is inactive")

	// ErrDuplicateSource is returned when a source with the same
	// (brand, platform, profile) identity already exists.
	ErrDuplicateSource = errors.New("source already configured")

	// ErrInvalidCredentials is returned when the credential variant fails
	// validation for its platform.
	ErrInvalidCredentials = errors.New("invalid source credentials")

	// ErrReviewNotFound indicates that the requested review does not exist.
	ErrReviewNotFound = errors.New("review not found")

	// ErrInvalidSentiment is returned when a correction names a sentiment
	// outside the allowed set.
	ErrInvalidSentiment = errors.New("sentiment must be positive, negative or neutral")
)

// Sync orchestration errors.
var (
	// ErrJobNotFound indicates that the requested sync job does not exist.
	ErrJobNotFound = errors.New("sync job not found")

	// ErrSyncInProgress is returned when a sync is triggered while another
	// job for the same source is still pending or running.
	ErrSyncInProgress = errors.New("sync already in progress for this source")

	// ErrRateLimited is the class of the manual-sync cooldown rejection.
	// Concrete rejections are RateLimitError values carrying the remaining
	// cooldown; they match this sentinel via errors.Is.
	ErrRateLimited = errors.New("manual sync rate limited")

	// ErrNoReviewData is returned by an explicit summary regeneration when
	// the source has no reviews to summarize.
	ErrNoReviewData = errors.New("no review data to summarize")

	// ErrSummaryDisabled is returned by an explicit summary regeneration
	// when no summarizer is configured. Lazy dashboard reads degrade
	// silently instead.
	ErrSummaryDisabled = errors.New("summary generation disabled")

	// ErrInvalidDateRange is returned when a dashboard range fails to parse
	// or ends before it starts.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrAggregateRebuild marks a partial failure: the triggering write
	// (import or correction) is committed but its aggregate recomputation
	// failed, so the dashboard may be stale until the next rebuild.
	ErrAggregateRebuild = errors.New("aggregate rebuild failed")
)

// RateLimitError rejects a manual sync trigger inside the 24-hour cooldown.
// RetryAfter is computed server-side from the previous job's creation time so
// clients never do their own clock math. It matches ErrRateLimited through
// errors.Is.
type RateLimitError struct {
	// RetryAfter is how long the caller must wait before retrying.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("manual sync rate limited, retry in %s", e.RetryAfter.Round(time.Second))
}

// Is reports whether target is the rate-limit class sentinel.
func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }
