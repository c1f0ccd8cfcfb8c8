// Package domain – enums
//
// This file defines the small closed string enums shared across the data
// layer: review platforms, sentiment labels, sync job types and statuses,
// and sentiment-change reasons. Values are stored lowercase in the database
// and guarded by CHECK constraints on the owning models.
package domain

// Platform identifies the external platform a review source pulls from.
type Platform string

// Supported review platforms.
const (
	PlatformGoogle     Platform = "google"
	PlatformFacebook   Platform = "facebook"
	PlatformTrustpilot Platform = "trustpilot"
)

// Platforms lists every supported platform, in display order.
func Platforms() []Platform {
	return []Platform{PlatformGoogle, PlatformFacebook, PlatformTrustpilot}
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformGoogle, PlatformFacebook, PlatformTrustpilot:
		return true
	}
	return false
}

// Sentiment classifies the tone of a review.
type Sentiment string

// Sentiment labels assigned by classification or manual correction.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is a known sentiment label.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// JobType distinguishes how a sync job was initiated.
type JobType string

// Sync job types.
const (
	// JobTypeInitial is the 90-day backfill created right after a source
	// is configured.
	JobTypeInitial JobType = "initial"
	// JobTypeScheduled is created by the periodic driver for due sources.
	JobTypeScheduled JobType = "scheduled"
	// JobTypeManual is created by an explicit user trigger and subject to
	// the 24-hour cooldown.
	JobTypeManual JobType = "manual"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeInitial, JobTypeScheduled, JobTypeManual:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of a sync job.
type JobStatus string

// Sync job lifecycle states.
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a final state that can never change again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Jobs only move forward: pending work may start or fail, running work
// may complete or fail, and terminal states never change. No job ever
// returns to pending.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusInProgress || next == JobStatusFailed
	case JobStatusInProgress:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// ChangeReason records why a review's sentiment was (re)assigned.
type ChangeReason string

// Sentiment change reasons.
const (
	// ChangeReasonAIInitial marks the first classification of a newly
	// imported review.
	ChangeReasonAIInitial ChangeReason = "ai_initial"
	// ChangeReasonAIReanalysis marks a repeated automatic classification,
	// e.g. after the review's content changed upstream.
	ChangeReasonAIReanalysis ChangeReason = "ai_reanalysis"
	// ChangeReasonUserCorrection marks a manual correction by a user.
	ChangeReasonUserCorrection ChangeReason = "user_correction"
)

// Valid reports whether r is a known change reason.
func (r ChangeReason) Valid() bool {
	switch r {
	case ChangeReasonAIInitial, ChangeReasonAIReanalysis, ChangeReasonUserCorrection:
		return true
	}
	return false
}
