// Error codes carried in the ErrorResponse envelope.
//
// Codes are lowercase snake_case and stable: clients branch on them, so a
// published code never changes meaning. The generic block mirrors plain
// HTTP semantics; the rest name business outcomes a status alone cannot
// convey, like a trigger refused because the source is already syncing
// versus refused because the source was deactivated (both 409).
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeForbidden   = "forbidden"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"

	// Domain-specific:
	ErrCodeCreateFailed       = "create_failed"
	ErrCodeListFailed         = "list_failed"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeInvalidSentiment   = "invalid_sentiment"
	ErrCodeInvalidDateRange   = "invalid_date_range"
	ErrCodeSyncInProgress     = "sync_in_progress"
	ErrCodeSourceInactive     = "source_inactive"
	ErrCodeQueueFull          = "queue_full"
	ErrCodeSummaryDisabled    = "summary_disabled"
	ErrCodeSummaryFailed      = "summary_failed"
)
