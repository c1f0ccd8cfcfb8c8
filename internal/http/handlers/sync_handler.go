// Sync HTTP handlers.
//
// This file exposes REST endpoints for the sync pipeline:
//   - POST /sources/{id}/sync      (manual trigger, idempotent via Idempotency-Key)
//   - POST /brands/{id}/sync       (fan-out trigger over a brand's sources)
//   - GET  /sync-jobs/{id}         (job status and counters)
//   - GET  /sync-jobs/stuck        (operator view of wedged jobs)
//   - GET  /sources/{id}/sync-jobs (job history, paginated)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous trigger
// exists for (user, source, key), the handler returns the originally created
// job and sets `Idempotency-Replayed: true` instead of re-triggering (or
// tripping the cooldown).
package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/http/middleware"
	"github.com/tbourn/go-review-backend/internal/services"
	"github.com/tbourn/go-review-backend/internal/utils"
	"github.com/tbourn/go-review-backend/internal/worker"
)

//
// DTOs
//

// TriggerSyncResponse returns the queued (or replayed) job handle.
type TriggerSyncResponse struct {
	// Job is the manual sync job created or replayed for this trigger.
	Job *domain.SyncJob `json:"job"`
	// Replayed is true when the Idempotency-Key matched a previous trigger.
	Replayed bool `json:"replayed,omitempty"`
}

// BrandSyncResponse reports the per-source outcome of a brand-wide trigger.
type BrandSyncResponse struct {
	BrandID string                     `json:"brand_id"`
	Results []services.BrandSyncResult `json:"results"`
}

// ListJobsResponse contains a page of a source's sync jobs and pagination
// metadata.
type ListJobsResponse struct {
	Jobs       []domain.SyncJob `json:"jobs"`
	Pagination Pagination       `json:"pagination"`
}

// StuckJobsResponse lists jobs that exceeded the in-progress threshold.
type StuckJobsResponse struct {
	Jobs []domain.SyncJob `json:"jobs"`
}

// idempotencyKey reads the validated key stashed by the idempotency
// middleware, falling back to the raw header when the middleware is not
// installed (tests, embedded setups).
func idempotencyKey(c *gin.Context) string {
	if k, ok := middleware.GetIdempotencyKey(c); ok {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// retryAfterSeconds renders a RateLimitError's wait as whole seconds for the
// Retry-After header, rounding up so clients never retry early.
func retryAfterSeconds(rle *services.RateLimitError) string {
	secs := int(math.Ceil(rle.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

//
// Handlers
//

// TriggerSync godoc
// @ID          triggerSync
// @Summary     Trigger a manual sync
// @Description Queues a manual sync job for the source. At most one manual sync per
// @Description cooldown window is admitted; concurrent jobs for the same source are
// @Description rejected. Supplying an Idempotency-Key makes retries safe: a replay
// @Description returns the originally created job.
// @Tags        Sync
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Source ID (UUID)"       format(uuid)
//
// @Success     202  {object}  handlers.TriggerSyncResponse  "Job queued (or replayed)"
// @Failure     400  {object}  handlers.ErrorResponse        "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse        "Source not found"
// @Failure     409  {object}  handlers.ErrorResponse        "Sync already in progress / source inactive"
// @Failure     429  {object}  handlers.ErrorResponse        "Manual sync rate limited"
// @Failure     503  {object}  handlers.ErrorResponse        "Worker queue full"
// @Router      /sources/{id}/sync [post]
func (h *Handlers) TriggerSync(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "source id must be a UUID")
		return
	}
	uid := userID(c)
	if err := h.owner.AssertOwnsSource(c.Request.Context(), uid, id); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "source not accessible")
		return
	}

	job, replayed, err := h.syncSvc.TriggerManual(c.Request.Context(), uid, id, idempotencyKey(c))
	if err != nil {
		var rle *services.RateLimitError
		switch {
		case errors.As(err, &rle):
			c.Header("Retry-After", retryAfterSeconds(rle))
			fail(c, http.StatusTooManyRequests, ErrCodeRateLimited, err.Error())
		case errors.Is(err, services.ErrSourceNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "source not found")
		case errors.Is(err, services.ErrSourceInactive):
			fail(c, http.StatusConflict, ErrCodeSourceInactive, "source is inactive")
		case errors.Is(err, services.ErrSyncInProgress):
			fail(c, http.StatusConflict, ErrCodeSyncInProgress, "sync already in progress")
		case errors.Is(err, worker.ErrQueueFull):
			c.Header("Retry-After", "1")
			fail(c, http.StatusServiceUnavailable, ErrCodeQueueFull, "sync workers are saturated, try again shortly")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	if replayed {
		c.Header("Idempotency-Replayed", "true")
	}
	ok(c, http.StatusAccepted, TriggerSyncResponse{Job: job, Replayed: replayed})
}

// TriggerBrandSync godoc
// @ID          triggerBrandSync
// @Summary     Trigger a manual sync for every source of a brand
// @Description Fans the trigger out over the brand's sources. Sources that are
// @Description rate-limited, busy, or inactive are reported per source and never
// @Description abort the rest of the fan-out.
// @Tags        Sync
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Brand ID"               example(b-coffee-roasters)
//
// @Success     202  {object}  handlers.BrandSyncResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Brand not owned by user"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /brands/{id}/sync [post]
func (h *Handlers) TriggerBrandSync(c *gin.Context) {
	brandID := c.Param("id")
	uid := userID(c)
	if err := h.owner.AssertOwnsBrand(c.Request.Context(), uid, brandID); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "brand not accessible")
		return
	}

	results, err := h.syncSvc.TriggerBrand(c.Request.Context(), uid, brandID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusAccepted, BrandSyncResponse{BrandID: brandID, Results: results})
}

// GetSyncJob godoc
// @ID          getSyncJob
// @Summary     Fetch a sync job
// @Description Returns one job with its status, counters, and error message if any.
// @Tags        Sync
// @Produce     json
//
// @Param       id  path  string  true  "Job ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.SyncJob
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Job not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sync-jobs/{id} [get]
func (h *Handlers) GetSyncJob(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "job id must be a UUID")
		return
	}

	job, err := h.syncSvc.JobStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "sync job not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, job)
}

// ListStuckJobs godoc
// @ID          listStuckJobs
// @Summary     List stuck sync jobs
// @Description Operator endpoint: returns jobs that have been IN_PROGRESS longer
// @Description than the configured threshold.
// @Tags        Sync
// @Produce     json
//
// @Success     200  {object}  handlers.StuckJobsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sync-jobs/stuck [get]
func (h *Handlers) ListStuckJobs(c *gin.Context) {
	jobs, err := h.syncSvc.ListStuck(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, StuckJobsResponse{Jobs: jobs})
}

// ListSourceJobs godoc
// @ID          listSourceJobs
// @Summary     List a source's sync jobs
// @Description Returns a page of the source's jobs, newest first.
// @Tags        Sync
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Source ID (UUID)"       format(uuid)
// @Param       page       query   int     false "Page number"            minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"         minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListJobsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Source not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources/{id}/sync-jobs [get]
func (h *Handlers) ListSourceJobs(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "source id must be a UUID")
		return
	}
	if err := h.owner.AssertOwnsSource(c.Request.Context(), userID(c), id); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "source not accessible")
		return
	}
	page, pageSize := clampPagination(c)

	jobs, total, err := h.syncSvc.ListSourceJobs(c.Request.Context(), id, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrSourceNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "source not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListJobsResponse{
		Jobs: jobs,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
