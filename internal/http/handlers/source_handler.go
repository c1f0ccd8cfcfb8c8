// Review source HTTP handlers.
//
// This file exposes REST endpoints for review source resources:
//   - POST   /sources        (configure a new source, queues initial backfill)
//   - GET    /sources        (list a brand's sources)
//   - GET    /sources/{id}   (fetch one source)
//   - PATCH  /sources/{id}   (activate / deactivate)
//   - DELETE /sources/{id}   (cascade soft delete)
//
// It also declares the service contracts consumed by every handler in this
// package and the Handlers aggregate that the router wires up. Handlers are
// transport-thin: they validate input, call application services, and
// translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/services"
	"github.com/tbourn/go-review-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// SourceService defines review source lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SourceService interface {
	// Create registers a source and queues its initial backfill job.
	Create(ctx context.Context, in services.CreateSourceInput) (*domain.ReviewSource, *domain.SyncJob, error)
	// List returns every source configured for a brand.
	List(ctx context.Context, brandID string) ([]domain.ReviewSource, error)
	// Get returns one source by id.
	Get(ctx context.Context, id string) (*domain.ReviewSource, error)
	// SetActive toggles whether a source participates in syncing.
	SetActive(ctx context.Context, id string, active bool) (*domain.ReviewSource, error)
	// Delete soft-deletes a source and everything it owns.
	Delete(ctx context.Context, id string) error
}

// SyncService defines sync orchestration operations consumed by HTTP handlers.
type SyncService interface {
	// TriggerManual queues a manual sync; replayed reports an idempotent replay.
	TriggerManual(ctx context.Context, userID, sourceID, idemKey string) (job *domain.SyncJob, replayed bool, err error)
	// TriggerBrand fans a manual trigger out over every source of a brand.
	TriggerBrand(ctx context.Context, userID, brandID string) ([]services.BrandSyncResult, error)
	// JobStatus returns one job by id.
	JobStatus(ctx context.Context, jobID string) (*domain.SyncJob, error)
	// ListSourceJobs returns a page of a source's jobs, newest first.
	ListSourceJobs(ctx context.Context, sourceID string, page, pageSize int) ([]domain.SyncJob, int64, error)
	// ListStuck returns jobs that have been in progress for too long.
	ListStuck(ctx context.Context) ([]domain.SyncJob, error)
}

// DashboardService assembles the aggregated dashboard for a brand or source.
type DashboardService interface {
	// Get returns the dashboard for brandID, optionally scoped to sourceID,
	// over the [from, to] date range (empty strings select the default window).
	Get(ctx context.Context, brandID, sourceID, from, to string) (*services.Dashboard, error)
}

// ReviewService defines sentiment correction operations.
type ReviewService interface {
	// CorrectSentiment applies a manual sentiment label to a review.
	CorrectSentiment(ctx context.Context, userID, reviewID string, sentiment domain.Sentiment) (*domain.Review, error)
	// History returns a review's sentiment audit trail, oldest first.
	History(ctx context.Context, reviewID string) ([]domain.SentimentChange, error)
}

// SummaryService defines the user-facing summary refresh operation.
type SummaryService interface {
	// Regenerate expires the current summary and generates a fresh one.
	Regenerate(ctx context.Context, sourceID string) (*domain.AISummary, error)
}

// Ownership answers whether the acting user may touch a brand or source.
// The concrete authorization layer lives outside this subsystem; AllowAll is
// the default used when nothing else is injected.
type Ownership interface {
	AssertOwnsBrand(ctx context.Context, userID, brandID string) error
	AssertOwnsSource(ctx context.Context, userID, sourceID string) error
}

// AllowAll is the permissive Ownership used when no authorization layer is
// wired in (single-tenant deployments, tests).
type AllowAll struct{}

// AssertOwnsBrand always permits access.
func (AllowAll) AssertOwnsBrand(context.Context, string, string) error { return nil }

// AssertOwnsSource always permits access.
func (AllowAll) AssertOwnsSource(context.Context, string, string) error { return nil }

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for sources, sync jobs, dashboards,
// reviews, and summaries. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	srcSvc  SourceService
	syncSvc SyncService
	dashSvc DashboardService
	revSvc  ReviewService
	sumSvc  SummaryService
	owner   Ownership
}

// New constructs a Handlers instance bound to the given services. A nil
// ownership defaults to AllowAll.
func New(src SourceService, sync SyncService, dash DashboardService, rev ReviewService, sum SummaryService, owner Ownership) *Handlers {
	if owner == nil {
		owner = AllowAll{}
	}
	return &Handlers{srcSvc: src, syncSvc: sync, dashSvc: dash, revSvc: rev, sumSvc: sum, owner: owner}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// CreateSourceRequest is the JSON payload for configuring a review source.
type CreateSourceRequest struct {
	// BrandID is the owning brand.
	BrandID string `json:"brand_id" binding:"required" example:"b-coffee-roasters"`
	// Platform is one of google, facebook, trustpilot.
	Platform string `json:"platform" binding:"required" example:"google"`
	// ExternalProfileID is the platform-side identity of the listing.
	ExternalProfileID string `json:"external_profile_id" binding:"required" example:"ChIJN1t_tDeuEmsRUsoyG83frY4"`
	// DisplayName labels the source on dashboards; defaults are applied when empty.
	DisplayName string `json:"display_name" example:"Downtown store"`
	// Credentials carries the platform-specific secret material.
	Credentials domain.SourceCredentials `json:"credentials"`
}

// CreateSourceResponse returns the created source and, when queueing
// succeeded, the initial backfill job handle.
type CreateSourceResponse struct {
	Source     *domain.ReviewSource `json:"source"`
	InitialJob *domain.SyncJob      `json:"initial_job,omitempty"`
}

// ListSourcesResponse wraps a brand's configured sources.
type ListSourcesResponse struct {
	Sources []domain.ReviewSource `json:"sources"`
}

// UpdateSourceRequest is the JSON payload for toggling a source's activity.
type UpdateSourceRequest struct {
	// Active controls whether the source participates in syncing.
	Active *bool `json:"active" binding:"required" example:"false"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// parsePlatform normalizes and validates the platform discriminator.
func parsePlatform(raw string) (domain.Platform, bool) {
	p := domain.Platform(strings.ToLower(strings.TrimSpace(raw)))
	return p, p.Valid()
}

//
// Handlers
//

// CreateSource godoc
// @ID          createSource
// @Summary     Configure a review source
// @Description Registers a (brand, platform, profile) feed with validated credentials
// @Description and queues the initial 90-day backfill job.
// @Tags        Sources
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.CreateSourceRequest  true  "Source configuration"
//
// @Success     201  {object}  handlers.CreateSourceResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Brand not owned by user"
// @Failure     409  {object}  handlers.ErrorResponse  "Source already configured"
// @Failure     422  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources [post]
func (h *Handlers) CreateSource(c *gin.Context) {
	var req CreateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "brand_id, platform and external_profile_id required")
		return
	}
	platform, okP := parsePlatform(req.Platform)
	if !okP {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "platform must be one of: google, facebook, trustpilot")
		return
	}
	uid := userID(c)
	if err := h.owner.AssertOwnsBrand(c.Request.Context(), uid, req.BrandID); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "brand not accessible")
		return
	}

	src, job, err := h.srcSvc.Create(c.Request.Context(), services.CreateSourceInput{
		BrandID:           strings.TrimSpace(req.BrandID),
		Platform:          platform,
		ExternalProfileID: strings.TrimSpace(req.ExternalProfileID),
		DisplayName:       strings.TrimSpace(req.DisplayName),
		Credentials:       req.Credentials,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusUnprocessableEntity, ErrCodeInvalidCredentials, err.Error())
		case errors.Is(err, services.ErrDuplicateSource):
			fail(c, http.StatusConflict, ErrCodeConflict, "source already configured for this profile")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, CreateSourceResponse{Source: src, InitialJob: job})
}

// ListSources godoc
// @ID          listSources
// @Summary     List a brand's review sources
// @Description Returns every source configured for the brand given in the brand_id query parameter.
// @Tags        Sources
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       brand_id   query   string  true  "Brand ID"               example(b-coffee-roasters)
//
// @Success     200  {object}  handlers.ListSourcesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing brand_id"
// @Failure     403  {object}  handlers.ErrorResponse  "Brand not owned by user"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources [get]
func (h *Handlers) ListSources(c *gin.Context) {
	brandID := strings.TrimSpace(c.Query("brand_id"))
	if brandID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "brand_id query parameter required")
		return
	}
	uid := userID(c)
	if err := h.owner.AssertOwnsBrand(c.Request.Context(), uid, brandID); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "brand not accessible")
		return
	}

	items, err := h.srcSvc.List(c.Request.Context(), brandID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListSourcesResponse{Sources: items})
}

// GetSource godoc
// @ID          getSource
// @Summary     Fetch one review source
// @Tags        Sources
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Source ID (UUID)"       format(uuid)
//
// @Success     200  {object}  domain.ReviewSource
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Source not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources/{id} [get]
func (h *Handlers) GetSource(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "source id must be a UUID")
		return
	}
	if err := h.owner.AssertOwnsSource(c.Request.Context(), userID(c), id); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "source not accessible")
		return
	}

	src, err := h.srcSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSourceNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "source not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, src)
}

// UpdateSource godoc
// @ID          updateSource
// @Summary     Activate or deactivate a source
// @Description Toggles whether the source participates in scheduled and manual syncing.
// @Tags        Sources
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Source ID (UUID)"       format(uuid)
// @Param       body       body    handlers.UpdateSourceRequest  true  "Activity toggle"
//
// @Success     200  {object}  domain.ReviewSource
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Source not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources/{id} [patch]
func (h *Handlers) UpdateSource(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "source id must be a UUID")
		return
	}
	var req UpdateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "active field required")
		return
	}
	if err := h.owner.AssertOwnsSource(c.Request.Context(), userID(c), id); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "source not accessible")
		return
	}

	src, err := h.srcSvc.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		if errors.Is(err, services.ErrSourceNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "source not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, src)
}

// DeleteSource godoc
// @ID          deleteSource
// @Summary     Delete a review source
// @Description Soft-deletes the source together with its reviews, jobs, aggregates,
// @Description and summaries. The sentiment audit trail is preserved.
// @Tags        Sources
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Source ID (UUID)"       format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Source not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources/{id} [delete]
func (h *Handlers) DeleteSource(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "source id must be a UUID")
		return
	}
	if err := h.owner.AssertOwnsSource(c.Request.Context(), userID(c), id); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "source not accessible")
		return
	}

	if err := h.srcSvc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrSourceNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "source not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
