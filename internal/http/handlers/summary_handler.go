// Summary HTTP handlers.
//
// This file exposes the explicit summary refresh endpoint:
//   - POST /sources/{id}/summary/regenerate
//
// Reads of the current summary ride along on the dashboard payload; this
// endpoint exists for the user-triggered "refresh summary" action, which
// expires the current row and generates a new one immediately instead of
// waiting for the lazy path.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/services"
)

// RegenerateSummaryResponse returns the freshly generated summary.
type RegenerateSummaryResponse struct {
	Summary *domain.AISummary `json:"summary"`
}

// RegenerateSummary godoc
// @ID          regenerateSummary
// @Summary     Regenerate a source's AI summary
// @Description Expires the current summary (history is preserved) and generates a
// @Description fresh one from the source's recent reviews.
// @Tags        Summaries
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Source ID (UUID)"       format(uuid)
//
// @Success     200  {object}  handlers.RegenerateSummaryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Source not found"
// @Failure     409  {object}  handlers.ErrorResponse  "No reviews to summarize"
// @Failure     502  {object}  handlers.ErrorResponse  "Summary generation failed"
// @Failure     503  {object}  handlers.ErrorResponse  "Summaries disabled"
// @Router      /sources/{id}/summary/regenerate [post]
func (h *Handlers) RegenerateSummary(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "source id must be a UUID")
		return
	}
	if err := h.owner.AssertOwnsSource(c.Request.Context(), userID(c), id); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "source not accessible")
		return
	}

	sum, err := h.sumSvc.Regenerate(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSourceNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "source not found")
		case errors.Is(err, services.ErrNoReviewData):
			fail(c, http.StatusConflict, ErrCodeConflict, "no reviews to summarize yet")
		case errors.Is(err, services.ErrSummaryDisabled):
			fail(c, http.StatusServiceUnavailable, ErrCodeSummaryDisabled, "summary generation is not configured")
		default:
			fail(c, http.StatusBadGateway, ErrCodeSummaryFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, RegenerateSummaryResponse{Summary: sum})
}
