// Dashboard HTTP handlers.
//
// This file exposes the aggregated dashboard read endpoint:
//   - GET /brands/{id}/dashboard?source_id&from&to
//
// The response is served from the read-through dashboard cache and carries a
// weak ETag derived from the assembled state; If-None-Match revalidation
// returns 304 without re-sending the body.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-review-backend/internal/services"
)

// GetDashboard godoc
// @ID          getDashboard
// @Summary     Brand dashboard
// @Description Returns the date-ranged aggregate series, per-source overview,
// @Description review-count-weighted totals, recent negative reviews, top negative
// @Description terms, the current AI summary when one exists, and classification
// @Description accuracy. Scope to a single source with source_id. Dates default to
// @Description the trailing 30-day window.
// @Tags        Dashboard
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       id             path    string  true  "Brand ID"                    example(b-coffee-roasters)
// @Param       source_id      query   string  false "Scope to one source (UUID)"  format(uuid)
// @Param       from           query   string  false "Range start (YYYY-MM-DD)"    example(2025-06-01)
// @Param       to             query   string  false "Range end (YYYY-MM-DD)"      example(2025-06-30)
//
// @Success     200  {object}  services.Dashboard
// @Header      200  {string}  ETag  "Weak ETag for current derived state"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid date range"
// @Failure     403  {object}  handlers.ErrorResponse  "Brand not owned by user"
// @Failure     404  {object}  handlers.ErrorResponse  "Scoped source not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /brands/{id}/dashboard [get]
func (h *Handlers) GetDashboard(c *gin.Context) {
	brandID := c.Param("id")
	uid := userID(c)
	if err := h.owner.AssertOwnsBrand(c.Request.Context(), uid, brandID); err != nil {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "brand not accessible")
		return
	}

	sourceID := strings.TrimSpace(c.Query("source_id"))
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))

	dash, err := h.dashSvc.Get(c.Request.Context(), brandID, sourceID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDateRange):
			fail(c, http.StatusBadRequest, ErrCodeInvalidDateRange, err.Error())
		case errors.Is(err, services.ErrSourceNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "source not found for this brand")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	c.Header("ETag", dash.ETag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == dash.ETag {
		c.Status(http.StatusNotModified)
		return
	}
	ok(c, http.StatusOK, dash)
}
