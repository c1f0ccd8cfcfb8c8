// Review HTTP handlers.
//
// This file exposes REST endpoints for manual sentiment curation:
//   - PATCH /reviews/{id}/sentiment  (apply a correction)
//   - GET   /reviews/{id}/history    (sentiment audit trail)
//
// A correction is committed before its aggregates are rebuilt; when the
// rebuild fails the handler still returns the corrected review and marks the
// response so the caller knows dashboard numbers are momentarily stale.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/services"
)

//
// DTOs
//

// CorrectSentimentRequest is the JSON payload for overriding a review's
// sentiment label.
type CorrectSentimentRequest struct {
	// Sentiment is one of positive, negative, neutral.
	Sentiment string `json:"sentiment" binding:"required" example:"negative"`
}

// CorrectSentimentResponse returns the corrected review. AggregatesStale is
// set when the correction committed but its dashboard rebuild failed; a later
// sync or correction repairs the numbers.
type CorrectSentimentResponse struct {
	Review          *domain.Review `json:"review"`
	AggregatesStale bool           `json:"aggregates_stale,omitempty"`
}

// SentimentHistoryResponse lists a review's audit trail, oldest first.
type SentimentHistoryResponse struct {
	Changes []domain.SentimentChange `json:"changes"`
}

//
// Handlers
//

// CorrectSentiment godoc
// @ID          correctSentiment
// @Summary     Correct a review's sentiment
// @Description Applies a manual sentiment label, appends an audit row, rebuilds the
// @Description affected day's aggregates, and expires the source's AI summary.
// @Description Setting the label the review already has is a no-op.
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Review ID (UUID)"       format(uuid)
// @Param       body       body    handlers.CorrectSentimentRequest  true  "New sentiment label"
//
// @Success     200  {object}  handlers.CorrectSentimentResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Review not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Unknown sentiment label"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /reviews/{id}/sentiment [patch]
func (h *Handlers) CorrectSentiment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "review id must be a UUID")
		return
	}
	var req CorrectSentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sentiment required")
		return
	}
	sentiment := domain.Sentiment(strings.ToLower(strings.TrimSpace(req.Sentiment)))

	rev, err := h.revSvc.CorrectSentiment(c.Request.Context(), userID(c), id, sentiment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAggregateRebuild) && rev != nil:
			// The correction itself is committed; only derived data lagged.
			ok(c, http.StatusOK, CorrectSentimentResponse{Review: rev, AggregatesStale: true})
		case errors.Is(err, services.ErrInvalidSentiment):
			fail(c, http.StatusUnprocessableEntity, ErrCodeInvalidSentiment, err.Error())
		case errors.Is(err, services.ErrReviewNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "review not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, CorrectSentimentResponse{Review: rev})
}

// SentimentHistory godoc
// @ID          sentimentHistory
// @Summary     Review sentiment audit trail
// @Description Returns every sentiment mutation recorded for the review, oldest
// @Description first. The first entry is always the initial AI classification.
// @Tags        Reviews
// @Produce     json
//
// @Param       id  path  string  true  "Review ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.SentimentHistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Review not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /reviews/{id}/history [get]
func (h *Handlers) SentimentHistory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "review id must be a UUID")
		return
	}

	changes, err := h.revSvc.History(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrReviewNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "review not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, SentimentHistoryResponse{Changes: changes})
}
