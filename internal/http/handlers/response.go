// Package handlers provides HTTP handler implementations for the public API.
//
// This file holds the response helpers every endpoint goes through. Errors
// always leave the API as an ErrorResponse with a stable machine-readable
// code, so clients can branch on failures without parsing prose, and every
// 5xx is logged with its request id before it goes out.
//
// A failed trigger, for example, renders as:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab",
//	  "code": "sync_in_progress",
//	  "message": "sync already in progress"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-review-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope shared by all endpoints. Code is one
// of the errors.go constants and is the field clients should branch on;
// Message is display-safe prose. RequestID echoes the X-Request-ID header
// so a client report can be matched to server logs.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"source not found"`
}

// fail aborts the request with the standard envelope. Server-side failures
// (5xx) are additionally logged through the request-scoped logger; client
// errors are not, since the access log already records their status.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Str("request_id", reqID).
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	})
}

// Fail exposes fail to other packages, e.g. the router's NoRoute handler,
// so out-of-package responses keep the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON with the given success status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent replies 204 for operations with nothing to return.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
