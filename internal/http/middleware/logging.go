// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file owns request correlation and panic containment:
//
//   - RequestID() reuses or mints the X-Request-ID correlation id and makes
//     it available to everything downstream (response header + Gin context).
//   - Recovery() converts panics into the standard JSON 500 envelope while
//     keeping the correlation id and logging the stack.
//   - LoggerFrom() hands back the request-scoped zerolog.Logger attached by
//     RedactingLogger, falling back to the global logger so callers never
//     need a nil check.
//
// Mount RequestID first, then RedactingLogger, then Recovery, so panics are
// logged with the correlation id and replied to in the standard envelope.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key holding the correlation id.
	requestIDKey = "requestID"
	// requestIDHeader carries the correlation id on the wire.
	requestIDHeader = "X-Request-ID"
	// loggerKey is the Gin context key holding the request-scoped logger.
	loggerKey = "logger"
	// maxQueryLogLength caps how many bytes of a query string reach the log.
	maxQueryLogLength = 2048
)

// RequestID reuses the client's X-Request-ID when present (header lookup is
// case-insensitive) and mints a UUIDv4 otherwise. The id is stored in the
// context and echoed on the response so clients can quote it in reports.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// requestIDFrom reads the correlation id stored by RequestID, or "" when
// that middleware did not run.
func requestIDFrom(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	s, _ := v.(string)
	return s
}

// Recovery intercepts panics, logs the stack with the correlation id, and
// replies with the standard JSON 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			id := requestIDFrom(c)
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", id).
				Msg("panic recovered")
			writePanicResponse(c, id)
		}()
		c.Next()
	}
}

// writePanicResponse sends the standard JSON 500 envelope. When part of a
// response is already on the wire only the status is forced; a JSON body
// glued onto partial output would corrupt it.
func writePanicResponse(c *gin.Context, id string) {
	if c.Writer.Written() {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Header("Content-Type", "application/json")
	c.Header(requestIDHeader, id)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"request_id": id,
		"code":       "internal_error",
		"message":    "internal server error",
	})
}

// LoggerFrom returns the request-scoped logger attached by RedactingLogger,
// or a copy of the global logger when none was attached. Never returns nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	fallback := log.Logger
	return &fallback
}

// truncate caps s at max bytes, marking the cut with an ellipsis. A max <= 0
// disables truncation. Byte-level cuts are fine for log output.
func truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max] + "…"
	}
	return s
}
