// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger. Request and
// response bodies are never logged; what still reaches the log line (query
// strings and headers) is scrubbed first, because reviewer emails, phone
// numbers, and profile ids do show up there when a caller pastes a provider
// URL. Secret-bearing headers are masked whole instead of pattern-scrubbed.
//
// RedactingLogger also attaches the request-scoped logger that LoggerFrom
// serves to handlers, so enriched in-handler logs carry the correlation id
// without re-deriving it.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Scrub patterns, applied in order. UUIDs go first so the phone pattern
// never matches the digit runs inside one; the phone pattern is the loosest
// and runs last.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// scrubValue replaces identifiers that look like PII with typed placeholders.
func scrubValue(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	s = phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// RedactOptions configures RedactingLogger.
type RedactOptions struct {
	// MaskHeaders lists additional header names whose values are replaced
	// whole with "[REDACTED]". Matching is case-insensitive; Authorization,
	// Cookie, and Set-Cookie are always masked.
	MaskHeaders []string
}

// headerMaskSet merges the built-in masked headers with extra names,
// lowercased for case-insensitive lookup.
func headerMaskSet(extra []string) map[string]struct{} {
	set := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range extra {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			set[h] = struct{}{}
		}
	}
	return set
}

// RedactingLogger returns the access-log middleware. One structured line per
// request: method, route path, scrubbed query and headers, status, response
// bytes, and latency, at a severity following the status code (info, warn
// for 4xx, error for 5xx). Before the handler runs it attaches the
// request-scoped logger for LoggerFrom.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := headerMaskSet(opts.MaskHeaders)

	return func(c *gin.Context) {
		start := time.Now()

		path := routeLabel(c)
		query := truncate(scrubValue(c.Request.URL.RawQuery), maxQueryLogLength)

		// RequestID runs earlier, so the response header is already set;
		// the request header covers stacks mounted without it.
		reqID := c.Writer.Header().Get(requestIDHeader)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				headers[k] = "[REDACTED]"
				continue
			}
			headers[k] = scrubValue(strings.Join(vv, ", "))
		}

		scoped := log.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &scoped)

		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
