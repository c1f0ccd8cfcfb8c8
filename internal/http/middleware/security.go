// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which stamps a conservative header set
// onto every response of a JSON API running behind a reverse proxy. HSTS is
// opt-in and only ever emitted on requests that were HTTPS end-to-end; there
// is no Content-Security-Policy because the API never serves HTML.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers emitted by SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests. Leave
	// off unless traffic is HTTPS end-to-end, proxy hop included.
	EnableHSTS bool

	// HSTSMaxAge is the HSTS lifetime; non-positive values fall back to
	// 180 days.
	HSTSMaxAge time.Duration

	// NoStore adds Cache-Control: no-store plus the legacy Pragma/Expires
	// pair, keeping sensitive responses out of shared caches.
	NoStore bool

	// EnablePolicy adds the browser feature policies (Permissions-Policy,
	// X-Permitted-Cross-Domain-Policies). No effect on non-browser clients.
	EnablePolicy bool
}

// SecurityHeaders returns a middleware attaching the configured security
// headers to each response.
//
// Every response carries X-Content-Type-Options: nosniff, X-Frame-Options:
// DENY, and Referrer-Policy: no-referrer. The policy, cache-control, and
// HSTS groups follow the options. When an earlier middleware already set
// X-Request-ID, it is appended to Access-Control-Expose-Headers so browser
// clients can read the correlation id.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 180 * 24 * time.Hour
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		// HSTS only on requests that actually arrived over HTTPS.
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		if h.Get("X-Request-ID") != "" {
			appendExposedHeader(h, "X-Request-ID")
		}

		c.Next()
	}
}

// appendExposedHeader adds name to Access-Control-Expose-Headers without
// clobbering or duplicating existing entries.
func appendExposedHeader(h http.Header, name string) {
	const hdr = "Access-Control-Expose-Headers"
	cur := h.Get(hdr)
	switch {
	case cur == "":
		h.Set(hdr, name)
	case !strings.Contains(cur, name):
		h.Set(hdr, cur+", "+name)
	}
}

// isHTTPS reports whether the request arrived over HTTPS, either terminated
// here (r.TLS set) or at a proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
