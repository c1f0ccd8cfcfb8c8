// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file carries the Idempotency-Key plumbing for unsafe endpoints.
// Clients retry manual sync triggers freely (a dashboard double-click, a
// mobile app resubmitting after a timeout), and every retry would otherwise
// trip the per-source cooldown or spend a rate-limit token. The validator
// vets the header, stashes the normalized key for handlers, and consults a
// lookup to spot retries of already-completed triggers so the rate limiter
// can wave them through.
//
// Persistence stays out of this package: the lookup is a single function
// value, wired in the router against the idempotency repository.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header that carries the client's
// idempotency key. Clients are expected to reuse the same value for every
// retry of one logical trigger, typically a UUID minted per user action.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys stashed by IdempotencyValidator. Unexported on purpose;
// GetIdempotencyKey and IsRateBypass are the read side.
const (
	ctxKeyIdemKey    = "idempotency.key"
	ctxKeyRateBypass = "ratelimit.bypass"
)

// fallbackUserID scopes anonymous requests. It must stay in step with the
// identity the handlers persist idempotency records under, or replay
// detection never fires for unauthenticated callers.
const fallbackUserID = "demo-user"

// defaultKeyPattern admits RFC 7230 token characters plus the separators
// found in UUIDs and ULIDs. Anything wider must be configured explicitly.
var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

const defaultKeyMaxLen = 200

// GetIdempotencyKey returns the vetted key IdempotencyValidator stashed for
// this request. The second result is false when the request carried no key
// or the validator is not installed.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// resolveUserID resolves the caller identity the same way the handlers do:
// the "userID" context value installed by auth middleware, then the
// X-User-ID header. Empty means anonymous. KeyByUserOrIP shares this chain
// so rate buckets and idempotency records agree on who the caller is.
func resolveUserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(c.GetHeader("X-User-ID"))
}

// IdempotencyOptions tunes header validation. TTL windows are not enforced
// here; the lookup owns expiry because only it sees the stored record.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Zero or negative selects 200.
	MaxLen int
	// Pattern restricts the accepted alphabet. Nil selects a token-style
	// default that admits UUIDs and ULIDs.
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a completed trigger is already recorded
// for (userID, sourceID, key) as of now. Lookup errors are treated as a
// miss, so a briefly unavailable store degrades to normal processing
// instead of refusing requests.
type IdempotencyLookup func(ctx context.Context, userID, sourceID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator vets the Idempotency-Key header and annotates the
// request context. Requests without the header pass through untouched. A
// malformed key is refused with 400 before any handler runs. When the
// lookup confirms the key matches a completed trigger, the rate-bypass flag
// is set so the limiter does not charge the retry; serving the replayed
// payload stays with the handler and service layer.
//
// The source scope is taken from the :id route param, which is where every
// idempotent endpoint binds it.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultKeyMaxLen
	}
	pattern := opts.Pattern
	if pattern == nil {
		pattern = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pattern.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key header",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup == nil {
			c.Next()
			return
		}
		uid := resolveUserID(c)
		if uid == "" {
			uid = fallbackUserID
		}
		if hit, err := lookup(c.Request.Context(), uid, c.Param("id"), key, time.Now().UTC()); err == nil && hit {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}
