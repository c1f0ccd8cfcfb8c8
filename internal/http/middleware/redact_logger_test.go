package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestScrubValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"email", "reviewer a.b+tag@example.com wrote", "reviewer [REDACTED:email] wrote"},
		{"phone", "call +1-555-123-4567 now", "call [REDACTED:phone] now"},
		{"uuid", "id=123e4567-e89b-12d3-a456-426614174000", "id=[REDACTED:id]"},
		// A UUID must be consumed before the phone pattern can chew on its
		// digit groups.
		{"uuid not phone", "123e4567-e89b-12d3-a456-426614174000", "[REDACTED:id]"},
		{"clean", "platform=google&active=true", "platform=google&active=true"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := scrubValue(tc.in); got != tc.want {
				t.Fatalf("scrubValue(%q) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestHeaderMaskSet(t *testing.T) {
	set := headerMaskSet([]string{" X-Api-Key ", "", "X-Provider-Token"})
	for _, want := range []string{"authorization", "cookie", "set-cookie", "x-api-key", "x-provider-token"} {
		if _, ok := set[want]; !ok {
			t.Fatalf("mask set missing %q: %v", want, set)
		}
	}
	if _, ok := set[""]; ok {
		t.Fatalf("empty name must not enter the mask set")
	}
}

func TestRedactingLogger_ScrubsQueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)

	r := gin.New()
	// Upstream request-id, as RequestID() would set it.
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-resp")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/sources/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&id=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/sources/s1?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Contact", "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567")
	req.Header.Set("X-Request-ID", "rid-req") // the response header must win

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected info log, got: %s", logs)
	}
	if !strings.Contains(logs, `"path":"/sources/:id"`) {
		t.Fatalf("expected route pattern path, got: %s", logs)
	}
	if !strings.Contains(logs, `"request_id":"rid-resp"`) {
		t.Fatalf("expected request_id from response header, got: %s", logs)
	}
	for _, want := range []string{"[REDACTED:email]", "[REDACTED:phone]", "[REDACTED:id]"} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %s in query redactions, got: %s", want, logs)
		}
	}
	for _, hdr := range []string{"Authorization", "Cookie", "X-Api-Key"} {
		if !strings.Contains(logs, `"`+hdr+`":"[REDACTED]"`) {
			t.Fatalf("%s must be masked whole: %s", hdr, logs)
		}
	}
	// Non-masked headers are pattern-scrubbed, not blanked.
	if !strings.Contains(logs, `"X-Contact":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`) {
		t.Fatalf("expected scrubbed X-Contact header, got: %s", logs)
	}
}

func TestRedactingLogger_SeverityAndRequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)

	// No upstream middleware sets the response header, so the logger must
	// fall back to the request header.
	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	reqWarn := httptest.NewRequest(http.MethodGet, "/warn", nil)
	reqWarn.Header.Set("X-Request-ID", "rid-warn")
	r.ServeHTTP(httptest.NewRecorder(), reqWarn)

	reqErr := httptest.NewRequest(http.MethodGet, "/error", nil)
	reqErr.Header.Set("X-Request-ID", "rid-err")
	r.ServeHTTP(httptest.NewRecorder(), reqErr)

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn log missing or without request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error log missing or without request_id fallback: %s", logs)
	}
}

func TestRedactingLogger_TruncatesLongQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/q", func(c *gin.Context) { c.Status(http.StatusOK) })

	long := "k=" + strings.Repeat("x", maxQueryLogLength*2)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/q?"+long, nil))

	if !strings.Contains(buf.String(), "…") {
		t.Fatalf("expected truncated query marker in log: %s", buf.String())
	}
}
