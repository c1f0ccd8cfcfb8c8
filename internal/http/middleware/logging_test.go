package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLog swaps the global logger for a buffer for one test. The stack
// under test logs through the zerolog global, so tests read it back here.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRequestID_MintsWhenAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = requestIDFrom(c)
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if seen == "" {
		t.Fatalf("no correlation id reached the handler")
	}
	if got := w.Header().Get(requestIDHeader); got != seen {
		t.Fatalf("response header id = %q, handler saw %q", got, seen)
	}
}

func TestRequestID_PropagatesClientID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Header lookup is case-insensitive; both spellings must propagate.
	for _, hdr := range []string{requestIDHeader, strings.ToLower(requestIDHeader)} {
		r := gin.New()
		r.Use(RequestID())
		r.GET("/rid", func(c *gin.Context) {
			if got := requestIDFrom(c); got != "client-id-1" {
				t.Fatalf("context requestID = %q; want client-id-1", got)
			}
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rid", nil)
		req.Header.Set(hdr, "client-id-1")
		r.ServeHTTP(w, req)

		if got := w.Header().Get(requestIDHeader); got != "client-id-1" {
			t.Fatalf("header %q: response id = %q; want client-id-1", hdr, got)
		}
	}
}

func TestRecovery_PanicsToJSON500AndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("recovered panic answered %d, want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("panic envelope is not JSON: %v", err)
	}
	if body["code"] != "internal_error" || body["message"] != "internal server error" {
		t.Fatalf("panic envelope = %v", body)
	}
	if body["request_id"] == "" {
		t.Fatalf("panic envelope missing request_id")
	}
	if out := buf.String(); !strings.Contains(out, "panic recovered") {
		t.Fatalf("expected panic log, got:\n%s", out)
	}
}

func TestRecovery_PanicAfterWrite_ForcesStatusOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery())

	// A panic after bytes went out must not glue a JSON envelope onto the
	// partial body.
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial-body")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))

	if strings.Contains(w.Body.String(), "internal server error") {
		t.Fatalf("JSON envelope written after partial body: %q", w.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log, got:\n%s", buf.String())
	}
}

func TestLoggerFrom_FallsBackWithoutAccessLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("custom")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/use", nil))

	out := buf.String()
	if !strings.Contains(out, `"message":"custom"`) {
		t.Fatalf("expected custom log, got:\n%s", out)
	}
	// No access logger attached a scoped logger, so no request fields.
	if strings.Contains(out, `"request_id"`) {
		t.Fatalf("fallback logger unexpectedly carried request_id:\n%s", out)
	}
}

func TestLoggerFrom_ServesScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("custom2")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/use", nil))

	out := buf.String()
	if !strings.Contains(out, `"message":"custom2"`) {
		t.Fatalf("expected custom2 log, got:\n%s", out)
	}
	if !strings.Contains(out, `"request_id"`) || !strings.Contains(out, `"path":"/use"`) {
		t.Fatalf("expected scoped request fields, got:\n%s", out)
	}
}

func TestRequestIDFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if got := requestIDFrom(c); got != "" {
		t.Fatalf("requestIDFrom without middleware = %q, want empty", got)
	}
	c.Set(requestIDKey, "rid-9")
	if got := requestIDFrom(c); got != "rid-9" {
		t.Fatalf("requestIDFrom = %q, want rid-9", got)
	}
	c.Set(requestIDKey, 123) // wrong type reads as absent
	if got := requestIDFrom(c); got != "" {
		t.Fatalf("requestIDFrom with non-string value = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"abcdefgh", 5, "abcde…"},
		{"abc", 0, "abc"},
		{"abc", -1, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
