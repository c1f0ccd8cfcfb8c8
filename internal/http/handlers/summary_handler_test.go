package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/services"
)

// ---------- RegenerateSummary ----------

func TestRegenerateSummary_UUID_Forbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Non-UUID id -> 400
	{
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, stubReviewSvc{}, stubSummarySvc{}, nil)
		r := gin.New()
		r.POST("/sources/:id/summary/regenerate", h.RegenerateSummary)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sources/nope/summary/regenerate", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad id -> %d", w.Code)
		}
	}

	// Source not owned -> 403
	{
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, stubReviewSvc{}, stubSummarySvc{}, stubOwner{source: errors.New("denied")})
		r := gin.New()
		r.POST("/sources/:id/summary/regenerate", h.RegenerateSummary)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sources/"+uuid.NewString()+"/summary/regenerate", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("forbidden -> %d", w.Code)
		}
	}
}

func TestRegenerateSummary_ErrorMappings(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"source_not_found", services.ErrSourceNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"no_review_data", services.ErrNoReviewData, http.StatusConflict, ErrCodeConflict},
		{"summaries_disabled", services.ErrSummaryDisabled, http.StatusServiceUnavailable, ErrCodeSummaryDisabled},
		{"provider_failure", errors.New("summarize: status 500"), http.StatusBadGateway, ErrCodeSummaryFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := stubSummarySvc{regen: func(context.Context, string) (*domain.AISummary, error) {
				return nil, tc.err
			}}
			h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, stubReviewSvc{}, svc, nil)

			r := gin.New()
			r.POST("/sources/:id/summary/regenerate", h.RegenerateSummary)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/sources/"+uuid.NewString()+"/summary/regenerate", nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("want %d, got %d body=%s", tc.want, w.Code, w.Body.String())
			}
			var out ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("json: %v", err)
			}
			if out.Code != tc.code {
				t.Fatalf("code = %q, want %q", out.Code, tc.code)
			}
		})
	}
}

func TestRegenerateSummary_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotID string
	now := time.Now().UTC()
	svc := stubSummarySvc{regen: func(_ context.Context, sourceID string) (*domain.AISummary, error) {
		gotID = sourceID
		return &domain.AISummary{
			ID:          "sum-1",
			SourceID:    sourceID,
			Summary:     "Customers praise the coffee but complain about queue times.",
			Model:       "gpt-4o-mini",
			TokenCount:  180,
			GeneratedAt: now,
			ValidUntil:  now.Add(24 * time.Hour),
		}, nil
	}}
	h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, stubReviewSvc{}, svc, nil)
	r := gin.New()
	r.POST("/sources/:id/summary/regenerate", h.RegenerateSummary)

	id := uuid.NewString()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sources/"+id+"/summary/regenerate", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("regenerate -> %d body=%s", w.Code, w.Body.String())
	}
	if gotID != id {
		t.Fatalf("svc arg = %q", gotID)
	}
	var out RegenerateSummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Summary == nil || out.Summary.ID != "sum-1" || out.Summary.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected summary: %#v", out.Summary)
	}
}
