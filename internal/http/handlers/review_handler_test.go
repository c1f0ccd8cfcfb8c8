package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/services"
)

// ---------- CorrectSentiment ----------

func TestCorrectSentiment_UUID_BadJSON_InvalidLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Non-UUID id -> 400
	{
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, stubReviewSvc{}, stubSummarySvc{}, nil)
		r := gin.New()
		r.PATCH("/reviews/:id/sentiment", h.CorrectSentiment)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/reviews/nope/sentiment", bytes.NewBufferString(`{"sentiment":"negative"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad id -> %d", w.Code)
		}
	}

	// Bad JSON -> 400
	{
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, stubReviewSvc{}, stubSummarySvc{}, nil)
		r := gin.New()
		r.PATCH("/reviews/:id/sentiment", h.CorrectSentiment)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/reviews/"+uuid.NewString()+"/sentiment", bytes.NewBufferString("{bad"))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// Unknown label -> 422 invalid_sentiment
	{
		var gotLabel domain.Sentiment
		svc := stubReviewSvc{correct: func(_ context.Context, _, _ string, s domain.Sentiment) (*domain.Review, error) {
			gotLabel = s
			return nil, fmt.Errorf("%w: %q", services.ErrInvalidSentiment, string(s))
		}}
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, svc, stubSummarySvc{}, nil)
		r := gin.New()
		r.PATCH("/reviews/:id/sentiment", h.CorrectSentiment)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/reviews/"+uuid.NewString()+"/sentiment", bytes.NewBufferString(`{"sentiment":"meh"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("bad label -> %d body=%s", w.Code, w.Body.String())
		}
		if gotLabel != domain.Sentiment("meh") {
			t.Fatalf("label = %q", gotLabel)
		}
		var out ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Code != ErrCodeInvalidSentiment {
			t.Fatalf("code = %q", out.Code)
		}
	}
}

func TestCorrectSentiment_NotFound_Internal_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Unknown review -> 404
	{
		svc := stubReviewSvc{correct: func(context.Context, string, string, domain.Sentiment) (*domain.Review, error) {
			return nil, services.ErrReviewNotFound
		}}
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, svc, stubSummarySvc{}, nil)
		r := gin.New()
		r.PATCH("/reviews/:id/sentiment", h.CorrectSentiment)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/reviews/"+uuid.NewString()+"/sentiment", bytes.NewBufferString(`{"sentiment":"positive"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("not found -> %d", w.Code)
		}
	}

	// Internal error -> 500
	{
		svc := stubReviewSvc{correct: func(context.Context, string, string, domain.Sentiment) (*domain.Review, error) {
			return nil, gorm.ErrInvalidDB
		}}
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, svc, stubSummarySvc{}, nil)
		r := gin.New()
		r.PATCH("/reviews/:id/sentiment", h.CorrectSentiment)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/reviews/"+uuid.NewString()+"/sentiment", bytes.NewBufferString(`{"sentiment":"positive"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("internal -> %d", w.Code)
		}
	}

	// Success -> 200, label normalized before reaching the service
	{
		var got struct {
			uid, id string
			label   domain.Sentiment
		}
		svc := stubReviewSvc{correct: func(_ context.Context, uid, id string, s domain.Sentiment) (*domain.Review, error) {
			got.uid, got.id, got.label = uid, id, s
			return &domain.Review{ID: id, Sentiment: s, SentimentConfidence: 1}, nil
		}}
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, svc, stubSummarySvc{}, nil)
		r := gin.New()
		r.PATCH("/reviews/:id/sentiment", h.CorrectSentiment)

		id := uuid.NewString()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/reviews/"+id+"/sentiment", bytes.NewBufferString(`{"sentiment":"  NEGATIVE "}`))
		req.Header.Set("X-User-ID", "u9")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("correct -> %d body=%s", w.Code, w.Body.String())
		}
		if got.uid != "u9" || got.id != id || got.label != domain.SentimentNegative {
			t.Fatalf("svc args: %#v", got)
		}
		var out CorrectSentimentResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Review == nil || out.Review.Sentiment != domain.SentimentNegative || out.Review.SentimentConfidence != 1 {
			t.Fatalf("unexpected review: %#v", out.Review)
		}
		if out.AggregatesStale {
			t.Fatalf("stale flag on clean correction")
		}
	}
}

func TestCorrectSentiment_StaleAggregates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Correction committed but the rebuild failed -> 200 with the stale marker
	svc := stubReviewSvc{correct: func(_ context.Context, _, id string, s domain.Sentiment) (*domain.Review, error) {
		return &domain.Review{ID: id, Sentiment: s, SentimentConfidence: 1},
			fmt.Errorf("rebuild aggregates: %w", services.ErrAggregateRebuild)
	}}
	h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, svc, stubSummarySvc{}, nil)
	r := gin.New()
	r.PATCH("/reviews/:id/sentiment", h.CorrectSentiment)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/reviews/"+uuid.NewString()+"/sentiment", bytes.NewBufferString(`{"sentiment":"negative"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stale correct -> %d body=%s", w.Code, w.Body.String())
	}
	var out CorrectSentimentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Review == nil || !out.AggregatesStale {
		t.Fatalf("unexpected response: %#v", out)
	}
}

// ---------- SentimentHistory ----------

func TestSentimentHistory_UUID_NotFound_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Non-UUID id -> 400
	{
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, stubReviewSvc{}, stubSummarySvc{}, nil)
		r := gin.New()
		r.GET("/reviews/:id/history", h.SentimentHistory)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reviews/nope/history", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad id -> %d", w.Code)
		}
	}

	// Unknown review -> 404
	{
		svc := stubReviewSvc{history: func(context.Context, string) ([]domain.SentimentChange, error) {
			return nil, services.ErrReviewNotFound
		}}
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, svc, stubSummarySvc{}, nil)
		r := gin.New()
		r.GET("/reviews/:id/history", h.SentimentHistory)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reviews/"+uuid.NewString()+"/history", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("not found -> %d", w.Code)
		}
	}

	// Success -> 200, oldest first with the AI classification leading
	{
		actor := "u1"
		old := domain.SentimentPositive
		now := time.Now().UTC()
		svc := stubReviewSvc{history: func(_ context.Context, id string) ([]domain.SentimentChange, error) {
			return []domain.SentimentChange{
				{ID: "c1", ReviewID: id, NewSentiment: domain.SentimentPositive, Reason: domain.ChangeReasonAIInitial, CreatedAt: now.Add(-time.Hour)},
				{ID: "c2", ReviewID: id, OldSentiment: &old, NewSentiment: domain.SentimentNegative, Actor: &actor, Reason: domain.ChangeReasonUserCorrection, CreatedAt: now},
			}, nil
		}}
		h := New(stubSourceSvc{}, stubSyncSvc{}, stubDashSvc{}, svc, stubSummarySvc{}, nil)
		r := gin.New()
		r.GET("/reviews/:id/history", h.SentimentHistory)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reviews/"+uuid.NewString()+"/history", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("history -> %d body=%s", w.Code, w.Body.String())
		}
		var out SentimentHistoryResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if len(out.Changes) != 2 {
			t.Fatalf("changes = %d", len(out.Changes))
		}
		if out.Changes[0].Reason != domain.ChangeReasonAIInitial || out.Changes[0].OldSentiment != nil {
			t.Fatalf("first change: %#v", out.Changes[0])
		}
		last := out.Changes[1]
		if last.Reason != domain.ChangeReasonUserCorrection || last.Actor == nil || *last.Actor != "u1" {
			t.Fatalf("last change: %#v", last)
		}
	}
}
