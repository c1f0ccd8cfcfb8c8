// Package services – DashboardService
//
// This file assembles the brand dashboard: combined and per-source rollups
// over a date range, a per-day series for charting, recent negative reviews
// with their most frequent complaint terms, the AI summary (single-source
// scope only), and a classification accuracy figure derived from the audit
// history.
//
// The read path never scans raw reviews for numbers; everything numeric
// comes from the materialized aggregates. Assembled responses are cached
// under "dash:<brand>:..." keys and carry a weak ETag derived from the
// aggregate and summary state, so pollers revalidate cheaply and invalidation
// is a brand-prefix eviction.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/cache"
	"github.com/tbourn/go-review-backend/internal/domain"
	"github.com/tbourn/go-review-backend/internal/insights"
	"github.com/tbourn/go-review-backend/internal/observability"
	"github.com/tbourn/go-review-backend/internal/repo"
)

// maxDashboardRangeDays caps the requested window so one request cannot ask
// for years of daily rows.
const maxDashboardRangeDays = 366

// DayPoint is one day of the dashboard's time series, combined across the
// sources in scope. Days with no aggregate rows are omitted.
type DayPoint struct {
	Date          string  `json:"date"`
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NeutralCount  int     `json:"neutral_count"`
}

// SourceOverview is one source's slice of the dashboard: identity, sync
// health, and its own rollup over the requested range.
type SourceOverview struct {
	SourceID       string            `json:"source_id"`
	Platform       domain.Platform   `json:"platform"`
	DisplayName    string            `json:"display_name"`
	Active         bool              `json:"active"`
	LastSyncedAt   *time.Time        `json:"last_synced_at,omitempty"`
	LastSyncStatus *domain.JobStatus `json:"last_sync_status,omitempty"`
	LastSyncError  *string           `json:"last_sync_error,omitempty"`
	Totals         Rollup            `json:"totals"`
}

// ClassificationAccuracy reports how often the AI classification survived
// human review: corrections over initial classifications, from the
// append-only audit history.
type ClassificationAccuracy struct {
	InitialCount    int64   `json:"initial_count"`
	CorrectionCount int64   `json:"correction_count"`
	Accuracy        float64 `json:"accuracy"`
}

// Dashboard is the assembled response for one (brand, scope, range) request.
type Dashboard struct {
	BrandID          string                 `json:"brand_id"`
	SourceID         string                 `json:"source_id,omitempty"`
	From             string                 `json:"from"`
	To               string                 `json:"to"`
	Totals           Rollup                 `json:"totals"`
	Days             []DayPoint             `json:"days"`
	Sources          []SourceOverview       `json:"sources"`
	RecentNegative   []domain.Review        `json:"recent_negative"`
	TopNegativeTerms []insights.Term        `json:"top_negative_terms"`
	Summary          *domain.AISummary      `json:"summary,omitempty"`
	Classification   ClassificationAccuracy `json:"classification"`
	GeneratedAt      time.Time              `json:"generated_at"`

	// ETag identifies this exact derived state for HTTP revalidation. Not
	// part of the JSON body; the transport sends it as a header.
	ETag string `json:"-"`
}

// DashboardService assembles and caches brand dashboards.
type DashboardService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Summaries provides the AI summary shown in single-source scope.
	Summaries *SummaryService

	// Cache holds assembled responses keyed by (brand, scope, range). May
	// be nil to disable response caching.
	Cache cache.Store

	// NegativeLimit caps the recent negative reviews shown.
	NegativeLimit int

	// TermsLimit caps the ranked complaint terms shown.
	TermsLimit int

	// TermsWindow is how many recent negative reviews feed term extraction.
	TermsWindow int
}

// NewDashboardService constructs a DashboardService showing the 5 newest
// negative reviews and the top 5 complaint terms over a 50-review window.
func NewDashboardService(db *gorm.DB, summaries *SummaryService, store cache.Store) *DashboardService {
	return &DashboardService{
		DB:            db,
		Summaries:     summaries,
		Cache:         store,
		NegativeLimit: 5,
		TermsLimit:    5,
		TermsWindow:   50,
	}
}

// Get assembles the dashboard for a brand over [from, to], both inclusive
// YYYY-MM-DD days. Empty bounds default to the trailing 30 days ending
// today (UTC). A non-empty sourceID narrows the scope to that single source,
// which must belong to the brand. Ranges that fail to parse, run backwards,
// or exceed a year are rejected with ErrInvalidDateRange.
func (s *DashboardService) Get(ctx context.Context, brandID, sourceID, from, to string) (*Dashboard, error) {
	tr := otel.Tracer("services/dashboard")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(
		attribute.String("brand.id", brandID),
	))
	defer span.End()

	now := time.Now().UTC()
	if to == "" {
		to = domain.DayOf(now)
	}
	if from == "" {
		from = domain.DayOf(now.AddDate(0, 0, -29))
	}
	fromT, err := time.ParseInLocation(domain.DateLayout, from, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	toT, err := time.ParseInLocation(domain.DateLayout, to, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	if fromT.After(toT) {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidDateRange, from, to)
	}
	if toT.Sub(fromT) > maxDashboardRangeDays*24*time.Hour {
		return nil, fmt.Errorf("%w: window exceeds %d days", ErrInvalidDateRange, maxDashboardRangeDays)
	}

	key := dashboardCachePrefix(brandID) + sourceID + ":" + from + ":" + to
	if s.Cache != nil {
		if v, ok := s.Cache.Get(key); ok {
			if d, ok := v.(*Dashboard); ok {
				observability.DashboardCacheHit()
				return d, nil
			}
		}
		observability.DashboardCacheMiss()
	}

	sources, err := repo.ListSources(ctx, s.DB, brandID)
	if err != nil {
		return nil, err
	}
	scoped := sources
	if sourceID != "" {
		scoped = nil
		for i := range sources {
			if sources[i].ID == sourceID {
				scoped = sources[i : i+1]
				break
			}
		}
		if scoped == nil {
			return nil, ErrSourceNotFound
		}
	}
	ids := make([]string, 0, len(scoped))
	for i := range scoped {
		ids = append(ids, scoped[i].ID)
	}

	rows, err := repo.ListAggregates(ctx, s.DB, ids, from, to)
	if err != nil {
		return nil, err
	}

	negatives, err := repo.ListRecentNegativeReviews(ctx, s.DB, ids, s.TermsWindow)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(negatives))
	for i := range negatives {
		texts = append(texts, negatives[i].Content)
	}
	shown := negatives
	if len(shown) > s.NegativeLimit {
		shown = shown[:s.NegativeLimit]
	}

	var summary *domain.AISummary
	if len(scoped) == 1 {
		summary, err = s.Summaries.Current(ctx, &scoped[0])
		if err != nil {
			// The dashboard renders without a summary rather than failing.
			log.Warn().
				Err(err).
				Str("source_id", scoped[0].ID).
				Msg("dashboard summary unavailable")
			summary = nil
		}
	}

	initial, corrections, err := repo.ClassificationStats(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}

	aggCount, maxCalc, err := repo.AggregatesStats(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		BrandID:          brandID,
		SourceID:         sourceID,
		From:             from,
		To:               to,
		Totals:           RollupAggregates(rows),
		Days:             daySeries(rows),
		Sources:          sourceOverviews(scoped, rows),
		RecentNegative:   shown,
		TopNegativeTerms: insights.TopTerms(texts, s.TermsLimit),
		Summary:          summary,
		Classification:   accuracy(initial, corrections),
		GeneratedAt:      now,
		ETag:             dashboardETag(brandID, sourceID, from, to, aggCount, maxCalc, summary),
	}
	if s.Cache != nil {
		s.Cache.Put(key, d)
	}
	return d, nil
}

// daySeries combines the aggregate rows into one point per day. Rows arrive
// ordered by date, so grouping is a single pass.
func daySeries(rows []domain.DashboardAggregate) []DayPoint {
	var out []DayPoint
	for i := 0; i < len(rows); {
		j := i
		for j < len(rows) && rows[j].Date == rows[i].Date {
			j++
		}
		r := RollupAggregates(rows[i:j])
		out = append(out, DayPoint{
			Date:          rows[i].Date,
			TotalReviews:  r.TotalReviews,
			AverageRating: r.AverageRating,
			PositiveCount: r.PositiveCount,
			NegativeCount: r.NegativeCount,
			NeutralCount:  r.NeutralCount,
		})
		i = j
	}
	return out
}

// sourceOverviews builds the per-source section in listing order.
func sourceOverviews(scoped []domain.ReviewSource, rows []domain.DashboardAggregate) []SourceOverview {
	bySource := make(map[string][]domain.DashboardAggregate)
	for _, row := range rows {
		bySource[row.SourceID] = append(bySource[row.SourceID], row)
	}
	out := make([]SourceOverview, 0, len(scoped))
	for i := range scoped {
		src := &scoped[i]
		out = append(out, SourceOverview{
			SourceID:       src.ID,
			Platform:       src.Platform,
			DisplayName:    src.DisplayName,
			Active:         src.Active,
			LastSyncedAt:   src.LastSyncedAt,
			LastSyncStatus: src.LastSyncStatus,
			LastSyncError:  src.LastSyncError,
			Totals:         RollupAggregates(bySource[src.ID]),
		})
	}
	return out
}

// accuracy derives the surviving-classification rate from audit counts. A
// review corrected twice counts twice; the figure is a health signal, not an
// exact per-review measure. No classifications at all reads as 1.
func accuracy(initial, corrections int64) ClassificationAccuracy {
	acc := 1.0
	if initial > 0 {
		acc = 1 - float64(corrections)/float64(initial)
		if acc < 0 {
			acc = 0
		}
	}
	return ClassificationAccuracy{
		InitialCount:    initial,
		CorrectionCount: corrections,
		Accuracy:        acc,
	}
}

// dashboardETag derives a weak validator from everything that changes when
// the dashboard's derived state changes: the aggregate row count, the newest
// recalculation time, and the summary generation time. Weak because two
// assemblies of the same derived state still differ in GeneratedAt.
func dashboardETag(brandID, sourceID, from, to string, aggCount int64, maxCalc *time.Time, summary *domain.AISummary) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d", brandID, sourceID, from, to, aggCount)
	if maxCalc != nil {
		fmt.Fprintf(h, "|%d", maxCalc.UnixNano())
	}
	if summary != nil {
		fmt.Fprintf(h, "|%d", summary.GeneratedAt.UnixNano())
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:8]) + `"`
}
