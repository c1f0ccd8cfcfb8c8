package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Counters are process-global, so every assertion is against a baseline read
// before the increment rather than against an absolute value.

func TestJobFinished_CountsPerOutcome(t *testing.T) {
	baseDone := testutil.ToFloat64(syncJobs.WithLabelValues("completed"))
	baseFail := testutil.ToFloat64(syncJobs.WithLabelValues("failed"))
	baseStuck := testutil.ToFloat64(syncJobs.WithLabelValues("stuck"))

	JobFinished("completed")
	JobFinished("completed")
	JobFinished("failed")
	JobFinished("stuck")

	if got := testutil.ToFloat64(syncJobs.WithLabelValues("completed")); got != baseDone+2 {
		t.Fatalf("completed = %v; want %v", got, baseDone+2)
	}
	if got := testutil.ToFloat64(syncJobs.WithLabelValues("failed")); got != baseFail+1 {
		t.Fatalf("failed = %v; want %v", got, baseFail+1)
	}
	if got := testutil.ToFloat64(syncJobs.WithLabelValues("stuck")); got != baseStuck+1 {
		t.Fatalf("stuck = %v; want %v", got, baseStuck+1)
	}
}

func TestReviewsImported_SplitsNewAndUpdated(t *testing.T) {
	baseNew := testutil.ToFloat64(importedReviews.WithLabelValues("google", "new"))
	baseUpd := testutil.ToFloat64(importedReviews.WithLabelValues("google", "updated"))

	ReviewsImported("google", 3, 2)

	if got := testutil.ToFloat64(importedReviews.WithLabelValues("google", "new")); got != baseNew+3 {
		t.Fatalf("new = %v; want %v", got, baseNew+3)
	}
	if got := testutil.ToFloat64(importedReviews.WithLabelValues("google", "updated")); got != baseUpd+2 {
		t.Fatalf("updated = %v; want %v", got, baseUpd+2)
	}

	// A batch that wrote nothing must not touch either series.
	ReviewsImported("google", 0, 0)
	if got := testutil.ToFloat64(importedReviews.WithLabelValues("google", "new")); got != baseNew+3 {
		t.Fatalf("new after empty batch = %v; want %v", got, baseNew+3)
	}
}

func TestSummaryGenerated_CountsPerPlatform(t *testing.T) {
	base := testutil.ToFloat64(summaries.WithLabelValues("trustpilot"))

	SummaryGenerated("trustpilot")

	if got := testutil.ToFloat64(summaries.WithLabelValues("trustpilot")); got != base+1 {
		t.Fatalf("summaries = %v; want %v", got, base+1)
	}
}

func TestDashboardCacheEvents(t *testing.T) {
	baseHit := testutil.ToFloat64(dashboardCache.WithLabelValues("hit"))
	baseMiss := testutil.ToFloat64(dashboardCache.WithLabelValues("miss"))
	baseEvict := testutil.ToFloat64(dashboardCache.WithLabelValues("evicted"))

	DashboardCacheHit()
	DashboardCacheMiss()
	DashboardCacheMiss()
	DashboardCacheEvicted(4)
	DashboardCacheEvicted(0) // no-op sweep

	if got := testutil.ToFloat64(dashboardCache.WithLabelValues("hit")); got != baseHit+1 {
		t.Fatalf("hit = %v; want %v", got, baseHit+1)
	}
	if got := testutil.ToFloat64(dashboardCache.WithLabelValues("miss")); got != baseMiss+2 {
		t.Fatalf("miss = %v; want %v", got, baseMiss+2)
	}
	if got := testutil.ToFloat64(dashboardCache.WithLabelValues("evicted")); got != baseEvict+4 {
		t.Fatalf("evicted = %v; want %v", got, baseEvict+4)
	}
}
