package observability

import "github.com/prometheus/client_golang/prometheus"

// Pipeline counters. HTTP traffic is instrumented by the middleware package;
// the collectors here count the work the service layer performs, which keeps
// running regardless of which endpoint or scheduler sweep triggered it.
var (
	syncJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_sync_jobs_total",
			Help: "Terminal sync job outcomes (completed, failed, stuck).",
		},
		[]string{"outcome"},
	)

	importedReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_imports_total",
			Help: "Reviews written by import batches, by platform and write kind (new, updated).",
		},
		[]string{"platform", "kind"},
	)

	summaries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_summaries_generated_total",
			Help: "AI summaries persisted, by platform.",
		},
		[]string{"platform"},
	)

	dashboardCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_cache_events_total",
			Help: "Dashboard response cache traffic (hit, miss, evicted).",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(syncJobs, importedReviews, summaries, dashboardCache)
}

// JobFinished records one terminal sync job outcome: "completed", "failed",
// or "stuck" when the sweep failed it.
func JobFinished(outcome string) {
	syncJobs.WithLabelValues(outcome).Inc()
}

// ReviewsImported records how many reviews one import batch created and how
// many it updated for the given platform.
func ReviewsImported(platform string, created, updated int) {
	if created > 0 {
		importedReviews.WithLabelValues(platform, "new").Add(float64(created))
	}
	if updated > 0 {
		importedReviews.WithLabelValues(platform, "updated").Add(float64(updated))
	}
}

// SummaryGenerated records one persisted AI summary for the platform.
func SummaryGenerated(platform string) {
	summaries.WithLabelValues(platform).Inc()
}

// DashboardCacheHit records a dashboard served from cache.
func DashboardCacheHit() { dashboardCache.WithLabelValues("hit").Inc() }

// DashboardCacheMiss records a dashboard assembled from the database.
func DashboardCacheMiss() { dashboardCache.WithLabelValues("miss").Inc() }

// DashboardCacheEvicted records n entries dropped by an invalidation sweep.
// Zero-entry sweeps are not recorded.
func DashboardCacheEvicted(n int) {
	if n > 0 {
		dashboardCache.WithLabelValues("evicted").Add(float64(n))
	}
}
