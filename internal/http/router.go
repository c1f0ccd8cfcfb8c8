// Package httpapi assembles the HTTP surface of the review service: the
// Gin engine, the shared middleware stack, and the versioned API that
// exposes sources, sync jobs, dashboards, reviews, and summaries.
//
// RegisterRoutes is the single entry point. It mounts middleware in a
// fixed order, builds the service graph from the injected dependencies,
// and returns the sync service so the caller can attach the worker pool
// and scheduler that execute jobs in the background.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tbourn/go-review-backend/docs"
	"github.com/tbourn/go-review-backend/internal/ai"
	"github.com/tbourn/go-review-backend/internal/cache"
	"github.com/tbourn/go-review-backend/internal/config"
	"github.com/tbourn/go-review-backend/internal/http/handlers"
	"github.com/tbourn/go-review-backend/internal/http/middleware"
	"github.com/tbourn/go-review-backend/internal/provider"
	"github.com/tbourn/go-review-backend/internal/repo"
	"github.com/tbourn/go-review-backend/internal/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// maxBodyBytes caps request bodies across the API. Create and update
// payloads are small JSON documents; nothing legitimate approaches this.
const maxBodyBytes = 1 << 20

// RegisterRoutes wires middleware, system endpoints, and the versioned
// public API onto r. The returned sync service still needs the worker
// pool and scheduler attached; do that before the engine starts serving.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, providers *provider.Registry, classifier ai.Classifier, summarizer ai.Summarizer, cfg config.Config) *services.SyncService {
	r.HandleMethodNotAllowed = true

	installMiddleware(r, db, cfg)
	mountSystemRoutes(r, cfg)

	h, syncSvc := buildServices(db, providers, classifier, summarizer, cfg)
	mountAPI(groupWithPrefix(r, cfg.APIBasePath), h)

	return syncSvc
}

// installMiddleware mounts the shared stack. The order is load-bearing:
// tracing wraps everything, the request id must exist before the logger
// runs, recovery sits after the logger so panics still produce a log
// line, and the idempotency check precedes the rate limiter so replayed
// triggers never spend tokens.
func installMiddleware(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // provider credentials must never reach logs
		},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	// /metrics negotiates its own encoding with the scraper.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(middleware.Metrics())

	// The scrape endpoint mounts here, before the limiter and CORS, so
	// scrape traffic is never throttled.
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// A lookup error counts as a miss: the trigger path stays available
	// when the idempotency table is unreachable.
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, userID, sourceID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, sourceID, key, now)
			return err == nil && rec != nil, nil
		},
	))

	limiter := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(limiter.Handler())

	installCORS(r, cfg.CORS.AllowedOrigins)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))
}

// installCORS configures cross-origin access. An empty allowlist opens
// the API to every origin; otherwise only listed origins are admitted
// and the matching origin is echoed with a Vary hint for caches.
func installCORS(r *gin.Engine, origins []string) {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After"},
		AllowCredentials: false, // must stay false whenever the wildcard is in play
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// The wildcard header is also set for requests without an Origin,
		// which keeps plain probes and curl sessions readable.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
	} else {
		base.AllowOrigins = origins
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			origin := c.GetHeader("Origin")
			if _, ok := allowed[origin]; ok {
				hdr := c.Writer.Header()
				hdr.Set("Access-Control-Allow-Origin", origin)
				hdr.Add("Vary", "Origin")
			}
			c.Next()
		})
	}

	r.Use(cors.New(base))
}

// mountSystemRoutes registers everything outside the versioned API:
// liveness, docs, and the JSON fallbacks for unknown routes and methods.
func mountSystemRoutes(r *gin.Engine, cfg config.Config) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})
}

// buildServices assembles the application service graph bottom up and
// returns the handler set plus the sync service, which the caller wires
// to the worker pool and scheduler.
func buildServices(db *gorm.DB, providers *provider.Registry, classifier ai.Classifier, summarizer ai.Summarizer, cfg config.Config) (*handlers.Handlers, *services.SyncService) {
	store := cache.NewMemory(cfg.Cache.DashboardTTL)

	aggSvc := services.NewAggregateService(db)

	sumSvc := services.NewSummaryService(db, summarizer)
	sumSvc.TTL = cfg.AI.SummaryTTL
	sumSvc.MaxReviews = cfg.AI.SummaryMaxReviews

	inv := services.NewInvalidator(aggSvc, sumSvc, store)
	importer := services.NewImportService(db, classifier)

	syncSvc := services.NewSyncService(db, providers, importer, inv)
	syncSvc.ManualCooldown = cfg.Sync.ManualCooldown
	syncSvc.ScheduledEvery = cfg.Sync.ScheduledEvery
	syncSvc.InitialBackfill = cfg.Sync.InitialBackfill
	syncSvc.PageSize = cfg.Sync.PageSize
	syncSvc.MaxPages = cfg.Sync.MaxPages
	syncSvc.StuckAfter = cfg.Sync.StuckAfter
	syncSvc.IdempotencyTTL = cfg.IdempotencyTTL

	srcSvc := services.NewSourceService(db, syncSvc, store)
	dashSvc := services.NewDashboardService(db, sumSvc, store)
	revSvc := services.NewReviewService(db, inv)

	// Ownership stays allow-all until an auth layer is wired upstream.
	h := handlers.New(srcSvc, syncSvc, dashSvc, revSvc, sumSvc, nil)
	return h, syncSvc
}

// mountAPI attaches the versioned endpoints.
func mountAPI(api *gin.RouterGroup, h *handlers.Handlers) {
	// Sources
	api.POST("/sources", h.CreateSource)
	api.GET("/sources", h.ListSources)
	api.GET("/sources/:id", h.GetSource)
	api.PATCH("/sources/:id", h.UpdateSource)
	api.DELETE("/sources/:id", h.DeleteSource)

	// Sync jobs
	api.POST("/sources/:id/sync", h.TriggerSync)
	api.POST("/brands/:id/sync", h.TriggerBrandSync)
	api.GET("/sync-jobs/stuck", h.ListStuckJobs)
	api.GET("/sync-jobs/:id", h.GetSyncJob)
	api.GET("/sources/:id/sync-jobs", h.ListSourceJobs)

	// Dashboard
	api.GET("/brands/:id/dashboard", h.GetDashboard)

	// Reviews
	api.PATCH("/reviews/:id/sentiment", h.CorrectSentiment)
	api.GET("/reviews/:id/history", h.SentimentHistory)

	// Summaries
	api.POST("/sources/:id/summary/regenerate", h.RegenerateSummary)
}

// limitBody caps the request body at max bytes. Reads past the cap fail,
// which the JSON binder reports as a client error.
func limitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

// groupWithPrefix mounts the API group, treating "/" as the root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "/" {
		prefix = ""
	}
	return r.Group(prefix)
}
