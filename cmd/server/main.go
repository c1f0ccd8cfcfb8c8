// Review backend entrypoint.
//
// Boot order: load environment configuration, configure logging, open and
// migrate the SQLite database, set up tracing, build the platform provider
// registry and the AI clients, register the HTTP API, then attach the worker
// pool and the sync scheduler before serving. Shutdown drains in reverse:
// stop the scheduler, drain HTTP, drain the pool, flush traces.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-review-backend/internal/ai"
	"github.com/tbourn/go-review-backend/internal/config"
	httpapi "github.com/tbourn/go-review-backend/internal/http"
	"github.com/tbourn/go-review-backend/internal/observability"
	"github.com/tbourn/go-review-backend/internal/provider"
	"github.com/tbourn/go-review-backend/internal/repo"
	"github.com/tbourn/go-review-backend/internal/scheduler"
	"github.com/tbourn/go-review-backend/internal/sysutil"
	"github.com/tbourn/go-review-backend/internal/worker"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// @title        Review Backend API
// @version      1.0
// @description  Multi-platform review synchronization and dashboard aggregation service (Google, Facebook, Trustpilot).
// @license.name MIT
// @BasePath     /api/v1
func main() {
	// .env is optional; deployed environments configure the process env.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("version", version).Msg("starting review backend")

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup opentelemetry")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Fatal().Err(err).Msg("enable gorm tracing")
		}
	}

	// All platform clients share the provider throttling settings.
	pc := cfg.Provider
	providers := provider.NewRegistry(
		provider.NewGoogleClient(pc.GoogleBaseURL, pc.Timeout, pc.RateRPS, pc.RateBurst, pc.Retries),
		provider.NewFacebookClient(pc.FacebookBaseURL, pc.Timeout, pc.RateRPS, pc.RateBurst, pc.Retries),
		provider.NewTrustpilotClient(pc.TrustpilotBaseURL, pc.Timeout, pc.RateRPS, pc.RateBurst, pc.Retries),
	)

	// Model-backed classification and summaries when configured; otherwise
	// the keyword classifier runs and summaries stay disabled.
	var classifier ai.Classifier
	var summarizer ai.Summarizer
	if cfg.AI.Enabled {
		oc := ai.NewOpenAIClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.ClassifyModel, cfg.AI.SummaryModel, cfg.AI.Timeout)
		classifier, summarizer = oc, oc
	} else {
		classifier = ai.NewKeywordClassifier()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()

	syncSvc := httpapi.RegisterRoutes(r, db, providers, classifier, summarizer, cfg)

	// The pool executes jobs through the sync service, and the service
	// queues onto the pool. Close the loop before anything can trigger.
	pool := worker.NewPool(cfg.Sync.Workers, cfg.Sync.QueueSize, cfg.Sync.JobTimeout, syncSvc.ExecuteJob)
	syncSvc.Queue = pool

	sched := scheduler.NewScheduler(syncSvc, cfg.Sync.ScanInterval)
	sched.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.GinMode).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := pool.Stop(10 * time.Second); err != nil {
		log.Warn().Err(err).Msg("worker pool drain")
	}
	if err := shutdownOTel(ctx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	log.Info().Msg("server stopped")
}
