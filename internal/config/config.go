// Package config assembles the service configuration from environment
// variables. Every setting carries a default that works for local
// development, so an empty environment boots a usable instance. Load
// validates the assembled result and names the offending variable when a
// value would break the server or the sync pipeline.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every runtime setting the service reads at startup.
type Config struct {
	// HTTP server
	Port              string        // PORT, number only
	ReadTimeout       time.Duration // READ_TIMEOUT
	ReadHeaderTimeout time.Duration // READ_HEADER_TIMEOUT
	WriteTimeout      time.Duration // WRITE_TIMEOUT
	IdleTimeout       time.Duration // IDLE_TIMEOUT
	MaxHeaderBytes    int           // MAX_HEADER_BYTES
	GinMode           string        // GIN_MODE: debug, release or test

	// Logging and docs
	LogLevel       string // LOG_LEVEL: debug, info, warn, error, fatal, panic
	LogPretty      bool   // LOG_PRETTY: console output instead of JSON
	SwaggerEnabled bool   // SWAGGER_ENABLED: serve the Swagger UI
	APIBasePath    string // API_BASE_PATH: prefix for the versioned API

	// Storage
	DBPath string // DB_PATH: SQLite database file

	// Review pipeline
	Sync     SyncConfig
	Provider ProviderConfig
	AI       AIConfig
	Cache    CacheConfig

	// Per-caller throttling
	RateRPS   float64 // RATE_RPS: sustained requests per second per caller
	RateBurst int     // RATE_BURST: burst capacity per caller

	// Browser-facing posture
	CORS     CORSConfig
	Security SecurityConfig

	// Trigger replay window
	IdempotencyTTL time.Duration // IDEMPOTENCY_TTL: how long an Idempotency-Key answers with its original job

	// Tracing
	OTEL OTELConfig
}

// SyncConfig shapes the review sync pipeline: trigger cadence, how much
// history a first sync pulls, provider paging, and worker pool sizing.
type SyncConfig struct {
	ManualCooldown  time.Duration // SYNC_MANUAL_COOLDOWN: spacing between counted manual triggers per source
	ScheduledEvery  time.Duration // SYNC_SCHEDULED_EVERY: automatic sync interval per source
	InitialBackfill time.Duration // SYNC_INITIAL_BACKFILL: history window for a source's first sync
	PageSize        int           // SYNC_PAGE_SIZE: reviews per provider page
	MaxPages        int           // SYNC_MAX_PAGES: provider pages per job
	JobTimeout      time.Duration // SYNC_JOB_TIMEOUT: hard deadline per job run
	StuckAfter      time.Duration // SYNC_STUCK_AFTER: age at which an in-progress job counts as stuck
	Workers         int           // SYNC_WORKERS: concurrent job executions
	QueueSize       int           // SYNC_QUEUE_SIZE: pending submissions before the pool refuses
	ScanInterval    time.Duration // SYNC_SCAN_INTERVAL: pause between scheduler sweeps
}

// ProviderConfig governs calls to the platform review APIs. An empty base
// URL selects the platform's production endpoint.
type ProviderConfig struct {
	GoogleBaseURL     string        // PROVIDER_GOOGLE_BASE_URL
	FacebookBaseURL   string        // PROVIDER_FACEBOOK_BASE_URL
	TrustpilotBaseURL string        // PROVIDER_TRUSTPILOT_BASE_URL
	Timeout           time.Duration // PROVIDER_TIMEOUT: per-request deadline
	RateRPS           float64       // PROVIDER_RATE_RPS: sustained requests per second per platform
	RateBurst         int           // PROVIDER_RATE_BURST
	Retries           int           // PROVIDER_RETRIES: transient-failure retries per page
}

// AIConfig wires the sentiment and summary model integration. With
// Enabled off the importer classifies by star rating and summary
// generation is refused.
type AIConfig struct {
	Enabled           bool          // AI_ENABLED
	BaseURL           string        // AI_BASE_URL: empty selects the production host
	APIKey            string        // AI_API_KEY
	ClassifyModel     string        // AI_CLASSIFY_MODEL
	SummaryModel      string        // AI_SUMMARY_MODEL
	Timeout           time.Duration // AI_TIMEOUT: per model call
	SummaryTTL        time.Duration // SUMMARY_TTL: validity window of a generated summary
	SummaryMaxReviews int           // SUMMARY_MAX_REVIEWS: reviews fed into one generation
}

// CacheConfig sizes the in-memory response cache.
type CacheConfig struct {
	DashboardTTL time.Duration // DASHBOARD_CACHE_TTL: lifetime of an assembled dashboard response
}

// CORSConfig lists the browser origins allowed to call the API. An empty
// list opens the API to every origin.
type CORSConfig struct {
	AllowedOrigins []string // CORS_ALLOWED_ORIGINS, comma separated
}

// SecurityConfig toggles the strict-transport header for deployments that
// terminate TLS in front of the service.
type SecurityConfig struct {
	EnableHSTS bool          // ENABLE_HSTS
	HSTSMaxAge time.Duration // HSTS_MAX_AGE
}

// OTELConfig wires the OpenTelemetry trace exporter.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT: host:port of the OTLP gRPC collector
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE: plaintext instead of TLS
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG: fraction of traces kept, 0 to 1
}

// MustLoad is Load for main: it panics when the environment fails
// validation instead of returning the error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, fills in defaults for anything unset or
// unparsable, and validates the assembled configuration.
func Load() (Config, error) {
	cfg := Config{
		Port:              envString("PORT", "8080"),
		ReadTimeout:       envDuration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: envDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      envDuration("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       envDuration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    envInt("MAX_HEADER_BYTES", 1<<20),
		GinMode:           ginMode(),

		LogLevel:       logLevel(),
		LogPretty:      envBool("LOG_PRETTY", false),
		SwaggerEnabled: envBool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(envString("API_BASE_PATH", "/api/v1")),

		DBPath: envString("DB_PATH", "app.db"),

		Sync: SyncConfig{
			ManualCooldown:  envDuration("SYNC_MANUAL_COOLDOWN", 24*time.Hour),
			ScheduledEvery:  envDuration("SYNC_SCHEDULED_EVERY", 24*time.Hour),
			InitialBackfill: envDuration("SYNC_INITIAL_BACKFILL", 90*24*time.Hour),
			PageSize:        envInt("SYNC_PAGE_SIZE", 50),
			MaxPages:        envInt("SYNC_MAX_PAGES", 20),
			JobTimeout:      envDuration("SYNC_JOB_TIMEOUT", 10*time.Minute),
			StuckAfter:      envDuration("SYNC_STUCK_AFTER", 30*time.Minute),
			Workers:         envInt("SYNC_WORKERS", 4),
			QueueSize:       envInt("SYNC_QUEUE_SIZE", 64),
			ScanInterval:    envDuration("SYNC_SCAN_INTERVAL", 5*time.Minute),
		},

		Provider: ProviderConfig{
			GoogleBaseURL:     envString("PROVIDER_GOOGLE_BASE_URL", ""),
			FacebookBaseURL:   envString("PROVIDER_FACEBOOK_BASE_URL", ""),
			TrustpilotBaseURL: envString("PROVIDER_TRUSTPILOT_BASE_URL", ""),
			Timeout:           envDuration("PROVIDER_TIMEOUT", 15*time.Second),
			RateRPS:           envFloat("PROVIDER_RATE_RPS", 5.0),
			RateBurst:         envInt("PROVIDER_RATE_BURST", 5),
			Retries:           envInt("PROVIDER_RETRIES", 2),
		},

		AI: AIConfig{
			Enabled:           envBool("AI_ENABLED", false),
			BaseURL:           envString("AI_BASE_URL", ""),
			APIKey:            envString("AI_API_KEY", ""),
			ClassifyModel:     envString("AI_CLASSIFY_MODEL", "gpt-4o-mini"),
			SummaryModel:      envString("AI_SUMMARY_MODEL", "gpt-4o-mini"),
			Timeout:           envDuration("AI_TIMEOUT", 60*time.Second),
			SummaryTTL:        envDuration("SUMMARY_TTL", 24*time.Hour),
			SummaryMaxReviews: envInt("SUMMARY_MAX_REVIEWS", 100),
		},

		Cache: CacheConfig{
			DashboardTTL: envDuration("DASHBOARD_CACHE_TTL", 5*time.Minute),
		},

		RateRPS:   envFloat("RATE_RPS", 5.0),
		RateBurst: envInt("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Security: SecurityConfig{
			EnableHSTS: envBool("ENABLE_HSTS", false),
			HSTSMaxAge: envDuration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			Endpoint:    envString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: envString("OTEL_SERVICE_NAME", "go-review-backend"),
			SampleRatio: envFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate rejects values the service cannot run with. Messages name the
// offending environment variable so an operator can fix the deployment
// without reading code.
func (c Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if c.MaxHeaderBytes < 1 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if err := c.Sync.validate(); err != nil {
		return err
	}
	if err := c.Provider.validate(); err != nil {
		return err
	}
	if err := c.AI.validate(); err != nil {
		return err
	}
	if c.Cache.DashboardTTL <= 0 {
		return errors.New("DASHBOARD_CACHE_TTL must be > 0")
	}
	if c.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if c.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if c.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if c.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// validate rejects cadence and sizing values the pipeline cannot run
// with: intervals must be positive, stuck detection must not fire while
// a healthy job could still be running, and the pool needs at least one
// worker and one queue slot.
func (s SyncConfig) validate() error {
	if s.ManualCooldown <= 0 || s.ScheduledEvery <= 0 || s.InitialBackfill <= 0 {
		return errors.New("sync intervals must be positive durations")
	}
	if s.PageSize < 1 || s.PageSize > 200 {
		return errors.New("SYNC_PAGE_SIZE must be between 1 and 200")
	}
	if s.MaxPages < 1 {
		return errors.New("SYNC_MAX_PAGES must be >= 1")
	}
	if s.JobTimeout <= 0 || s.StuckAfter <= 0 || s.ScanInterval <= 0 {
		return errors.New("sync deadlines must be positive durations")
	}
	if s.StuckAfter < s.JobTimeout {
		return errors.New("SYNC_STUCK_AFTER must be >= SYNC_JOB_TIMEOUT")
	}
	if s.Workers < 1 || s.QueueSize < 1 {
		return errors.New("SYNC_WORKERS and SYNC_QUEUE_SIZE must be >= 1")
	}
	return nil
}

func (p ProviderConfig) validate() error {
	if p.Timeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT must be > 0")
	}
	if p.RateRPS <= 0 {
		return errors.New("PROVIDER_RATE_RPS must be > 0")
	}
	if p.RateBurst < 1 {
		return errors.New("PROVIDER_RATE_BURST must be >= 1")
	}
	if p.Retries < 0 {
		return errors.New("PROVIDER_RETRIES must be >= 0")
	}
	return nil
}

func (a AIConfig) validate() error {
	if a.Enabled && strings.TrimSpace(a.APIKey) == "" {
		return errors.New("AI_API_KEY must be set when AI_ENABLED is true")
	}
	if a.Timeout <= 0 || a.SummaryTTL <= 0 {
		return errors.New("AI durations must be positive")
	}
	if a.SummaryMaxReviews < 1 {
		return errors.New("SUMMARY_MAX_REVIEWS must be >= 1")
	}
	return nil
}

// logLevel reads LOG_LEVEL and maps the common "warning" spelling onto
// zerolog's "warn".
func logLevel() string {
	lvl := strings.ToLower(envString("LOG_LEVEL", "info"))
	if lvl == "warning" {
		lvl = "warn"
	}
	return lvl
}

// ginMode constrains GIN_MODE to the three modes gin accepts; anything
// else runs as release.
func ginMode() string {
	switch m := strings.ToLower(envString("GIN_MODE", "release")); m {
	case "debug", "release", "test":
		return m
	}
	return "release"
}

// Environment readers. An unset or empty variable reads as absent, and a
// value that fails to parse falls back to the default rather than
// aborting startup; validation catches anything that matters.

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(envString(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(envString(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(envString(key, ""))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(envString(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

// splitCSV splits a comma separated list, dropping blanks and padding.
// An empty input yields nil.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath collapses an API base path to exactly one leading
// slash and no trailing slash, so route groups mount predictably.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return "/" + p
}
