package config

import (
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

// allEnvKeys lists every variable Load reads. Tests that depend on
// defaults pin each one to the empty string, which the env readers treat
// as unset, so a variable exported by the host shell cannot leak in.
var allEnvKeys = []string{
	"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT",
	"MAX_HEADER_BYTES", "GIN_MODE",
	"LOG_LEVEL", "LOG_PRETTY", "SWAGGER_ENABLED", "API_BASE_PATH",
	"DB_PATH",
	"SYNC_MANUAL_COOLDOWN", "SYNC_SCHEDULED_EVERY", "SYNC_INITIAL_BACKFILL",
	"SYNC_PAGE_SIZE", "SYNC_MAX_PAGES", "SYNC_JOB_TIMEOUT", "SYNC_STUCK_AFTER",
	"SYNC_WORKERS", "SYNC_QUEUE_SIZE", "SYNC_SCAN_INTERVAL",
	"PROVIDER_GOOGLE_BASE_URL", "PROVIDER_FACEBOOK_BASE_URL", "PROVIDER_TRUSTPILOT_BASE_URL",
	"PROVIDER_TIMEOUT", "PROVIDER_RATE_RPS", "PROVIDER_RATE_BURST", "PROVIDER_RETRIES",
	"AI_ENABLED", "AI_BASE_URL", "AI_API_KEY", "AI_CLASSIFY_MODEL", "AI_SUMMARY_MODEL",
	"AI_TIMEOUT", "SUMMARY_TTL", "SUMMARY_MAX_REVIEWS",
	"DASHBOARD_CACHE_TTL",
	"RATE_RPS", "RATE_BURST",
	"CORS_ALLOWED_ORIGINS", "ENABLE_HSTS", "HSTS_MAX_AGE",
	"IDEMPOTENCY_TTL",
	"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
	"OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
}

func pinDefaults(t *testing.T) {
	t.Helper()
	for _, key := range allEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultsCoverEverySection(t *testing.T) {
	pinDefaults(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with empty environment: %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"Port", cfg.Port, "8080"},
		{"ReadTimeout", cfg.ReadTimeout, 15 * time.Second},
		{"WriteTimeout", cfg.WriteTimeout, 20 * time.Second},
		{"MaxHeaderBytes", cfg.MaxHeaderBytes, 1 << 20},
		{"GinMode", cfg.GinMode, "release"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"APIBasePath", cfg.APIBasePath, "/api/v1"},
		{"DBPath", cfg.DBPath, "app.db"},
		{"Sync.ManualCooldown", cfg.Sync.ManualCooldown, 24 * time.Hour},
		{"Sync.InitialBackfill", cfg.Sync.InitialBackfill, 90 * 24 * time.Hour},
		{"Sync.PageSize", cfg.Sync.PageSize, 50},
		{"Sync.MaxPages", cfg.Sync.MaxPages, 20},
		{"Sync.StuckAfter", cfg.Sync.StuckAfter, 30 * time.Minute},
		{"Sync.Workers", cfg.Sync.Workers, 4},
		{"Sync.QueueSize", cfg.Sync.QueueSize, 64},
		{"Provider.GoogleBaseURL", cfg.Provider.GoogleBaseURL, ""},
		{"Provider.Timeout", cfg.Provider.Timeout, 15 * time.Second},
		{"Provider.RateRPS", cfg.Provider.RateRPS, 5.0},
		{"Provider.RateBurst", cfg.Provider.RateBurst, 5},
		{"AI.Enabled", cfg.AI.Enabled, false},
		{"AI.ClassifyModel", cfg.AI.ClassifyModel, "gpt-4o-mini"},
		{"AI.SummaryTTL", cfg.AI.SummaryTTL, 24 * time.Hour},
		{"AI.SummaryMaxReviews", cfg.AI.SummaryMaxReviews, 100},
		{"Cache.DashboardTTL", cfg.Cache.DashboardTTL, 5 * time.Minute},
		{"RateRPS", cfg.RateRPS, 5.0},
		{"RateBurst", cfg.RateBurst, 10},
		{"CORS.AllowedOrigins", cfg.CORS.AllowedOrigins, []string(nil)},
		{"Security.EnableHSTS", cfg.Security.EnableHSTS, false},
		{"Security.HSTSMaxAge", cfg.Security.HSTSMaxAge, 180 * 24 * time.Hour},
		{"IdempotencyTTL", cfg.IdempotencyTTL, 24 * time.Hour},
		{"OTEL.Enabled", cfg.OTEL.Enabled, false},
		{"OTEL.Endpoint", cfg.OTEL.Endpoint, "localhost:4317"},
		{"OTEL.Insecure", cfg.OTEL.Insecure, true},
		{"OTEL.ServiceName", cfg.OTEL.ServiceName, "go-review-backend"},
		{"OTEL.SampleRatio", cfg.OTEL.SampleRatio, 1.0},
	}
	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Fatalf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoad_ReadsOverridesFromEnvironment(t *testing.T) {
	pinDefaults(t)
	for key, val := range map[string]string{
		"PORT":                "9191",
		"READ_TIMEOUT":        "5s",
		"READ_HEADER_TIMEOUT": "2s",
		"WRITE_TIMEOUT":       "8s",
		"IDLE_TIMEOUT":        "90s",
		"MAX_HEADER_BYTES":    "4096",
		"GIN_MODE":            "test",
		"LOG_LEVEL":           "ERROR",
		"LOG_PRETTY":          "yes",
		"SWAGGER_ENABLED":     "on",
		"API_BASE_PATH":       "reviews/v2/",
		"DB_PATH":             "/var/lib/reviews.db",

		"SYNC_MANUAL_COOLDOWN":  "12h",
		"SYNC_SCHEDULED_EVERY":  "6h",
		"SYNC_INITIAL_BACKFILL": "1440h",
		"SYNC_PAGE_SIZE":        "25",
		"SYNC_MAX_PAGES":        "8",
		"SYNC_JOB_TIMEOUT":      "4m",
		"SYNC_STUCK_AFTER":      "20m",
		"SYNC_WORKERS":          "2",
		"SYNC_QUEUE_SIZE":       "32",
		"SYNC_SCAN_INTERVAL":    "90s",

		"PROVIDER_GOOGLE_BASE_URL":     "http://google.local",
		"PROVIDER_TRUSTPILOT_BASE_URL": "http://trustpilot.local",
		"PROVIDER_TIMEOUT":             "6s",
		"PROVIDER_RATE_RPS":            "2.5",
		"PROVIDER_RATE_BURST":          "2",
		"PROVIDER_RETRIES":             "1",

		"AI_ENABLED":          "true",
		"AI_BASE_URL":         "http://ai.local",
		"AI_API_KEY":          "sk-unit",
		"AI_CLASSIFY_MODEL":   "clf-small",
		"AI_SUMMARY_MODEL":    "sum-large",
		"AI_TIMEOUT":          "30s",
		"SUMMARY_TTL":         "12h",
		"SUMMARY_MAX_REVIEWS": "40",

		"DASHBOARD_CACHE_TTL": "2m",
		"RATE_RPS":            "12.5",
		"RATE_BURST":          "30",

		"CORS_ALLOWED_ORIGINS": " https://app.example.test ,, https://admin.example.test ",
		"ENABLE_HSTS":          "yes",
		"HSTS_MAX_AGE":         "720h",
		"IDEMPOTENCY_TTL":      "36h",

		"OTEL_ENABLED":                "1",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "collector:4317",
		"OTEL_EXPORTER_OTLP_INSECURE": "no",
		"OTEL_SERVICE_NAME":           "review-sync",
		"OTEL_TRACES_SAMPLER_ARG":     "0.25",
	} {
		t.Setenv(key, val)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"Port", cfg.Port, "9191"},
		{"ReadTimeout", cfg.ReadTimeout, 5 * time.Second},
		{"ReadHeaderTimeout", cfg.ReadHeaderTimeout, 2 * time.Second},
		{"WriteTimeout", cfg.WriteTimeout, 8 * time.Second},
		{"IdleTimeout", cfg.IdleTimeout, 90 * time.Second},
		{"MaxHeaderBytes", cfg.MaxHeaderBytes, 4096},
		{"GinMode", cfg.GinMode, "test"},
		{"LogLevel", cfg.LogLevel, "error"},
		{"LogPretty", cfg.LogPretty, true},
		{"SwaggerEnabled", cfg.SwaggerEnabled, true},
		{"APIBasePath", cfg.APIBasePath, "/reviews/v2"},
		{"DBPath", cfg.DBPath, "/var/lib/reviews.db"},
		{"Sync.ManualCooldown", cfg.Sync.ManualCooldown, 12 * time.Hour},
		{"Sync.ScheduledEvery", cfg.Sync.ScheduledEvery, 6 * time.Hour},
		{"Sync.InitialBackfill", cfg.Sync.InitialBackfill, 1440 * time.Hour},
		{"Sync.PageSize", cfg.Sync.PageSize, 25},
		{"Sync.MaxPages", cfg.Sync.MaxPages, 8},
		{"Sync.JobTimeout", cfg.Sync.JobTimeout, 4 * time.Minute},
		{"Sync.StuckAfter", cfg.Sync.StuckAfter, 20 * time.Minute},
		{"Sync.Workers", cfg.Sync.Workers, 2},
		{"Sync.QueueSize", cfg.Sync.QueueSize, 32},
		{"Sync.ScanInterval", cfg.Sync.ScanInterval, 90 * time.Second},
		{"Provider.GoogleBaseURL", cfg.Provider.GoogleBaseURL, "http://google.local"},
		{"Provider.FacebookBaseURL", cfg.Provider.FacebookBaseURL, ""},
		{"Provider.TrustpilotBaseURL", cfg.Provider.TrustpilotBaseURL, "http://trustpilot.local"},
		{"Provider.Timeout", cfg.Provider.Timeout, 6 * time.Second},
		{"Provider.RateRPS", cfg.Provider.RateRPS, 2.5},
		{"Provider.RateBurst", cfg.Provider.RateBurst, 2},
		{"Provider.Retries", cfg.Provider.Retries, 1},
		{"AI.Enabled", cfg.AI.Enabled, true},
		{"AI.BaseURL", cfg.AI.BaseURL, "http://ai.local"},
		{"AI.APIKey", cfg.AI.APIKey, "sk-unit"},
		{"AI.ClassifyModel", cfg.AI.ClassifyModel, "clf-small"},
		{"AI.SummaryModel", cfg.AI.SummaryModel, "sum-large"},
		{"AI.Timeout", cfg.AI.Timeout, 30 * time.Second},
		{"AI.SummaryTTL", cfg.AI.SummaryTTL, 12 * time.Hour},
		{"AI.SummaryMaxReviews", cfg.AI.SummaryMaxReviews, 40},
		{"Cache.DashboardTTL", cfg.Cache.DashboardTTL, 2 * time.Minute},
		{"RateRPS", cfg.RateRPS, 12.5},
		{"RateBurst", cfg.RateBurst, 30},
		{"CORS.AllowedOrigins", cfg.CORS.AllowedOrigins, []string{"https://app.example.test", "https://admin.example.test"}},
		{"Security.EnableHSTS", cfg.Security.EnableHSTS, true},
		{"Security.HSTSMaxAge", cfg.Security.HSTSMaxAge, 720 * time.Hour},
		{"IdempotencyTTL", cfg.IdempotencyTTL, 36 * time.Hour},
		{"OTEL.Enabled", cfg.OTEL.Enabled, true},
		{"OTEL.Endpoint", cfg.OTEL.Endpoint, "collector:4317"},
		{"OTEL.Insecure", cfg.OTEL.Insecure, false},
		{"OTEL.ServiceName", cfg.OTEL.ServiceName, "review-sync"},
		{"OTEL.SampleRatio", cfg.OTEL.SampleRatio, 0.25},
	}
	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Fatalf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

// Lenient inputs are normalized or dropped rather than refused: casing is
// folded, the base path gains its slash, and unparsable numbers read as
// unset.
func TestLoad_NormalizesLenientValues(t *testing.T) {
	pinDefaults(t)
	t.Setenv("GIN_MODE", "Staging")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("API_BASE_PATH", "reviews//")
	t.Setenv("RATE_RPS", "fast")
	t.Setenv("SYNC_WORKERS", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q, want release for unknown modes", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn for WARNING", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/reviews" {
		t.Fatalf("APIBasePath = %q, want /reviews", cfg.APIBasePath)
	}
	if cfg.RateRPS != 5.0 || cfg.Sync.Workers != 4 {
		t.Fatalf("unparsable numbers should fall back to defaults: rps=%v workers=%d", cfg.RateRPS, cfg.Sync.Workers)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL must be one of"},
		{"blank port", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"zero read timeout", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"zero header cap", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"blank db path", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"zero manual cooldown", map[string]string{"SYNC_MANUAL_COOLDOWN": "0s"}, "sync intervals"},
		{"oversized page", map[string]string{"SYNC_PAGE_SIZE": "500"}, "SYNC_PAGE_SIZE"},
		{"zero max pages", map[string]string{"SYNC_MAX_PAGES": "0"}, "SYNC_MAX_PAGES"},
		{"zero job timeout", map[string]string{"SYNC_JOB_TIMEOUT": "0s"}, "sync deadlines"},
		{"stuck window below job timeout", map[string]string{"SYNC_JOB_TIMEOUT": "10m", "SYNC_STUCK_AFTER": "5m"}, "SYNC_STUCK_AFTER"},
		{"zero workers", map[string]string{"SYNC_WORKERS": "0"}, "SYNC_WORKERS"},
		{"zero provider timeout", map[string]string{"PROVIDER_TIMEOUT": "0s"}, "PROVIDER_TIMEOUT"},
		{"zero provider rps", map[string]string{"PROVIDER_RATE_RPS": "0"}, "PROVIDER_RATE_RPS"},
		{"zero provider burst", map[string]string{"PROVIDER_RATE_BURST": "0"}, "PROVIDER_RATE_BURST"},
		{"negative retries", map[string]string{"PROVIDER_RETRIES": "-1"}, "PROVIDER_RETRIES"},
		{"ai on without key", map[string]string{"AI_ENABLED": "true", "AI_API_KEY": "   "}, "AI_API_KEY"},
		{"zero ai timeout", map[string]string{"AI_TIMEOUT": "0s"}, "AI durations"},
		{"zero summary cap", map[string]string{"SUMMARY_MAX_REVIEWS": "0"}, "SUMMARY_MAX_REVIEWS"},
		{"zero dashboard ttl", map[string]string{"DASHBOARD_CACHE_TTL": "0s"}, "DASHBOARD_CACHE_TTL"},
		{"negative rate rps", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"zero rate burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"negative hsts age", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"zero idempotency ttl", map[string]string{"IDEMPOTENCY_TTL": "0s"}, "IDEMPOTENCY_TTL"},
		{"sampler above one", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pinDefaults(t)
			for key, val := range tc.env {
				t.Setenv(key, val)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Load() error = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestMustLoad_ReturnsValidatedConfig(t *testing.T) {
	pinDefaults(t)
	cfg := MustLoad()
	if cfg.Port != "8080" || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("MustLoad returned unexpected defaults: %+v", cfg)
	}
}

func TestMustLoad_PanicsOnBadEnvironment(t *testing.T) {
	pinDefaults(t)
	t.Setenv("SYNC_PAGE_SIZE", "0")
	defer func() {
		if recover() == nil {
			t.Fatalf("MustLoad did not panic on invalid SYNC_PAGE_SIZE")
		}
	}()
	MustLoad()
}

// envString returns raw values so whitespace-only input reaches
// validation instead of silently reading as a default.
func TestEnvString_EmptyReadsAsUnset(t *testing.T) {
	t.Setenv("CFG_STR", "")
	if got := envString("CFG_STR", "fallback"); got != "fallback" {
		t.Fatalf("empty variable: got %q, want fallback", got)
	}
	t.Setenv("CFG_STR", "  padded  ")
	if got := envString("CFG_STR", "fallback"); got != "  padded  " {
		t.Fatalf("set variable should come back verbatim, got %q", got)
	}
}

func TestEnvNumericReaders_FallBackOnBadInput(t *testing.T) {
	t.Setenv("CFG_INT", "42")
	t.Setenv("CFG_FLOAT", "2.75")
	t.Setenv("CFG_DUR", "150ms")
	if envInt("CFG_INT", 1) != 42 || envFloat("CFG_FLOAT", 1) != 2.75 || envDuration("CFG_DUR", time.Second) != 150*time.Millisecond {
		t.Fatalf("valid values should parse")
	}

	t.Setenv("CFG_INT", "forty")
	t.Setenv("CFG_FLOAT", "almost three")
	t.Setenv("CFG_DUR", "soon")
	if envInt("CFG_INT", 7) != 7 || envFloat("CFG_FLOAT", 1.5) != 1.5 || envDuration("CFG_DUR", 2*time.Second) != 2*time.Second {
		t.Fatalf("unparsable values should fall back")
	}

	if envInt("CFG_NEVER_SET", 3) != 3 {
		t.Fatalf("unset variable should fall back")
	}
}

func TestEnvBool_AcceptedSpellings(t *testing.T) {
	cases := []struct {
		raw      string
		fallback bool
		want     bool
	}{
		{"1", false, true},
		{"TRUE", false, true},
		{" yes ", false, true},
		{"Y", false, true},
		{"on", false, true},
		{"0", true, false},
		{"FALSE", true, false},
		{" no ", true, false},
		{"N", true, false},
		{"off", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
		{"", true, true},
	}
	for i, tc := range cases {
		key := "CFG_BOOL_" + strconv.Itoa(i)
		t.Setenv(key, tc.raw)
		if got := envBool(key, tc.fallback); got != tc.want {
			t.Fatalf("envBool(%q, %v) = %v, want %v", tc.raw, tc.fallback, got, tc.want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ,", nil},
		{"https://a.test", []string{"https://a.test"}},
		{" https://a.test , https://b.test ,, ", []string{"https://a.test", "https://b.test"}},
	}
	for _, tc := range cases {
		if got := splitCSV(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("splitCSV(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"   ", "/"},
		{"/", "/"},
		{" / ", "/"},
		{"api", "/api"},
		{"/api/v1", "/api/v1"},
		{"api/v1/", "/api/v1"},
		{"//reviews//", "/reviews"},
	}
	for _, tc := range cases {
		if got := normalizeBasePath(tc.in); got != tc.want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
