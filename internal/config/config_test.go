package config

import (
	"testing"
	"time"

	"github.com/quilldesk/wordwar/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected default app env %s, got %s", EnvDev, cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("expected default log level info, got %v", cfg.LogLevel)
	}
	if cfg.EventCacheTTL != time.Minute {
		t.Fatalf("expected default event cache ttl 1m, got %v", cfg.EventCacheTTL)
	}
	if cfg.RecapWorkers != 4 {
		t.Fatalf("expected default recap workers 4, got %d", cfg.RecapWorkers)
	}
	if cfg.ScribeIntrospectPath != "/v1/auth/introspect" {
		t.Fatalf("unexpected scribe introspect path: %s", cfg.ScribeIntrospectPath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://quilldesk.app, https://staging.quilldesk.app")
	t.Setenv("RECAP_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.AppEnv != EnvProd {
		t.Fatalf("expected prod app env, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090, got %s", cfg.HTTPAddr)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RecapWorkers != 8 {
		t.Fatalf("expected 8 recap workers, got %d", cfg.RecapWorkers)
	}
}

func TestLoad_InvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production-ish")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSN(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when UPTRACE_ENABLED without DSN")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logging.Level{
		"debug":    logging.LevelDebug,
		"info":     logging.LevelInfo,
		"warn":     logging.LevelWarn,
		"warning":  logging.LevelWarn,
		"error":    logging.LevelError,
		"whatever": logging.LevelInfo,
	}

	for input, want := range cases {
		if got := parseLogLevel(input); got != want {
			t.Fatalf("parseLogLevel(%q): expected %v, got %v", input, want, got)
		}
	}
}
