package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quilldesk/wordwar/internal/platform/logging"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	DBURL                   string
	DBDisablePreparedBinary bool

	EventCacheEnabled bool
	EventCacheTTL     time.Duration
	RecapWorkers      int

	ScribeBaseURL               string
	ScribeIntrospectPath        string
	ScribeTimeout               time.Duration
	ScribeCircuitEnabled        bool
	ScribeCircuitFailureCount   int
	ScribeCircuitOpenTimeout    time.Duration
	ScribeCircuitHalfOpenMaxReq int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	PprofEnabled bool
	PprofAddr    string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	eventCacheEnabled, err := strconv.ParseBool(getEnv("EVENT_CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENT_CACHE_ENABLED: %w", err)
	}
	eventCacheTTL, err := time.ParseDuration(getEnv("EVENT_CACHE_TTL", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENT_CACHE_TTL: %w", err)
	}
	if eventCacheEnabled && eventCacheTTL <= 0 {
		return Config{}, fmt.Errorf("EVENT_CACHE_TTL must be > 0 when EVENT_CACHE_ENABLED=true")
	}

	recapWorkers, err := getEnvAsInt("RECAP_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECAP_WORKERS: %w", err)
	}
	if recapWorkers < 1 {
		return Config{}, fmt.Errorf("RECAP_WORKERS must be >= 1")
	}

	scribeTimeout, err := time.ParseDuration(getEnv("SCRIBE_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIBE_TIMEOUT: %w", err)
	}
	scribeCircuitEnabled, err := strconv.ParseBool(getEnv("SCRIBE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIBE_CIRCUIT_ENABLED: %w", err)
	}
	scribeCircuitFailures, err := getEnvAsInt("SCRIBE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIBE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	scribeCircuitOpenTimeout, err := time.ParseDuration(getEnv("SCRIBE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIBE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	scribeCircuitHalfOpenMaxReq, err := getEnvAsInt("SCRIBE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIBE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	serviceName := getEnv("SERVICE_NAME", "wordwar")

	return Config{
		AppEnv:             appEnv,
		ServiceName:        serviceName,
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		EventCacheEnabled: eventCacheEnabled,
		EventCacheTTL:     eventCacheTTL,
		RecapWorkers:      recapWorkers,

		ScribeBaseURL:               strings.TrimSpace(getEnv("SCRIBE_BASE_URL", "")),
		ScribeIntrospectPath:        getEnv("SCRIBE_INTROSPECT_PATH", "/v1/auth/introspect"),
		ScribeTimeout:               scribeTimeout,
		ScribeCircuitEnabled:        scribeCircuitEnabled,
		ScribeCircuitFailureCount:   scribeCircuitFailures,
		ScribeCircuitOpenTimeout:    scribeCircuitOpenTimeout,
		ScribeCircuitHalfOpenMaxReq: scribeCircuitHalfOpenMaxReq,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:     getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeUploadRate:    pyroscopeUploadRate,

		PprofEnabled: pprofEnabled,
		PprofAddr:    getEnv("PPROF_ADDR", ":6060"),
	}, nil
}

func parseAppEnv(v string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(v))
	switch normalized {
	case EnvDev, EnvStaging, EnvProd:
		return normalized, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q (expected %s, %s or %s)", v, EnvDev, EnvStaging, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q for %s: %w", raw, key, err)
	}
	return value, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
