// Package config loads account-service configuration from the environment.
//
// Sources, lowest priority first:
//  1. Hardcoded defaults
//  2. .env file (local development via godotenv)
//  3. Environment variables (container runtime)
//
// Usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Auth modes for resolving the caller identity.
const (
	AuthModeJWT    = "jwt"    // verify HS256 session tokens locally
	AuthModeRemote = "remote" // introspect tokens against the auth service
)

// Config holds all configuration for the account service
type Config struct {
	Service         ServiceConfig   // Service settings (port, name, version)
	Tracing         TracingConfig   // OpenTelemetry configuration
	Profiling       ProfilingConfig // Pyroscope continuous profiling
	Logging         LoggingConfig   // Structured logging (Zap)
	Metrics         MetricsConfig   // Prometheus metrics
	Database        DatabaseConfig  // PostgreSQL database configuration
	Auth            AuthConfig      // Caller identity resolution
	RateLimit       RateLimitConfig // Redis-backed rate limiting of mutations
	CORSOrigins     []string        // Allowed browser origins - from CORS_ORIGINS env (comma separated)
	ShutdownTimeout int             // Graceful shutdown timeout in seconds - from SHUTDOWN_TIMEOUT env (default: 10)
	// ReadinessDrainDelay: delay after failing readiness before shutting down the HTTP server.
	// From READINESS_DRAIN_DELAY env (default: 5s, max: 30s).
	ReadinessDrainDelay int
}

// ServiceConfig defines basic service configuration
type ServiceConfig struct {
	Name    string // Service name - from SERVICE_NAME env
	Port    string // HTTP server port (default: "8080") - from PORT env
	Version string // Service version (optional) - from VERSION env
	Env     string // Environment (dev/staging/production) - from ENV env
}

// TracingConfig defines OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled            bool    // from TRACING_ENABLED env (default: true)
	Endpoint           string  // OTel Collector endpoint - from OTEL_COLLECTOR_ENDPOINT env
	SampleRate         float64 // Trace sampling rate (0.0-1.0) - from OTEL_SAMPLE_RATE env
	ServiceName        string  // Service name for traces (defaults to ServiceConfig.Name)
	MaxExportBatchSize int     // Max spans per batch (default: 512)
}

// ProfilingConfig defines Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled     bool   // from PROFILING_ENABLED env (default: false)
	Endpoint    string // Pyroscope endpoint - from PYROSCOPE_ENDPOINT env
	ServiceName string // Service name for profiling (defaults to ServiceConfig.Name)
}

// LoggingConfig defines structured logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error (default: "info") - from LOG_LEVEL env
	Format string // json, console (default: "json") - from LOG_FORMAT env
}

// MetricsConfig defines Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   // from METRICS_ENABLED env (default: true)
	Path    string // Metrics endpoint path (default: "/metrics") - from METRICS_PATH env
}

// DatabaseConfig defines PostgreSQL database configuration.
// An empty Host selects the in-memory store (development only).
type DatabaseConfig struct {
	Host           string // from DB_HOST env
	Port           string // from DB_PORT env (default: "5432")
	Name           string // from DB_NAME env
	User           string // from DB_USER env
	Password       string // from DB_PASSWORD env
	SSLMode        string // from DB_SSLMODE env (default: "disable")
	MaxConnections int    // from DB_POOL_MAX_CONNECTIONS env (default: 25)
	Migrate        bool   // apply embedded migrations on startup - from DB_MIGRATE env (default: true)
}

// AuthConfig defines how the caller identity is resolved
type AuthConfig struct {
	Mode       string // jwt or remote - from AUTH_MODE env (default: "jwt")
	JWTSecret  string // HS256 secret - from AUTH_JWT_SECRET env
	ServiceURL string // auth service base URL for remote introspection - from AUTH_SERVICE_URL env
}

// RateLimitConfig defines the Redis-backed limiter for mutating requests.
// An empty RedisAddr disables limiting.
type RateLimitConfig struct {
	RedisAddr     string        // from REDIS_ADDR env
	RedisPassword string        // from REDIS_PASSWORD env
	RedisDB       int           // from REDIS_DB env (default: 0)
	Max           int           // requests per window - from RATE_LIMIT_MAX env (default: 60)
	Window        time.Duration // from RATE_LIMIT_WINDOW env (default: 1m)
}

// BuildDSN constructs PostgreSQL connection string from config
func (c *DatabaseConfig) BuildDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// Load reads configuration from environment variables with defaults.
// ENV vars override .env file values.
func Load() *Config {
	// godotenv.Load() fails silently if .env doesn't exist
	_ = godotenv.Load()

	serviceName := getEnv("SERVICE_NAME", "account-service")

	return &Config{
		Service: ServiceConfig{
			Name:    serviceName,
			Port:    getEnv("PORT", "8080"),
			Version: getEnv("VERSION", "dev"),
			Env:     getEnv("ENV", "development"),
		},
		Tracing: TracingConfig{
			Enabled:            getEnvBool("TRACING_ENABLED", true),
			Endpoint:           getEnv("OTEL_COLLECTOR_ENDPOINT", "otel-collector-opentelemetry-collector.monitoring.svc.cluster.local:4318"),
			SampleRate:         getEnvFloat("OTEL_SAMPLE_RATE", 0.1),
			ServiceName:        serviceName,
			MaxExportBatchSize: getEnvInt("OTEL_BATCH_SIZE", 512),
		},
		Profiling: ProfilingConfig{
			Enabled:     getEnvBool("PROFILING_ENABLED", false),
			Endpoint:    getEnv("PYROSCOPE_ENDPOINT", "http://pyroscope.monitoring.svc.cluster.local:4040"),
			ServiceName: serviceName,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", ""),
			Port:           getEnv("DB_PORT", "5432"),
			Name:           getEnv("DB_NAME", ""),
			User:           getEnv("DB_USER", ""),
			Password:       getEnv("DB_PASSWORD", ""),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConnections: getEnvInt("DB_POOL_MAX_CONNECTIONS", 25),
			Migrate:        getEnvBool("DB_MIGRATE", true),
		},
		Auth: AuthConfig{
			Mode:       strings.ToLower(getEnv("AUTH_MODE", AuthModeJWT)),
			JWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
			ServiceURL: getEnv("AUTH_SERVICE_URL", "http://auth.auth.svc.cluster.local:8080"),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			Max:           getEnvInt("RATE_LIMIT_MAX", 60),
			Window:        getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		ShutdownTimeout:     getEnvDurationSecondsWithMax("SHUTDOWN_TIMEOUT", 10, 60),
		ReadinessDrainDelay: getEnvDurationSecondsWithMax("READINESS_DRAIN_DELAY", 5, 30),
	}
}

// Validate checks every section and reports all problems at once
func (c *Config) Validate() error {
	var errors []string

	if c.Service.Name == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}
	if _, err := strconv.Atoi(c.Service.Port); err != nil {
		errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Service.Port))
	}
	validEnvs := []string{"development", "dev", "staging", "stage", "production", "prod"}
	if !contains(validEnvs, c.Service.Env) {
		errors = append(errors, fmt.Sprintf("ENV must be one of %v, got: %s", validEnvs, c.Service.Env))
	}

	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			errors = append(errors, "OTEL_COLLECTOR_ENDPOINT is required when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
			errors = append(errors, fmt.Sprintf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got: %.2f", c.Tracing.SampleRate))
		}
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		errors = append(errors, "PYROSCOPE_ENDPOINT is required when profiling is enabled")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logging.Level) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of %v, got: %s", validLogLevels, c.Logging.Level))
	}
	validLogFormats := []string{"json", "console"}
	if !contains(validLogFormats, c.Logging.Format) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of %v, got: %s", validLogFormats, c.Logging.Format))
	}

	if c.Database.Host != "" {
		if c.Database.Name == "" {
			errors = append(errors, "DB_NAME is required when DB_HOST is set")
		}
		if c.Database.User == "" {
			errors = append(errors, "DB_USER is required when DB_HOST is set")
		}
		if c.Database.Password == "" {
			errors = append(errors, "DB_PASSWORD is required when DB_HOST is set")
		}
		if _, err := strconv.Atoi(c.Database.Port); err != nil {
			errors = append(errors, fmt.Sprintf("DB_PORT must be a valid number, got: %s", c.Database.Port))
		}
	} else if !c.IsDevelopment() {
		errors = append(errors, "DB_HOST is required outside development (the in-memory store is not durable)")
	}

	switch c.Auth.Mode {
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			errors = append(errors, "AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthModeRemote:
		if c.Auth.ServiceURL == "" {
			errors = append(errors, "AUTH_SERVICE_URL is required when AUTH_MODE=remote")
		}
	default:
		errors = append(errors, fmt.Sprintf("AUTH_MODE must be one of [%s %s], got: %s", AuthModeJWT, AuthModeRemote, c.Auth.Mode))
	}

	if c.RateLimit.RedisAddr != "" {
		if c.RateLimit.Max <= 0 {
			errors = append(errors, fmt.Sprintf("RATE_LIMIT_MAX must be positive, got: %d", c.RateLimit.Max))
		}
		if c.RateLimit.Window <= 0 {
			errors = append(errors, "RATE_LIMIT_WINDOW must be a positive duration")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Service.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Service.Env)
	return env == "production" || env == "prod"
}

// GetShutdownTimeoutDuration returns shutdown timeout as time.Duration
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// GetReadinessDrainDelayDuration returns readiness drain delay as time.Duration.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.ReadinessDrainDelay) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool accepts "true", "1", "yes" for true; anything else set is false
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvList splits a comma separated value, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvDurationSecondsWithMax reads a Go duration ("5s", "1m") and returns whole seconds.
// Invalid, non-positive or oversized values fall back to the default.
func getEnvDurationSecondsWithMax(key string, defaultValueSeconds int, maxSeconds int) int {
	timeoutStr := os.Getenv(key)
	if timeoutStr == "" {
		return defaultValueSeconds
	}

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return defaultValueSeconds
	}

	seconds := int(timeout.Seconds())
	if seconds <= 0 || seconds > maxSeconds {
		return defaultValueSeconds
	}

	return seconds
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
