// Package config provides centralized configuration management for the
// climate dashboard service. Values come from environment variables (with a
// .env file loaded in development) and fall back to sensible defaults.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates the settings for every service component: the HTTP
// server, Redis, the four external collaborators, rate limiting, sessions
// and observability.
type Config struct {
	Server        ServerConfig
	Redis         RedisConfig
	External      ExternalConfig
	RateLimit     RateLimitConfig
	Session       SessionConfig
	Observability ObservabilityConfig
}

// ServerConfig contains HTTP server settings and timeouts.
type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RedisConfig contains settings for the Redis cache and rate limiter.
// When disabled or unreachable the service falls back to the in-memory
// implementations.
type RedisConfig struct {
	Enabled      bool
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ExternalConfig contains the endpoints and timeouts for the external
// collaborators: the weather aggregation backend, the reverse geocoder, the
// GeoIP locator and the recommendation service.
type ExternalConfig struct {
	ClimateBaseURL   string
	NominatimBaseURL string
	GeoIPBaseURL     string
	AdvisorBaseURL   string

	// HTTPTimeout is the per-connection timeout on outbound HTTP clients.
	HTTPTimeout time.Duration

	// RequestTimeout bounds a whole weather request; it caps how long a
	// session can stay in the loading phase.
	RequestTimeout time.Duration
}

// RateLimitConfig contains rate limiting settings.
type RateLimitConfig struct {
	RPS    int
	Window time.Duration
}

// SessionConfig controls dashboard session lifetime.
type SessionConfig struct {
	TTL time.Duration
}

// ObservabilityConfig contains settings for distributed tracing and metrics.
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	SampleRate     float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", true),
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     10,
			MinIdleConns: 5,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		External: ExternalConfig{
			ClimateBaseURL:   getEnv("CLIMATE_BASE_URL", "http://localhost:5000/weatherforecast"),
			NominatimBaseURL: getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
			GeoIPBaseURL:     getEnv("GEOIP_BASE_URL", "https://reallyfreegeoip.org"),
			AdvisorBaseURL:   getEnv("ADVISOR_BASE_URL", "http://localhost:5100"),
			HTTPTimeout:      getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),
			RequestTimeout:   getEnvAsDuration("REQUEST_TIMEOUT", 20*time.Second),
		},
		RateLimit: RateLimitConfig{
			RPS:    getEnvAsInt("RATE_LIMIT_RPS", 100),
			Window: time.Minute,
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		},
		Observability: ObservabilityConfig{
			ServiceName:    "climascope",
			ServiceVersion: getEnv("VERSION", "1.0.0"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:     0.1,
		},
	}
}

// getEnv retrieves an environment variable value with a fallback default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer, falling back
// when unset or unparseable.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean, falling back
// when unset or unparseable.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}

	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration, falling
// back when unset or unparseable.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}

	return defaultValue
}
