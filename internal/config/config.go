// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// PublicOrigin is the origin browsers load the app from. It must be
	// whitelisted on the Maps API key and is quoted in domain errors.
	PublicOrigin string `env:"PUBLIC_ORIGIN" envDefault:"http://localhost:8080"`

	// Database (PostgreSQL)
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	AutoMigrate    bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. The write timeout does not apply to the home address
	// event stream, which clears its own deadline.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Authentication
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Google Maps. An empty key switches distances to estimation mode.
	MapsAPIKey             string        `env:"MAPS_API_KEY"`
	MapsCallback           string        `env:"MAPS_CALLBACK" envDefault:"initMap"`
	MapsScriptURL          string        `env:"MAPS_SCRIPT_URL" envDefault:"https://maps.googleapis.com/maps/api/js"`
	MapsDistanceMatrixURL  string        `env:"MAPS_DISTANCE_MATRIX_URL" envDefault:"https://maps.googleapis.com/maps/api/distancematrix/json"`
	MapsLoadRetryCooldown  time.Duration `env:"MAPS_LOAD_RETRY_COOLDOWN" envDefault:"5m"`
	MapsLoadTimeout        time.Duration `env:"MAPS_LOAD_TIMEOUT" envDefault:"10s"`
	DistanceRetryInterval  time.Duration `env:"DISTANCE_RETRY_INTERVAL" envDefault:"5m"`
	DistanceCacheTTL       time.Duration `env:"DISTANCE_CACHE_TTL" envDefault:"168h"`
	DistanceRequestTimeout time.Duration `env:"DISTANCE_REQUEST_TIMEOUT" envDefault:"10s"`
	FallbackDelay          time.Duration `env:"FALLBACK_DELAY" envDefault:"1s"`

	// Rate limiting. A zero rate disables the limiter.
	RateLimitUserPerMinute int `env:"RATE_LIMIT_USER_PER_MINUTE" envDefault:"120"`
	RateLimitUserBurst     int `env:"RATE_LIMIT_USER_BURST" envDefault:"30"`
	RateLimitIPPerMinute   int `env:"RATE_LIMIT_IP_PER_MINUTE" envDefault:"20"`
	RateLimitIPBurst       int `env:"RATE_LIMIT_IP_BURST" envDefault:"5"`

	// Home address event stream keep-alive interval
	EventHeartbeat time.Duration `env:"EVENT_HEARTBEAT" envDefault:"25s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// minJWTSecretLength is the shortest secret accepted outside development.
const minJWTSecretLength = 32

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MapsEnabled reports whether a Maps API key is configured.
func (c *Config) MapsEnabled() bool {
	return c.MapsAPIKey != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
// The public origin is always allowed.
func (c *Config) GetCORSAllowedOrigins() []string {
	result := []string{}
	if c.PublicOrigin != "" {
		result = append(result, strings.TrimSuffix(c.PublicOrigin, "/"))
	}

	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" && !slices.Contains(result, trimmed) {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate rejects inconsistent values that env parsing cannot catch.
func (c *Config) Validate() error {
	var errs []error

	switch c.AppEnv {
	case "development", "test", "staging", "production":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be development, test, staging or production, got %q", c.AppEnv))
	}

	if c.AppPort <= 0 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT out of range: %d", c.AppPort))
	}

	if u, err := url.Parse(c.PublicOrigin); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("PUBLIC_ORIGIN must be an http(s) origin, got %q", c.PublicOrigin))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if !c.IsDevelopment() && len(c.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters outside development", minJWTSecretLength))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	if c.MapsLoadTimeout < 0 || c.DistanceRequestTimeout <= 0 || c.FallbackDelay < 0 {
		errs = append(errs, errors.New("maps timeouts and FALLBACK_DELAY must not be negative"))
	}
	if c.DistanceCacheTTL <= 0 {
		errs = append(errs, errors.New("DISTANCE_CACHE_TTL must be positive"))
	}

	if c.RateLimitUserPerMinute > 0 && c.RateLimitUserBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_USER_BURST must be positive when the user limit is enabled"))
	}
	if c.RateLimitIPPerMinute > 0 && c.RateLimitIPBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_IP_BURST must be positive when the IP limit is enabled"))
	}

	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables, validates them and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
