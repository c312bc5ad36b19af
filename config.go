package trellis

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds client configuration resolved from the environment.
type Config struct {
	// BaseURL is the API endpoint (TRELLIS_BASE_URL).
	BaseURL string

	// APIKey is the bearer token (TRELLIS_API_KEY, required).
	APIKey string

	// StreamTimeout is the default budget for streaming runs
	// (TRELLIS_TIMEOUT, e.g. "90s").
	StreamTimeout time.Duration
}

// FromEnv loads configuration from environment variables, reading a .env
// file first if one is present (silent fail if not found).
func FromEnv() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		BaseURL:       getEnvOrDefault("TRELLIS_BASE_URL", defaultBaseURL),
		APIKey:        os.Getenv("TRELLIS_API_KEY"),
		StreamTimeout: getEnvDurationOrDefault("TRELLIS_TIMEOUT", defaultStreamTimeout),
	}
	if cfg.APIKey == "" {
		return nil, &ConfigError{Reason: "TRELLIS_API_KEY is required"}
	}
	return cfg, nil
}

// NewFromEnv creates a client from environment configuration. Options are
// applied after the environment so they take precedence.
func NewFromEnv(opts ...ClientOption) (*Client, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	base := []ClientOption{
		WithAPIKey(cfg.APIKey),
		WithDefaultStreamTimeout(cfg.StreamTimeout),
	}
	return New(cfg.BaseURL, append(base, opts...)...), nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
