// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"local"`
	APIPort    int    `env:"API_PORT" envDefault:"8000"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8080"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Fetcher limits
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"5s"`
	FetchMaxBodySize  int64         `env:"FETCH_MAX_BODY_SIZE" envDefault:"1048576"`
	FetchMaxRedirects int           `env:"FETCH_MAX_REDIRECTS" envDefault:"3"`
	FetchUserAgent    string        `env:"FETCH_USER_AGENT"`
	ExcludedDomains   []string      `env:"EXCLUDED_DOMAINS" envSeparator:","`

	// Preview cache
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	CacheMaxSize int           `env:"CACHE_MAX_SIZE" envDefault:"1000"`

	// Batch processing
	PreviewMaxConcurrent int `env:"PREVIEW_MAX_CONCURRENT" envDefault:"4"`

	// Per-IP rate limiting on the preview endpoint
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Observability
	CacheStatsInterval time.Duration `env:"CACHE_STATS_INTERVAL" envDefault:"30s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}

// IsLocal reports whether the service runs in the local development
// environment.
func (c *Config) IsLocal() bool {
	return c.AppEnv == "local"
}
