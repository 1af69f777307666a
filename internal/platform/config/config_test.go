package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "local", cfg.AppEnv)
	require.True(t, cfg.IsLocal())
	require.Equal(t, 8000, cfg.APIPort)
	require.Equal(t, 8080, cfg.HealthPort)
	require.Equal(t, 5*time.Second, cfg.FetchTimeout)
	require.Equal(t, int64(1048576), cfg.FetchMaxBodySize)
	require.Equal(t, 3, cfg.FetchMaxRedirects)
	require.Equal(t, time.Hour, cfg.CacheTTL)
	require.Equal(t, 1000, cfg.CacheMaxSize)
	require.Empty(t, cfg.ExcludedDomains)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_PORT", "9000")
	t.Setenv("FETCH_TIMEOUT", "10s")
	t.Setenv("EXCLUDED_DOMAINS", "internal.example.org,metadata.google.internal")
	t.Setenv("CORS_ORIGINS", "https://app.example.com,https://staging.example.com")
	t.Setenv("CACHE_MAX_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	require.False(t, cfg.IsLocal())
	require.Equal(t, 9000, cfg.APIPort)
	require.Equal(t, 10*time.Second, cfg.FetchTimeout)
	require.Equal(t, []string{"internal.example.org", "metadata.google.internal"}, cfg.ExcludedDomains)
	require.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORSOrigins)
	require.Equal(t, 50, cfg.CacheMaxSize)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}
