// Package app assembles the service: configuration into components, components
// into servers.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/avdrav1/vibehuntr-preview/internal/api"
	"github.com/avdrav1/vibehuntr-preview/internal/core/preview"
	"github.com/avdrav1/vibehuntr-preview/internal/platform/config"
	"github.com/avdrav1/vibehuntr-preview/internal/platform/observability"
	"github.com/avdrav1/vibehuntr-preview/internal/platform/worker"
)

type App struct {
	cfg    *config.Config
	logger *zerolog.Logger

	cache     *preview.Cache
	apiServer *api.Server
	obsServer *observability.Server
}

func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	cache, err := preview.NewCache(cfg.CacheTTL, cfg.CacheMaxSize)
	if err != nil {
		return nil, fmt.Errorf("create preview cache: %w", err)
	}

	fetcher := preview.NewFetcher(preview.FetcherConfig{
		Timeout:         cfg.FetchTimeout,
		MaxBodySize:     cfg.FetchMaxBodySize,
		MaxRedirects:    cfg.FetchMaxRedirects,
		UserAgent:       cfg.FetchUserAgent,
		ExcludedDomains: cfg.ExcludedDomains,
	}, logger)

	service := preview.NewService(fetcher, cache, logger, cfg.PreviewMaxConcurrent)

	apiServer := api.NewServer(api.Options{
		Port:           cfg.APIPort,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, service, logger)

	obsServer := observability.NewServer(cfg.HealthPort, nil, logger)

	return &App{
		cfg:       cfg,
		logger:    logger,
		cache:     cache,
		apiServer: apiServer,
		obsServer: obsServer,
	}, nil
}

// Run starts the observability server and the cache-stats reporter in the
// background, then blocks serving the API until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := a.obsServer.Start(ctx); err != nil {
			a.logger.Error().Err(err).Msg("observability server error")
		}
	}()

	go func() {
		err := worker.Run(ctx, worker.Config{
			Name:       "cache-stats",
			Interval:   a.cfg.CacheStatsInterval,
			RunOnStart: true,
			OnTick: func(context.Context) {
				preview.CacheSize.Set(float64(a.cache.Len()))
			},
			Logger: a.logger,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("cache stats worker error")
		}
	}()

	return a.apiServer.Start(ctx)
}
