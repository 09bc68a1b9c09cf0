// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/reelmatch/internal/api"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend/engine"
	"github.com/tomtom215/reelmatch/internal/recommend/textnorm"
	"github.com/tomtom215/reelmatch/internal/supervisor"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
	"github.com/tomtom215/reelmatch/internal/tmdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("movies", cfg.Dataset.MoviesPath).
		Str("ratings", cfg.Dataset.RatingsPath).
		Bool("tmdb_enabled", cfg.TMDB.Enabled).
		Msg("Starting ReelMatch")

	deps, closeDeps, err := initDeps(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize engine dependencies")
	}
	defer closeDeps()

	engineCfg, err := cfg.Recommend.EngineConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid recommendation settings")
	}

	eng, err := engine.New(engineCfg, dataset.NewSource(cfg.Dataset, engineCfg.FeatureColumns(), logging.Logger()), deps, engine.Options{
		ResultCacheSize: cfg.Recommend.ResultCacheSize,
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	router := api.NewRouter(api.NewHandler(eng, logging.Logger()), &api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
		RequestTimeout:     cfg.Server.RequestTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddEngineService(services.NewSnapshotService(eng, services.SnapshotServiceConfig{
		RebuildInterval: cfg.Recommend.RebuildInterval,
	}, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("ReelMatch stopped")
}

// initDeps builds the optional engine collaborators. The returned func
// releases them.
func initDeps(cfg *config.Config) (engine.Deps, func(), error) {
	closeFn := func() {}

	seg, err := textnorm.SharedSegmenter()
	if err != nil {
		return engine.Deps{}, closeFn, fmt.Errorf("load segmenter: %w", err)
	}
	deps := engine.Deps{Segmenter: seg}

	if !cfg.TMDB.Enabled {
		logging.Info().Msg("TMDB disabled, content queries match local titles")
		return deps, closeFn, nil
	}
	if cfg.TMDB.APIKey == "" {
		return engine.Deps{}, closeFn, errors.New("TMDB_ENABLED=true requires TMDB_API_KEY")
	}

	var cache *tmdb.ResponseCache
	if cfg.TMDB.CacheEnabled {
		cache, err = tmdb.OpenResponseCache(cfg.TMDB.CachePath, cfg.TMDB.CacheTTL)
		if err != nil {
			return engine.Deps{}, closeFn, fmt.Errorf("open tmdb cache: %w", err)
		}
		closeFn = func() {
			if err := cache.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing TMDB cache")
			}
		}
	}

	deps.Metadata = tmdb.NewCircuitBreakerClient(tmdb.NewClient(&cfg.TMDB, cache))
	logging.Info().
		Bool("cache", cache != nil).
		Float64("requests_per_second", cfg.TMDB.RequestsPerSecond).
		Msg("TMDB metadata resolution enabled")
	return deps, closeFn, nil
}
