// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package main is the offline catalog enricher.
//
// It reads a MovieLens-style movies.dat, looks every title up in TMDB and
// writes the enriched CSV the server loads as its movie table. Settings come
// from the same layered configuration as the server:
//
//	export TMDB_API_KEY=your-key
//	export ENRICH_INPUT_PATH=data/movies.dat
//	export ENRICH_OUTPUT_PATH=data/enriched_movies.csv
//	export ENRICH_WORKERS=4
//	./reelmatch-enrich
//
// Responses are cached in BadgerDB when TMDB_CACHE_ENABLED=true, so an
// interrupted run can be restarted without spending the request quota
// again. SIGINT and SIGTERM stop the run; no output is written.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/enrich"
	"github.com/tomtom215/reelmatch/internal/logging"
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

	if cfg.Enrich.InputPath == "" || cfg.Enrich.OutputPath == "" {
		logging.Fatal().Msg("ENRICH_INPUT_PATH and ENRICH_OUTPUT_PATH are required")
	}
	if cfg.TMDB.APIKey == "" {
		logging.Fatal().Msg("TMDB_API_KEY is required")
	}

	var cache *tmdb.ResponseCache
	if cfg.TMDB.CacheEnabled {
		cache, err = tmdb.OpenResponseCache(cfg.TMDB.CachePath, cfg.TMDB.CacheTTL)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open TMDB cache")
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing TMDB cache")
			}
		}()
	}
	client := tmdb.NewCircuitBreakerClient(tmdb.NewClient(&cfg.TMDB, cache))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("input", cfg.Enrich.InputPath).
		Str("output", cfg.Enrich.OutputPath).
		Int("workers", cfg.Enrich.Workers).
		Str("locale", cfg.Enrich.Locale).
		Msg("Starting enrichment")

	enricher := enrich.New(client, enrich.Options{
		Workers: cfg.Enrich.Workers,
		Locale:  cfg.Enrich.Locale,
	}, logging.Logger())

	if _, err := enricher.Run(ctx, cfg.Enrich.InputPath, cfg.Enrich.OutputPath); err != nil {
		logging.Error().Err(err).Msg("Enrichment failed")
		stop()
		if cache != nil {
			_ = cache.Close()
		}
		logging.Fatal().Msg("Exiting")
	}
}
