// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/engine"
)

// Source loads the three engine inputs from files named by a
// DatasetConfig. Each Load rereads the files.
type Source struct {
	cfg            config.DatasetConfig
	featureColumns []string
	logger         zerolog.Logger
}

var _ engine.Source = (*Source)(nil)

// NewSource returns a Source for cfg. featureColumns are required in the
// movie table, usually recommend.Config.FeatureColumns.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSource(cfg config.DatasetConfig, featureColumns []string, logger zerolog.Logger) *Source {
	return &Source{
		cfg:            cfg,
		featureColumns: featureColumns,
		logger:         logger.With().Str("component", "dataset").Logger(),
	}
}

// Load reads movies, ratings and the catalog concurrently.
func (s *Source) Load(ctx context.Context) (engine.Input, error) {
	start := time.Now()
	if s.cfg.MoviesPath == "" || s.cfg.RatingsPath == "" {
		return engine.Input{}, fmt.Errorf("%w: movies and ratings paths are required", recommend.ErrConfiguration)
	}
	format, err := DetectFormat(s.cfg.RatingsPath, s.cfg.RatingsFormat)
	if err != nil {
		return engine.Input{}, err
	}

	var in engine.Input
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		movies, err := LoadMovies(gctx, s.cfg.MoviesPath, s.featureColumns...)
		if err != nil {
			return fmt.Errorf("load movies: %w", err)
		}
		in.Movies = movies
		return nil
	})
	g.Go(func() error {
		ratings, err := LoadRatings(gctx, s.cfg.RatingsPath, format)
		if err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		in.Ratings = ratings
		return nil
	})
	if s.cfg.CatalogPath != "" {
		g.Go(func() error {
			catalog, err := LoadCatalog(gctx, s.cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			in.Catalog = catalog
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return engine.Input{}, err
	}

	if s.cfg.CatalogPath == "" {
		in.Catalog = CatalogFromMovies(in.Movies)
	}

	s.logger.Info().
		Int("movies", len(in.Movies)).
		Int("ratings", len(in.Ratings)).
		Int("catalog", len(in.Catalog)).
		Str("ratings_format", format).
		Dur("duration", time.Since(start)).
		Msg("Dataset loaded")
	return in, nil
}
