// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/engine"
)

// Rebuilder builds and swaps in a new engine snapshot.
type Rebuilder interface {
	Rebuild(ctx context.Context) (recommend.SnapshotInfo, error)
	Ready() bool
}

// SnapshotServiceConfig holds the rebuild schedule.
type SnapshotServiceConfig struct {
	// RebuildInterval between periodic rebuilds. 0 builds once.
	RebuildInterval time.Duration
}

// SnapshotService keeps the engine's serving snapshot current.
type SnapshotService struct {
	engine Rebuilder
	config SnapshotServiceConfig
	logger zerolog.Logger
}

var _ Rebuilder = (*engine.Engine)(nil)

// NewSnapshotService creates the service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSnapshotService(eng Rebuilder, cfg SnapshotServiceConfig, logger zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		engine: eng,
		config: cfg,
		logger: logger.With().Str("service", "snapshot").Logger(),
	}
}

// Serve implements suture.Service.
//
// Until a snapshot is serving, a failed build is returned so the
// supervisor retries it with backoff. After that, scheduled failures are
// logged and the previous snapshot keeps serving.
func (s *SnapshotService) Serve(ctx context.Context) error {
	if !s.engine.Ready() {
		if err := s.rebuild(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("initial snapshot build: %w", err)
		}
	}

	if s.config.RebuildInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RebuildInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := s.rebuild(ctx)
			switch {
			case err == nil:
			case errors.Is(err, engine.ErrRebuildInProgress):
				s.logger.Debug().Msg("Scheduled rebuild skipped, another rebuild is running")
			default:
				s.logger.Warn().Err(err).Msg("Scheduled rebuild failed")
			}
		}
	}
}

func (s *SnapshotService) rebuild(ctx context.Context) error {
	info, err := s.engine.Rebuild(ctx)
	if err != nil {
		return err
	}
	s.logger.Info().
		Int64("version", info.Version).
		Int("movies", info.Movies).
		Int("matrix_items", info.MatrixItems).
		Dur("duration", info.BuildDuration).
		Msg("Snapshot ready")
	return nil
}

// String implements fmt.Stringer for suture's logs.
func (s *SnapshotService) String() string {
	return "snapshot-service"
}
