// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/recommend/engine"
)

// Handler serves the API routes from one engine.
type Handler struct {
	engine *engine.Engine
	logger zerolog.Logger
}

// NewHandler creates a Handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(eng *engine.Engine, logger zerolog.Logger) *Handler {
	return &Handler{
		engine: eng,
		logger: logger.With().Str("component", "api").Logger(),
	}
}
