// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package tmdb is the client for The Movie Database v3 API.
//
// It serves two callers: the identity resolver, which turns a free-text
// query into a catalog row through /search/movie and /movie/{id}, and the
// offline enricher, which pulls credits and keywords for every catalog
// movie.
//
// Layers, innermost first:
//
//	Client                 rate.Limiter pacing, 429 backoff, BadgerDB response cache
//	CircuitBreakerClient   gobreaker wrapper, "tmdb-api" metrics
//
// Both satisfy API. Callers match failures with
// errors.Is(err, recommend.ErrExternalService); ErrInvalidAPIKey and
// ErrNotFound narrow it further.
package tmdb
