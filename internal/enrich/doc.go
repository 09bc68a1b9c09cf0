// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package enrich builds the enriched movie table from a ratings-side
// catalog and the TMDB metadata service.
//
// For every catalog entry the enricher searches by title and release year,
// keeps the result whose year is closest, then fetches details with
// credits and keywords appended. The derived columns are:
//
//   - director: first crew member with job "Director"
//   - top_actors: up to five cast members known for acting, most popular first
//   - keywords, production_companies, production_countries: ", "-joined names
//
// Movies are processed by a bounded worker pool. Output rows keep catalog
// order; movies that were not found or failed are left out and counted.
//
//	e := enrich.New(client, enrich.Options{Workers: 4, Locale: "zh-CN"}, logger)
//	summary, err := e.Run(ctx, "data/movies.dat", "data/enriched_movies.csv")
package enrich
