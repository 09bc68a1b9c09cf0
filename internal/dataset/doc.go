// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package dataset loads the on-disk inputs of a snapshot build.

Three inputs are read:

  - the enriched movie table, a CSV with a header row, read through an
    in-memory DuckDB with read_csv
  - the ratings, either MovieLens "user::item::rating::timestamp" lines
    or a CSV with user_id, item_id (or movie_id), rating and an optional
    timestamp column
  - the ratings-side catalog, MovieLens "id::Title (Year)::Genre|Genre"
    lines in Latin-1

A missing required column or a malformed line wraps
recommend.ErrConfiguration. Source bundles the three loaders behind the
engine.Source interface.
*/
package dataset
