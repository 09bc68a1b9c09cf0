// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package identity turns what a user typed into catalog identities.
//
// The two recommendation signals key movies differently, so there are two
// resolvers:
//
//   - ContentResolver maps a free-text query (any language) to a row of the
//     enriched movie table. It detects the query language, searches the
//     metadata service in the matching locale (adding a second locale when
//     the first search is thin), and joins the chosen candidate's TMDB id
//     against the table. Without a metadata service it falls back to fuzzy
//     matching on local titles.
//   - TitleIndex maps a query to ids of the ratings catalog using
//     difflib-style close matching over "title without year" keys.
//
// Metadata failures never surface as errors; they resolve to "not found"
// and are counted in the resolver outcome metric.
package identity
