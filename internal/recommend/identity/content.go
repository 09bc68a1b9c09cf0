// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package identity

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/tmdb"
)

// Resolver outcomes recorded in metrics.
const (
	OutcomeFound        = "found"
	OutcomeNotInCatalog = "not_in_catalog"
	OutcomeNoResults    = "no_results"
	OutcomeError        = "error"
)

// Metadata is the part of the metadata service the resolver needs.
// tmdb.Client and tmdb.CircuitBreakerClient satisfy it.
type Metadata interface {
	SearchMovie(ctx context.Context, title, locale string, year int) ([]tmdb.SearchResult, error)
	MovieDetails(ctx context.Context, id int64, locale string, withCredits, withKeywords bool) (*tmdb.MovieDetails, error)
}

// ContentOptions tunes a ContentResolver.
type ContentOptions struct {
	// AlternateSearchBelow triggers the second-locale search when the
	// primary one returns fewer results.
	AlternateSearchBelow int

	// LocalCutoff is the fuzzy cutoff used without a metadata service.
	LocalCutoff float64
}

// ContentResolver maps free-text queries to rows of the enriched movie
// table. It is immutable and safe for concurrent use.
type ContentResolver struct {
	meta   Metadata
	opts   ContentOptions
	byTMDB map[int64]int
	byItem map[string]int
	titles []string
	local  *TitleIndex
	logger zerolog.Logger
}

// NewContentResolver indexes movies by TMDB id. meta may be nil, in which
// case queries are matched against local titles only. When two rows share a
// TMDB id the first one wins.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewContentResolver(meta Metadata, movies []recommend.Movie, opts ContentOptions, logger zerolog.Logger) *ContentResolver {
	r := &ContentResolver{
		meta:   meta,
		opts:   opts,
		byTMDB: make(map[int64]int, len(movies)),
		byItem: make(map[string]int, len(movies)),
		titles: make([]string, len(movies)),
		local:  NewMovieTitleIndex(movies),
		logger: logger.With().Str("component", "resolver").Logger(),
	}
	for i := range movies {
		r.titles[i] = movies[i].Title
		if id := movies[i].TMDBID; id != 0 {
			if _, dup := r.byTMDB[id]; !dup {
				r.byTMDB[id] = i
			}
		}
		if _, dup := r.byItem[movies[i].ItemID]; !dup {
			r.byItem[movies[i].ItemID] = i
		}
	}
	return r
}

// Resolve maps query to a catalog row. A query that cannot be resolved
// returns a Resolution with Row -1 and a nil error; only cancellation of
// ctx is reported as an error.
func (r *ContentResolver) Resolve(ctx context.Context, query string) (recommend.Resolution, error) {
	query = strings.TrimSpace(query)
	res := recommend.Resolution{Query: query, Row: -1}
	if query == "" {
		metrics.RecordResolve("content", OutcomeNoResults)
		return res, nil
	}

	if r.meta == nil {
		return r.resolveLocal(res), nil
	}

	lang := DetectLanguage(query)
	res.Locale = LocaleFor(lang)

	candidates, err := r.search(ctx, query, res.Locale)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		metrics.RecordResolve("content", OutcomeError)
		return res, nil
	}
	if len(candidates) == 0 {
		metrics.RecordResolve("content", OutcomeNoResults)
		return res, nil
	}

	chosen := candidates[0]
	details, err := r.meta.MovieDetails(ctx, chosen.ID, res.Locale, false, false)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		r.logger.Warn().Err(err).Int64("tmdb_id", chosen.ID).Msg("Could not get movie details")
		metrics.RecordResolve("content", OutcomeError)
		return res, nil
	}
	res.ExternalID = details.ID
	if res.ExternalID == 0 {
		res.ExternalID = chosen.ID
	}

	row, ok := r.byTMDB[res.ExternalID]
	if !ok {
		r.logger.Debug().Str("query", query).Int64("tmdb_id", res.ExternalID).Msg("Movie not in catalog")
		metrics.RecordResolve("content", OutcomeNotInCatalog)
		return res, nil
	}

	res.Row = row
	res.Title = r.titles[row]
	metrics.RecordResolve("content", OutcomeFound)
	return res, nil
}

// search runs the primary locale search and, when it is thin, appends
// unseen candidates from the alternate locale. A failed alternate search
// keeps the primary results.
func (r *ContentResolver) search(ctx context.Context, query, locale string) ([]tmdb.SearchResult, error) {
	results, err := r.meta.SearchMovie(ctx, query, locale, 0)
	if err != nil {
		r.logger.Warn().Err(err).Str("query", query).Str("locale", locale).Msg("Metadata search failed")
		return nil, err
	}
	if len(results) >= r.opts.AlternateSearchBelow {
		return results, nil
	}

	alt := AlternateLocale(locale)
	more, err := r.meta.SearchMovie(ctx, query, alt, 0)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn().Err(err).Str("query", query).Str("locale", alt).Msg("Alternate locale search failed")
		return results, nil
	}

	seen := make(map[int64]struct{}, len(results))
	for _, c := range results {
		seen[c.ID] = struct{}{}
	}
	for _, c := range more {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		results = append(results, c)
	}
	return results, nil
}

func (r *ContentResolver) resolveLocal(res recommend.Resolution) recommend.Resolution {
	matches := r.local.Match(res.Query, 1, r.opts.LocalCutoff)
	if len(matches) == 0 {
		metrics.RecordResolve("content", OutcomeNoResults)
		return res
	}
	row := r.byItem[matches[0].ItemID]
	res.Row = row
	res.Title = r.titles[row]
	metrics.RecordResolve("content", OutcomeFound)
	return res
}

// ResolveItem maps a catalog item id to its row.
func (r *ContentResolver) ResolveItem(itemID string) (int, bool) {
	row, ok := r.byItem[itemID]
	return row, ok
}
