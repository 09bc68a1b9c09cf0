// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package enrich

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/tmdb"
)

// Enrichment outcomes, as recorded in metrics and Summary.
const (
	OutcomeEnriched = "enriched"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

const (
	defaultWorkers = 4
	defaultLocale  = "zh-CN"

	// progressEvery is how many processed movies separate progress lines.
	progressEvery = 20
)

var titleYearPattern = regexp.MustCompile(`^(.*?)\s*\((\d{4})\)\s*$`)

// Options configures an Enricher.
type Options struct {
	Workers int
	Locale  string
}

// Record is one enriched row.
type Record struct {
	Movie            recommend.Movie
	OriginalTitle    string
	OriginalLanguage string
}

// Summary counts outcomes of one run.
type Summary struct {
	Total    int
	Enriched int
	NotFound int
	Failed   int
	Duration time.Duration
}

// Enricher fetches metadata for catalog movies.
type Enricher struct {
	api    tmdb.API
	opts   Options
	logger zerolog.Logger
}

// New returns an Enricher. Zero options take defaults.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(api tmdb.API, opts Options, logger zerolog.Logger) *Enricher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Locale == "" {
		opts.Locale = defaultLocale
	}
	return &Enricher{
		api:    api,
		opts:   opts,
		logger: logger.With().Str("component", "enrich").Logger(),
	}
}

// Run validates the API key, enriches the catalog at inputPath and writes
// the result to outputPath. Nothing is written when no movie was enriched.
func (e *Enricher) Run(ctx context.Context, inputPath, outputPath string) (Summary, error) {
	if err := e.api.ValidateKey(ctx); err != nil {
		return Summary{}, fmt.Errorf("validate api key: %w", err)
	}

	catalog, err := dataset.LoadCatalog(ctx, inputPath)
	if err != nil {
		return Summary{}, err
	}

	records, summary, err := e.Enrich(ctx, catalog)
	if err != nil {
		return summary, err
	}
	if len(records) == 0 {
		return summary, fmt.Errorf("no movie in %s could be enriched", inputPath)
	}
	if err := WriteFile(outputPath, records); err != nil {
		return summary, err
	}

	e.logger.Info().
		Int("total", summary.Total).
		Int("enriched", summary.Enriched).
		Int("not_found", summary.NotFound).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Str("output", outputPath).
		Msg("Enrichment complete")
	return summary, nil
}

// Enrich processes catalog concurrently. Records come back in catalog
// order. Per-movie failures are counted and skipped; an invalid API key or
// a cancelled context stops the run.
func (e *Enricher) Enrich(ctx context.Context, catalog []recommend.CatalogEntry) ([]Record, Summary, error) {
	start := time.Now()
	summary := Summary{Total: len(catalog)}

	results := make([]*Record, len(catalog))
	outcomes := make([]string, len(catalog))
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i := range catalog {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			entry := catalog[i]
			rec, err := e.enrichOne(gctx, entry)
			switch {
			case err == nil && rec == nil:
				outcomes[i] = OutcomeNotFound
				e.logger.Warn().Str("item_id", entry.ItemID).Str("title", entry.TitleYear).Msg("Movie not found")
			case err == nil:
				outcomes[i] = OutcomeEnriched
				results[i] = rec
			case errors.Is(err, tmdb.ErrInvalidAPIKey), gctx.Err() != nil:
				return err
			default:
				outcomes[i] = OutcomeError
				e.logger.Error().Err(err).Str("item_id", entry.ItemID).Str("title", entry.TitleYear).Msg("Enrichment failed")
			}
			metrics.RecordEnrichOutcome(outcomes[i])

			if n := processed.Add(1); n%progressEvery == 0 {
				e.logger.Info().Int64("processed", n).Int("total", len(catalog)).Msg("Enrichment progress")
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	records := make([]Record, 0, len(catalog))
	for i, o := range outcomes {
		switch o {
		case OutcomeEnriched:
			summary.Enriched++
			records = append(records, *results[i])
		case OutcomeNotFound:
			summary.NotFound++
		case OutcomeError:
			summary.Failed++
		}
	}
	summary.Duration = time.Since(start)
	if err != nil {
		return nil, summary, err
	}
	return records, summary, nil
}

// enrichOne returns nil, nil when the service has no match.
func (e *Enricher) enrichOne(ctx context.Context, entry recommend.CatalogEntry) (*Record, error) {
	title, year := SplitTitleYear(entry.TitleYear)

	results, err := e.api.SearchMovie(ctx, title, e.opts.Locale, year)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", title, err)
	}
	best, ok := closestYear(results, year)
	if !ok {
		return nil, nil
	}

	details, err := e.api.MovieDetails(ctx, best.ID, e.opts.Locale, true, true)
	if errors.Is(err, tmdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("details %d: %w", best.ID, err)
	}
	return buildRecord(entry, title, year, best.ID, details), nil
}

func buildRecord(entry recommend.CatalogEntry, title string, year int, tmdbID int64, d *tmdb.MovieDetails) *Record {
	genres := entry.Genres
	if len(genres) == 0 {
		genres = d.GenreNames()
	}
	yearText := ""
	if year > 0 {
		yearText = strconv.Itoa(year)
	}
	m := recommend.Movie{
		ItemID:              entry.ItemID,
		TMDBID:              tmdbID,
		Title:               title,
		Year:                yearText,
		Genres:              genres,
		Overview:            d.Overview,
		Keywords:            d.KeywordList(),
		Director:            d.Director(),
		TopActors:           d.TopActors(recommend.MaxTopActors),
		ProductionCompanies: d.CompanyList(),
		ProductionCountries: d.CountryList(),
	}
	m.VoteAverage.Float64, m.VoteAverage.Valid = d.VoteAverage, true
	m.VoteCount.Float64, m.VoteCount.Valid = float64(d.VoteCount), true
	m.Popularity.Float64, m.Popularity.Valid = d.Popularity, true
	m.Runtime.Float64, m.Runtime.Valid = float64(d.Runtime), true

	return &Record{Movie: m, OriginalTitle: d.OriginalTitle, OriginalLanguage: d.OriginalLanguage}
}

// SplitTitleYear splits "Heat (1995)" into "Heat" and 1995. A title with
// no trailing year comes back whole with year 0.
func SplitTitleYear(titleYear string) (string, int) {
	titleYear = strings.TrimSpace(titleYear)
	m := titleYearPattern.FindStringSubmatch(titleYear)
	if m == nil {
		return titleYear, 0
	}
	year, _ := strconv.Atoi(m[2])
	return m[1], year
}

// closestYear picks the result whose release year is nearest year. The
// first result wins ties, and any result wins when year is unknown.
// Results without a release date count as year 0.
func closestYear(results []tmdb.SearchResult, year int) (tmdb.SearchResult, bool) {
	if len(results) == 0 {
		return tmdb.SearchResult{}, false
	}
	best, bestDiff := 0, -1
	if year <= 0 {
		return results[0], true
	}
	for i := range results {
		diff := results[i].ReleaseYear() - year
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return results[best], true
}
