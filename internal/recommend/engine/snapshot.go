// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/algorithms"
	"github.com/tomtom215/reelmatch/internal/recommend/features"
	"github.com/tomtom215/reelmatch/internal/recommend/identity"
	"github.com/tomtom215/reelmatch/internal/recommend/ratings"
	"github.com/tomtom215/reelmatch/internal/recommend/textnorm"
)

// Input is the raw data a snapshot is built from.
type Input struct {
	// Movies is the enriched movie table; its order fixes every row index.
	Movies []recommend.Movie

	Ratings []recommend.Rating

	// Catalog is the ratings-side "Title (Year)" catalog.
	Catalog []recommend.CatalogEntry
}

// Deps are the collaborators a snapshot borrows. Both may be nil.
type Deps struct {
	// Metadata resolves content-side queries. Without it queries are
	// matched against local titles.
	Metadata identity.Metadata

	// Segmenter splits CJK text for the feature store.
	Segmenter textnorm.Segmenter
}

// Snapshot is an immutable, fully built set of models.
type Snapshot struct {
	cfg    *recommend.Config
	info   recommend.SnapshotInfo
	logger zerolog.Logger

	movies      []recommend.Movie
	lowerTitles []string
	rowByItem   map[string]int

	store     *features.Store
	content   *algorithms.ContentSimilarity
	resolver  *identity.ContentResolver
	matrix    *ratings.Matrix
	neighbors *algorithms.NeighborIndex
	titles    *identity.TitleIndex

	// catalogTitle maps ratings item ids to "Title (Year)".
	catalogTitle map[string]string
}

// Build fits every model on in. Content-side and collaborative-side models
// are built concurrently.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Build(ctx context.Context, in Input, cfg *recommend.Config, deps Deps, version int64, logger zerolog.Logger) (*Snapshot, error) {
	start := time.Now()

	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(in.Movies) == 0 {
		return nil, fmt.Errorf("%w: movie table is empty", recommend.ErrConfiguration)
	}

	s := &Snapshot{
		cfg:          cfg.Clone(),
		logger:       logger,
		movies:       in.Movies,
		lowerTitles:  make([]string, len(in.Movies)),
		rowByItem:    make(map[string]int, len(in.Movies)),
		catalogTitle: make(map[string]string, len(in.Catalog)),
	}
	for i := range in.Movies {
		s.lowerTitles[i] = strings.ToLower(in.Movies[i].Title)
		id := ratings.NormalizeID(in.Movies[i].ItemID)
		if _, dup := s.rowByItem[id]; !dup {
			s.rowByItem[id] = i
		}
	}
	for _, e := range in.Catalog {
		s.catalogTitle[e.ItemID] = e.TitleYear
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		store, err := features.Build(gctx, in.Movies, s.cfg.TextWeights, s.cfg.NumericWeights, textnorm.New(deps.Segmenter))
		if err != nil {
			return fmt.Errorf("build feature store: %w", err)
		}
		content := algorithms.NewContentSimilarity()
		if err := content.Fit(gctx, store, in.Movies); err != nil {
			return fmt.Errorf("fit content engine: %w", err)
		}
		s.store = store
		s.content = content
		s.resolver = identity.NewContentResolver(deps.Metadata, in.Movies, identity.ContentOptions{
			AlternateSearchBelow: s.cfg.AlternateSearchBelow,
			LocalCutoff:          s.cfg.TitleCutoff,
		}, logger)
		return nil
	})

	g.Go(func() error {
		matrix, err := ratings.Build(gctx, in.Ratings, s.cfg.MinRatingCount, s.cfg.MergePolicy)
		if err != nil {
			return fmt.Errorf("build rating matrix: %w", err)
		}
		knn := algorithms.NewNeighborIndex()
		if err := knn.Fit(gctx, matrix.Rows, matrix.NumUsers()); err != nil {
			return fmt.Errorf("fit neighbor index: %w", err)
		}
		s.matrix = matrix
		s.neighbors = knn
		s.titles = identity.NewTitleIndex(in.Catalog)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.info = recommend.SnapshotInfo{
		Version:       version,
		BuiltAt:       time.Now(),
		BuildDuration: time.Since(start),
		Movies:        len(in.Movies),
		Ratings:       s.matrix.NumRatings(),
		MatrixItems:   s.matrix.NumItems(),
		MatrixUsers:   s.matrix.NumUsers(),
		CatalogTitles: s.titles.Len(),
	}

	logger.Info().
		Int64("version", version).
		Int("movies", s.info.Movies).
		Int("vocabulary", s.store.VocabularySize()).
		Int("ratings", s.info.Ratings).
		Int("duplicate_ratings", s.matrix.Duplicates()).
		Int("matrix_items", s.info.MatrixItems).
		Int("matrix_users", s.info.MatrixUsers).
		Dur("duration", s.info.BuildDuration).
		Msg("Snapshot built")

	return s, nil
}

// Info describes the snapshot.
func (s *Snapshot) Info() recommend.SnapshotInfo {
	return s.info
}

// Version returns the snapshot version.
func (s *Snapshot) Version() int64 {
	return s.info.Version
}

// Content resolves query and returns up to n catalog movies most similar to
// it. Rows failing filter are left out, so fewer than n rows can come back.
// An unresolved query yields an empty list and a nil error.
func (s *Snapshot) Content(ctx context.Context, query string, n int, filter recommend.Filter) ([]recommend.ContentRecommendation, recommend.Resolution, error) {
	res, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, res, err
	}
	if !res.Found() {
		return []recommend.ContentRecommendation{}, res, nil
	}

	scored, err := s.contentByRow(res.Row, n, filter)
	if err != nil {
		return nil, res, err
	}

	out := make([]recommend.ContentRecommendation, len(scored))
	for i, sc := range scored {
		m := &s.movies[sc.Row]
		out[i] = recommend.ContentRecommendation{
			ItemID:          m.ItemID,
			TMDBID:          m.TMDBID,
			Title:           m.Title,
			Year:            m.Year,
			Genres:          nonNil(m.Genres),
			Director:        m.Director,
			TopActors:       nonNil(m.TopActors),
			VoteAverage:     m.VoteAverage.Float64,
			VoteCount:       m.VoteCount.Float64,
			Runtime:         m.Runtime.Float64,
			SimilarityScore: sc.Score,
		}
	}
	return out, res, nil
}

// contentByRow ranks every other row and keeps the first n that pass filter.
func (s *Snapshot) contentByRow(row, n int, filter recommend.Filter) ([]algorithms.Scored, error) {
	ranked, err := s.content.TopN(row, s.content.Rows(), filter)
	if err != nil {
		return nil, err
	}

	out := make([]algorithms.Scored, 0, n)
	for _, sc := range ranked {
		if len(out) == n {
			break
		}
		if !s.content.Passes(sc.Row, filter) {
			continue
		}
		out = append(out, sc)
	}
	return out, nil
}

// CollaborativeByID returns up to n items nearest to itemID by rating
// vector, optionally keeping only items whose mean rating reaches
// minMeanRating. The canonical id is empty when itemID was never rated;
// like an id rated too rarely to own a matrix row, it yields an empty list.
func (s *Snapshot) CollaborativeByID(itemID string, n int, minMeanRating *float64) (string, []recommend.CollaborativeRecommendation, error) {
	canonical, ok := s.matrix.Resolve(itemID)
	if !ok {
		s.logger.Debug().Str("item_id", itemID).Msg("Item has no ratings")
		return "", []recommend.CollaborativeRecommendation{}, nil
	}

	row, err := s.matrix.Row(canonical)
	if err != nil {
		s.logger.Debug().Str("item_id", canonical).Msg("Item below the minimum rating count")
		return canonical, []recommend.CollaborativeRecommendation{}, nil
	}

	neighbors, err := s.neighbors.Neighbors(row, s.cfg.Neighbors)
	if err != nil {
		return canonical, nil, err
	}

	out := make([]recommend.CollaborativeRecommendation, 0, len(neighbors))
	for _, nb := range neighbors {
		if len(out) == n {
			break
		}
		id, _ := s.matrix.ItemAt(nb.Row)
		st, _ := s.matrix.Stats(id)
		if minMeanRating != nil && st.Mean < *minMeanRating {
			continue
		}
		out = append(out, recommend.CollaborativeRecommendation{
			ItemID:      id,
			Title:       s.catalogTitle[id],
			Similarity:  nb.Similarity,
			MeanRating:  st.Mean,
			RatingCount: st.Count,
		})
	}
	return canonical, out, nil
}

// CollaborativeByTitle fuzzy-matches title against the ratings catalog and
// recommends for the best match. No match yields a nil match and an empty
// list; a catalog title without ratings yields its match and an empty list.
func (s *Snapshot) CollaborativeByTitle(title string, n int, minMeanRating *float64) (*recommend.TitleMatch, []recommend.CollaborativeRecommendation, error) {
	matches := s.titles.Match(title, s.cfg.TitleMatches, s.cfg.TitleCutoff)
	if len(matches) == 0 {
		return nil, []recommend.CollaborativeRecommendation{}, nil
	}
	best := matches[0]
	_, recs, err := s.CollaborativeByID(best.ItemID, n, minMeanRating)
	return &best, recs, err
}

// Rated reports whether itemID has at least one rating.
func (s *Snapshot) Rated(itemID string) bool {
	_, ok := s.matrix.Resolve(itemID)
	return ok
}

// HybridResult is the outcome of a hybrid query.
type HybridResult struct {
	Resolution    recommend.Resolution             `json:"resolution"`
	CFMatch       *recommend.TitleMatch            `json:"cf_match,omitempty"`
	ContentWeight float64                          `json:"content_weight"`
	Items         []recommend.HybridRecommendation `json:"items"`
}

// Hybrid blends content and collaborative rankings for query.
//
// The content side ranks n*ContentFetchFactor rows passing filter. The
// collaborative side fuzzy-matches the resolved local title (or the raw
// query when the content side did not resolve) against the ratings catalog
// and takes the neighbors of the best match. Each neighbor is mapped onto
// the movie table by item id, then by case-insensitive title containment;
// neighbors that map nowhere are dropped.
func (s *Snapshot) Hybrid(ctx context.Context, query string, n int, contentWeight float64, filter recommend.Filter) (*HybridResult, error) {
	if err := recommend.ValidateContentWeight(contentWeight); err != nil {
		return nil, err
	}

	res, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &HybridResult{Resolution: res, ContentWeight: contentWeight}

	// rowByKey maps each fused key back to the movie row it was scored for.
	rowByKey := make(map[string]int)
	scoreRow := func(row int, score float64) recommend.TitleScore {
		ts := recommend.TitleScore{Title: s.movies[row].Title, ItemID: s.movies[row].ItemID, Score: score}
		if _, ok := rowByKey[ts.Key()]; !ok {
			rowByKey[ts.Key()] = row
		}
		return ts
	}

	var contentScores []recommend.TitleScore
	if res.Found() {
		scored, err := s.contentByRow(res.Row, n*s.cfg.ContentFetchFactor, filter)
		if err != nil {
			return nil, err
		}
		contentScores = make([]recommend.TitleScore, 0, len(scored))
		for _, sc := range scored {
			contentScores = append(contentScores, scoreRow(sc.Row, sc.Score))
		}
	}

	cfQuery := query
	if res.Found() {
		cfQuery = res.Title
	}
	var cfScores []recommend.TitleScore
	if matches := s.titles.Match(cfQuery, s.cfg.TitleMatches, s.cfg.TitleCutoff); len(matches) > 0 {
		best := matches[0]
		result.CFMatch = &best
		cfScores = s.collaborativeScores(best.ItemID, res.Row, scoreRow)
	}

	combined, err := recommend.Combine(contentScores, cfScores, contentWeight)
	if err != nil {
		return nil, err
	}
	if len(combined) > n {
		combined = combined[:n]
	}

	result.Items = make([]recommend.HybridRecommendation, 0, len(combined))
	for _, cs := range combined {
		row, ok := rowByKey[cs.Key()]
		if !ok {
			continue
		}
		m := &s.movies[row]
		result.Items = append(result.Items, recommend.HybridRecommendation{
			ItemID:        m.ItemID,
			TMDBID:        m.TMDBID,
			Title:         cs.Title,
			Year:          m.Year,
			Genres:        nonNil(m.Genres),
			Director:      m.Director,
			VoteAverage:   m.VoteAverage.Float64,
			ContentScore:  cs.ContentScore,
			CFScore:       cs.CFScore,
			CombinedScore: cs.CombinedScore,
		})
	}

	s.logger.Debug().
		Str("query", query).
		Int("content_candidates", len(contentScores)).
		Int("cf_candidates", len(cfScores)).
		Int("returned", len(result.Items)).
		Msg("Hybrid recommendation")

	return result, nil
}

// collaborativeScores lists the neighbors of itemID mapped onto movie table
// rows and scored through scoreRow. Neighbors landing on the query row are
// skipped.
func (s *Snapshot) collaborativeScores(itemID string, queryRow int, scoreRow func(row int, score float64) recommend.TitleScore) []recommend.TitleScore {
	row, err := s.matrix.Row(itemID)
	if err != nil {
		return nil
	}
	neighbors, err := s.neighbors.Neighbors(row, s.cfg.Neighbors)
	if err != nil {
		return nil
	}

	out := make([]recommend.TitleScore, 0, len(neighbors))
	for _, nb := range neighbors {
		id, _ := s.matrix.ItemAt(nb.Row)
		mrow, ok := s.movieRowFor(id)
		if !ok || mrow == queryRow {
			continue
		}
		out = append(out, scoreRow(mrow, nb.Similarity))
	}
	return out
}

// movieRowFor maps a ratings item id onto the movie table: by id first,
// then by the first movie whose title contains the catalog title.
func (s *Snapshot) movieRowFor(itemID string) (int, bool) {
	if row, ok := s.rowByItem[ratings.NormalizeID(itemID)]; ok {
		return row, true
	}

	needle := identity.TitleKey(s.catalogTitle[itemID])
	if needle == "" {
		return -1, false
	}
	for row, title := range s.lowerTitles {
		if strings.Contains(title, needle) {
			return row, true
		}
	}
	return -1, false
}

// MovieDetails returns the rating summary of itemID and whether the item
// has any ratings. Ids are tried verbatim and zero-padded.
func (s *Snapshot) MovieDetails(itemID string) (recommend.ItemStats, bool) {
	return s.matrix.Details(itemID)
}

// SearchTitles fuzzy-matches query against the ratings catalog.
func (s *Snapshot) SearchTitles(query string, n int) []recommend.TitleMatch {
	return s.titles.Match(query, n, s.cfg.TitleCutoff)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
