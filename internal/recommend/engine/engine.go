// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// ErrRebuildInProgress is returned when Rebuild is called while another
// rebuild is running.
var ErrRebuildInProgress = errors.New("snapshot rebuild already in progress")

// Query modes, used as metric and cache labels.
const (
	ModeContent       = "content"
	ModeCollaborative = "collaborative"
	ModeHybrid        = "hybrid"
)

// Source loads the input of a snapshot build.
type Source interface {
	Load(ctx context.Context) (Input, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Input, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (Input, error) {
	return f(ctx)
}

// Options tunes an Engine.
type Options struct {
	// ResultCacheSize bounds the result cache. Zero disables caching.
	ResultCacheSize int

	// ResultCacheTTL expires cached results within a snapshot.
	// Default: 10m.
	ResultCacheTTL time.Duration

	// BuildTimeout bounds one rebuild. Zero means no limit.
	BuildTimeout time.Duration
}

// Engine serves queries from the current snapshot and rebuilds it on
// demand. It is safe for concurrent use.
type Engine struct {
	cfg    *recommend.Config
	source Source
	deps   Deps
	opts   Options
	logger zerolog.Logger

	current atomic.Pointer[Snapshot]
	version atomic.Int64

	// buildMu is only ever TryLock'ed.
	buildMu sync.Mutex

	weightMu      sync.RWMutex
	contentWeight float64

	results *cache.LRU[any]
}

// New creates an Engine without a snapshot; call Rebuild before querying.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg *recommend.Config, source Source, deps Deps, opts Options, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("%w: nil snapshot source", recommend.ErrConfiguration)
	}
	if opts.ResultCacheTTL <= 0 {
		opts.ResultCacheTTL = 10 * time.Minute
	}

	e := &Engine{
		cfg:           cfg.Clone(),
		source:        source,
		deps:          deps,
		opts:          opts,
		logger:        logger.With().Str("component", "engine").Logger(),
		contentWeight: cfg.ContentWeight,
	}
	if opts.ResultCacheSize > 0 {
		e.results = cache.NewLRU[any](opts.ResultCacheSize, opts.ResultCacheTTL)
	}
	return e, nil
}

// Rebuild loads fresh input and swaps in a new snapshot. On failure the
// serving snapshot is kept. Concurrent calls fail fast with
// ErrRebuildInProgress.
func (e *Engine) Rebuild(ctx context.Context) (recommend.SnapshotInfo, error) {
	if !e.buildMu.TryLock() {
		return recommend.SnapshotInfo{}, ErrRebuildInProgress
	}
	defer e.buildMu.Unlock()

	if e.opts.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.BuildTimeout)
		defer cancel()
	}

	start := time.Now()
	version := e.version.Load() + 1
	log := e.logger.With().
		Str("correlation_id", logging.GenerateCorrelationID()).
		Int64("version", version).
		Logger()
	log.Info().Msg("Starting snapshot rebuild")

	in, err := e.source.Load(ctx)
	if err != nil {
		err = fmt.Errorf("load snapshot input: %w", err)
		metrics.RecordSnapshotBuild(time.Since(start), recommend.SnapshotInfo{}, err)
		log.Error().Err(err).Msg("Snapshot rebuild failed, keeping previous snapshot")
		return recommend.SnapshotInfo{}, err
	}

	snap, err := Build(ctx, in, e.cfg, e.deps, version, log)
	if err != nil {
		metrics.RecordSnapshotBuild(time.Since(start), recommend.SnapshotInfo{}, err)
		log.Error().Err(err).Msg("Snapshot rebuild failed, keeping previous snapshot")
		return recommend.SnapshotInfo{}, err
	}

	e.version.Store(version)
	e.current.Store(snap)
	if e.results != nil {
		e.results.Clear()
	}

	info := snap.Info()
	metrics.RecordSnapshotBuild(time.Since(start), info, nil)
	return info, nil
}

// Snapshot returns the serving snapshot, or an error wrapping
// recommend.ErrUntrainedModel before the first successful build.
func (e *Engine) Snapshot() (*Snapshot, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: no snapshot built yet", recommend.ErrUntrainedModel)
	}
	return snap, nil
}

// Ready reports whether a snapshot is serving.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Config returns a copy of the engine configuration with the current
// content weight.
func (e *Engine) Config() *recommend.Config {
	cfg := e.cfg.Clone()
	cfg.ContentWeight = e.ContentWeight()
	return cfg
}

// ContentWeight returns the default hybrid content weight.
func (e *Engine) ContentWeight() float64 {
	e.weightMu.RLock()
	defer e.weightMu.RUnlock()
	return e.contentWeight
}

// AdjustWeights sets the default hybrid content weight; the collaborative
// weight becomes 1-w. Values outside [0, 1] wrap recommend.ErrInvalidWeight
// and leave the weight unchanged.
func (e *Engine) AdjustWeights(w float64) error {
	if err := recommend.ValidateContentWeight(w); err != nil {
		return err
	}
	e.weightMu.Lock()
	e.contentWeight = w
	e.weightMu.Unlock()

	e.logger.Info().
		Float64("content_weight", w).
		Float64("cf_weight", 1-w).
		Msg("Hybrid weights adjusted")
	return nil
}

// clampN applies the default and the cap to a requested result count.
func (e *Engine) clampN(n int) int {
	if n <= 0 {
		return e.cfg.DefaultN
	}
	if n > e.cfg.MaxN {
		return e.cfg.MaxN
	}
	return n
}

// ContentQuery is a content-mode request.
type ContentQuery struct {
	Query  string
	N      int
	Filter recommend.Filter
}

// ContentResult is a content-mode response.
type ContentResult struct {
	Resolution      recommend.Resolution              `json:"resolution"`
	Items           []recommend.ContentRecommendation `json:"items"`
	SnapshotVersion int64                             `json:"snapshot_version"`
	Cached          bool                              `json:"cached"`
}

// Content serves a content-mode query.
func (e *Engine) Content(ctx context.Context, q ContentQuery) (*ContentResult, error) {
	start := time.Now()
	snap, err := e.Snapshot()
	if err != nil {
		metrics.RecordRecommendation(ModeContent, time.Since(start), 0, err)
		return nil, err
	}

	n := e.clampN(q.N)
	query := strings.TrimSpace(q.Query)
	key := cacheKey(ModeContent, snap.Version(), query, strconv.Itoa(n), filterKey(q.Filter))
	if cached, ok := e.cached(key); ok {
		out := *cached.(*ContentResult)
		out.Cached = true
		metrics.RecordRecommendation(ModeContent, time.Since(start), len(out.Items), nil)
		return &out, nil
	}

	items, res, err := snap.Content(ctx, query, n, q.Filter)
	metrics.RecordRecommendation(ModeContent, time.Since(start), len(items), err)
	if err != nil {
		return nil, err
	}

	out := &ContentResult{Resolution: res, Items: items, SnapshotVersion: snap.Version()}
	if res.Found() {
		e.store(key, out)
	}
	return out, nil
}

// CollaborativeQuery is a collaborative-mode request. Exactly one of
// ItemID and Title is used; ItemID wins.
type CollaborativeQuery struct {
	ItemID        string
	Title         string
	N             int
	MinMeanRating *float64
}

// CollaborativeResult is a collaborative-mode response. Known is false when
// the requested or matched item has no ratings at all.
type CollaborativeResult struct {
	ItemID          string                                  `json:"item_id,omitempty"`
	Known           bool                                    `json:"known"`
	Match           *recommend.TitleMatch                   `json:"match,omitempty"`
	Items           []recommend.CollaborativeRecommendation `json:"items"`
	SnapshotVersion int64                                   `json:"snapshot_version"`
	Cached          bool                                    `json:"cached"`
}

// Collaborative serves a collaborative-mode query.
func (e *Engine) Collaborative(_ context.Context, q CollaborativeQuery) (*CollaborativeResult, error) {
	start := time.Now()
	snap, err := e.Snapshot()
	if err != nil {
		metrics.RecordRecommendation(ModeCollaborative, time.Since(start), 0, err)
		return nil, err
	}

	n := e.clampN(q.N)
	key := cacheKey(ModeCollaborative, snap.Version(), q.ItemID, q.Title, strconv.Itoa(n), floatKey(q.MinMeanRating))
	if cached, ok := e.cached(key); ok {
		out := *cached.(*CollaborativeResult)
		out.Cached = true
		metrics.RecordRecommendation(ModeCollaborative, time.Since(start), len(out.Items), nil)
		return &out, nil
	}

	out := &CollaborativeResult{SnapshotVersion: snap.Version()}
	if q.ItemID != "" {
		out.ItemID, out.Items, err = snap.CollaborativeByID(q.ItemID, n, q.MinMeanRating)
	} else {
		out.Match, out.Items, err = snap.CollaborativeByTitle(q.Title, n, q.MinMeanRating)
		if out.Match != nil {
			out.ItemID = out.Match.ItemID
		}
	}
	out.Known = out.ItemID != "" && snap.Rated(out.ItemID)
	metrics.RecordRecommendation(ModeCollaborative, time.Since(start), len(out.Items), err)
	if err != nil {
		return nil, err
	}

	e.store(key, out)
	return out, nil
}

// HybridQuery is a hybrid-mode request. A nil ContentWeight uses the
// engine weight; a nil Filter uses the configured hybrid thresholds.
type HybridQuery struct {
	Query         string
	N             int
	ContentWeight *float64
	Filter        *recommend.Filter
}

// HybridResponse is a hybrid-mode response.
type HybridResponse struct {
	HybridResult
	SnapshotVersion int64 `json:"snapshot_version"`
	Cached          bool  `json:"cached"`
}

// Hybrid serves a hybrid-mode query.
func (e *Engine) Hybrid(ctx context.Context, q HybridQuery) (*HybridResponse, error) {
	start := time.Now()
	snap, err := e.Snapshot()
	if err != nil {
		metrics.RecordRecommendation(ModeHybrid, time.Since(start), 0, err)
		return nil, err
	}

	w := e.ContentWeight()
	if q.ContentWeight != nil {
		w = *q.ContentWeight
	}
	if err := recommend.ValidateContentWeight(w); err != nil {
		metrics.RecordRecommendation(ModeHybrid, time.Since(start), 0, err)
		return nil, err
	}
	filter := e.cfg.HybridFilter
	if q.Filter != nil {
		filter = *q.Filter
	}

	n := e.clampN(q.N)
	query := strings.TrimSpace(q.Query)
	key := cacheKey(ModeHybrid, snap.Version(), query, strconv.Itoa(n), strconv.FormatFloat(w, 'g', -1, 64), filterKey(filter))
	if cached, ok := e.cached(key); ok {
		out := *cached.(*HybridResponse)
		out.Cached = true
		metrics.RecordRecommendation(ModeHybrid, time.Since(start), len(out.Items), nil)
		return &out, nil
	}

	result, err := snap.Hybrid(ctx, query, n, w, filter)
	if err != nil {
		metrics.RecordRecommendation(ModeHybrid, time.Since(start), 0, err)
		return nil, err
	}
	metrics.RecordRecommendation(ModeHybrid, time.Since(start), len(result.Items), nil)

	out := &HybridResponse{HybridResult: *result, SnapshotVersion: snap.Version()}
	if result.Resolution.Found() || result.CFMatch != nil {
		e.store(key, out)
	}
	return out, nil
}

// MovieDetails returns the rating summary of itemID. found is false when
// the item has no ratings.
func (e *Engine) MovieDetails(itemID string) (stats recommend.ItemStats, found bool, err error) {
	snap, err := e.Snapshot()
	if err != nil {
		return recommend.ItemStats{}, false, err
	}
	stats, found = snap.MovieDetails(itemID)
	return stats, found, nil
}

// SearchTitles fuzzy-matches query against the ratings catalog. A
// non-positive n uses the configured match count.
func (e *Engine) SearchTitles(query string, n int) ([]recommend.TitleMatch, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = e.cfg.TitleMatches
	}
	if n > e.cfg.MaxN {
		n = e.cfg.MaxN
	}
	return snap.SearchTitles(query, n), nil
}

func (e *Engine) cached(key string) (any, bool) {
	if e.results == nil {
		return nil, false
	}
	v, ok := e.results.Get(key)
	metrics.RecordCacheLookup("results", ok)
	return v, ok
}

func (e *Engine) store(key string, v any) {
	if e.results != nil {
		e.results.Add(key, v)
	}
}

func cacheKey(mode string, version int64, parts ...string) string {
	var b strings.Builder
	b.WriteString(mode)
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(version, 10))
	for _, p := range parts {
		b.WriteByte('|')
		b.WriteString(p)
	}
	return b.String()
}

func filterKey(f recommend.Filter) string {
	return floatKey(f.MinRating) + "," + floatKey(f.MinVotes)
}

func floatKey(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
