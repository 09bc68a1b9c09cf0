// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend/engine"
)

// contentResponse adds the resolution outcome to a content result.
type contentResponse struct {
	Resolved bool `json:"resolved"`
	engine.ContentResult
}

// hybridResponse adds the resolution outcome to a hybrid result.
type hybridResponse struct {
	Resolved bool `json:"resolved"`
	engine.HybridResponse
}

// weightsResponse reports the hybrid weights.
type weightsResponse struct {
	ContentWeight float64 `json:"content_weight"`
	CFWeight      float64 `json:"cf_weight"`
}

// ContentRecommendations handles GET /api/v1/recommendations/content.
// An unresolved query is not an error: the list is empty and resolved is
// false.
func (h *Handler) ContentRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p := queryParser{r: r}
	req := ContentRequest{
		Query:     p.str("q"),
		N:         p.int("n"),
		MinRating: p.float("min_rating"),
		MinVotes:  p.float("min_votes"),
	}
	if p.err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, p.err.Error(), nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	res, err := h.engine.Content(r.Context(), engine.ContentQuery{
		Query:  req.Query,
		N:      req.N,
		Filter: filter(req.MinRating, req.MinVotes),
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("mode", engine.ModeContent).
		Bool("resolved", res.Resolution.Found()).
		Int("results", len(res.Items)).
		Msg("Recommendation served")

	respondSuccess(w, r, start,
		contentResponse{Resolved: res.Resolution.Found(), ContentResult: *res},
		&Metadata{Cached: res.Cached, SnapshotVersion: res.SnapshotVersion})
}

// CollaborativeRecommendations handles
// GET /api/v1/recommendations/collaborative/{itemID}.
func (h *Handler) CollaborativeRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p := queryParser{r: r}
	req := CollaborativeRequest{
		ItemID:    chi.URLParam(r, "itemID"),
		N:         p.int("n"),
		MinRating: p.float("min_rating"),
	}
	if p.err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, p.err.Error(), nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	res, err := h.engine.Collaborative(r.Context(), engine.CollaborativeQuery{
		ItemID:        req.ItemID,
		N:             req.N,
		MinMeanRating: req.MinRating,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	if !res.Known {
		respondError(w, r, http.StatusNotFound, ErrCodeUnknownItem, "Item "+req.ItemID+" has no ratings", nil)
		return
	}
	respondSuccess(w, r, start, res, &Metadata{Cached: res.Cached, SnapshotVersion: res.SnapshotVersion})
}

// CollaborativeSearch handles GET /api/v1/recommendations/collaborative?q=.
// The title is fuzzy-matched against the ratings catalog first; match is
// absent when nothing is close enough.
func (h *Handler) CollaborativeSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p := queryParser{r: r}
	req := CollaborativeSearchRequest{
		Query:     p.str("q"),
		N:         p.int("n"),
		MinRating: p.float("min_rating"),
	}
	if p.err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, p.err.Error(), nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	res, err := h.engine.Collaborative(r.Context(), engine.CollaborativeQuery{
		Title:         req.Query,
		N:             req.N,
		MinMeanRating: req.MinRating,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, res, &Metadata{Cached: res.Cached, SnapshotVersion: res.SnapshotVersion})
}

// HybridRecommendations handles GET /api/v1/recommendations/hybrid.
// Thresholds absent from the query fall back to the configured hybrid
// defaults only when neither is given.
func (h *Handler) HybridRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p := queryParser{r: r}
	req := HybridRequest{
		Query:         p.str("q"),
		N:             p.int("n"),
		ContentWeight: p.float("content_weight"),
		MinRating:     p.float("min_rating"),
		MinVotes:      p.float("min_votes"),
	}
	if p.err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, p.err.Error(), nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	q := engine.HybridQuery{
		Query:         req.Query,
		N:             req.N,
		ContentWeight: req.ContentWeight,
	}
	if req.MinRating != nil || req.MinVotes != nil {
		f := filter(req.MinRating, req.MinVotes)
		q.Filter = &f
	}

	res, err := h.engine.Hybrid(r.Context(), q)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("mode", engine.ModeHybrid).
		Float64("content_weight", res.ContentWeight).
		Int("results", len(res.Items)).
		Msg("Recommendation served")

	respondSuccess(w, r, start,
		hybridResponse{Resolved: res.Resolution.Found(), HybridResponse: *res},
		&Metadata{Cached: res.Cached, SnapshotVersion: res.SnapshotVersion})
}

// GetWeights handles GET /api/v1/recommendations/weights.
func (h *Handler) GetWeights(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cw := h.engine.ContentWeight()
	respondSuccess(w, r, start, weightsResponse{ContentWeight: cw, CFWeight: 1 - cw}, nil)
}

// AdjustWeights handles PUT /api/v1/recommendations/weights with body
// {"content_weight": 0.4}. The collaborative weight becomes 1-w.
func (h *Handler) AdjustWeights(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req WeightsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	if err := h.engine.AdjustWeights(*req.ContentWeight); err != nil {
		respondEngineError(w, r, err)
		return
	}
	cw := h.engine.ContentWeight()
	respondSuccess(w, r, start, weightsResponse{ContentWeight: cw, CFWeight: 1 - cw}, nil)
}
