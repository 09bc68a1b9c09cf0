// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// itemParam wraps a path item id for validation.
type itemParam struct {
	ItemID string `validate:"required,itemid"`
}

// MovieStats handles GET /api/v1/movies/{itemID}/stats: the rating count
// and mean of one item, and whether it passed the rating-count threshold.
func (h *Handler) MovieStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := itemParam{ItemID: chi.URLParam(r, "itemID")}
	if !validateRequest(w, r, &req) {
		return
	}

	stats, found, err := h.engine.MovieDetails(req.ItemID)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	if !found {
		respondError(w, r, http.StatusNotFound, ErrCodeUnknownItem, "Item "+req.ItemID+" has no ratings", nil)
		return
	}
	respondSuccess(w, r, start, stats, nil)
}

// SearchTitles handles GET /api/v1/titles/search: fuzzy matches against
// the ratings catalog, best first.
func (h *Handler) SearchTitles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p := queryParser{r: r}
	req := TitleSearchRequest{Query: p.str("q"), N: p.int("n")}
	if p.err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, p.err.Error(), nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	matches, err := h.engine.SearchTitles(req.Query, req.N)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, map[string]interface{}{
		"query":   req.Query,
		"matches": matches,
	}, nil)
}
