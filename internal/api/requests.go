// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 4 << 10

// ContentRequest is GET /recommendations/content.
type ContentRequest struct {
	Query     string   `validate:"required,max=200"`
	N         int      `validate:"gte=0"`
	MinRating *float64 `validate:"omitempty,gte=0,lte=10"`
	MinVotes  *float64 `validate:"omitempty,gte=0"`
}

// CollaborativeRequest is GET /recommendations/collaborative/{itemID}.
type CollaborativeRequest struct {
	ItemID    string   `validate:"required,itemid"`
	N         int      `validate:"gte=0"`
	MinRating *float64 `validate:"omitempty,gte=0,lte=5"`
}

// CollaborativeSearchRequest is GET /recommendations/collaborative?q=.
type CollaborativeSearchRequest struct {
	Query     string   `validate:"required,max=200"`
	N         int      `validate:"gte=0"`
	MinRating *float64 `validate:"omitempty,gte=0,lte=5"`
}

// HybridRequest is GET /recommendations/hybrid. ContentWeight is range
// checked by the engine.
type HybridRequest struct {
	Query         string   `validate:"required,max=200"`
	N             int      `validate:"gte=0"`
	ContentWeight *float64 `validate:"omitempty"`
	MinRating     *float64 `validate:"omitempty,gte=0,lte=10"`
	MinVotes      *float64 `validate:"omitempty,gte=0"`
}

// TitleSearchRequest is GET /titles/search.
type TitleSearchRequest struct {
	Query string `validate:"required,max=200"`
	N     int    `validate:"gte=0"`
}

// WeightsRequest is the PUT /recommendations/weights body.
type WeightsRequest struct {
	ContentWeight *float64 `json:"content_weight" validate:"required"`
}

// queryParser collects the first parse failure of a sequence of reads.
type queryParser struct {
	r   *http.Request
	err error
}

func (p *queryParser) str(key string) string {
	return strings.TrimSpace(p.r.URL.Query().Get(key))
}

func (p *queryParser) int(key string) int {
	raw := p.str(key)
	if raw == "" || p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.err = fmt.Errorf("%s must be an integer", key)
		return 0
	}
	return v
}

// float returns nil when key is absent.
func (p *queryParser) float(key string) *float64 {
	raw := p.str(key)
	if raw == "" || p.err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.err = fmt.Errorf("%s must be a number", key)
		return nil
	}
	return &v
}

// filter builds a content filter from the thresholds.
func filter(minRating, minVotes *float64) recommend.Filter {
	return recommend.Filter{MinRating: minRating, MinVotes: minVotes}
}

// decodeJSONBody decodes a bounded JSON body into v, rejecting unknown
// fields.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// validateRequest runs the struct tags. It reports whether v is valid and
// writes the 400 response when it is not.
func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &APIResponse{
		Status: "error",
		Metadata: Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
	return false
}
