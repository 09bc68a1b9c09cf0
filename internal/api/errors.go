// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/engine"
)

// Error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidWeight     = "INVALID_WEIGHT"
	ErrCodeUnknownItem       = "UNKNOWN_ITEM"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeRebuildInProgress = "REBUILD_IN_PROGRESS"
	ErrCodeRateLimited       = "RATE_LIMIT_EXCEEDED"
	ErrCodeNotReady          = "SNAPSHOT_NOT_READY"
	ErrCodeExternalService   = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeConfiguration     = "CONFIGURATION_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// respondEngineError maps an engine error onto a status code and error
// code.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidWeight):
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidWeight, err.Error(), err)
	case errors.Is(err, recommend.ErrUnknownItem):
		respondError(w, r, http.StatusNotFound, ErrCodeUnknownItem, err.Error(), err)
	case errors.Is(err, engine.ErrRebuildInProgress):
		respondError(w, r, http.StatusConflict, ErrCodeRebuildInProgress, "A snapshot rebuild is already running", err)
	case errors.Is(err, recommend.ErrUntrainedModel):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNotReady, "No snapshot has been built yet", err)
	case errors.Is(err, recommend.ErrExternalService):
		respondError(w, r, http.StatusBadGateway, ErrCodeExternalService, "Metadata service unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out", err)
	case errors.Is(err, recommend.ErrConfiguration):
		respondError(w, r, http.StatusInternalServerError, ErrCodeConfiguration, "Engine configuration error", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", err)
	}
}
