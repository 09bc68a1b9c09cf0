// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"
)

// HealthLive handles GET /api/v1/health/live. The process is alive if it
// can answer.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Now(), map[string]string{"status": "alive"}, nil)
}

// HealthReady handles GET /api/v1/health/ready: 200 once a snapshot is
// serving, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap, err := h.engine.Snapshot()
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, &APIResponse{
			Status:   "error",
			Data:     map[string]interface{}{"ready": false},
			Metadata: Metadata{Timestamp: time.Now()},
			Error:    &APIError{Code: ErrCodeNotReady, Message: "No snapshot has been built yet"},
		})
		return
	}
	respondSuccess(w, r, start, map[string]interface{}{
		"ready":            true,
		"snapshot_version": snap.Version(),
	}, &Metadata{SnapshotVersion: snap.Version()})
}
