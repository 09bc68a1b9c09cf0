// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// SnapshotInfo handles GET /api/v1/snapshot.
func (h *Handler) SnapshotInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap, err := h.engine.Snapshot()
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	info := snap.Info()
	respondSuccess(w, r, start, info, &Metadata{SnapshotVersion: info.Version})
}

// RebuildSnapshot handles POST /api/v1/snapshot/rebuild. The rebuild runs
// to completion even if the client goes away; the engine's build timeout
// bounds it.
func (h *Handler) RebuildSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logging.Ctx(r.Context()).Info().Msg("Snapshot rebuild requested")

	info, err := h.engine.Rebuild(context.WithoutCancel(r.Context()))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, info, &Metadata{SnapshotVersion: info.Version})
}
