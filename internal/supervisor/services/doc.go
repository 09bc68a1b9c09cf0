// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package services adapts ReelMatch components to suture.Service.
//
// HTTPServerService turns http.Server's blocking ListenAndServe into a
// context-driven Serve with graceful shutdown. SnapshotService builds the
// first engine snapshot and, when configured, rebuilds it on an interval.
//
// Both return errors only for conditions worth a supervised restart; a
// clean shutdown returns the context error.
package services
