// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "errors"

// Error taxonomy shared by every recommend subpackage.
// Callers match with errors.Is; producers wrap with fmt.Errorf("...: %w").
var (
	// ErrConfiguration is returned at construction for bad weights or missing columns.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownItem is returned when a row or id is not part of a fitted model.
	ErrUnknownItem = errors.New("unknown item")

	// ErrUntrainedModel is returned when a model is queried before it is fitted.
	ErrUntrainedModel = errors.New("model not trained")

	// ErrExternalService marks metadata service failures.
	ErrExternalService = errors.New("external service error")

	// ErrInvalidWeight is returned for a hybrid content weight outside [0, 1].
	ErrInvalidWeight = errors.New("invalid weight")
)
