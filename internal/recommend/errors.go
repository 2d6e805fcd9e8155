// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"errors"

	"github.com/tomtom215/affinity/internal/recommend/storage"
)

// ErrUnknownInteractionKind is returned for kinds absent from the weight table.
// Such interactions are rejected rather than treated as zero weight.
var ErrUnknownInteractionKind = errors.New("unknown interaction kind")

// ErrMalformedArtifact is returned by Load when a snapshot cannot be restored.
var ErrMalformedArtifact = storage.ErrMalformedArtifact

// ErrTrainingInProgress is returned when Train is called while another run is active.
var ErrTrainingInProgress = errors.New("training already in progress")

// ErrNoDataProvider is returned when Train is called without a DataProvider.
var ErrNoDataProvider = errors.New("no data provider configured")

// ErrInsufficientData is returned when fewer interactions than the configured minimum exist.
var ErrInsufficientData = errors.New("insufficient interactions for training")
