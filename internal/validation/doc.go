// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package validation validates API request bodies with go-playground/validator.
//
// A single validator is shared by every handler. Besides the built-in tags
// it registers:
//
//   - interaction_kind: view, like, bookmark, share, comment or join
//   - entity_id: a non-blank id, at most MaxIDLength bytes, no control
//     characters, no surrounding whitespace
//
// Failures come back as *RequestValidationError, which ToAPIError turns into
// the VALIDATION_ERROR body handlers write with status 400.
//
//	type interactionRequest struct {
//	    ActorID string `json:"actor_id" validate:"entity_id"`
//	    Kind    string `json:"kind" validate:"interaction_kind"`
//	}
package validation
