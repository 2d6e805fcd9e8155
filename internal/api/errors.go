// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/affinity/internal/eventprocessor"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/recommend"
)

// Request decoding errors.
var (
	ErrEmptyBody    = errors.New("request body is empty")
	ErrBodyTooLarge = errors.New("request body too large")
)

// writeEngineError maps engine and pipeline errors to responses.
func writeEngineError(rw *ResponseWriter, r *http.Request, err error) {
	var verr *eventprocessor.ValidationError
	switch {
	case errors.Is(err, recommend.ErrTooManyCandidates),
		errors.Is(err, recommend.ErrUnknownInteractionKind):
		rw.BadRequest(err.Error())
	case errors.As(err, &verr):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, verr.Error(),
			map[string]interface{}{"field": verr.Field})
	case errors.Is(err, recommend.ErrTrainingInProgress):
		rw.Error(http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, recommend.ErrInsufficientData):
		rw.Error(http.StatusUnprocessableEntity, ErrCodeInsufficientData, err.Error())
	case errors.Is(err, recommend.ErrNoDataProvider),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests),
		errors.Is(err, eventprocessor.ErrPublisherClosed):
		rw.ServiceUnavailable(err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		rw.ServiceUnavailable("request timed out")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		rw.InternalError("internal error")
	}
}
