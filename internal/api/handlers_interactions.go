// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/affinity/internal/eventprocessor"
)

// IngestResponse is the data of the interaction endpoints.
type IngestResponse struct {
	Accepted int      `json:"accepted"`
	EventIDs []string `json:"event_ids"`
}

// PostInteraction accepts one interaction for ingestion. The event is
// processed asynchronously when NATS is enabled, so 202 is returned.
//
//	POST /api/v1/interactions
func (h *Handler) PostInteraction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req InteractionRequest
	if !bindJSON(rw, w, r, h.config.API.MaxBodyBytes, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	id, err := h.ingest(ctx, &req)
	if err != nil {
		writeEngineError(rw, r, err)
		return
	}
	rw.Accepted(IngestResponse{Accepted: 1, EventIDs: []string{id}})
}

// PostInteractionBatch accepts up to api.max_batch_size interactions. The
// whole batch is validated before any event is ingested; ingestion stops at
// the first failure and the response reports how many were accepted.
//
//	POST /api/v1/interactions/batch
func (h *Handler) PostInteractionBatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req InteractionBatchRequest
	if !bindJSON(rw, w, r, h.config.API.MaxBodyBytes, &req) {
		return
	}
	if limit := h.config.API.MaxBatchSize; limit > 0 && len(req.Interactions) > limit {
		rw.BadRequest(fmt.Sprintf("batch of %d exceeds the limit of %d", len(req.Interactions), limit))
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	resp := IngestResponse{EventIDs: make([]string, 0, len(req.Interactions))}
	for i := range req.Interactions {
		id, err := h.ingest(ctx, &req.Interactions[i])
		if err != nil {
			h.logger.Warn().Err(err).Int("accepted", resp.Accepted).Msg("Batch ingestion stopped")
			rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
				"ingestion failed: "+err.Error(), resp)
			return
		}
		resp.Accepted++
		resp.EventIDs = append(resp.EventIDs, id)
	}
	rw.Accepted(resp)
}

func (h *Handler) ingest(ctx context.Context, req *InteractionRequest) (string, error) {
	in, err := req.ToInteraction()
	if err != nil {
		return "", err
	}
	event := eventprocessor.FromInteraction(&in)
	if err := h.ingestor.Ingest(ctx, event); err != nil {
		return "", err
	}
	return event.EventID, nil
}
