// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/affinity/internal/database"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/wal"
)

// AdminStatus is the data of GET /admin/status.
type AdminStatus struct {
	Model            recommend.TrainingStatus `json:"model"`
	DataBreaker      string                   `json:"data_breaker"`
	PublisherBreaker string                   `json:"publisher_breaker,omitempty"`
	Catalog          *database.Stats          `json:"catalog,omitempty"`
	CatalogError     string                   `json:"catalog_error,omitempty"`
	WAL              *wal.Stats               `json:"wal,omitempty"`
	UptimeSeconds    float64                  `json:"uptime_seconds"`
}

// AdminStatus reports model, store, WAL and breaker state.
//
//	GET /api/v1/admin/status
func (h *Handler) AdminStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	status := AdminStatus{
		Model:         h.engine.Status(),
		DataBreaker:   h.engine.BreakerState(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.publisher != nil {
		status.PublisherBreaker = h.publisher.BreakerState()
	}
	if stats, err := h.catalog.Stats(ctx); err != nil {
		status.CatalogError = err.Error()
	} else {
		status.Catalog = &stats
	}
	if h.wal != nil {
		stats := h.wal.Stats()
		status.WAL = &stats
	}
	rw.Success(status)
}

// AdminTrain starts a training run. By default the run proceeds in the
// background and 202 is returned; ?wait=true blocks until it finishes.
//
//	POST /api/v1/admin/train
func (h *Handler) AdminTrain(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.engine.Status().InProgress {
		writeEngineError(rw, r, recommend.ErrTrainingInProgress)
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		ctx, cancel := h.trainContext(r.Context())
		defer cancel()
		if err := h.engine.Train(ctx); err != nil {
			writeEngineError(rw, r, err)
			return
		}
		rw.Success(h.engine.Status())
		return
	}

	go func() {
		ctx, cancel := h.trainContext(h.trainCtx)
		defer cancel()
		if err := h.engine.Train(ctx); err != nil && !errors.Is(err, recommend.ErrTrainingInProgress) {
			h.logger.Error().Err(err).Msg("Background training failed")
		}
	}()
	rw.Accepted(map[string]interface{}{"started": true})
}

func (h *Handler) trainContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.config.Recommend.TrainTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.config.Recommend.TrainTimeout)
}
