// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthLive reports that the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 once the catalog store answers a ping and 503
// otherwise. An untrained model does not make the service unready: it
// serves empty results until the first training run.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	ready := true
	if err := h.catalog.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		ready = false
	}

	status := h.engine.Status()
	checks["model"] = "untrained"
	if status.Trained {
		checks["model"] = "trained"
	}
	if h.publisher != nil {
		checks["publisher_breaker"] = h.publisher.BreakerState()
	}

	if !ready {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "service not ready", checks)
		return
	}
	rw.Success(map[string]interface{}{
		"ready":         true,
		"checks":        checks,
		"model_version": status.ModelVersion,
	})
}
