// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/affinity/internal/recommend"
)

// PutProfile replaces an actor profile in the store and on the live model.
//
//	PUT /api/v1/profiles/{actorID}
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	actorID := chi.URLParam(r, "actorID")
	if !validID(rw, "actor_id", actorID) {
		return
	}
	var req ProfileRequest
	if !bindJSON(rw, w, r, h.config.API.MaxBodyBytes, &req) {
		return
	}

	p := recommend.Profile{ActorID: actorID, Skills: nonNil(req.Skills), Interests: nonNil(req.Interests)}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	if err := h.catalog.UpsertProfile(ctx, p); err != nil {
		rw.DatabaseError(err)
		return
	}
	h.engine.UpsertProfile(p)
	rw.Success(p)
}

// PutItem replaces an item feature in the store and on the live model.
//
//	PUT /api/v1/items/{itemID}
func (h *Handler) PutItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	itemID := chi.URLParam(r, "itemID")
	if !validID(rw, "item_id", itemID) {
		return
	}
	var req ItemRequest
	if !bindJSON(rw, w, r, h.config.API.MaxBodyBytes, &req) {
		return
	}

	f := recommend.ItemFeature{ItemID: itemID, Tags: nonNil(req.Tags), Category: req.Category}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	if err := h.catalog.UpsertItem(ctx, f); err != nil {
		rw.DatabaseError(err)
		return
	}
	h.engine.UpsertItem(f)
	rw.Success(f)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
