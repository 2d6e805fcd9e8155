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

// RecommendationsResponse is the data of GET /recommendations/{actorID}.
type RecommendationsResponse struct {
	ActorID      string   `json:"actor_id"`
	Items        []string `json:"items"`
	ModelVersion int64    `json:"model_version"`
}

// SimilarUsersResponse is the data of GET /users/{actorID}/similar.
type SimilarUsersResponse struct {
	ActorID string                  `json:"actor_id"`
	Similar []recommend.ScoredActor `json:"similar"`
}

// ContentSimilarityResponse is the data of GET /content/{actorID}/{itemID}.
type ContentSimilarityResponse struct {
	ActorID    string  `json:"actor_id"`
	ItemID     string  `json:"item_id"`
	Similarity float64 `json:"similarity"`
}

// Recommendations ranks items for an actor.
//
//	GET /api/v1/recommendations/{actorID}?n=10&candidates=a,b,c
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	actorID := chi.URLParam(r, "actorID")
	if !validID(rw, "actor_id", actorID) {
		return
	}
	n, err := parseN(r, h.config.Recommend.DefaultN)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	items, err := h.engine.Recommend(ctx, actorID, parseCandidates(r), n)
	if err != nil {
		writeEngineError(rw, r, err)
		return
	}
	rw.Success(RecommendationsResponse{
		ActorID:      actorID,
		Items:        items,
		ModelVersion: h.engine.Status().ModelVersion,
	})
}

// SimilarUsers lists the actors most similar to an actor.
//
//	GET /api/v1/users/{actorID}/similar?n=10
func (h *Handler) SimilarUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	actorID := chi.URLParam(r, "actorID")
	if !validID(rw, "actor_id", actorID) {
		return
	}
	n, err := parseN(r, h.config.Recommend.DefaultN)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	similar, err := h.engine.SimilarUsers(ctx, actorID, n)
	if err != nil {
		writeEngineError(rw, r, err)
		return
	}
	rw.Success(SimilarUsersResponse{ActorID: actorID, Similar: similar})
}

// ContentSimilarity scores an actor profile against an item.
//
//	GET /api/v1/content/{actorID}/{itemID}
func (h *Handler) ContentSimilarity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	actorID := chi.URLParam(r, "actorID")
	itemID := chi.URLParam(r, "itemID")
	if !validID(rw, "actor_id", actorID) || !validID(rw, "item_id", itemID) {
		return
	}
	rw.Success(ContentSimilarityResponse{
		ActorID:    actorID,
		ItemID:     itemID,
		Similarity: h.engine.ContentSimilarity(actorID, itemID),
	})
}
