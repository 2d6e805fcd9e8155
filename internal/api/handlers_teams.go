// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/affinity/internal/teammatch"
)

// TeamMatchResponse is the data of POST /teams/match.
type TeamMatchResponse struct {
	Matches []teammatch.CandidateScore `json:"matches"`
}

// TeamMatch ranks candidates by coverage of the required skills.
//
//	POST /api/v1/teams/match
func (h *Handler) TeamMatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req TeamMatchRequest
	if !bindJSON(rw, w, r, h.config.API.MaxBodyBytes, &req) {
		return
	}
	if limit := h.config.Recommend.MaxCandidates; limit > 0 && len(req.Candidates) > limit {
		rw.BadRequest(fmt.Sprintf("%d candidates exceeds the limit of %d", len(req.Candidates), limit))
		return
	}

	n := req.N
	if n == 0 {
		n = len(req.Candidates)
	}
	matches := teammatch.Match(req.Required, req.Candidates, n)
	if matches == nil {
		matches = []teammatch.CandidateScore{}
	}
	rw.Success(TeamMatchResponse{Matches: matches})
}
