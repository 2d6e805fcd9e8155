// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package teammatch ranks candidate teammates by how much of a required
// skill set they cover. It is stateless and shares nothing with the
// recommendation models.
package teammatch

import (
	"sort"
)

// NeutralScore is the complementarity of any candidate against an empty requirement.
const NeutralScore = 0.5

// Candidate is a prospective teammate and the skills they hold.
type Candidate struct {
	ActorID string   `json:"actor_id" validate:"required,max=256"`
	Skills  []string `json:"skills" validate:"max=512,dive,required,max=256"`
}

// CandidateScore is a ranked candidate.
type CandidateScore struct {
	ActorID string  `json:"actor_id"`
	Score   float64 `json:"score"`

	// Matched lists the required skills the candidate holds, ascending.
	Matched []string `json:"matched"`

	// Missing lists the required skills the candidate lacks, ascending.
	Missing []string `json:"missing"`
}

// Complementarity returns |required ∩ possessed| / |required| over distinct
// skills, or NeutralScore when required is empty.
func Complementarity(required, possessed []string) float64 {
	req := toSet(required)
	if len(req) == 0 {
		return NeutralScore
	}
	have := toSet(possessed)
	hits := 0
	for s := range req {
		if _, ok := have[s]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(req))
}

// Match scores every candidate against required and returns the top n,
// highest score first. Ties keep candidate order. Duplicate actor ids are
// scored independently. n <= 0 returns nil.
func Match(required []string, candidates []Candidate, n int) []CandidateScore {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	req := toSet(required)
	reqSorted := sortedSet(req)

	scored := make([]CandidateScore, len(candidates))
	for i, c := range candidates {
		have := toSet(c.Skills)
		matched := make([]string, 0, len(reqSorted))
		missing := make([]string, 0, len(reqSorted))
		for _, s := range reqSorted {
			if _, ok := have[s]; ok {
				matched = append(matched, s)
			} else {
				missing = append(missing, s)
			}
		}

		score := NeutralScore
		if len(req) > 0 {
			score = float64(len(matched)) / float64(len(req))
		}
		scored[i] = CandidateScore{ActorID: c.ActorID, Score: score, Matched: matched, Missing: missing}
	}

	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
