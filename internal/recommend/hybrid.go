// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"sort"
)

// HybridScorer fuses collaborative and content signals into one ranking.
// It owns one CollaborativeEngine and one ContentEngine.
type HybridScorer struct {
	config        HybridConfig
	collaborative *CollaborativeEngine
	content       *ContentEngine
}

// NewHybridScorer creates an empty scorer with the given weights.
func NewHybridScorer(cfg HybridConfig) (*HybridScorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &HybridScorer{
		config:        cfg,
		collaborative: NewCollaborativeEngine(),
		content:       NewContentEngine(),
	}, nil
}

// Fit rebuilds the collaborative state. See CollaborativeEngine.Fit.
func (h *HybridScorer) Fit(interactions []Interaction) error {
	return h.collaborative.Fit(interactions)
}

// BuildProfile stores an actor profile on the content side.
func (h *HybridScorer) BuildProfile(actor string, skills, interests []string) {
	h.content.BuildProfile(actor, skills, interests)
}

// AddItem stores an item feature on the content side.
func (h *HybridScorer) AddItem(item string, tags []string, category string) {
	h.content.AddItem(item, tags, category)
}

// SimilarUsers delegates to the collaborative engine.
func (h *HybridScorer) SimilarUsers(actor string, n int) []ScoredActor {
	return h.collaborative.SimilarUsers(actor, n)
}

// Recommend ranks candidates by
//
//	CollaborativeWeight * [item in collaborative top 2n] + ContentWeight * content similarity
//
// A nil candidates slice uses the collaborative top-2n shortlist as the pool, in
// which case every candidate has a collaborative component of 1 and the result
// is a content re-ranking of that shortlist. A non-nil empty slice yields nothing.
// Duplicate candidates are scored once at their first position.
func (h *HybridScorer) Recommend(actor string, candidates []string, n int) []string {
	if n <= 0 {
		return nil
	}

	shortlist := h.collaborative.RecommendItems(actor, 2*n)
	inShortlist := make(map[string]struct{}, len(shortlist))
	for _, id := range shortlist {
		inShortlist[id] = struct{}{}
	}

	pool := candidates
	if pool == nil {
		pool = shortlist
	}

	type scored struct {
		id    string
		score float64
	}
	seen := make(map[string]struct{}, len(pool))
	ranked := make([]scored, 0, len(pool))
	for _, id := range pool {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		var collab float64
		if _, ok := inShortlist[id]; ok {
			collab = 1
		}
		score := h.config.CollaborativeWeight*collab + h.config.ContentWeight*h.content.Similarity(actor, id)
		ranked = append(ranked, scored{id: id, score: score})
	}

	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.id
	}
	return out
}

// Config returns the fusion weights.
func (h *HybridScorer) Config() HybridConfig { return h.config }

// Collaborative returns the owned collaborative engine.
func (h *HybridScorer) Collaborative() *CollaborativeEngine { return h.collaborative }

// Content returns the owned content engine.
func (h *HybridScorer) Content() *ContentEngine { return h.content }
