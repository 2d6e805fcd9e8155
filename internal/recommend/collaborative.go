// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// cell is one nonzero entry of a sparse matrix row.
type cell struct {
	col    int
	weight float64
}

// CollaborativeEngine implements user-based collaborative filtering over
// summed interaction weights.
//
// Rows are actors and columns are targets, both sorted ascending by id.
// Each row is stored sparsely in column order. The actor similarity matrix
// is dense and symmetric.
//
// CollaborativeEngine holds no locks. Callers must not run Fit concurrently
// with queries; Engine provides that serialization.
type CollaborativeEngine struct {
	actors     []string
	items      []string
	actorIndex map[string]int
	rows       [][]cell
	similarity [][]float64
}

// NewCollaborativeEngine creates an empty engine. Queries return empty results until Fit.
func NewCollaborativeEngine() *CollaborativeEngine {
	return &CollaborativeEngine{actorIndex: map[string]int{}}
}

// Fit rebuilds the weight matrix and the similarity matrix from interactions.
//
// An empty input leaves existing state untouched. An interaction with an
// unknown kind rejects the whole batch and also leaves state untouched.
func (e *CollaborativeEngine) Fit(interactions []Interaction) error {
	if len(interactions) == 0 {
		return nil
	}

	type pair struct{ actor, target string }
	sums := make(map[pair]float64, len(interactions))
	actorSet := make(map[string]struct{})
	itemSet := make(map[string]struct{})

	for i := range interactions {
		in := &interactions[i]
		w, err := in.Kind.Weight()
		if err != nil {
			return fmt.Errorf("interaction %d (%s -> %s): %w", i, in.ActorID, in.TargetID, err)
		}
		sums[pair{in.ActorID, in.TargetID}] += w
		actorSet[in.ActorID] = struct{}{}
		itemSet[in.TargetID] = struct{}{}
	}

	actors := sortedKeys(actorSet)
	items := sortedKeys(itemSet)

	actorIndex := make(map[string]int, len(actors))
	for i, id := range actors {
		actorIndex[id] = i
	}
	itemIndex := make(map[string]int, len(items))
	for i, id := range items {
		itemIndex[id] = i
	}

	rows := make([][]cell, len(actors))
	for p, w := range sums {
		r := actorIndex[p.actor]
		rows[r] = append(rows[r], cell{col: itemIndex[p.target], weight: w})
	}
	for r := range rows {
		row := rows[r]
		sort.Slice(row, func(a, b int) bool { return row[a].col < row[b].col })
	}

	e.actors = actors
	e.items = items
	e.actorIndex = actorIndex
	e.rows = rows
	e.similarity = buildSimilarity(rows)
	return nil
}

// buildSimilarity computes the cosine similarity of every row pair.
func buildSimilarity(rows [][]cell) [][]float64 {
	norms := make([]float64, len(rows))
	for i, row := range rows {
		for _, c := range row {
			norms[i] += c.weight * c.weight
		}
	}

	sim := make([][]float64, len(rows))
	for i := range sim {
		sim[i] = make([]float64, len(rows))
	}

	for i := range rows {
		if norms[i] == 0 {
			continue
		}
		sim[i][i] = 1
		for j := i + 1; j < len(rows); j++ {
			if norms[j] == 0 {
				continue
			}
			s := sparseDot(rows[i], rows[j]) / math.Sqrt(norms[i]*norms[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

// sparseDot merges two column-ordered rows.
func sparseDot(a, b []cell) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].col == b[j].col:
			dot += a[i].weight * b[j].weight
			i++
			j++
		case a[i].col < b[j].col:
			i++
		default:
			j++
		}
	}
	return dot
}

// SimilarUsers ranks every other actor by similarity to actor, descending.
// Ties keep row order. Returns nil for an unknown actor or n <= 0.
func (e *CollaborativeEngine) SimilarUsers(actor string, n int) []ScoredActor {
	idx, ok := e.actorIndex[actor]
	if !ok || n <= 0 {
		return nil
	}

	ranked := make([]ScoredActor, 0, len(e.actors)-1)
	for j, id := range e.actors {
		if j == idx {
			continue
		}
		ranked = append(ranked, ScoredActor{ActorID: id, Similarity: e.similarity[idx][j]})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Similarity > ranked[b].Similarity
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RecommendItems returns up to n target ids the actor has not interacted with,
// scored by neighbor weight times neighbor similarity over the top 2n neighbors.
// Ties keep first-encounter order (neighbor rank, then column order).
func (e *CollaborativeEngine) RecommendItems(actor string, n int) []string {
	idx, ok := e.actorIndex[actor]
	if !ok || n <= 0 {
		return nil
	}

	owned := make(map[int]struct{}, len(e.rows[idx]))
	for _, c := range e.rows[idx] {
		owned[c.col] = struct{}{}
	}

	scores := make(map[int]float64)
	var order []int
	for _, nb := range e.SimilarUsers(actor, 2*n) {
		for _, c := range e.rows[e.actorIndex[nb.ActorID]] {
			if _, skip := owned[c.col]; skip {
				continue
			}
			if _, seen := scores[c.col]; !seen {
				order = append(order, c.col)
			}
			scores[c.col] += c.weight * nb.Similarity
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}

	out := make([]string, len(order))
	for i, col := range order {
		out[i] = e.items[col]
	}
	return out
}

// Similarity returns the cosine similarity between two actors, or 0 if either is unknown.
func (e *CollaborativeEngine) Similarity(u, v string) float64 {
	i, ok := e.actorIndex[u]
	if !ok {
		return 0
	}
	j, ok := e.actorIndex[v]
	if !ok {
		return 0
	}
	return e.similarity[i][j]
}

// Weight returns the summed interaction weight for an actor-target pair.
func (e *CollaborativeEngine) Weight(actor, target string) float64 {
	idx, ok := e.actorIndex[actor]
	if !ok {
		return 0
	}
	col := sort.SearchStrings(e.items, target)
	if col == len(e.items) || e.items[col] != target {
		return 0
	}
	row := e.rows[idx]
	k := sort.Search(len(row), func(i int) bool { return row[i].col >= col })
	if k < len(row) && row[k].col == col {
		return row[k].weight
	}
	return 0
}

// HasActor reports whether actor has a row in the fitted model.
func (e *CollaborativeEngine) HasActor(actor string) bool {
	_, ok := e.actorIndex[actor]
	return ok
}

// Fitted reports whether Fit has produced any state.
func (e *CollaborativeEngine) Fitted() bool {
	return len(e.actors) > 0
}

// Actors returns the number of matrix rows.
func (e *CollaborativeEngine) Actors() int { return len(e.actors) }

// Items returns the number of matrix columns.
func (e *CollaborativeEngine) Items() int { return len(e.items) }

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
