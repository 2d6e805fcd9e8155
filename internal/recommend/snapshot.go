// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/affinity/internal/recommend/storage"
)

// SnapshotName is the Store name under which the hybrid scorer is persisted.
const SnapshotName = "hybrid"

// HybridSchema identifies the hybrid scorer artifact format.
var HybridSchema = storage.Schema{Kind: "affinity.hybrid", Version: 1}

type snapshotCell struct {
	Col    int     `json:"c"`
	Weight float64 `json:"w"`
}

type hybridSnapshot struct {
	Hybrid     HybridConfig     `json:"hybrid"`
	Actors     []string         `json:"actors"`
	Items      []string         `json:"items"`
	Rows       [][]snapshotCell `json:"rows"`
	Similarity [][]float64      `json:"similarity"`
	Profiles   []Profile        `json:"profiles"`
	Features   []ItemFeature    `json:"features"`
}

// Save writes the complete scorer state to a single artifact at path.
func (h *HybridScorer) Save(path string) error {
	_, err := storage.WriteArtifact(path, HybridSchema, h.snapshot(), h.metadata())
	return err
}

// SaveTo writes the scorer state as the given version in store.
//
//nolint:gocritic // meta is enriched before writing
func (h *HybridScorer) SaveTo(ctx context.Context, store *storage.Store, version int, meta storage.ModelMetadata) (storage.ModelMetadata, error) {
	base := h.metadata()
	meta.ActorCount = base.ActorCount
	meta.ItemCount = base.ItemCount
	meta.ProfileCount = base.ProfileCount
	meta.FeatureCount = base.FeatureCount
	return store.Save(ctx, SnapshotName, version, HybridSchema, h.snapshot(), meta)
}

// Load reconstructs a scorer from an artifact written by Save. Failures wrap
// ErrMalformedArtifact.
func Load(path string) (*HybridScorer, error) {
	var snap hybridSnapshot
	if _, err := storage.ReadArtifact(path, HybridSchema, &snap); err != nil {
		return nil, err
	}
	return fromSnapshot(&snap)
}

// LoadFrom reconstructs a scorer from the given version in store (0 = latest).
func LoadFrom(ctx context.Context, store *storage.Store, version int) (*HybridScorer, *storage.ModelMetadata, error) {
	var snap hybridSnapshot
	meta, err := store.Load(ctx, SnapshotName, version, HybridSchema, &snap)
	if err != nil {
		return nil, nil, err
	}
	h, err := fromSnapshot(&snap)
	if err != nil {
		return nil, nil, err
	}
	return h, meta, nil
}

func (h *HybridScorer) metadata() storage.ModelMetadata {
	return storage.ModelMetadata{
		ActorCount:   h.collaborative.Actors(),
		ItemCount:    h.collaborative.Items(),
		ProfileCount: h.content.Profiles(),
		FeatureCount: h.content.Features(),
	}
}

func (h *HybridScorer) snapshot() *hybridSnapshot {
	c := h.collaborative
	snap := &hybridSnapshot{
		Hybrid:     h.config,
		Actors:     c.actors,
		Items:      c.items,
		Rows:       make([][]snapshotCell, len(c.rows)),
		Similarity: c.similarity,
		Profiles:   make([]Profile, 0, h.content.Profiles()),
		Features:   make([]ItemFeature, 0, h.content.Features()),
	}
	for i, row := range c.rows {
		cells := make([]snapshotCell, len(row))
		for j, cl := range row {
			cells[j] = snapshotCell{Col: cl.col, Weight: cl.weight}
		}
		snap.Rows[i] = cells
	}

	actors := make([]string, 0, len(h.content.profiles))
	for id := range h.content.profiles {
		actors = append(actors, id)
	}
	sort.Strings(actors)
	for _, id := range actors {
		p, _ := h.content.Profile(id)
		snap.Profiles = append(snap.Profiles, p)
	}

	items := make([]string, 0, len(h.content.items))
	for id := range h.content.items {
		items = append(items, id)
	}
	sort.Strings(items)
	for _, id := range items {
		f, _ := h.content.Item(id)
		snap.Features = append(snap.Features, f)
	}
	return snap
}

// fromSnapshot validates shape and builds a scorer.
func fromSnapshot(snap *hybridSnapshot) (*HybridScorer, error) {
	if err := snap.Hybrid.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	if err := snap.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}

	h, err := NewHybridScorer(snap.Hybrid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}

	c := h.collaborative
	if len(snap.Actors) > 0 {
		c.actors = snap.Actors
		c.items = snap.Items
		c.actorIndex = make(map[string]int, len(snap.Actors))
		for i, id := range snap.Actors {
			c.actorIndex[id] = i
		}
		c.rows = make([][]cell, len(snap.Rows))
		for i, row := range snap.Rows {
			cells := make([]cell, len(row))
			for j, sc := range row {
				cells[j] = cell{col: sc.Col, weight: sc.Weight}
			}
			c.rows[i] = cells
		}
		c.similarity = snap.Similarity
	}

	for _, p := range snap.Profiles {
		h.content.BuildProfile(p.ActorID, p.Skills, p.Interests)
	}
	for _, f := range snap.Features {
		h.content.AddItem(f.ItemID, f.Tags, f.Category)
	}
	return h, nil
}

func (s *hybridSnapshot) validate() error {
	n := len(s.Actors)
	if len(s.Rows) != n {
		return fmt.Errorf("%d rows for %d actors", len(s.Rows), n)
	}
	if len(s.Similarity) != n {
		return fmt.Errorf("similarity has %d rows for %d actors", len(s.Similarity), n)
	}
	if !sort.StringsAreSorted(s.Actors) || !sort.StringsAreSorted(s.Items) {
		return fmt.Errorf("actor and item ids must be sorted")
	}
	for i := 1; i < n; i++ {
		if s.Actors[i] == s.Actors[i-1] {
			return fmt.Errorf("duplicate actor %q", s.Actors[i])
		}
	}
	for i := 1; i < len(s.Items); i++ {
		if s.Items[i] == s.Items[i-1] {
			return fmt.Errorf("duplicate item %q", s.Items[i])
		}
	}

	for i, row := range s.Rows {
		prev := -1
		for _, c := range row {
			if c.Col <= prev || c.Col >= len(s.Items) {
				return fmt.Errorf("row %d: column %d out of order or range", i, c.Col)
			}
			if c.Weight <= 0 || math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) {
				return fmt.Errorf("row %d: invalid weight %v", i, c.Weight)
			}
			prev = c.Col
		}
	}
	for i, row := range s.Similarity {
		if len(row) != n {
			return fmt.Errorf("similarity row %d has %d columns, want %d", i, len(row), n)
		}
	}
	return nil
}
