// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"sort"
)

// Content similarity mix. Fixed, not configurable.
const (
	skillTagWeight        = 0.7
	categoryInterestBonus = 0.3
)

type stringSet map[string]struct{}

func newStringSet(values []string) stringSet {
	s := make(stringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

// sorted returns the members in ascending order.
func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

type actorProfile struct {
	skills    stringSet
	interests stringSet
}

type itemFeature struct {
	tags     stringSet
	category string
}

// ContentEngine scores actors against items from declared attributes.
// It needs no interaction history, so it also serves cold-start actors.
type ContentEngine struct {
	profiles map[string]actorProfile
	items    map[string]itemFeature
}

// NewContentEngine creates an engine with no profiles or items.
func NewContentEngine() *ContentEngine {
	return &ContentEngine{
		profiles: make(map[string]actorProfile),
		items:    make(map[string]itemFeature),
	}
}

// BuildProfile stores an actor's skills and interests, replacing any previous profile.
func (e *ContentEngine) BuildProfile(actor string, skills, interests []string) {
	if e.profiles == nil {
		e.profiles = make(map[string]actorProfile)
	}
	e.profiles[actor] = actorProfile{
		skills:    newStringSet(skills),
		interests: newStringSet(interests),
	}
}

// AddItem stores an item's tags and category, replacing any previous entry.
func (e *ContentEngine) AddItem(item string, tags []string, category string) {
	if e.items == nil {
		e.items = make(map[string]itemFeature)
	}
	e.items[item] = itemFeature{
		tags:     newStringSet(tags),
		category: category,
	}
}

// Similarity returns 0.7 * Jaccard(skills, tags) + 0.3 when the item's category
// is one of the actor's interests. Unknown actors or items score 0.
func (e *ContentEngine) Similarity(actor, item string) float64 {
	p, ok := e.profiles[actor]
	if !ok {
		return 0
	}
	f, ok := e.items[item]
	if !ok {
		return 0
	}

	score := skillTagWeight * jaccard(p.skills, f.tags)
	if p.interests.has(f.category) {
		score += categoryInterestBonus
	}
	return score
}

// RecommendItems ranks candidates by Similarity, descending, ties in candidate order.
func (e *ContentEngine) RecommendItems(actor string, candidates []string, n int) []string {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, id := range candidates {
		ranked[i] = scored{id: id, score: e.Similarity(actor, id)}
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

// Profile returns the stored profile for actor.
func (e *ContentEngine) Profile(actor string) (Profile, bool) {
	p, ok := e.profiles[actor]
	if !ok {
		return Profile{}, false
	}
	return Profile{ActorID: actor, Skills: p.skills.sorted(), Interests: p.interests.sorted()}, true
}

// Item returns the stored feature for item.
func (e *ContentEngine) Item(item string) (ItemFeature, bool) {
	f, ok := e.items[item]
	if !ok {
		return ItemFeature{}, false
	}
	return ItemFeature{ItemID: item, Tags: f.tags.sorted(), Category: f.category}, true
}

// Profiles returns the number of stored profiles.
func (e *ContentEngine) Profiles() int { return len(e.profiles) }

// Features returns the number of stored item features.
func (e *ContentEngine) Features() int { return len(e.items) }

// jaccard is |a ∩ b| / |a ∪ b|, defined as 0 when both sets are empty.
func jaccard(a, b stringSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for v := range small {
		if large.has(v) {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
