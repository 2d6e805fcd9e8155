// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// InteractionKind classifies an actor-target interaction by engagement strength.
type InteractionKind int

const (
	// KindUnknown is the zero value and carries no weight.
	KindUnknown InteractionKind = iota
	// KindView is a passive view of a target.
	KindView
	// KindLike is an explicit like.
	KindLike
	// KindBookmark saves the target for later.
	KindBookmark
	// KindShare shares the target with others.
	KindShare
	// KindComment is a written response to the target.
	KindComment
	// KindJoin is membership or participation (project, event, team).
	KindJoin
)

// kindNames and kindWeights are indexed by InteractionKind.
// Weights are strictly increasing in engagement strength.
var (
	kindNames = [...]string{
		KindUnknown:  "unknown",
		KindView:     "view",
		KindLike:     "like",
		KindBookmark: "bookmark",
		KindShare:    "share",
		KindComment:  "comment",
		KindJoin:     "join",
	}

	kindWeights = [...]float64{
		KindView:     1,
		KindLike:     3,
		KindBookmark: 4,
		KindShare:    5,
		KindComment:  6,
		KindJoin:     7,
	}
)

// InteractionKinds returns every weighted kind, weakest first.
func InteractionKinds() []InteractionKind {
	return []InteractionKind{KindView, KindLike, KindBookmark, KindShare, KindComment, KindJoin}
}

// String returns the wire name of the kind.
func (k InteractionKind) String() string {
	if k <= KindUnknown || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Weight returns the fixed weight for the kind.
// Kinds outside the table return ErrUnknownInteractionKind.
func (k InteractionKind) Weight() (float64, error) {
	if k <= KindUnknown || int(k) >= len(kindWeights) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownInteractionKind, int(k))
	}
	return kindWeights[k], nil
}

// Valid reports whether the kind has a weight.
func (k InteractionKind) Valid() bool {
	return k > KindUnknown && int(k) < len(kindWeights)
}

// ParseInteractionKind resolves a wire name (case-insensitive) to a kind.
func ParseInteractionKind(s string) (InteractionKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range InteractionKinds() {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownInteractionKind, s)
}

// MarshalText encodes the kind by name.
func (k InteractionKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInteractionKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *InteractionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseInteractionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Interaction is a single behavioral signal from an actor toward a target.
// Targets share one id space (people, resources, jobs, projects, events).
type Interaction struct {
	// EventID identifies the source event for idempotent ingestion. Optional.
	EventID string `json:"event_id,omitempty"`

	// ActorID is the acting user.
	ActorID string `json:"actor_id"`

	// TargetID is the item or person acted upon.
	TargetID string `json:"target_id"`

	// Kind is the engagement type.
	Kind InteractionKind `json:"kind"`

	// OccurredAt is recorded for auditing only. Weights never decay with age.
	OccurredAt time.Time `json:"occurred_at"`
}

// Profile is the declared attributes of an actor.
type Profile struct {
	ActorID   string   `json:"actor_id"`
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
}

// ItemFeature is the declared attributes of an item.
type ItemFeature struct {
	ItemID   string   `json:"item_id"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

// ScoredActor pairs an actor with its similarity to a query actor.
type ScoredActor struct {
	ActorID    string  `json:"actor_id"`
	Similarity float64 `json:"similarity"`
}

// DataProvider supplies training data to the Engine.
// Implementations live outside this package to avoid import cycles.
type DataProvider interface {
	// GetInteractions returns every interaction recorded since the given time.
	// A zero time returns the full history.
	GetInteractions(ctx context.Context, since time.Time) ([]Interaction, error)

	// GetProfiles returns every actor profile.
	GetProfiles(ctx context.Context) ([]Profile, error)

	// GetItems returns every item feature.
	GetItems(ctx context.Context) ([]ItemFeature, error)
}

// TrainingStatus reports the state of the hosted model.
type TrainingStatus struct {
	Trained          bool          `json:"trained"`
	InProgress       bool          `json:"in_progress"`
	ModelVersion     int64         `json:"model_version"`
	LastTrainedAt    time.Time     `json:"last_trained_at,omitempty"`
	LastError        string        `json:"last_error,omitempty"`
	LastDuration     time.Duration `json:"last_duration_ns"`
	Actors           int           `json:"actors"`
	Items            int           `json:"items"`
	Profiles         int           `json:"profiles"`
	Features         int           `json:"features"`
	InteractionCount int           `json:"interaction_count"`
	CacheHits        int64         `json:"cache_hits"`
	CacheMisses      int64         `json:"cache_misses"`
}
