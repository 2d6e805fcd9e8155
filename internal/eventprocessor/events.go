// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package eventprocessor

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/affinity/internal/recommend"
)

// Source values recorded on events.
const (
	SourceAPI   = "api"
	SourceRetry = "wal-retry"
)

// InteractionEvent is the wire form of an interaction on the message bus.
// Kind stays a string so that events with unknown kinds can be decoded,
// counted and dropped by the consumer instead of being redelivered.
type InteractionEvent struct {
	EventID    string    `json:"event_id"`
	ActorID    string    `json:"actor_id"`
	TargetID   string    `json:"target_id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Source     string    `json:"source,omitempty"`
}

// NewInteractionEvent creates an event with a fresh id and the current time.
func NewInteractionEvent(actorID, targetID string, kind recommend.InteractionKind) *InteractionEvent {
	return &InteractionEvent{
		EventID:    uuid.New().String(),
		ActorID:    actorID,
		TargetID:   targetID,
		Kind:       kind.String(),
		OccurredAt: time.Now().UTC(),
		Source:     SourceAPI,
	}
}

// FromInteraction converts a validated interaction to an event, filling a
// missing id and timestamp.
func FromInteraction(in *recommend.Interaction) *InteractionEvent {
	ev := &InteractionEvent{
		EventID:    in.EventID,
		ActorID:    in.ActorID,
		TargetID:   in.TargetID,
		Kind:       in.Kind.String(),
		OccurredAt: in.OccurredAt,
		Source:     SourceAPI,
	}
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return ev
}

// Validate checks required fields and the interaction kind.
func (e *InteractionEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.ActorID == "" {
		return &ValidationError{Field: "actor_id", Message: "required"}
	}
	if e.TargetID == "" {
		return &ValidationError{Field: "target_id", Message: "required"}
	}
	if _, err := recommend.ParseInteractionKind(e.Kind); err != nil {
		return &ValidationError{Field: "kind", Message: err.Error()}
	}
	if e.OccurredAt.IsZero() {
		return &ValidationError{Field: "occurred_at", Message: "required"}
	}
	return nil
}

// ToInteraction converts the event to the engine's interaction type.
func (e *InteractionEvent) ToInteraction() (recommend.Interaction, error) {
	kind, err := recommend.ParseInteractionKind(e.Kind)
	if err != nil {
		return recommend.Interaction{}, err
	}
	return recommend.Interaction{
		EventID:    e.EventID,
		ActorID:    e.ActorID,
		TargetID:   e.TargetID,
		Kind:       kind,
		OccurredAt: e.OccurredAt,
	}, nil
}
