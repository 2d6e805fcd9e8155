// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package eventprocessor

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/affinity/internal/recommend"
)

var refTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEvent(id string) *InteractionEvent {
	return &InteractionEvent{
		EventID:    id,
		ActorID:    "alice",
		TargetID:   "repo-1",
		Kind:       "like",
		OccurredAt: refTime,
		Source:     SourceAPI,
	}
}

func TestInteractionEvent_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*InteractionEvent)
		field  string
	}{
		{"valid", func(e *InteractionEvent) {}, ""},
		{"missing id", func(e *InteractionEvent) { e.EventID = "" }, "event_id"},
		{"missing actor", func(e *InteractionEvent) { e.ActorID = "" }, "actor_id"},
		{"missing target", func(e *InteractionEvent) { e.TargetID = "" }, "target_id"},
		{"unknown kind", func(e *InteractionEvent) { e.Kind = "purchase" }, "kind"},
		{"zero time", func(e *InteractionEvent) { e.OccurredAt = time.Time{} }, "occurred_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := testEvent("e1")
			tt.modify(ev)
			err := ev.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("Validate() = %v, want ValidationError on %s", err, tt.field)
			}
		})
	}
}

func TestInteractionEvent_ToInteraction(t *testing.T) {
	got, err := testEvent("e1").ToInteraction()
	if err != nil {
		t.Fatal(err)
	}
	want := recommend.Interaction{
		EventID:    "e1",
		ActorID:    "alice",
		TargetID:   "repo-1",
		Kind:       recommend.KindLike,
		OccurredAt: refTime,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToInteraction() mismatch (-want +got):\n%s", diff)
	}

	bad := testEvent("e2")
	bad.Kind = "purchase"
	if _, err := bad.ToInteraction(); !errors.Is(err, recommend.ErrUnknownInteractionKind) {
		t.Errorf("ToInteraction() error = %v, want ErrUnknownInteractionKind", err)
	}
}

func TestFromInteraction_FillsDefaults(t *testing.T) {
	ev := FromInteraction(&recommend.Interaction{ActorID: "a", TargetID: "b", Kind: recommend.KindJoin})
	if ev.EventID == "" || ev.OccurredAt.IsZero() {
		t.Errorf("FromInteraction() = %+v, want id and time filled", ev)
	}
	if ev.Kind != "join" || ev.Source != SourceAPI {
		t.Errorf("FromInteraction() = %+v", ev)
	}

	kept := FromInteraction(&recommend.Interaction{EventID: "given", ActorID: "a", TargetID: "b", Kind: recommend.KindView, OccurredAt: refTime})
	if kept.EventID != "given" || !kept.OccurredAt.Equal(refTime) {
		t.Errorf("FromInteraction() overwrote fields: %+v", kept)
	}
}

func TestNewInteractionEvent(t *testing.T) {
	ev := NewInteractionEvent("a", "b", recommend.KindShare)
	if err := ev.Validate(); err != nil {
		t.Errorf("NewInteractionEvent() produced invalid event: %v", err)
	}
}

func TestSerializeEvent(t *testing.T) {
	data, err := SerializeEvent(testEvent("e1"))
	if err != nil {
		t.Fatalf("SerializeEvent() error = %v", err)
	}
	got, err := DeserializeEvent(data)
	if err != nil {
		t.Fatalf("DeserializeEvent() error = %v", err)
	}
	if diff := cmp.Diff(testEvent("e1"), got); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}

	if _, err := SerializeEvent(nil); err == nil {
		t.Error("SerializeEvent(nil) succeeded")
	}
	bad := testEvent("e1")
	bad.ActorID = ""
	if _, err := SerializeEvent(bad); err == nil {
		t.Error("SerializeEvent() accepted an invalid event")
	}
	if _, err := DeserializeEvent([]byte("{not json")); err == nil {
		t.Error("DeserializeEvent() accepted malformed input")
	}
}
