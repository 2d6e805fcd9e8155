// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

func TestInteractionKind_Weight(t *testing.T) {
	tests := []struct {
		kind    InteractionKind
		want    float64
		wantErr bool
	}{
		{KindView, 1, false},
		{KindLike, 3, false},
		{KindBookmark, 4, false},
		{KindShare, 5, false},
		{KindComment, 6, false},
		{KindJoin, 7, false},
		{KindUnknown, 0, true},
		{InteractionKind(99), 0, true},
		{InteractionKind(-1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := tt.kind.Weight()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Weight() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownInteractionKind) {
				t.Errorf("Weight() error = %v, want ErrUnknownInteractionKind", err)
			}
			if got != tt.want {
				t.Errorf("Weight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInteractionKinds_StrictlyIncreasing(t *testing.T) {
	kinds := InteractionKinds()
	prev := 0.0
	for _, k := range kinds {
		w, err := k.Weight()
		if err != nil {
			t.Fatalf("%s.Weight() error = %v", k, err)
		}
		if w <= prev {
			t.Errorf("%s weight %v is not greater than previous %v", k, w, prev)
		}
		prev = w
	}
	if kinds[0] != KindView || kinds[len(kinds)-1] != KindJoin {
		t.Errorf("InteractionKinds() = %v, want view first and join last", kinds)
	}
}

func TestParseInteractionKind(t *testing.T) {
	tests := []struct {
		in      string
		want    InteractionKind
		wantErr bool
	}{
		{"view", KindView, false},
		{"LIKE", KindLike, false},
		{" Bookmark ", KindBookmark, false},
		{"share", KindShare, false},
		{"comment", KindComment, false},
		{"join", KindJoin, false},
		{"unknown", KindUnknown, true},
		{"follow", KindUnknown, true},
		{"", KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInteractionKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInteractionKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownInteractionKind) {
				t.Errorf("error = %v, want ErrUnknownInteractionKind", err)
			}
			if got != tt.want {
				t.Errorf("ParseInteractionKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInteraction_JSONKindByName(t *testing.T) {
	in := Interaction{ActorID: "u1", TargetID: "i1", Kind: KindComment}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["kind"] != "comment" {
		t.Errorf("kind = %v, want \"comment\"", decoded["kind"])
	}

	var bad Interaction
	err = json.Unmarshal([]byte(`{"actor_id":"u1","target_id":"i1","kind":"poke"}`), &bad)
	if err == nil {
		t.Error("Unmarshal() with unknown kind should fail")
	}

	if _, err := json.Marshal(Interaction{ActorID: "u1", TargetID: "i1"}); err == nil {
		t.Error("Marshal() with KindUnknown should fail")
	}
}
