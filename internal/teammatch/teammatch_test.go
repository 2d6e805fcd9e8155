// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package teammatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMatch_PythonReactScenario(t *testing.T) {
	got := Match(
		[]string{"python", "react"},
		[]Candidate{
			{ActorID: "a", Skills: []string{"python"}},
			{ActorID: "b", Skills: []string{"python", "react"}},
			{ActorID: "c", Skills: nil},
		},
		3,
	)

	want := []CandidateScore{
		{ActorID: "b", Score: 1.0, Matched: []string{"python", "react"}, Missing: []string{}},
		{ActorID: "a", Score: 0.5, Matched: []string{"python"}, Missing: []string{"react"}},
		{ActorID: "c", Score: 0.0, Matched: []string{}, Missing: []string{"python", "react"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match() mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch_EmptyRequirementIsNeutral(t *testing.T) {
	candidates := []Candidate{
		{ActorID: "z", Skills: []string{"go"}},
		{ActorID: "y"},
		{ActorID: "x", Skills: []string{"rust", "c"}},
	}

	for _, required := range [][]string{nil, {}} {
		got := Match(required, candidates, 10)
		if len(got) != 3 {
			t.Fatalf("len(Match) = %d, want 3", len(got))
		}
		for i, c := range candidates {
			if got[i].ActorID != c.ActorID {
				t.Errorf("position %d = %s, want %s (original order)", i, got[i].ActorID, c.ActorID)
			}
			if got[i].Score != NeutralScore {
				t.Errorf("%s score = %v, want %v", got[i].ActorID, got[i].Score, NeutralScore)
			}
		}
	}
}

func TestMatch_TopNAndTies(t *testing.T) {
	candidates := []Candidate{
		{ActorID: "first-half", Skills: []string{"go"}},
		{ActorID: "full", Skills: []string{"go", "sql"}},
		{ActorID: "second-half", Skills: []string{"sql", "css"}},
		{ActorID: "none", Skills: []string{"css"}},
	}

	got := Match([]string{"go", "sql"}, candidates, 3)
	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ActorID
	}
	if diff := cmp.Diff([]string{"full", "first-half", "second-half"}, ids); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch_Edges(t *testing.T) {
	candidates := []Candidate{{ActorID: "a", Skills: []string{"go"}}}

	if got := Match([]string{"go"}, candidates, 0); got != nil {
		t.Errorf("Match(n=0) = %v, want nil", got)
	}
	if got := Match([]string{"go"}, nil, 5); got != nil {
		t.Errorf("Match(no candidates) = %v, want nil", got)
	}

	dupes := []Candidate{{ActorID: "a", Skills: []string{"go"}}, {ActorID: "a", Skills: nil}}
	got := Match([]string{"go"}, dupes, 5)
	if len(got) != 2 {
		t.Errorf("duplicate actor ids collapsed: %+v", got)
	}
}

func TestComplementarity(t *testing.T) {
	tests := []struct {
		name      string
		required  []string
		possessed []string
		want      float64
	}{
		{"empty requirement", nil, []string{"go"}, 0.5},
		{"full cover", []string{"go", "sql"}, []string{"sql", "go", "css"}, 1},
		{"partial", []string{"go", "sql", "k8s", "css"}, []string{"go"}, 0.25},
		{"duplicate requirement counted once", []string{"go", "go", "sql"}, []string{"go"}, 0.5},
		{"no skills", []string{"go"}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Complementarity(tt.required, tt.possessed)
			if !cmp.Equal(tt.want, got, cmpopts.EquateApprox(0, 1e-12)) {
				t.Errorf("Complementarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
