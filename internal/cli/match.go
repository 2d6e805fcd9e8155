// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/affinity/internal/teammatch"
	"github.com/tomtom215/affinity/internal/validation"
)

type matchOptions struct {
	required   []string
	candidates string
	n          int
}

func newMatchCommand(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank candidate teammates by required-skill coverage",
		Long: `Rank candidates from a JSON file of {"actor_id","skills"} objects by the
share of --required skills they hold. -n 0 returns every candidate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scores, err := runMatch(opts)
			if err != nil {
				return err
			}
			t := table{header: []string{"Rank", "Actor", "Score", "Matched", "Missing"}}
			for i, s := range scores {
				t.rows = append(t.rows, []string{
					strconv.Itoa(i + 1),
					s.ActorID,
					formatFloat(s.Score),
					strings.Join(s.Matched, ","),
					strings.Join(s.Missing, ","),
				})
			}
			return emit(cmd.OutOrStdout(), root.output, scores, t)
		},
	}
	cmd.Flags().StringSliceVar(&opts.required, "required", nil, "comma separated required skills")
	cmd.Flags().StringVar(&opts.candidates, "candidates", "", "candidates JSON file")
	cmd.Flags().IntVarP(&opts.n, "limit", "n", 0, "number of results (0 = all)")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

func runMatch(opts *matchOptions) ([]teammatch.CandidateScore, error) {
	if opts.n < 0 {
		return nil, fmt.Errorf("-n must be non-negative, got %d", opts.n)
	}

	var candidates []teammatch.Candidate
	if err := readJSONFile(opts.candidates, &candidates); err != nil {
		return nil, err
	}
	for i := range candidates {
		if verr := validation.ValidateStruct(&candidates[i]); verr != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, verr)
		}
	}

	n := opts.n
	if n == 0 {
		n = len(candidates)
	}
	scores := teammatch.Match(splitList(opts.required), candidates, n)
	if scores == nil {
		scores = []teammatch.CandidateScore{}
	}
	return scores, nil
}
