// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/recommend"
)

type fitOptions struct {
	interactions        string
	profiles            string
	items               string
	out                 string
	collaborativeWeight float64
	contentWeight       float64
}

// FitResult summarizes a fitted artifact.
type FitResult struct {
	Path         string `json:"path"`
	Interactions int    `json:"interactions"`
	Actors       int    `json:"actors"`
	Items        int    `json:"items"`
	Profiles     int    `json:"profiles"`
	Features     int    `json:"features"`
	DurationMS   int64  `json:"duration_ms"`
}

func newFitCommand(root *rootOptions) *cobra.Command {
	opts := &fitOptions{}
	defaults := recommend.DefaultHybridConfig()

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model from JSON files and write an artifact",
		Long: `Fit a hybrid model offline.

--interactions is a JSON array of {"actor_id","target_id","kind"} objects.
--profiles is an array of {"actor_id","skills","interests"}; --items is an
array of {"item_id","tags","category"}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := runFit(opts)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), root.output, res, table{
				header: []string{"Path", "Interactions", "Actors", "Items", "Profiles", "Features"},
				rows: [][]string{{
					res.Path,
					strconv.Itoa(res.Interactions),
					strconv.Itoa(res.Actors),
					strconv.Itoa(res.Items),
					strconv.Itoa(res.Profiles),
					strconv.Itoa(res.Features),
				}},
			})
		},
	}

	cmd.Flags().StringVar(&opts.interactions, "interactions", "", "interactions JSON file")
	cmd.Flags().StringVar(&opts.profiles, "profiles", "", "actor profiles JSON file")
	cmd.Flags().StringVar(&opts.items, "items", "", "item features JSON file")
	cmd.Flags().StringVar(&opts.out, "out", "model.json.gz", "artifact path")
	cmd.Flags().Float64Var(&opts.collaborativeWeight, "collaborative-weight", defaults.CollaborativeWeight, "weight of the collaborative component")
	cmd.Flags().Float64Var(&opts.contentWeight, "content-weight", defaults.ContentWeight, "weight of the content component")
	_ = cmd.MarkFlagRequired("interactions")
	return cmd
}

func runFit(opts *fitOptions) (*FitResult, error) {
	start := time.Now()

	var interactions []recommend.Interaction
	if err := readJSONFile(opts.interactions, &interactions); err != nil {
		return nil, err
	}
	if len(interactions) == 0 {
		return nil, errors.New("no interactions to fit")
	}

	scorer, err := recommend.NewHybridScorer(recommend.HybridConfig{
		CollaborativeWeight: opts.collaborativeWeight,
		ContentWeight:       opts.contentWeight,
	})
	if err != nil {
		return nil, err
	}
	if err := scorer.Fit(interactions); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	if opts.profiles != "" {
		var profiles []recommend.Profile
		if err := readJSONFile(opts.profiles, &profiles); err != nil {
			return nil, err
		}
		for _, p := range profiles {
			scorer.BuildProfile(p.ActorID, p.Skills, p.Interests)
		}
	}
	if opts.items != "" {
		var items []recommend.ItemFeature
		if err := readJSONFile(opts.items, &items); err != nil {
			return nil, err
		}
		for _, f := range items {
			scorer.AddItem(f.ItemID, f.Tags, f.Category)
		}
	}

	if err := scorer.Save(opts.out); err != nil {
		return nil, fmt.Errorf("save %s: %w", opts.out, err)
	}

	res := &FitResult{
		Path:         opts.out,
		Interactions: len(interactions),
		Actors:       scorer.Collaborative().Actors(),
		Items:        scorer.Collaborative().Items(),
		Profiles:     scorer.Content().Profiles(),
		Features:     scorer.Content().Features(),
		DurationMS:   time.Since(start).Milliseconds(),
	}
	logging.Debug().
		Str("path", res.Path).
		Int("actors", res.Actors).
		Int("items", res.Items).
		Int64("duration_ms", res.DurationMS).
		Msg("model fitted")
	return res, nil
}
