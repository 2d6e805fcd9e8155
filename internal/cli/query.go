// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/storage"
)

// RankedItem is one recommend result.
type RankedItem struct {
	Rank    int     `json:"rank"`
	ItemID  string  `json:"item_id"`
	Content float64 `json:"content_similarity"`
}

type queryOptions struct {
	model      string
	actor      string
	n          int
	candidates []string
}

func (o *queryOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.model, "model", "", "model artifact written by fit or the server")
	cmd.Flags().StringVar(&o.actor, "actor", "", "actor id")
	cmd.Flags().IntVarP(&o.n, "limit", "n", 10, "number of results")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("actor")
}

func (o *queryOptions) load() (*recommend.HybridScorer, error) {
	if o.n < 0 {
		return nil, fmt.Errorf("-n must be non-negative, got %d", o.n)
	}
	scorer, err := recommend.Load(o.model)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", o.model, err)
	}
	return scorer, nil
}

func newRecommendCommand(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank items for an actor",
		Long: `Rank items for an actor from a model artifact. Without --candidates the
collaborative shortlist is ranked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scorer, err := opts.load()
			if err != nil {
				return err
			}

			var candidates []string
			if cmd.Flags().Changed("candidates") {
				candidates = splitList(opts.candidates)
			}
			ids := scorer.Recommend(opts.actor, candidates, opts.n)

			results := make([]RankedItem, 0, len(ids))
			t := table{header: []string{"Rank", "Item", "Content"}}
			for i, id := range ids {
				r := RankedItem{Rank: i + 1, ItemID: id, Content: scorer.Content().Similarity(opts.actor, id)}
				results = append(results, r)
				t.rows = append(t.rows, []string{strconv.Itoa(r.Rank), r.ItemID, formatFloat(r.Content)})
			}
			return emit(cmd.OutOrStdout(), root.output, results, t)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringSliceVar(&opts.candidates, "candidates", nil, "comma separated items to rank")
	return cmd
}

func newSimilarCommand(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "similar",
		Short: "List the actors most similar to an actor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scorer, err := opts.load()
			if err != nil {
				return err
			}

			similar := scorer.SimilarUsers(opts.actor, opts.n)
			if similar == nil {
				similar = []recommend.ScoredActor{}
			}
			t := table{header: []string{"Rank", "Actor", "Similarity"}}
			for i, s := range similar {
				t.rows = append(t.rows, []string{strconv.Itoa(i + 1), s.ActorID, formatFloat(s.Similarity)})
			}
			return emit(cmd.OutOrStdout(), root.output, similar, t)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newInspectCommand(root *rootOptions) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the metadata of a model artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			meta, err := storage.ReadMetadata(path)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}
			t := table{
				header: []string{"Field", "Value"},
				rows: [][]string{
					{"schema", meta.Schema.String()},
					{"name", meta.Name},
					{"version", strconv.Itoa(meta.Version)},
					{"trained_at", formatTime(meta.TrainedAt)},
					{"saved_at", formatTime(meta.SavedAt)},
					{"interactions", strconv.Itoa(meta.InteractionCount)},
					{"actors", strconv.Itoa(meta.ActorCount)},
					{"items", strconv.Itoa(meta.ItemCount)},
					{"profiles", strconv.Itoa(meta.ProfileCount)},
					{"features", strconv.Itoa(meta.FeatureCount)},
					{"size_bytes", strconv.FormatInt(meta.SizeBytes, 10)},
					{"checksum", meta.Checksum},
				},
			}
			return emit(cmd.OutOrStdout(), root.output, meta, t)
		},
	}
	cmd.Flags().StringVar(&path, "model", "", "model artifact")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
