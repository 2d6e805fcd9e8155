// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/affinity/internal/logging"
)

// Output formats accepted by -o.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// BuildInfo is reported by the version command.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

type rootOptions struct {
	output  string
	verbose bool
}

// NewRootCommand builds the affinityctl command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "affinityctl",
		Short: "Offline tooling for Affinity recommendation models",
		Long: `affinityctl fits, queries and inspects Affinity model artifacts without a
running server, runs team matching over a candidate file and mints JWTs for
the HTTP API.

Examples:
  affinityctl fit --interactions events.json --profiles people.json --out model.json.gz
  affinityctl recommend --model model.json.gz --actor alice -n 5
  affinityctl match --required go,sql --candidates team.json -o json
  affinityctl token --secret "$JWT_SECRET" --subject ops --role admin`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != FormatTable && opts.output != FormatJSON {
				return fmt.Errorf("unknown output format %q (use table or json)", opts.output)
			}
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logging.Init(logging.Config{
				Level:     level,
				Format:    "console",
				Timestamp: true,
				Output:    cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", FormatTable, "output format (table, json)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newFitCommand(opts),
		newRecommendCommand(opts),
		newSimilarCommand(opts),
		newMatchCommand(opts),
		newInspectCommand(opts),
		newTokenCommand(opts),
		newVersionCommand(opts, info),
	)
	return root
}

// Execute runs affinityctl with os.Args.
func Execute(info BuildInfo) error {
	return NewRootCommand(info).Execute()
}
