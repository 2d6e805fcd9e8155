// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo is the version command result.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func newVersionCommand(root *rootOptions, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := VersionInfo{
				Version:   orDefault(info.Version, "dev"),
				Commit:    orDefault(info.Commit, "unknown"),
				BuildTime: orDefault(info.BuildTime, "unknown"),
				GoVersion: runtime.Version(),
			}
			return emit(cmd.OutOrStdout(), root.output, v, table{
				header: []string{"Version", "Commit", "Built", "Go"},
				rows:   [][]string{{v.Version, v.Commit, v.BuildTime, v.GoVersion}},
			})
		},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
