// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Command affinityctl is the offline operator tool for Affinity.
package main

import (
	"os"

	"github.com/tomtom215/affinity/internal/cli"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := cli.Execute(cli.BuildInfo{Version: Version, Commit: Commit, BuildTime: BuildTime}); err != nil {
		os.Exit(1)
	}
}
