// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package cli implements the affinityctl command tree with cobra.
//
// Commands work on model artifacts directly (fit, recommend, similar,
// inspect), on candidate files (match), or mint API tokens (token). Every
// command renders a table by default and JSON with -o json.
package cli
