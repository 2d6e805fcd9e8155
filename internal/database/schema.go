// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

// Table names, also used as metric labels.
const (
	tableInteractions = "interactions"
	tableProfiles     = "profiles"
	tableItems        = "items"
)

// tableCreationQueries creates the catalog tables. Skill, interest and tag
// sets are stored as JSON arrays of strings.
var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS interactions (
		event_id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL,
		ingested_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		actor_id TEXT PRIMARY KEY,
		skills TEXT NOT NULL DEFAULT '[]',
		interests TEXT NOT NULL DEFAULT '[]',
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		item_id TEXT PRIMARY KEY,
		tags TEXT NOT NULL DEFAULT '[]',
		category TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL
	)`,
}

var indexCreationQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_interactions_occurred_at ON interactions(occurred_at)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_actor ON interactions(actor_id)`,
}
