// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package database is the DuckDB catalog behind the recommendation engine.
//
// # Tables
//
//   - interactions: one row per behavioral signal, keyed by event_id
//   - profiles: declared skills and interests per actor
//   - items: declared tags and category per item
//
// Sets are stored as JSON arrays. Profile and item writes replace the
// previous row wholesale (INSERT ... ON CONFLICT DO UPDATE). Interaction
// writes are idempotent on event_id (ON CONFLICT DO NOTHING), which lets the
// ingest consumer redeliver messages safely.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	engine.SetDataProvider(db)
//
// *DB implements recommend.DataProvider. Every query records
// affinity_db_query_duration_seconds and errors by operation and table.
package database
