// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/affinity/internal/metrics"
)

// Stats summarizes catalog contents.
type Stats struct {
	Interactions      int64            `json:"interactions"`
	Actors            int64            `json:"actors"`
	Targets           int64            `json:"targets"`
	Profiles          int64            `json:"profiles"`
	Items             int64            `json:"items"`
	ByKind            map[string]int64 `json:"by_kind"`
	LastInteractionAt *time.Time       `json:"last_interaction_at,omitempty"`
}

// Stats returns row counts and the newest interaction time.
func (db *DB) Stats(ctx context.Context) (s Stats, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("stats", tableInteractions, time.Since(start), err) }()

	var last sql.NullTime
	err = db.conn.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(DISTINCT actor_id),
			COUNT(DISTINCT target_id),
			MAX(occurred_at)
		FROM interactions`).Scan(&s.Interactions, &s.Actors, &s.Targets, &last)
	if err != nil {
		return s, fmt.Errorf("failed to count interactions: %w", err)
	}
	if last.Valid {
		t := last.Time.UTC()
		s.LastInteractionAt = &t
	}

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&s.Profiles); err != nil {
		return s, fmt.Errorf("failed to count profiles: %w", err)
	}
	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&s.Items); err != nil {
		return s, fmt.Errorf("failed to count items: %w", err)
	}

	s.ByKind = make(map[string]int64)
	rows, err := db.conn.QueryContext(ctx, `SELECT kind, COUNT(*) FROM interactions GROUP BY kind`)
	if err != nil {
		return s, fmt.Errorf("failed to count kinds: %w", err)
	}
	defer closeQuietly(rows)
	for rows.Next() {
		var (
			kind  string
			count int64
		)
		if err = rows.Scan(&kind, &count); err != nil {
			return s, fmt.Errorf("failed to scan kind count: %w", err)
		}
		s.ByKind[kind] = count
	}
	if err = rows.Err(); err != nil {
		return s, fmt.Errorf("failed to iterate kind counts: %w", err)
	}
	return s, nil
}
