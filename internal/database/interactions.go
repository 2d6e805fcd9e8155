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

	"github.com/google/uuid"

	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
)

const insertInteractionQuery = `INSERT INTO interactions (event_id, actor_id, target_id, kind, occurred_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (event_id) DO NOTHING`

// prepareInteraction fills in a missing event id and timestamp and rejects
// kinds without a weight.
func prepareInteraction(in *recommend.Interaction) error {
	if _, err := in.Kind.Weight(); err != nil {
		return err
	}
	if in.ActorID == "" || in.TargetID == "" {
		return fmt.Errorf("interaction requires actor_id and target_id")
	}
	if in.EventID == "" {
		in.EventID = uuid.NewString()
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now()
	}
	in.OccurredAt = in.OccurredAt.UTC()
	return nil
}

// InsertInteraction records one interaction.
//
// Inserts are idempotent on EventID: a second insert with the same id is
// ignored and reported as inserted=false. An empty EventID is replaced with a
// fresh UUID before the insert, so the caller can read it back from in.
func (db *DB) InsertInteraction(ctx context.Context, in *recommend.Interaction) (inserted bool, err error) {
	if err := prepareInteraction(in); err != nil {
		return false, err
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", tableInteractions, time.Since(start), err) }()

	result, err := db.conn.ExecContext(ctx, insertInteractionQuery,
		in.EventID, in.ActorID, in.TargetID, in.Kind.String(), in.OccurredAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert interaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows > 0, nil
}

// InsertInteractions records a batch in one transaction. Either every row
// is applied (new rows inserted, known event ids skipped) or none is.
func (db *DB) InsertInteractions(ctx context.Context, batch []recommend.Interaction) (inserted int, duplicates int, err error) {
	if len(batch) == 0 {
		return 0, 0, nil
	}
	for i := range batch {
		if err := prepareInteraction(&batch[i]); err != nil {
			return 0, 0, fmt.Errorf("interaction %d: %w", i, err)
		}
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert_batch", tableInteractions, time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertInteractionQuery)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i := range batch {
		in := &batch[i]
		result, execErr := stmt.ExecContext(ctx, in.EventID, in.ActorID, in.TargetID, in.Kind.String(), in.OccurredAt)
		if execErr != nil {
			err = fmt.Errorf("failed to insert interaction %s: %w", in.EventID, execErr)
			return 0, 0, err
		}
		rows, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			err = fmt.Errorf("failed to read rows affected: %w", rowsErr)
			return 0, 0, err
		}
		if rows > 0 {
			inserted++
		} else {
			duplicates++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, duplicates, nil
}

// GetInteractions returns interactions that occurred at or after since,
// oldest first. A zero since returns the full history.
func (db *DB) GetInteractions(ctx context.Context, since time.Time) (out []recommend.Interaction, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", tableInteractions, time.Since(start), err) }()

	query := `SELECT event_id, actor_id, target_id, kind, occurred_at FROM interactions`
	var args []interface{}
	if !since.IsZero() {
		query += ` WHERE occurred_at >= ?`
		args = append(args, since.UTC())
	}
	query += ` ORDER BY occurred_at, event_id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		in, scanErr := scanInteraction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}
	return out, nil
}

func scanInteraction(rows *sql.Rows) (recommend.Interaction, error) {
	var (
		in   recommend.Interaction
		kind string
	)
	if err := rows.Scan(&in.EventID, &in.ActorID, &in.TargetID, &kind, &in.OccurredAt); err != nil {
		return in, fmt.Errorf("failed to scan interaction: %w", err)
	}
	k, err := recommend.ParseInteractionKind(kind)
	if err != nil {
		return in, fmt.Errorf("interaction %s: %w", in.EventID, err)
	}
	in.Kind = k
	in.OccurredAt = in.OccurredAt.UTC()
	return in, nil
}
