// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
)

// UpsertProfile stores an actor profile, replacing any previous one wholesale.
func (db *DB) UpsertProfile(ctx context.Context, p recommend.Profile) (err error) {
	if p.ActorID == "" {
		return fmt.Errorf("profile requires actor_id")
	}
	skills, err := encodeSet(p.Skills)
	if err != nil {
		return fmt.Errorf("failed to encode skills: %w", err)
	}
	interests, err := encodeSet(p.Interests)
	if err != nil {
		return fmt.Errorf("failed to encode interests: %w", err)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", tableProfiles, time.Since(start), err) }()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO profiles (actor_id, skills, interests, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (actor_id) DO UPDATE SET
			skills = excluded.skills,
			interests = excluded.interests,
			updated_at = excluded.updated_at`,
		p.ActorID, skills, interests, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.ActorID, err)
	}
	return nil
}

// UpsertItem stores an item's features, replacing any previous ones wholesale.
func (db *DB) UpsertItem(ctx context.Context, f recommend.ItemFeature) (err error) {
	if f.ItemID == "" {
		return fmt.Errorf("item requires item_id")
	}
	tags, err := encodeSet(f.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", tableItems, time.Since(start), err) }()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO items (item_id, tags, category, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET
			tags = excluded.tags,
			category = excluded.category,
			updated_at = excluded.updated_at`,
		f.ItemID, tags, f.Category, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", f.ItemID, err)
	}
	return nil
}

// GetProfiles returns every profile ordered by actor id.
func (db *DB) GetProfiles(ctx context.Context) (out []recommend.Profile, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", tableProfiles, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT actor_id, skills, interests FROM profiles ORDER BY actor_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		p, scanErr := scanProfile(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return out, nil
}

// GetProfile returns one profile or ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, actorID string) (p recommend.Profile, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_one", tableProfiles, time.Since(start), err) }()

	row := db.conn.QueryRowContext(ctx,
		`SELECT actor_id, skills, interests FROM profiles WHERE actor_id = ?`, actorID)
	p, err = scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.Profile{}, fmt.Errorf("profile %s: %w", actorID, ErrNotFound)
	}
	return p, err
}

// GetItems returns every item feature ordered by item id.
func (db *DB) GetItems(ctx context.Context) (out []recommend.ItemFeature, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", tableItems, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT item_id, tags, category FROM items ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		f, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return out, nil
}

// GetItem returns one item feature or ErrNotFound.
func (db *DB) GetItem(ctx context.Context, itemID string) (f recommend.ItemFeature, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_one", tableItems, time.Since(start), err) }()

	row := db.conn.QueryRowContext(ctx,
		`SELECT item_id, tags, category FROM items WHERE item_id = ?`, itemID)
	f, err = scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.ItemFeature{}, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	return f, err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (recommend.Profile, error) {
	var (
		p                 recommend.Profile
		skills, interests string
	)
	if err := row.Scan(&p.ActorID, &skills, &interests); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan profile: %w", err)
	}
	var err error
	if p.Skills, err = decodeSet(skills); err != nil {
		return p, fmt.Errorf("profile %s skills: %w", p.ActorID, err)
	}
	if p.Interests, err = decodeSet(interests); err != nil {
		return p, fmt.Errorf("profile %s interests: %w", p.ActorID, err)
	}
	return p, nil
}

func scanItem(row rowScanner) (recommend.ItemFeature, error) {
	var (
		f    recommend.ItemFeature
		tags string
	)
	if err := row.Scan(&f.ItemID, &tags, &f.Category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return f, err
		}
		return f, fmt.Errorf("failed to scan item: %w", err)
	}
	var err error
	if f.Tags, err = decodeSet(tags); err != nil {
		return f, fmt.Errorf("item %s tags: %w", f.ItemID, err)
	}
	return f, nil
}

// encodeSet stores a string set as a JSON array; nil becomes [].
func encodeSet(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeSet(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
