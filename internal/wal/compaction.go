// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package wal

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/metrics"
)

// Compactor deletes confirmed and expired entries and reclaims value log
// space. It implements suture.Service.
type Compactor struct {
	wal    *BadgerWAL
	config Config
}

// NewCompactor creates a compactor for w.
func NewCompactor(w *BadgerWAL) *Compactor {
	return &Compactor{wal: w, config: w.Config()}
}

// Serve compacts every CompactInterval until ctx is canceled.
func (c *Compactor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.config.CompactInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Compact()
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (c *Compactor) String() string {
	return "wal-compactor"
}

// Compact runs one compaction and returns the number of entries removed.
func (c *Compactor) Compact() int {
	start := time.Now()

	confirmed, err := c.deleteConfirmed()
	if err != nil {
		logging.Error().Err(err).Msg("WAL compaction failed to delete confirmed entries")
	}
	expired, err := c.deleteExpired(time.Now().Add(-c.config.EntryTTL))
	if err != nil {
		logging.Error().Err(err).Msg("WAL compaction failed to delete expired entries")
	}
	if err := c.wal.RunGC(); err != nil {
		logging.Error().Err(err).Msg("WAL compaction GC error")
	}

	c.wal.mu.Lock()
	c.wal.lastCompaction = time.Now()
	c.wal.mu.Unlock()

	total := confirmed + expired
	metrics.RecordWALCompaction(total)
	if total > 0 {
		logging.Info().
			Int("confirmed", confirmed).
			Int("expired", expired).
			Dur("duration", time.Since(start)).
			Msg("WAL compaction removed entries")
	}
	return total
}

func (c *Compactor) deleteConfirmed() (int, error) {
	return c.deleteMatching(prefixConfirmed, false, func(*Entry) bool { return true })
}

func (c *Compactor) deleteExpired(cutoff time.Time) (int, error) {
	return c.deleteMatching(prefixPending, true, func(e *Entry) bool {
		return e.CreatedAt.Before(cutoff)
	})
}

// deleteMatching collects matching keys under prefix, then deletes them in
// one transaction. Undecodable values never match.
func (c *Compactor) deleteMatching(prefix string, decode bool, match func(*Entry) bool) (int, error) {
	if err := c.wal.checkOpen(); err != nil {
		return 0, err
	}

	var count int
	err := c.wal.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = decode
		it := txn.NewIterator(opts)

		var keys [][]byte
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			entry := &Entry{}
			if decode {
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, entry)
				}); err != nil {
					continue
				}
			}
			if match(entry) {
				keys = append(keys, item.KeyCopy(nil))
			}
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}

