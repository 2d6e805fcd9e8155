// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/metrics"
)

// Errors
var (
	ErrWALClosed     = errors.New("WAL is closed")
	ErrNilEvent      = errors.New("event cannot be nil")
	ErrEmptyEntryID  = errors.New("entry ID cannot be empty")
	ErrEntryNotFound = errors.New("entry not found")
)

// Key prefixes for the two entry states.
const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"
)

// Entry is one logged event and its delivery state.
type Entry struct {
	ID            string          `json:"id"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt time.Time       `json:"last_attempt_at,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
	Confirmed     bool            `json:"confirmed"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
}

// UnmarshalPayload decodes the logged event into v.
func (e *Entry) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Stats reports WAL counters.
type Stats struct {
	PendingCount   int64     `json:"pending"`
	ConfirmedCount int64     `json:"confirmed"`
	TotalWrites    int64     `json:"total_writes"`
	TotalConfirms  int64     `json:"total_confirms"`
	TotalRetries   int64     `json:"total_retries"`
	LastCompaction time.Time `json:"last_compaction"`
	DBSizeBytes    int64     `json:"db_size_bytes"`
}

// BadgerWAL persists events before they are published so a broker outage or
// crash between accept and publish loses nothing.
type BadgerWAL struct {
	db     *badger.DB
	config Config

	totalWrites   atomic.Int64
	totalConfirms atomic.Int64
	totalRetries  atomic.Int64

	mu             sync.RWMutex
	closed         bool
	lastCompaction time.Time

	// processing holds entry ids currently being republished.
	processing sync.Map
}

// Open opens (or creates) the WAL at cfg.Path.
func Open(cfg Config) (*BadgerWAL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid WAL config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	opts.MemTableSize = cfg.MemTableSize
	opts.ValueLogFileSize = cfg.ValueLogFileSize
	opts.NumCompactors = cfg.NumCompactors
	if cfg.Compression {
		opts.Compression = options.Snappy
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	w := &BadgerWAL{
		db:             db,
		config:         cfg,
		lastCompaction: time.Now(),
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Bool("compression", cfg.Compression).
		Msg("WAL opened")
	return w, nil
}

func (w *BadgerWAL) checkOpen() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWALClosed
	}
	return nil
}

// Write stores event as a pending entry and returns its id.
func (w *BadgerWAL) Write(ctx context.Context, event interface{}) (entryID string, err error) {
	defer func() { metrics.RecordWALWrite(err) }()

	if err := w.checkOpen(); err != nil {
		return "", err
	}
	if event == nil {
		return "", ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	entry := &Entry{
		ID:        uuid.New().String(),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	err = w.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(prefixPending+entry.ID), data)
		if w.config.EntryTTL > 0 {
			e = e.WithTTL(w.config.EntryTTL)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", fmt.Errorf("write to BadgerDB: %w", err)
	}

	w.totalWrites.Add(1)
	return entry.ID, nil
}

// Confirm moves an entry from pending to confirmed.
func (w *BadgerWAL) Confirm(ctx context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}

	pendingKey := []byte(prefixPending + entryID)
	confirmedKey := []byte(prefixConfirmed + entryID)

	err := w.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, pendingKey)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		entry.Confirmed = true
		entry.ConfirmedAt = &now

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal confirmed entry: %w", err)
		}
		if err := txn.Set(confirmedKey, data); err != nil {
			return fmt.Errorf("set confirmed entry: %w", err)
		}
		if err := txn.Delete(pendingKey); err != nil {
			return fmt.Errorf("delete pending entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.totalConfirms.Add(1)
	return nil
}

// GetPending returns up to limit unconfirmed entries in key order. A limit
// of zero or less returns all of them. Entries that fail to decode are
// logged and skipped.
func (w *BadgerWAL) GetPending(ctx context.Context, limit int) ([]*Entry, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := w.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("WAL failed to unmarshal entry")
				continue
			}
			entries = append(entries, &entry)
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return entries, nil
}

// UpdateAttempt records a failed publish of a pending entry.
func (w *BadgerWAL) UpdateAttempt(ctx context.Context, entryID, lastError string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	key := []byte(prefixPending + entryID)
	err := w.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		var entry Entry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}

		entry.Attempts++
		entry.LastAttemptAt = time.Now().UTC()
		entry.LastError = lastError

		data, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		// Keep the original expiry so retries do not extend an entry's life.
		e := badger.NewEntry(key, data)
		if exp := item.ExpiresAt(); exp > 0 {
			if ttl := time.Until(time.Unix(int64(exp), 0)); ttl > 0 {
				e = e.WithTTL(ttl)
			}
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return err
	}

	w.totalRetries.Add(1)
	return nil
}

// DeleteEntry removes an entry in either state.
func (w *BadgerWAL) DeleteEntry(ctx context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	return w.db.Update(func(txn *badger.Txn) error {
		for _, prefix := range []string{prefixPending, prefixConfirmed} {
			key := []byte(prefix + entryID)
			if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
				continue
			} else if err != nil {
				return fmt.Errorf("get entry: %w", err)
			}
			return txn.Delete(key)
		}
		return ErrEntryNotFound
	})
}

// tryClaim marks an entry as in flight. It returns false when another
// goroutine already holds it.
func (w *BadgerWAL) tryClaim(entryID string) bool {
	_, held := w.processing.LoadOrStore(entryID, time.Now())
	return !held
}

func (w *BadgerWAL) release(entryID string) {
	w.processing.Delete(entryID)
}

// Stats counts entries by state and publishes the pending gauge.
func (w *BadgerWAL) Stats() Stats {
	w.mu.RLock()
	closed := w.closed
	lastCompaction := w.lastCompaction
	w.mu.RUnlock()

	if closed {
		return Stats{}
	}

	var pending, confirmed int64
	if err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefixPending)); it.ValidForPrefix([]byte(prefixPending)); it.Next() {
			pending++
		}
		for it.Seek([]byte(prefixConfirmed)); it.ValidForPrefix([]byte(prefixConfirmed)); it.Next() {
			confirmed++
		}
		return nil
	}); err != nil {
		logging.Warn().Err(err).Msg("WAL Stats failed to count entries")
	}

	lsm, vlog := w.db.Size()
	metrics.WALPending.Set(float64(pending))

	return Stats{
		PendingCount:   pending,
		ConfirmedCount: confirmed,
		TotalWrites:    w.totalWrites.Load(),
		TotalConfirms:  w.totalConfirms.Load(),
		TotalRetries:   w.totalRetries.Load(),
		LastCompaction: lastCompaction,
		DBSizeBytes:    lsm + vlog,
	}
}

// Config returns the WAL configuration.
func (w *BadgerWAL) Config() Config {
	return w.config
}

// RunGC runs value log garbage collection until nothing is left to rewrite.
func (w *BadgerWAL) RunGC() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	for {
		err := w.db.RunValueLogGC(w.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the WAL, giving up after CloseTimeout.
func (w *BadgerWAL) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	timeout := w.config.CloseTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	w.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- w.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("WAL closed")
		return nil
	case <-time.After(timeout):
		logging.Warn().Dur("timeout", timeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", timeout)
	}
}

func getEntry(txn *badger.Txn, key []byte) (*Entry, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pending entry: %w", err)
	}
	var entry Entry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, nil
}
