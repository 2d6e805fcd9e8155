// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package wal

import (
	"context"
	"math"
	"time"

	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/metrics"
)

const (
	maxBackoff     = 5 * time.Minute
	publishTimeout = 10 * time.Second
)

// Publisher republishes a logged entry.
type Publisher interface {
	PublishEntry(ctx context.Context, entry *Entry) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, entry *Entry) error

// PublishEntry implements Publisher.
func (f PublisherFunc) PublishEntry(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

// RetryResult counts the outcomes of one retry pass.
type RetryResult struct {
	Pending    int
	Succeeded  int
	Failed     int
	Expired    int
	MaxRetried int
	Skipped    int
}

// RetryLoop republishes pending entries. It runs one pass immediately, which
// recovers entries left by a previous process, then one per RetryInterval.
// It implements suture.Service.
type RetryLoop struct {
	wal       *BadgerWAL
	publisher Publisher
	config    Config
	now       func() time.Time
}

// NewRetryLoop creates a retry loop for w.
func NewRetryLoop(w *BadgerWAL, publisher Publisher) *RetryLoop {
	return &RetryLoop{
		wal:       w,
		publisher: publisher,
		config:    w.Config(),
		now:       time.Now,
	}
}

// Serve runs until ctx is canceled.
func (r *RetryLoop) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", r.config.RetryInterval).
		Int("max_retries", r.config.MaxRetries).
		Msg("WAL retry loop started")

	r.logResult(r.RunOnce(ctx))

	ticker := time.NewTicker(r.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("WAL retry loop stopped")
			return ctx.Err()
		case <-ticker.C:
			r.logResult(r.RunOnce(ctx))
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (r *RetryLoop) String() string {
	return "wal-retry"
}

// RunOnce handles up to RetryBatchSize pending entries.
func (r *RetryLoop) RunOnce(ctx context.Context) RetryResult {
	var result RetryResult

	entries, err := r.wal.GetPending(ctx, r.config.RetryBatchSize)
	if err != nil {
		logging.Error().Err(err).Msg("WAL retry: failed to get pending entries")
		return result
	}
	result.Pending = len(entries)

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		r.process(ctx, entry, &result)
	}

	r.wal.Stats()
	return result
}

func (r *RetryLoop) process(ctx context.Context, entry *Entry, result *RetryResult) {
	if !r.wal.tryClaim(entry.ID) {
		result.Skipped++
		return
	}
	defer r.wal.release(entry.ID)

	now := r.now()
	switch {
	case now.Sub(entry.CreatedAt) > r.config.EntryTTL:
		logging.Info().Str("entry_id", entry.ID).Msg("WAL retry: entry expired, removing")
		r.drop(ctx, entry)
		result.Expired++
	case entry.Attempts >= r.config.MaxRetries:
		logging.Warn().
			Str("entry_id", entry.ID).
			Int("attempts", entry.Attempts).
			Str("last_error", entry.LastError).
			Msg("WAL retry: entry exceeded max retries, removing")
		r.drop(ctx, entry)
		result.MaxRetried++
	case !r.readyForRetry(entry, now):
		result.Skipped++
	default:
		if r.publish(ctx, entry) {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
}

func (r *RetryLoop) drop(ctx context.Context, entry *Entry) {
	if err := r.wal.DeleteEntry(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("WAL retry: failed to delete entry")
	}
}

// readyForRetry applies the backoff. A never-attempted entry waits one base
// backoff from its creation so the write path can confirm it first.
func (r *RetryLoop) readyForRetry(entry *Entry, now time.Time) bool {
	if entry.LastAttemptAt.IsZero() {
		return now.Sub(entry.CreatedAt) >= r.config.RetryBackoff
	}
	return now.Sub(entry.LastAttemptAt) >= r.backoff(entry.Attempts)
}

func (r *RetryLoop) publish(ctx context.Context, entry *Entry) bool {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	err := r.publisher.PublishEntry(pubCtx, entry)
	cancel()

	if err != nil {
		metrics.RecordWALRetry(false)
		logging.Warn().
			Err(err).
			Str("entry_id", entry.ID).
			Int("attempt", entry.Attempts+1).
			Msg("WAL retry: failed to publish entry")
		if updateErr := r.wal.UpdateAttempt(ctx, entry.ID, err.Error()); updateErr != nil {
			logging.Error().Err(updateErr).Str("entry_id", entry.ID).Msg("WAL retry: failed to update attempt")
		}
		return false
	}

	metrics.RecordWALRetry(true)
	if err := r.wal.Confirm(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("WAL retry: failed to confirm entry")
		return false
	}
	return true
}

// backoff is RetryBackoff * 2^attempts, capped at five minutes.
func (r *RetryLoop) backoff(attempts int) time.Duration {
	if attempts > 50 {
		return maxBackoff
	}
	d := time.Duration(float64(r.config.RetryBackoff) * math.Pow(2, float64(attempts)))
	if d < 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (r *RetryLoop) logResult(res RetryResult) {
	if res.Succeeded == 0 && res.Failed == 0 && res.Expired == 0 && res.MaxRetried == 0 {
		return
	}
	logging.Info().
		Int("pending", res.Pending).
		Int("succeeded", res.Succeeded).
		Int("failed", res.Failed).
		Int("expired", res.Expired).
		Int("max_retried", res.MaxRetried).
		Msg("WAL retry complete")
}
