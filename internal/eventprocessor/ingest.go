// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/wal"
)

// Ingestor accepts interaction events from the API.
type Ingestor interface {
	Ingest(ctx context.Context, event *InteractionEvent) error
}

// InteractionStore persists interactions. Inserting an event id that is
// already stored reports inserted=false without error.
type InteractionStore interface {
	InsertInteraction(ctx context.Context, in *recommend.Interaction) (inserted bool, err error)
}

// EventPublisher publishes interaction events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *InteractionEvent) error
}

// DirectIngestor writes events straight to the store. It is used when
// messaging is disabled.
type DirectIngestor struct {
	store InteractionStore
}

// NewDirectIngestor creates a DirectIngestor.
func NewDirectIngestor(store InteractionStore) *DirectIngestor {
	return &DirectIngestor{store: store}
}

// Ingest validates and inserts the event.
func (d *DirectIngestor) Ingest(ctx context.Context, event *InteractionEvent) error {
	start := time.Now()
	if err := event.Validate(); err != nil {
		metrics.RecordIngest(metrics.ResultInvalid, time.Since(start))
		return err
	}
	in, err := event.ToInteraction()
	if err != nil {
		metrics.RecordIngest(metrics.ResultInvalid, time.Since(start))
		return err
	}
	inserted, err := d.store.InsertInteraction(ctx, &in)
	switch {
	case err != nil:
		metrics.RecordIngest(metrics.ResultFailure, time.Since(start))
		return fmt.Errorf("insert interaction: %w", err)
	case !inserted:
		metrics.RecordIngest(metrics.ResultDup, time.Since(start))
	default:
		metrics.RecordIngest(metrics.ResultSuccess, time.Since(start))
	}
	return nil
}

// PublishIngestor publishes events without a write-ahead log.
type PublishIngestor struct {
	publisher EventPublisher
}

// NewPublishIngestor creates a PublishIngestor.
func NewPublishIngestor(publisher EventPublisher) *PublishIngestor {
	return &PublishIngestor{publisher: publisher}
}

// Ingest validates and publishes the event.
func (p *PublishIngestor) Ingest(ctx context.Context, event *InteractionEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if err := p.publisher.PublishEvent(ctx, event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// DurablePublisher writes each event to the WAL before publishing and
// confirms the entry once the broker has accepted it. Unconfirmed entries are
// republished by wal.RetryLoop through PublishEntry.
type DurablePublisher struct {
	wal       *wal.BadgerWAL
	publisher EventPublisher
	logger    zerolog.Logger
}

var (
	_ Ingestor      = (*DurablePublisher)(nil)
	_ wal.Publisher = (*DurablePublisher)(nil)
)

// NewDurablePublisher creates a DurablePublisher.
func NewDurablePublisher(w *wal.BadgerWAL, publisher EventPublisher, logger zerolog.Logger) (*DurablePublisher, error) {
	if publisher == nil {
		return nil, ErrNilPublisher
	}
	if w == nil {
		return nil, fmt.Errorf("%w: wal is required", ErrInvalidConfig)
	}
	return &DurablePublisher{
		wal:       w,
		publisher: publisher,
		logger:    logger.With().Str("component", "durable-publisher").Logger(),
	}, nil
}

// Ingest accepts the event once it is durable in the WAL. A publish failure
// after a successful WAL write is logged and left to the retry loop. If the
// WAL write fails the event is still published and the publish result is
// returned.
func (d *DurablePublisher) Ingest(ctx context.Context, event *InteractionEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	entryID, walErr := d.wal.Write(ctx, event)
	if walErr != nil {
		d.logger.Error().Err(walErr).Str("event_id", event.EventID).Msg("WAL write failed, publishing without durability")
		if err := d.publisher.PublishEvent(ctx, event); err != nil {
			return fmt.Errorf("publish event: %w", errors.Join(err, walErr))
		}
		return nil
	}

	if err := d.publisher.PublishEvent(ctx, event); err != nil {
		d.logger.Warn().Err(err).
			Str("event_id", event.EventID).
			Str("entry_id", entryID).
			Msg("publish failed, event left in WAL for retry")
		return nil
	}

	if err := d.wal.Confirm(ctx, entryID); err != nil {
		d.logger.Warn().Err(err).Str("entry_id", entryID).Msg("WAL confirm failed")
	}
	return nil
}

// PublishEntry republishes a WAL entry.
func (d *DurablePublisher) PublishEntry(ctx context.Context, entry *wal.Entry) error {
	var event InteractionEvent
	if err := entry.UnmarshalPayload(&event); err != nil {
		return fmt.Errorf("decode WAL entry %s: %w", entry.ID, err)
	}
	event.Source = SourceRetry
	return d.publisher.PublishEvent(ctx, &event)
}
