// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/affinity/internal/cache"
	"github.com/tomtom215/affinity/internal/metrics"
)

// ConsumerStats counts consumer outcomes.
type ConsumerStats struct {
	Received   int64 `json:"received"`
	Inserted   int64 `json:"inserted"`
	Duplicates int64 `json:"duplicates"`
	Invalid    int64 `json:"invalid"`
	Failed     int64 `json:"failed"`
}

// IngestConsumer moves interaction events from the bus into the store.
//
// Malformed events and events with unknown kinds are acked and dropped.
// Store failures are nacked for redelivery. Event ids seen within DedupTTL
// are acked without touching the store.
type IngestConsumer struct {
	source  MessageSource
	store   InteractionStore
	config  ConsumerConfig
	limiter *rate.Limiter
	dedup   *cache.LRU[string, time.Time]
	logger  zerolog.Logger

	received   atomic.Int64
	inserted   atomic.Int64
	duplicates atomic.Int64
	invalid    atomic.Int64
	failed     atomic.Int64
}

// NewIngestConsumer creates a consumer reading from source.
func NewIngestConsumer(source MessageSource, store InteractionStore, cfg ConsumerConfig, logger zerolog.Logger) (*IngestConsumer, error) {
	if source == nil || store == nil {
		return nil, fmt.Errorf("%w: source and store are required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &IngestConsumer{
		source: source,
		store:  store,
		config: cfg,
		dedup:  cache.NewLRU[string, time.Time](cfg.DedupCapacity, cfg.DedupTTL),
		logger: logger.With().Str("component", "ingest-consumer").Logger(),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return c, nil
}

// Serve implements suture.Service.
func (c *IngestConsumer) Serve(ctx context.Context) error {
	messages, err := c.source.Subscribe(ctx, c.config.Topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.config.Topic, err)
	}
	c.logger.Info().Str("topic", c.config.Topic).Msg("Ingest consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", c.config.Topic)
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *IngestConsumer) String() string {
	return "ingest-consumer"
}

// Stats returns a snapshot of the consumer counters.
func (c *IngestConsumer) Stats() ConsumerStats {
	return ConsumerStats{
		Received:   c.received.Load(),
		Inserted:   c.inserted.Load(),
		Duplicates: c.duplicates.Load(),
		Invalid:    c.invalid.Load(),
		Failed:     c.failed.Load(),
	}
}

// handle processes one message and acks or nacks it.
func (c *IngestConsumer) handle(ctx context.Context, msg *message.Message) {
	start := time.Now()
	c.received.Add(1)
	metrics.RecordNATSConsume()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			msg.Nack()
			return
		}
	}

	event, err := DeserializeEvent(msg.Payload)
	if err == nil {
		err = event.Validate()
	}
	if err != nil {
		c.invalid.Add(1)
		metrics.RecordIngest(metrics.ResultInvalid, time.Since(start))
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping invalid interaction event")
		msg.Ack()
		return
	}

	if c.dedup.IsDuplicate(event.EventID, start) {
		c.duplicates.Add(1)
		metrics.RecordIngest(metrics.ResultDup, time.Since(start))
		msg.Ack()
		return
	}

	in, err := event.ToInteraction()
	if err != nil {
		c.invalid.Add(1)
		metrics.RecordIngest(metrics.ResultInvalid, time.Since(start))
		msg.Ack()
		return
	}

	insertCtx, cancel := context.WithTimeout(ctx, c.config.InsertTimeout)
	inserted, err := c.store.InsertInteraction(insertCtx, &in)
	cancel()
	if err != nil {
		// Forget the id so the redelivery is not mistaken for a duplicate.
		c.dedup.Remove(event.EventID)
		c.failed.Add(1)
		metrics.RecordIngest(metrics.ResultFailure, time.Since(start))
		c.logger.Error().Err(err).Str("event_id", event.EventID).Msg("insert interaction failed")
		msg.Nack()
		return
	}

	if inserted {
		c.inserted.Add(1)
		metrics.RecordIngest(metrics.ResultSuccess, time.Since(start))
	} else {
		c.duplicates.Add(1)
		metrics.RecordIngest(metrics.ResultDup, time.Since(start))
	}
	msg.Ack()
}
