// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/eventprocessor"
	"github.com/tomtom215/affinity/internal/wal"
)

// serviceAdder is the subset of the supervisor tree used by initIngest.
type serviceAdder interface {
	AddDataService(svc suture.Service) suture.ServiceToken
	AddMessagingService(svc suture.Service) suture.ServiceToken
}

// IngestComponents holds the interaction ingest pipeline.
type IngestComponents struct {
	Ingestor  eventprocessor.Ingestor
	Publisher *eventprocessor.Publisher // nil in direct mode
	WAL       *wal.BadgerWAL            // nil unless nats and wal are enabled

	subscriber *eventprocessor.Subscriber
	server     *eventprocessor.EmbeddedServer
}

// embeddedShutdownTimeout bounds shutdown of an embedded server that never
// reached the supervisor tree.
const embeddedShutdownTimeout = 10 * time.Second

// initIngest builds the ingest pipeline and registers its services.
//
// With NATS disabled, POST /interactions writes straight to DuckDB. With
// NATS enabled the handler publishes to JetStream (through the WAL when it
// is enabled) and the ingest consumer inserts into DuckDB.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initIngest(cfg *config.Config, store eventprocessor.InteractionStore, tree serviceAdder, logger zerolog.Logger) (*IngestComponents, error) {
	if !cfg.NATS.Enabled {
		if cfg.WAL.Enabled {
			logger.Warn().Msg("WAL requires NATS (NATS_ENABLED=true); interactions are written directly")
		}
		logger.Info().Msg("NATS disabled, using direct ingest")
		return &IngestComponents{Ingestor: eventprocessor.NewDirectIngestor(store)}, nil
	}

	// Services are registered only once every step succeeded.
	c := &IngestComponents{}
	var walServices []suture.Service
	url := cfg.NATS.URL

	if cfg.NATS.EmbeddedServer {
		srv, err := eventprocessor.NewEmbeddedServer(eventprocessor.ServerConfigFrom(&cfg.NATS))
		if err != nil {
			return nil, err
		}
		c.server = srv
		url = srv.ClientURL()
		logger.Info().Str("url", url).Bool("jetstream", srv.JetStreamEnabled()).Msg("Embedded NATS server started")
	}

	topic := eventprocessor.ConsumerConfigFrom(&cfg.NATS).Topic
	pub, err := eventprocessor.NewPublisher(eventprocessor.DefaultPublisherConfig(url), topic, logger)
	if err != nil {
		return nil, c.abort(err)
	}
	pub.SetCircuitBreaker(eventprocessor.NewCircuitBreaker(
		eventprocessor.DefaultCircuitBreakerConfig("nats-publisher"), logger))
	c.Publisher = pub

	if cfg.WAL.Enabled {
		w, err := wal.Open(wal.FromSettings(&cfg.WAL))
		if err != nil {
			return nil, c.abort(err)
		}
		c.WAL = w

		durable, err := eventprocessor.NewDurablePublisher(w, pub, logger)
		if err != nil {
			return nil, c.abort(err)
		}
		c.Ingestor = durable
		walServices = append(walServices, wal.NewRetryLoop(w, durable), wal.NewCompactor(w))
		logger.Info().Str("path", cfg.WAL.Path).Bool("sync_writes", cfg.WAL.SyncWrites).Msg("WAL enabled")
	} else {
		logger.Warn().Msg("WAL disabled (WAL_ENABLED=false). Interactions may be lost if NATS fails.")
		c.Ingestor = eventprocessor.NewPublishIngestor(pub)
	}

	subCfg := eventprocessor.SubscriberConfigFrom(&cfg.NATS)
	subCfg.URL = url
	sub, err := eventprocessor.NewSubscriber(subCfg, logger)
	if err != nil {
		return nil, c.abort(err)
	}
	c.subscriber = sub

	consumer, err := eventprocessor.NewIngestConsumer(sub, store, eventprocessor.ConsumerConfigFrom(&cfg.NATS), logger)
	if err != nil {
		return nil, c.abort(err)
	}
	for _, svc := range walServices {
		tree.AddDataService(svc)
	}
	if c.server != nil {
		tree.AddMessagingService(c.server)
	}
	tree.AddMessagingService(consumer)

	logger.Info().Str("topic", topic).Str("url", url).Msg("NATS ingest pipeline initialized")
	return c, nil
}

// abort releases everything opened so far, including an embedded server
// that was not yet handed to the tree, and returns err.
func (c *IngestComponents) abort(err error) error {
	closeErr := c.Close()
	if c.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), embeddedShutdownTimeout)
		defer cancel()
		closeErr = errors.Join(closeErr, c.server.Shutdown(ctx))
	}
	if closeErr != nil {
		return fmt.Errorf("%w (cleanup: %v)", err, closeErr)
	}
	return err
}

// Close releases the publisher, subscriber and WAL. The embedded server
// belongs to the supervisor tree.
func (c *IngestComponents) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.subscriber != nil {
		errs = append(errs, c.subscriber.Close())
	}
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.WAL != nil {
		errs = append(errs, c.WAL.Close())
	}
	return errors.Join(errs...)
}
