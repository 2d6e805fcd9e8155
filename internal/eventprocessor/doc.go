// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package eventprocessor carries interaction events from the API into the
catalog store over NATS JetStream.

# Write path

	POST /api/v1/interactions
	        |
	        v
	DurablePublisher.Ingest --> wal.BadgerWAL.Write
	        |
	        v
	Publisher (watermill-nats, circuit breaker, Nats-Msg-Id = event id)
	        |
	        v
	wal.BadgerWAL.Confirm

If the publish fails the entry stays pending in the WAL and wal.RetryLoop
calls DurablePublisher.PublishEntry later.

# Read path

IngestConsumer subscribes to the interactions topic through a durable queue
subscriber, throttles with a token bucket, skips event ids it has already
seen and inserts into the store. Invalid events are acked and counted so a
bad producer cannot wedge the stream.

When messaging is disabled DirectIngestor writes straight to the store.

# Embedded server

EmbeddedServer runs nats-server in process with JetStream for single-node
deployments. It implements suture.Service so the supervisor shuts it down
after the consumer.
*/
package eventprocessor
