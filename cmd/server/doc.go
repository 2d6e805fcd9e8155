// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Command server runs the Affinity HTTP service.

Startup order:

 1. Configuration: koanf layers defaults, config.yaml, .env and environment
 2. Logging: zerolog (json or console)
 3. Database: DuckDB catalog of interactions, profiles and items
 4. Recommendation engine: restores the newest model snapshot from
    ML_MODEL_PATH, then trains on the schedule of the train service
 5. Ingest: direct DuckDB writes, or NATS JetStream with an optional Badger
    WAL in front of the publisher
 6. HTTP: chi router with authentication (none, jwt, basic) and casbin RBAC
 7. Supervisor tree: every long-running component runs under suture

# Example Usage

Development, no authentication, direct ingest:

	export AUTH_MODE=none
	export DUCKDB_PATH=./data/affinity.duckdb
	export ML_MODEL_PATH=./data/models
	./affinity-server

Production with JWT and an embedded JetStream server:

	export AUTH_MODE=jwt
	export JWT_SECRET=$(openssl rand -base64 32)
	export NATS_ENABLED=true
	export NATS_EMBEDDED=true
	export WAL_ENABLED=true
	./affinity-server

Tokens for JWT mode are issued with "affinityctl token".

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server (waiting up to SHUTDOWN_TIMEOUT for in-flight requests), the
ingest consumer, the train service and the embedded NATS server; the WAL,
publisher and database are closed afterwards.
*/
package main
