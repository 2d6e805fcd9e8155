// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package config loads and validates Affinity's configuration.

# Layers

Load builds the configuration with koanf from four layers. Later layers win.

 1. Struct defaults (defaultConfig, koanf structs provider)
 2. YAML file: CONFIG_PATH, else config.yaml / config.yml in the working
    directory, else /etc/affinity/config.yaml
 3. .env file: DOTENV_PATH, else ./.env when present. godotenv copies it into
    the process environment without overriding variables that are already set.
 4. Environment variables, mapped through an explicit table (envMappings).
    Unknown variables are ignored.

Comma separated values (CORS_ORIGINS) become slices.

# Sections

  - server: HTTP_HOST, HTTP_PORT, READ_TIMEOUT, WRITE_TIMEOUT, SHUTDOWN_TIMEOUT, ENVIRONMENT
  - logging: LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - database: DUCKDB_PATH, DUCKDB_THREADS, DUCKDB_MAX_MEMORY
  - wal: WAL_ENABLED, WAL_PATH, WAL_SYNC_WRITES, WAL_ENTRY_TTL, WAL_RETRY_INTERVAL, ...
  - nats: NATS_ENABLED, NATS_URL, NATS_EMBEDDED, NATS_STORE_DIR, NATS_TOPIC, ...
  - recommend: ML_MODEL_PATH, ML_CACHE_TTL, RECOMMEND_TRAIN_INTERVAL, ...
  - security: AUTH_MODE, JWT_SECRET, ADMIN_USERNAME, ADMIN_PASSWORD, CORS_ORIGINS, ...
  - api: API_REQUEST_TIMEOUT, API_MAX_BODY_BYTES, API_MAX_BATCH_SIZE

# Example YAML

	server:
	  port: 8470
	  environment: production
	recommend:
	  model_dir: /var/lib/affinity/models
	  cache_ttl: 30m
	  train_interval: 15m
	security:
	  auth_mode: jwt
	  cors_origins: [https://app.example.com]

# Validation

Validate runs once per section and reports the first problem, named by its
environment variable.
Production mode additionally forbids AUTH_MODE=none and wildcard CORS.
*/
package config
