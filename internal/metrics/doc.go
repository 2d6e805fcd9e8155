// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package metrics provides Prometheus instrumentation for Affinity.

All collectors are registered with the default registry through promauto and
exported by the HTTP server at /metrics.

# Available Metrics

Model:
  - affinity_train_duration_seconds (histogram)
  - affinity_train_total{result} (counter): success, failure, skipped
  - affinity_model_version, affinity_model_actors, affinity_model_items,
    affinity_model_profiles, affinity_model_features (gauges)
  - affinity_recommend_duration_seconds{kind} (histogram)
  - affinity_recommend_cache_total{result} (counter): hit, miss

Ingest:
  - affinity_ingest_events_total{result} (counter)
  - affinity_ingest_processing_duration_seconds (histogram)
  - nats_messages_published_total, nats_messages_consumed_total (counters)
  - affinity_wal_writes_total{result}, affinity_wal_retries_total{result}
  - affinity_wal_pending_entries (gauge)
  - affinity_wal_compactions_total, affinity_wal_entries_compacted_total

API:
  - affinity_api_requests_total{method,endpoint,status_code}
  - affinity_api_request_duration_seconds{method,endpoint}
  - affinity_api_active_requests (gauge)
  - affinity_api_rate_limit_hits_total{endpoint}

Database:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table}

Circuit breakers:
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

# Example Queries

	histogram_quantile(0.99, rate(affinity_recommend_duration_seconds_bucket[5m]))
	sum(rate(affinity_recommend_cache_total{result="hit"}[5m])) / sum(rate(affinity_recommend_cache_total[5m]))
	increase(affinity_train_total{result="failure"}[1h]) > 0
*/
package metrics
