// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values shared by the counters below.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultSkipped  = "skipped"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
	ResultDup      = "duplicate"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Model Metrics
	TrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "affinity_train_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
		},
	)

	TrainTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_train_total",
			Help: "Total number of training runs by result",
		},
		[]string{"result"}, // success, failure, skipped
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_model_version",
			Help: "Version of the model currently serving",
		},
	)

	ModelActors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_model_actors",
			Help: "Number of actors (matrix rows) in the serving model",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_model_items",
			Help: "Number of targets (matrix columns) in the serving model",
		},
	)

	ModelProfiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_model_profiles",
			Help: "Number of actor profiles in the serving model",
		},
	)

	ModelFeatures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_model_features",
			Help: "Number of item features in the serving model",
		},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "affinity_recommend_duration_seconds",
			Help:    "Latency of scoring requests in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"kind"}, // hybrid, similar, content, match
	)

	RecommendCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_recommend_cache_total",
			Help: "Recommendation cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// Ingest Metrics
	IngestEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_ingest_events_total",
			Help: "Interaction events processed by the ingest consumer by result",
		},
		[]string{"result"}, // success, invalid, duplicate, failure
	)

	IngestProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "affinity_ingest_processing_duration_seconds",
			Help:    "Time to persist one consumed interaction event",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	// WAL Metrics
	WALWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_wal_writes_total",
			Help: "Write-ahead log writes by result",
		},
		[]string{"result"},
	)

	WALPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_wal_pending_entries",
			Help: "Unconfirmed entries in the write-ahead log",
		},
	)

	WALRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_wal_retries_total",
			Help: "Republish attempts for unconfirmed WAL entries by result",
		},
		[]string{"result"},
	)

	WALCompactions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_wal_compactions_total",
			Help: "Completed WAL compaction runs",
		},
	)

	WALEntriesCompacted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_wal_entries_compacted_total",
			Help: "Confirmed or expired WAL entries removed by compaction",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "affinity_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitHit counts one rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTraining records the outcome of one training run.
func RecordTraining(result string, duration time.Duration) {
	TrainTotal.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		TrainDuration.Observe(duration.Seconds())
	}
}

// SetModelShape publishes the dimensions of the serving model.
func SetModelShape(version int64, actors, items, profiles, features int) {
	ModelVersion.Set(float64(version))
	ModelActors.Set(float64(actors))
	ModelItems.Set(float64(items))
	ModelProfiles.Set(float64(profiles))
	ModelFeatures.Set(float64(features))
}

// RecordRecommend records scoring latency for one request kind.
func RecordRecommend(kind string, duration time.Duration) {
	RecommendDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCacheLookup records a recommendation cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendCacheTotal.WithLabelValues(ResultHit).Inc()
		return
	}
	RecommendCacheTotal.WithLabelValues(ResultMiss).Inc()
}

// RecordIngest records one consumed event.
func RecordIngest(result string, duration time.Duration) {
	IngestEventsTotal.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		IngestProcessingDuration.Observe(duration.Seconds())
	}
}

// RecordNATSPublish increments the published counter.
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordNATSConsume increments the consumed counter.
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordWALWrite records a WAL write outcome.
func RecordWALWrite(err error) {
	if err != nil {
		WALWrites.WithLabelValues(ResultFailure).Inc()
		return
	}
	WALWrites.WithLabelValues(ResultSuccess).Inc()
}

// RecordWALRetry records one republish attempt.
func RecordWALRetry(success bool) {
	if success {
		WALRetries.WithLabelValues(ResultSuccess).Inc()
		return
	}
	WALRetries.WithLabelValues(ResultFailure).Inc()
}

// RecordWALCompaction records a compaction run and the entries it removed.
func RecordWALCompaction(removed int) {
	WALCompactions.Inc()
	WALEntriesCompacted.Add(float64(removed))
}

// SetBreakerState publishes a breaker state as 0=closed, 1=half-open, 2=open.
func SetBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordBreakerRequest records one call through a breaker.
func RecordBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordBreakerTransition records a breaker state change.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
