// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	WAL       WALConfig       `koanf:"wal"`
	NATS      NATSConfig      `koanf:"nats"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	API       APIConfig       `koanf:"api"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// LoggingConfig is passed to logging.Init.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB catalog settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
	MaxMemory string `koanf:"max_memory"`
}

// WALConfig holds the interaction write-ahead log settings.
//
// Environment Variables:
//   - WAL_ENABLED: buffer ingested events in Badger before publishing (default: true)
//   - WAL_PATH: Badger directory (default: /data/wal)
//   - WAL_SYNC_WRITES: fsync every write (default: true)
//   - WAL_ENTRY_TTL: drop entries older than this (default: 168h)
//   - WAL_RETRY_INTERVAL: how often unconfirmed entries are republished (default: 30s)
//   - WAL_MAX_RETRIES: attempts before an entry is abandoned (default: 100)
//   - WAL_COMPACT_INTERVAL: confirmed-entry cleanup and value-log GC period (default: 1h)
type WALConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Path            string        `koanf:"path"`
	SyncWrites      bool          `koanf:"sync_writes"`
	EntryTTL        time.Duration `koanf:"entry_ttl"`
	RetryInterval   time.Duration `koanf:"retry_interval"`
	MaxRetries      int           `koanf:"max_retries"`
	RetryBatchSize  int           `koanf:"retry_batch_size"`
	CompactInterval time.Duration `koanf:"compact_interval"`
	GCRatio         float64       `koanf:"gc_ratio"`
}

// NATSConfig holds JetStream messaging settings.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	Topic            string        `koanf:"topic"`
	QueueGroup       string        `koanf:"queue_group"`
	DurableName      string        `koanf:"durable_name"`
	SubscribersCount int           `koanf:"subscribers_count"`
	AckWait          time.Duration `koanf:"ack_wait"`
	CloseTimeout     time.Duration `koanf:"close_timeout"`

	// IngestRate limits events/second inserted by the consumer (0 = unlimited).
	IngestRate  float64 `koanf:"ingest_rate"`
	IngestBurst int     `koanf:"ingest_burst"`

	// DedupTTL bounds how long an event id is remembered by the consumer.
	DedupTTL      time.Duration `koanf:"dedup_ttl"`
	DedupCapacity int           `koanf:"dedup_capacity"`
}

// RecommendConfig holds engine hosting settings.
//
// Environment Variables:
//   - ML_MODEL_PATH: snapshot directory (default: /data/models)
//   - ML_CACHE_TTL: recommendation result cache TTL (default: 1h)
//   - RECOMMEND_TRAIN_ON_STARTUP: train once at boot when no snapshot exists (default: true)
//   - RECOMMEND_TRAIN_INTERVAL: periodic retraining, 0 disables (default: 1h)
type RecommendConfig struct {
	ModelDir        string        `koanf:"model_dir"`
	TrainOnStartup  bool          `koanf:"train_on_startup"`
	TrainInterval   time.Duration `koanf:"train_interval"`
	TrainTimeout    time.Duration `koanf:"train_timeout"`
	MinInteractions int           `koanf:"min_interactions"`
	RetainVersions  int           `koanf:"retain_versions"`

	CollaborativeWeight float64 `koanf:"collaborative_weight"`
	ContentWeight       float64 `koanf:"content_weight"`

	DefaultN      int `koanf:"default_n"`
	MaxN          int `koanf:"max_n"`
	MaxCandidates int `koanf:"max_candidates"`

	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`

	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	AuthMode      string        `koanf:"auth_mode"` // none, jwt, basic
	JWTSecret     string        `koanf:"jwt_secret"`
	JWTIssuer     string        `koanf:"jwt_issuer"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	AdminUsername string        `koanf:"admin_username"`
	AdminPassword string        `koanf:"admin_password"`
	DefaultRole   string        `koanf:"default_role"`

	// Casbin overrides; the embedded model and policy are used when empty.
	AuthzModelPath  string `koanf:"authz_model_path"`
	AuthzPolicyPath string `koanf:"authz_policy_path"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// APIConfig holds request handling limits.
type APIConfig struct {
	RequestTimeout time.Duration `koanf:"request_timeout"`
	MaxBodyBytes   int64         `koanf:"max_body_bytes"`
	MaxBatchSize   int           `koanf:"max_batch_size"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether Environment is "production".
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// Load reads configuration from defaults, an optional YAML file, an optional
// .env file and the environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
