// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/affinity/config.yaml",
	"/etc/affinity/config.yml",
}

const (
	// ConfigPathEnvVar overrides the YAML config file location.
	ConfigPathEnvVar = "CONFIG_PATH"

	// DotenvPathEnvVar overrides the .env file location.
	DotenvPathEnvVar = "DOTENV_PATH"

	defaultDotenvPath = ".env"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8470,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:      "/data/affinity.duckdb",
			MaxMemory: "1GB",
		},
		WAL: WALConfig{
			Enabled:         true,
			Path:            "/data/wal",
			SyncWrites:      true,
			EntryTTL:        7 * 24 * time.Hour,
			RetryInterval:   30 * time.Second,
			MaxRetries:      100,
			RetryBatchSize:  500,
			CompactInterval: time.Hour,
			GCRatio:         0.5,
		},
		NATS: NATSConfig{
			Enabled:          true,
			URL:              "nats://127.0.0.1:4222",
			EmbeddedServer:   true,
			Host:             "127.0.0.1",
			Port:             4222,
			StoreDir:         "/data/nats/jetstream",
			MaxMemory:        256 << 20,
			MaxStore:         4 << 30,
			Topic:            "affinity-interactions",
			QueueGroup:       "affinity",
			DurableName:      "affinity-ingest",
			SubscribersCount: 2,
			AckWait:          30 * time.Second,
			CloseTimeout:     30 * time.Second,
			IngestRate:       0,
			IngestBurst:      100,
			DedupTTL:         10 * time.Minute,
			DedupCapacity:    100000,
		},
		Recommend: RecommendConfig{
			ModelDir:                "/data/models",
			TrainOnStartup:          true,
			TrainInterval:           time.Hour,
			TrainTimeout:            10 * time.Minute,
			MinInteractions:         1,
			RetainVersions:          3,
			CollaborativeWeight:     0.6,
			ContentWeight:           0.4,
			DefaultN:                10,
			MaxN:                    100,
			MaxCandidates:           1000,
			CacheEnabled:            true,
			CacheTTL:                time.Hour,
			CacheMaxEntries:         10000,
			BreakerFailureThreshold: 3,
			BreakerTimeout:          30 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			JWTIssuer:       "affinity",
			TokenTTL:        24 * time.Hour,
			DefaultRole:     "viewer",
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		API: APIConfig{
			RequestTimeout: 10 * time.Second,
			MaxBodyBytes:   1 << 20,
			MaxBatchSize:   1000,
		},
	}
}

// LoadWithKoanf builds the configuration from four layers, later layers
// winning: struct defaults, YAML file, .env file, environment.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotenv copies a .env file into the process environment. Variables that
// are already set keep their value. A missing default .env is not an error;
// a missing file named by DOTENV_PATH is.
func loadDotenv() error {
	path := os.Getenv(DotenvPathEnvVar)
	explicit := path != ""
	if !explicit {
		path = defaultDotenvPath
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load dotenv file %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"duckdb_path":       "database.path",
	"duckdb_threads":    "database.threads",
	"duckdb_max_memory": "database.max_memory",

	"wal_enabled":          "wal.enabled",
	"wal_path":             "wal.path",
	"wal_sync_writes":      "wal.sync_writes",
	"wal_entry_ttl":        "wal.entry_ttl",
	"wal_retry_interval":   "wal.retry_interval",
	"wal_max_retries":      "wal.max_retries",
	"wal_retry_batch_size": "wal.retry_batch_size",
	"wal_compact_interval": "wal.compact_interval",
	"wal_gc_ratio":         "wal.gc_ratio",

	"nats_enabled":         "nats.enabled",
	"nats_url":             "nats.url",
	"nats_embedded":        "nats.embedded",
	"nats_host":            "nats.host",
	"nats_port":            "nats.port",
	"nats_store_dir":       "nats.store_dir",
	"nats_max_memory":      "nats.max_memory",
	"nats_max_store":       "nats.max_store",
	"nats_topic":           "nats.topic",
	"nats_queue_group":     "nats.queue_group",
	"nats_durable_name":    "nats.durable_name",
	"nats_subscribers":     "nats.subscribers_count",
	"nats_ack_wait":        "nats.ack_wait",
	"nats_close_timeout":   "nats.close_timeout",
	"nats_ingest_rate":     "nats.ingest_rate",
	"nats_ingest_burst":    "nats.ingest_burst",
	"nats_dedup_ttl":       "nats.dedup_ttl",
	"nats_dedup_capacity":  "nats.dedup_capacity",

	"ml_model_path":                       "recommend.model_dir",
	"ml_cache_ttl":                        "recommend.cache_ttl",
	"recommend_train_on_startup":          "recommend.train_on_startup",
	"recommend_train_interval":            "recommend.train_interval",
	"recommend_train_timeout":             "recommend.train_timeout",
	"recommend_min_interactions":          "recommend.min_interactions",
	"recommend_retain_versions":           "recommend.retain_versions",
	"recommend_collaborative_weight":      "recommend.collaborative_weight",
	"recommend_content_weight":            "recommend.content_weight",
	"recommend_default_n":                 "recommend.default_n",
	"recommend_max_n":                     "recommend.max_n",
	"recommend_max_candidates":            "recommend.max_candidates",
	"recommend_cache_enabled":             "recommend.cache_enabled",
	"recommend_cache_max_entries":         "recommend.cache_max_entries",
	"recommend_breaker_failure_threshold": "recommend.breaker_failure_threshold",
	"recommend_breaker_timeout":           "recommend.breaker_timeout",

	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"token_ttl":           "security.token_ttl",
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"default_role":        "security.default_role",
	"authz_model_path":    "security.authz_model_path",
	"authz_policy_path":   "security.authz_policy_path",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"api_request_timeout": "api.request_timeout",
	"api_max_body_bytes":  "api.max_body_bytes",
	"api_max_batch_size":  "api.max_batch_size",
}

// envTransformFunc maps an environment variable to its config path, or ""
// to skip it.
//
//   - HTTP_PORT -> server.port
//   - ML_MODEL_PATH -> recommend.model_dir
//   - NATS_SUBSCRIBERS -> nats.subscribers_count
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
