// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package wal

import (
	"time"

	"github.com/tomtom215/affinity/internal/config"
)

// Config holds WAL settings.
type Config struct {
	// Path is the directory where BadgerDB stores its files.
	Path string

	// SyncWrites forces fsync after every write.
	SyncWrites bool

	// EntryTTL bounds how long an unconfirmed entry is kept. Badger expires
	// the key natively and the compactor removes stragglers.
	EntryTTL time.Duration

	// RetryInterval is the time between retry loop passes.
	RetryInterval time.Duration

	// RetryBackoff is the base of the per-entry exponential backoff. A fresh
	// entry is not retried until it is at least this old, which leaves room
	// for the write path to confirm it.
	RetryBackoff time.Duration

	// MaxRetries is the number of failed publishes after which an entry is dropped.
	MaxRetries int

	// RetryBatchSize caps the entries handled in one retry pass.
	RetryBatchSize int

	// CompactInterval is the time between compaction runs.
	CompactInterval time.Duration

	// GCRatio is the value log garbage collection discard ratio.
	GCRatio float64

	// CloseTimeout bounds Close.
	CloseTimeout time.Duration

	// Badger tuning.
	MemTableSize     int64
	ValueLogFileSize int64
	NumCompactors    int
	Compression      bool
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:             "/data/wal",
		SyncWrites:       true,
		EntryTTL:         168 * time.Hour,
		RetryInterval:    30 * time.Second,
		RetryBackoff:     5 * time.Second,
		MaxRetries:       100,
		RetryBatchSize:   500,
		CompactInterval:  time.Hour,
		GCRatio:          0.5,
		CloseTimeout:     30 * time.Second,
		MemTableSize:     16 * 1024 * 1024,
		ValueLogFileSize: 64 * 1024 * 1024,
		NumCompactors:    2,
		Compression:      true,
	}
}

// FromSettings overlays the service configuration on DefaultConfig.
func FromSettings(s *config.WALConfig) Config {
	cfg := DefaultConfig()
	cfg.Path = s.Path
	cfg.SyncWrites = s.SyncWrites
	if s.EntryTTL > 0 {
		cfg.EntryTTL = s.EntryTTL
	}
	if s.RetryInterval > 0 {
		cfg.RetryInterval = s.RetryInterval
	}
	if s.MaxRetries > 0 {
		cfg.MaxRetries = s.MaxRetries
	}
	if s.RetryBatchSize > 0 {
		cfg.RetryBatchSize = s.RetryBatchSize
	}
	if s.CompactInterval > 0 {
		cfg.CompactInterval = s.CompactInterval
	}
	if s.GCRatio > 0 {
		cfg.GCRatio = s.GCRatio
	}
	return cfg
}

// Validate checks the settings Badger and the background loops depend on.
func (c *Config) Validate() error {
	switch {
	case c.Path == "":
		return &ConfigError{Field: "Path", Message: "WAL path is required"}
	case c.RetryInterval <= 0:
		return &ConfigError{Field: "RetryInterval", Message: "must be positive"}
	case c.RetryBackoff < 0:
		return &ConfigError{Field: "RetryBackoff", Message: "must not be negative"}
	case c.MaxRetries < 1:
		return &ConfigError{Field: "MaxRetries", Message: "must be at least 1"}
	case c.RetryBatchSize < 1:
		return &ConfigError{Field: "RetryBatchSize", Message: "must be at least 1"}
	case c.CompactInterval <= 0:
		return &ConfigError{Field: "CompactInterval", Message: "must be positive"}
	case c.EntryTTL <= 0:
		return &ConfigError{Field: "EntryTTL", Message: "must be positive"}
	case c.GCRatio <= 0 || c.GCRatio >= 1:
		return &ConfigError{Field: "GCRatio", Message: "must be between 0 and 1 exclusive"}
	case c.MemTableSize < 1024*1024:
		return &ConfigError{Field: "MemTableSize", Message: "must be at least 1MB"}
	case c.ValueLogFileSize < 1024*1024:
		return &ConfigError{Field: "ValueLogFileSize", Message: "must be at least 1MB"}
	case c.NumCompactors < 2:
		return &ConfigError{Field: "NumCompactors", Message: "must be at least 2 (BadgerDB requirement)"}
	}
	return nil
}

// ConfigError reports one invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "WAL config error: " + e.Field + ": " + e.Message
}
