// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"fmt"
	"time"
)

// HybridConfig holds the fusion weights for HybridScorer.
type HybridConfig struct {
	// CollaborativeWeight multiplies the binary collaborative component.
	// Default: 0.6.
	CollaborativeWeight float64 `json:"collaborative_weight"`

	// ContentWeight multiplies the content similarity component.
	// Default: 0.4.
	ContentWeight float64 `json:"content_weight"`
}

// DefaultHybridConfig returns the 0.6/0.4 collaborative/content split.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{
		CollaborativeWeight: 0.6,
		ContentWeight:       0.4,
	}
}

// Validate checks that weights are non-negative and not both zero.
func (c HybridConfig) Validate() error {
	if c.CollaborativeWeight < 0 {
		return fmt.Errorf("hybrid.collaborative_weight must be non-negative, got %f", c.CollaborativeWeight)
	}
	if c.ContentWeight < 0 {
		return fmt.Errorf("hybrid.content_weight must be non-negative, got %f", c.ContentWeight)
	}
	if c.CollaborativeWeight == 0 && c.ContentWeight == 0 {
		return fmt.Errorf("hybrid weights must not both be zero")
	}
	return nil
}

// Config contains all configuration for the hosted recommendation Engine.
type Config struct {
	// Hybrid contains the fusion weights.
	Hybrid HybridConfig `json:"hybrid"`

	// Training contains training parameters.
	Training TrainingConfig `json:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains result caching parameters.
	Cache CacheConfig `json:"cache"`

	// Breaker guards data loads during training.
	Breaker BreakerConfig `json:"breaker"`
}

// TrainingConfig contains training parameters.
type TrainingConfig struct {
	// MinInteractions is the minimum number of interactions required to train.
	// Training is skipped (ErrInsufficientData) below this threshold.
	// Default: 1.
	MinInteractions int `json:"min_interactions"`

	// Timeout bounds a single training run including data loading.
	// Default: 10m.
	Timeout time.Duration `json:"timeout"`

	// SnapshotOnTrain persists a snapshot after each successful run.
	// Default: true.
	SnapshotOnTrain bool `json:"snapshot_on_train"`

	// RetainVersions is the number of snapshots kept on disk.
	// Default: 3.
	RetainVersions int `json:"retain_versions"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultN is the result size when a caller does not ask for one.
	// Default: 10.
	DefaultN int `json:"default_n"`

	// MaxN caps any requested result size.
	// Default: 100.
	MaxN int `json:"max_n"`

	// MaxCandidates caps the explicit candidate set of one request.
	// Default: 1000.
	MaxCandidates int `json:"max_candidates"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether recommendation results are cached.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 1h.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached entries.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// BreakerConfig configures the circuit breaker around the DataProvider.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	// Default: 1.
	MaxRequests uint32 `json:"max_requests"`

	// Interval is the cyclic period for clearing counts while closed.
	// Default: 1m.
	Interval time.Duration `json:"interval"`

	// Timeout is how long the breaker stays open.
	// Default: 30s.
	Timeout time.Duration `json:"timeout"`

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	// Default: 3.
	FailureThreshold uint32 `json:"failure_threshold"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Hybrid: DefaultHybridConfig(),
		Training: TrainingConfig{
			MinInteractions: 1,
			Timeout:         10 * time.Minute,
			SnapshotOnTrain: true,
			RetainVersions:  3,
		},
		Limits: LimitsConfig{
			DefaultN:      10,
			MaxN:          100,
			MaxCandidates: 1000,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        time.Hour,
			MaxEntries: 10000,
		},
		Breaker: BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 3,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Hybrid.Validate(); err != nil {
		return err
	}

	if c.Training.MinInteractions < 0 {
		return fmt.Errorf("training.min_interactions must be non-negative, got %d", c.Training.MinInteractions)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Training.RetainVersions < 1 {
		return fmt.Errorf("training.retain_versions must be positive, got %d", c.Training.RetainVersions)
	}

	if c.Limits.DefaultN < 1 {
		return fmt.Errorf("limits.default_n must be positive, got %d", c.Limits.DefaultN)
	}
	if c.Limits.MaxN < c.Limits.DefaultN {
		return fmt.Errorf("limits.max_n must be >= limits.default_n, got %d < %d", c.Limits.MaxN, c.Limits.DefaultN)
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when caching is enabled, got %v", c.Cache.TTL)
	}

	if c.Breaker.FailureThreshold == 0 {
		return fmt.Errorf("breaker.failure_threshold must be positive")
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ClampN resolves a requested result size against the limits.
// Zero or negative requests get DefaultN.
func (c *Config) ClampN(n int) int {
	if n <= 0 {
		return c.Limits.DefaultN
	}
	if n > c.Limits.MaxN {
		return c.Limits.MaxN
	}
	return n
}
