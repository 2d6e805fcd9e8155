// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/tomtom215/affinity/internal/logging"
)

const (
	minJWTSecretLength     = 32
	minAdminPasswordLength = 12
)

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateDatabase,
		c.validateWAL,
		c.validateNATS,
		c.validateRecommend,
		c.validateSecurity,
		c.validateAPI,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return errors.New("server read and write timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a recognised level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return errors.New("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateWAL() error {
	if !c.WAL.Enabled {
		return nil
	}
	if c.WAL.Path == "" {
		return errors.New("WAL_PATH is required when the WAL is enabled")
	}
	if c.WAL.RetryInterval <= 0 || c.WAL.CompactInterval <= 0 {
		return errors.New("WAL retry and compact intervals must be positive")
	}
	if c.WAL.MaxRetries < 1 {
		return fmt.Errorf("WAL_MAX_RETRIES must be positive, got %d", c.WAL.MaxRetries)
	}
	if c.WAL.RetryBatchSize < 1 {
		return fmt.Errorf("WAL_RETRY_BATCH_SIZE must be positive, got %d", c.WAL.RetryBatchSize)
	}
	if c.WAL.GCRatio <= 0 || c.WAL.GCRatio >= 1 {
		return fmt.Errorf("WAL_GC_RATIO must be in (0, 1), got %v", c.WAL.GCRatio)
	}
	return nil
}

// WALActive reports whether ingested events go through the WAL. The WAL only
// buffers NATS publishes, so it is inactive when NATS is disabled.
func (c *Config) WALActive() bool {
	return c.WAL.Enabled && c.NATS.Enabled
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL: %w", err)
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.StoreDir == "" {
			return errors.New("NATS_STORE_DIR is required for the embedded server")
		}
		if c.NATS.Port < 1 || c.NATS.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between 1 and 65535, got %d", c.NATS.Port)
		}
	}
	if c.NATS.Topic == "" {
		return errors.New("NATS_TOPIC is required")
	}
	if c.NATS.SubscribersCount < 1 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be positive, got %d", c.NATS.SubscribersCount)
	}
	if c.NATS.IngestRate < 0 {
		return fmt.Errorf("NATS_INGEST_RATE must be non-negative, got %v", c.NATS.IngestRate)
	}
	if c.NATS.IngestRate > 0 && c.NATS.IngestBurst < 1 {
		return fmt.Errorf("NATS_INGEST_BURST must be positive when a rate is set, got %d", c.NATS.IngestBurst)
	}
	if c.NATS.DedupTTL <= 0 || c.NATS.DedupCapacity < 1 {
		return errors.New("NATS dedup ttl and capacity must be positive")
	}
	return nil
}

func validateNATSURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.ModelDir == "" {
		return errors.New("ML_MODEL_PATH is required")
	}
	if r.TrainInterval < 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_INTERVAL must be non-negative, got %v", r.TrainInterval)
	}
	if r.TrainTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_TIMEOUT must be positive, got %v", r.TrainTimeout)
	}
	if r.MinInteractions < 0 {
		return fmt.Errorf("RECOMMEND_MIN_INTERACTIONS must be non-negative, got %d", r.MinInteractions)
	}
	if r.RetainVersions < 1 {
		return fmt.Errorf("RECOMMEND_RETAIN_VERSIONS must be positive, got %d", r.RetainVersions)
	}
	if r.CollaborativeWeight < 0 || r.ContentWeight < 0 {
		return errors.New("recommend hybrid weights must be non-negative")
	}
	if r.CollaborativeWeight == 0 && r.ContentWeight == 0 {
		return errors.New("recommend hybrid weights must not both be zero")
	}
	if r.DefaultN < 1 || r.MaxN < r.DefaultN {
		return fmt.Errorf("recommend limits need 1 <= default_n <= max_n, got %d and %d", r.DefaultN, r.MaxN)
	}
	if r.MaxCandidates < 1 {
		return fmt.Errorf("RECOMMEND_MAX_CANDIDATES must be positive, got %d", r.MaxCandidates)
	}
	if r.CacheEnabled && r.CacheTTL <= 0 {
		return fmt.Errorf("ML_CACHE_TTL must be positive when caching is enabled, got %v", r.CacheTTL)
	}
	if r.BreakerFailureThreshold == 0 {
		return errors.New("RECOMMEND_BREAKER_FAILURE_THRESHOLD must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	switch s.AuthMode {
	case "none":
		if c.Server.IsProduction() {
			return errors.New("AUTH_MODE=none is not allowed in production")
		}
	case "jwt":
		if len(s.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
		}
		if s.TokenTTL <= 0 {
			return fmt.Errorf("TOKEN_TTL must be positive, got %v", s.TokenTTL)
		}
	case "basic":
		if s.AdminUsername == "" {
			return errors.New("ADMIN_USERNAME is required for basic auth")
		}
		if err := validateAdminPassword(s.AdminPassword, s.AdminUsername); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD: %w", err)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be none, jwt or basic, got %q", s.AuthMode)
	}

	switch s.DefaultRole {
	case "viewer", "editor", "admin":
	default:
		return fmt.Errorf("DEFAULT_ROLE must be viewer, editor or admin, got %q", s.DefaultRole)
	}

	if !s.RateLimitDisabled {
		if s.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", s.RateLimitReqs)
		}
		if s.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", s.RateLimitWindow)
		}
	}

	if c.Server.IsProduction() && c.HasWildcardCORS() {
		return errors.New("CORS_ORIGINS must not contain * in production")
	}
	return nil
}

// validateAdminPassword enforces length and three of four character classes,
// and rejects passwords that contain the username.
func validateAdminPassword(password, username string) error {
	if len(password) < minAdminPasswordLength {
		return fmt.Errorf("must be at least %d characters", minAdminPasswordLength)
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	classes := 0
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			classes++
		}
	}
	if classes < 3 {
		return errors.New("must mix at least three of upper case, lower case, digits and symbols")
	}
	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		return errors.New("must not contain the username")
	}
	return nil
}

// HasWildcardCORS reports whether any allowed origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateAPI() error {
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("API_REQUEST_TIMEOUT must be positive, got %v", c.API.RequestTimeout)
	}
	if c.API.MaxBodyBytes < 1024 {
		return fmt.Errorf("API_MAX_BODY_BYTES must be at least 1024, got %d", c.API.MaxBodyBytes)
	}
	if c.API.MaxBatchSize < 1 {
		return fmt.Errorf("API_MAX_BATCH_SIZE must be positive, got %d", c.API.MaxBatchSize)
	}
	return nil
}
