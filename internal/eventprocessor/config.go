// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/tomtom215/affinity/internal/config"
)

// ServerConfig holds embedded NATS server settings.
type ServerConfig struct {
	Host       string
	Port       int
	StoreDir   string
	MaxMemory  int64
	MaxStore   int64
	MaxPayload int32
}

// PublisherConfig holds publisher settings.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool
}

// SubscriberConfig holds subscriber settings.
type SubscriberConfig struct {
	URL              string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	MaxDeliver       int
	MaxAckPending    int
	AckWaitTimeout   time.Duration
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration
}

// CircuitBreakerConfig holds publish breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// ConsumerConfig holds ingest consumer settings.
type ConsumerConfig struct {
	Topic         string
	RateLimit     float64 // events per second, 0 = unlimited
	RateBurst     int
	DedupTTL      time.Duration
	DedupCapacity int
	InsertTimeout time.Duration
}

// DefaultServerConfig returns embedded server defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:       "127.0.0.1",
		Port:       4222,
		StoreDir:   "/data/nats/jetstream",
		MaxMemory:  256 * 1024 * 1024,
		MaxStore:   1024 * 1024 * 1024,
		MaxPayload: 8 * 1024 * 1024,
	}
}

// DefaultPublisherConfig returns publisher defaults.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:              url,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024,
		EnableTrackMsgID: true,
	}
}

// DefaultSubscriberConfig returns subscriber defaults.
func DefaultSubscriberConfig(url string) SubscriberConfig {
	return SubscriberConfig{
		URL:              url,
		DurableName:      "affinity-ingest",
		QueueGroup:       "affinity",
		SubscribersCount: 1,
		MaxDeliver:       5,
		MaxAckPending:    1000,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
	}
}

// DefaultCircuitBreakerConfig returns breaker defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// DefaultConsumerConfig returns consumer defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Topic:         "affinity-interactions",
		DedupTTL:      10 * time.Minute,
		DedupCapacity: 100_000,
		InsertTimeout: 10 * time.Second,
	}
}

// ServerConfigFrom overlays NATS settings onto the server defaults.
func ServerConfigFrom(n *config.NATSConfig) ServerConfig {
	cfg := DefaultServerConfig()
	if n.Host != "" {
		cfg.Host = n.Host
	}
	if n.Port > 0 {
		cfg.Port = n.Port
	}
	if n.StoreDir != "" {
		cfg.StoreDir = n.StoreDir
	}
	if n.MaxMemory > 0 {
		cfg.MaxMemory = n.MaxMemory
	}
	if n.MaxStore > 0 {
		cfg.MaxStore = n.MaxStore
	}
	return cfg
}

// SubscriberConfigFrom overlays NATS settings onto the subscriber defaults.
func SubscriberConfigFrom(n *config.NATSConfig) SubscriberConfig {
	cfg := DefaultSubscriberConfig(n.URL)
	if n.DurableName != "" {
		cfg.DurableName = n.DurableName
	}
	if n.QueueGroup != "" {
		cfg.QueueGroup = n.QueueGroup
	}
	if n.SubscribersCount > 0 {
		cfg.SubscribersCount = n.SubscribersCount
	}
	if n.AckWait > 0 {
		cfg.AckWaitTimeout = n.AckWait
	}
	if n.CloseTimeout > 0 {
		cfg.CloseTimeout = n.CloseTimeout
	}
	return cfg
}

// ConsumerConfigFrom overlays NATS settings onto the consumer defaults.
func ConsumerConfigFrom(n *config.NATSConfig) ConsumerConfig {
	cfg := DefaultConsumerConfig()
	if n.Topic != "" {
		cfg.Topic = n.Topic
	}
	cfg.RateLimit = n.IngestRate
	cfg.RateBurst = n.IngestBurst
	if n.DedupTTL > 0 {
		cfg.DedupTTL = n.DedupTTL
	}
	if n.DedupCapacity > 0 {
		cfg.DedupCapacity = n.DedupCapacity
	}
	return cfg
}

// Validate checks consumer settings.
func (c ConsumerConfig) Validate() error {
	switch {
	case c.Topic == "":
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate limit must be >= 0", ErrInvalidConfig)
	case c.RateLimit > 0 && c.RateBurst < 1:
		return fmt.Errorf("%w: rate burst must be >= 1 when rate limit is set", ErrInvalidConfig)
	case c.DedupCapacity < 1:
		return fmt.Errorf("%w: dedup capacity must be >= 1", ErrInvalidConfig)
	case c.InsertTimeout <= 0:
		return fmt.Errorf("%w: insert timeout must be > 0", ErrInvalidConfig)
	}
	return nil
}
