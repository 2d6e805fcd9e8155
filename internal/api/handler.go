// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/database"
	"github.com/tomtom215/affinity/internal/eventprocessor"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/wal"
)

// Recommender is the engine surface used by the handlers.
type Recommender interface {
	Recommend(ctx context.Context, actor string, candidates []string, n int) ([]string, error)
	SimilarUsers(ctx context.Context, actor string, n int) ([]recommend.ScoredActor, error)
	ContentSimilarity(actor, item string) float64
	UpsertProfile(p recommend.Profile)
	UpsertItem(f recommend.ItemFeature)
	Train(ctx context.Context) error
	Status() recommend.TrainingStatus
	BreakerState() string
}

// CatalogStore persists profiles and items.
type CatalogStore interface {
	UpsertProfile(ctx context.Context, p recommend.Profile) error
	UpsertItem(ctx context.Context, f recommend.ItemFeature) error
	Stats(ctx context.Context) (database.Stats, error)
	Ping(ctx context.Context) error
}

// BreakerReporter exposes a circuit breaker state name.
type BreakerReporter interface {
	BreakerState() string
}

// Deps are the collaborators of a Handler. WAL and Publisher are optional.
type Deps struct {
	Engine    Recommender
	Catalog   CatalogStore
	Ingestor  eventprocessor.Ingestor
	WAL       *wal.BadgerWAL
	Publisher BreakerReporter
	Config    *config.Config
	Logger    zerolog.Logger
}

// Handler serves the HTTP API.
type Handler struct {
	engine    Recommender
	catalog   CatalogStore
	ingestor  eventprocessor.Ingestor
	wal       *wal.BadgerWAL
	publisher BreakerReporter
	config    *config.Config
	logger    zerolog.Logger
	startTime time.Time

	// trainCtx bounds background training started by POST /admin/train.
	trainCtx context.Context
}

// NewHandler validates deps and creates a Handler.
//
//nolint:gocritic // Deps is passed once at startup
func NewHandler(deps Deps) (*Handler, error) {
	switch {
	case deps.Engine == nil:
		return nil, errors.New("api: engine is required")
	case deps.Catalog == nil:
		return nil, errors.New("api: catalog store is required")
	case deps.Ingestor == nil:
		return nil, errors.New("api: ingestor is required")
	case deps.Config == nil:
		return nil, errors.New("api: config is required")
	}
	return &Handler{
		engine:    deps.Engine,
		catalog:   deps.Catalog,
		ingestor:  deps.Ingestor,
		wal:       deps.WAL,
		publisher: deps.Publisher,
		config:    deps.Config,
		logger:    deps.Logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
		trainCtx:  context.Background(),
	}, nil
}

// SetTrainContext sets the parent context of background training runs so
// they stop on shutdown.
func (h *Handler) SetTrainContext(ctx context.Context) {
	if ctx != nil {
		h.trainCtx = ctx
	}
}

// withTimeout bounds a request context by api.request_timeout.
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.config.API.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.config.API.RequestTimeout)
}
