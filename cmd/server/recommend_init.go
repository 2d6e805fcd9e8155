// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/storage"
	"github.com/tomtom215/affinity/internal/supervisor/services"
)

// RecommendComponents holds all recommendation-related components.
type RecommendComponents struct {
	Engine  *recommend.Engine
	Service *services.TrainService
}

// initRecommend creates the engine, attaches the catalog and snapshot store
// and restores the newest snapshot so the first requests are served from
// the last trained model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initRecommend(ctx context.Context, cfg *config.Config, data recommend.DataProvider, logger zerolog.Logger) (*RecommendComponents, error) {
	logger.Info().
		Dur("train_interval", cfg.Recommend.TrainInterval).
		Bool("train_on_startup", cfg.Recommend.TrainOnStartup).
		Int("min_interactions", cfg.Recommend.MinInteractions).
		Str("model_dir", cfg.Recommend.ModelDir).
		Msg("initializing recommendation engine")

	engine, err := recommend.NewEngine(buildEngineConfig(&cfg.Recommend), logger)
	if err != nil {
		return nil, err
	}
	engine.SetDataProvider(data)

	store, err := storage.NewStore(cfg.Recommend.ModelDir)
	if err != nil {
		return nil, err
	}
	engine.SetStore(store)

	switch err := engine.Restore(ctx); {
	case err == nil:
	case errors.Is(err, storage.ErrModelNotFound):
		logger.Info().Msg("no model snapshot found, serving empty model until first training")
	default:
		// A corrupt snapshot must not keep the server down; training replaces it.
		logger.Warn().Err(err).Msg("failed to restore model snapshot")
	}

	service := services.NewTrainService(engine, services.TrainServiceConfigFrom(&cfg.Recommend), logger)
	return &RecommendComponents{Engine: engine, Service: service}, nil
}

// buildEngineConfig maps the recommend settings onto the engine defaults.
func buildEngineConfig(rc *config.RecommendConfig) *recommend.Config {
	ec := recommend.DefaultConfig()

	ec.Hybrid.CollaborativeWeight = rc.CollaborativeWeight
	ec.Hybrid.ContentWeight = rc.ContentWeight

	ec.Training.MinInteractions = rc.MinInteractions
	if rc.TrainTimeout > 0 {
		ec.Training.Timeout = rc.TrainTimeout
	}
	if rc.RetainVersions > 0 {
		ec.Training.RetainVersions = rc.RetainVersions
	}

	if rc.DefaultN > 0 {
		ec.Limits.DefaultN = rc.DefaultN
	}
	if rc.MaxN > 0 {
		ec.Limits.MaxN = rc.MaxN
	}
	if rc.MaxCandidates > 0 {
		ec.Limits.MaxCandidates = rc.MaxCandidates
	}

	ec.Cache.Enabled = rc.CacheEnabled
	if rc.CacheTTL > 0 {
		ec.Cache.TTL = rc.CacheTTL
	}
	if rc.CacheMaxEntries > 0 {
		ec.Cache.MaxEntries = rc.CacheMaxEntries
	}

	if rc.BreakerFailureThreshold > 0 {
		ec.Breaker.FailureThreshold = rc.BreakerFailureThreshold
	}
	if rc.BreakerTimeout > 0 {
		ec.Breaker.Timeout = rc.BreakerTimeout
	}
	return ec
}
