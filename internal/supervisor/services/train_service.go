// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/recommend"
)

// Trainer is the part of recommend.Engine the train service drives.
type Trainer interface {
	Train(ctx context.Context) error
	Status() recommend.TrainingStatus
}

// TrainServiceConfig holds the training schedule.
type TrainServiceConfig struct {
	// TrainOnStartup runs one training cycle when the service starts.
	TrainOnStartup bool

	// TrainInterval is the retrain period. Zero disables periodic training.
	TrainInterval time.Duration

	// TrainTimeout bounds a single run. Default: 10m
	TrainTimeout time.Duration
}

// TrainServiceConfigFrom maps the recommend section of the server config.
func TrainServiceConfigFrom(cfg *config.RecommendConfig) TrainServiceConfig {
	return TrainServiceConfig{
		TrainOnStartup: cfg.TrainOnStartup,
		TrainInterval:  cfg.TrainInterval,
		TrainTimeout:   cfg.TrainTimeout,
	}
}

// TrainService retrains the recommendation model on a schedule under the
// messaging layer. Training failures are logged and never returned, so a
// bad dataset does not put the layer into backoff.
type TrainService struct {
	engine Trainer
	config TrainServiceConfig
	logger zerolog.Logger
	name   string
}

// NewTrainService creates a train service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainService(engine Trainer, cfg TrainServiceConfig, logger zerolog.Logger) *TrainService {
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 10 * time.Minute
	}
	return &TrainService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "train").Logger(),
		name:   "train-service",
	}
}

// Serve implements suture.Service.
func (s *TrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("train service starting")

	if s.config.TrainOnStartup {
		s.train(ctx, "startup")
	}

	if s.config.TrainInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("train service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.train(ctx, "scheduled")
		}
	}
}

// train runs one cycle bounded by TrainTimeout.
func (s *TrainService) train(ctx context.Context, trigger string) {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	err := s.engine.Train(trainCtx)
	switch {
	case err == nil:
		st := s.engine.Status()
		s.logger.Info().
			Str("trigger", trigger).
			Int64("model_version", st.ModelVersion).
			Dur("duration", st.LastDuration).
			Msg("training cycle complete")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Debug().Str("trigger", trigger).Msg("training already running, cycle skipped")
	case errors.Is(err, recommend.ErrInsufficientData):
		s.logger.Info().Str("trigger", trigger).Err(err).Msg("not enough interactions to train yet")
	case ctx.Err() != nil:
		// shutting down
	default:
		s.logger.Warn().Str("trigger", trigger).Err(err).Msg("training cycle failed")
	}
}

// String names the service in supervisor events.
func (s *TrainService) String() string {
	return s.name
}
