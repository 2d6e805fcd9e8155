// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/api"
	"github.com/tomtom215/affinity/internal/auth"
	"github.com/tomtom215/affinity/internal/authz"
	"github.com/tomtom215/affinity/internal/config"
)

// initHTTP builds the authentication and authorization layers around the
// handler and returns the configured server.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initHTTP(cfg *config.Config, handler *api.Handler, logger zerolog.Logger) (*http.Server, error) {
	authn, err := auth.NewMiddleware(&cfg.Security, logger)
	if err != nil {
		return nil, err
	}

	enforcerCfg := authz.DefaultEnforcerConfig()
	enforcerCfg.ModelPath = cfg.Security.AuthzModelPath
	enforcerCfg.PolicyPath = cfg.Security.AuthzPolicyPath
	if cfg.Security.DefaultRole != "" {
		enforcerCfg.DefaultRole = cfg.Security.DefaultRole
	}
	enforcer, err := authz.NewEnforcer(enforcerCfg)
	if err != nil {
		return nil, err
	}

	router := api.NewRouter(
		handler,
		authn,
		authz.NewMiddleware(enforcer, logger),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)),
	)

	logger.Info().
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("rate_limit", !cfg.Security.RateLimitDisabled).
		Bool("custom_policy", cfg.Security.AuthzPolicyPath != "").
		Msg("HTTP router configured")

	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}, nil
}
