// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package logging provides the zerolog-based structured logging used across
// Affinity.
//
// One global logger is configured at startup with Init and read everywhere
// else through the level helpers or through Ctx, which decorates the logger
// with the request and correlation ids carried by a context.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int64("version", v).Msg("Model installed")
//	logging.Ctx(ctx).Warn().Str("actor_id", id).Msg("Unknown actor")
//
// # Adapters
//
// Two libraries in the stack expect their own logger interfaces:
//
//   - suture (via sutureslog) takes a *slog.Logger; use NewSlogLogger.
//   - watermill takes a watermill.LoggerAdapter; use NewWatermillLogger.
//
// Both forward into the same zerolog output so every line in the process
// shares one format and one level.
//
// # Audit
//
// AuditLogger records authentication and authorization decisions with
// tokens and credentials redacted.
//
// # Configuration
//
// LOG_LEVEL, LOG_FORMAT and LOG_CALLER are read by the config package and
// passed to Init. FUZZ_MODE=1 silences everything below fatal before Init runs.
package logging
