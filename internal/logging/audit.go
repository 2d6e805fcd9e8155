// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AuditLogger records authentication and authorization outcomes. Secrets
// never reach the output: tokens are reduced to a short prefix and
// passwords are never accepted as fields.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger returns an AuditLogger tagged component=auth.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// LoginSuccess records a successful credential check.
func (a *AuditLogger) LoginSuccess(username, method, ip string) {
	a.logger.Info().
		Str("event", "login_success").
		Str("username", SanitizeUsername(username)).
		Str("method", method).
		Str("ip", ip).
		Msg("")
}

// LoginFailure records a rejected credential check.
func (a *AuditLogger) LoginFailure(username, method, ip, reason string) {
	a.logger.Warn().
		Str("event", "login_failure").
		Str("username", SanitizeUsername(username)).
		Str("method", method).
		Str("ip", ip).
		Str("reason", truncate(reason, 200)).
		Msg("")
}

// TokenIssued records a newly signed token.
func (a *AuditLogger) TokenIssued(username, role, token string) {
	a.logger.Info().
		Str("event", "token_issued").
		Str("username", SanitizeUsername(username)).
		Str("role", role).
		Str("token", SanitizeToken(token)).
		Msg("")
}

// AccessDenied records a policy rejection.
func (a *AuditLogger) AccessDenied(username, role, resource, action, ip string) {
	a.logger.Warn().
		Str("event", "access_denied").
		Str("username", SanitizeUsername(username)).
		Str("role", role).
		Str("resource", resource).
		Str("action", action).
		Str("ip", ip).
		Msg("")
}

// SanitizeToken keeps the first 8 characters of a token.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "[REDACTED]"
	}
	return token[:8] + "..."
}

// SanitizeUsername strips control characters and caps the length at 64.
func SanitizeUsername(username string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, username)
	return truncate(cleaned, 64)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
