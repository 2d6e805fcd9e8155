// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package auth

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/logging"
)

// ErrorWriter renders an authentication or authorization failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// PlainErrorWriter writes message with http.Error.
func PlainErrorWriter(w http.ResponseWriter, _ *http.Request, status int, _ string, message string) {
	http.Error(w, message, status)
}

// Middleware authenticates requests and stores the AuthSubject in the
// request context.
type Middleware struct {
	mode          AuthMode
	authenticator Authenticator
	challenge     string
	audit         *logging.AuditLogger
	writeError    ErrorWriter
}

// NewMiddleware builds the authenticator selected by cfg.AuthMode.
func NewMiddleware(cfg *config.SecurityConfig, logger zerolog.Logger) (*Middleware, error) {
	mode, err := ParseAuthMode(cfg.AuthMode)
	if err != nil {
		return nil, err
	}

	m := &Middleware{
		mode:       mode,
		audit:      logging.NewAuditLogger(logger),
		writeError: PlainErrorWriter,
	}

	switch mode {
	case AuthModeJWT:
		manager, err := NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("configure JWT auth: %w", err)
		}
		m.authenticator = NewJWTAuthenticator(manager)
	case AuthModeBasic:
		manager, err := NewBasicAuthManager(cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("configure basic auth: %w", err)
		}
		m.authenticator = NewBasicAuthenticator(manager, cfg.DefaultRole, cfg.AdminUsername)
		m.challenge = manager.WWWAuthenticate()
	}
	return m, nil
}

// NewMiddlewareWithAuthenticator wraps an existing authenticator.
func NewMiddlewareWithAuthenticator(mode AuthMode, a Authenticator, logger zerolog.Logger) *Middleware {
	return &Middleware{
		mode:          mode,
		authenticator: a,
		audit:         logging.NewAuditLogger(logger),
		writeError:    PlainErrorWriter,
	}
}

// SetErrorWriter replaces the failure renderer.
func (m *Middleware) SetErrorWriter(w ErrorWriter) {
	if w != nil {
		m.writeError = w
	}
}

// Mode returns the configured mode.
func (m *Middleware) Mode() AuthMode {
	return m.mode
}

// Authenticate rejects unauthenticated requests with 401. With AuthModeNone
// the anonymous subject is attached instead.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == AuthModeNone || m.authenticator == nil {
			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), anonymousSubject())))
			return
		}

		subject, err := m.authenticator.Authenticate(r.Context(), r)
		if err != nil {
			m.handleAuthError(w, r, err)
			return
		}
		if subject.AuthMethod == AuthModeBasic {
			m.audit.LoginSuccess(subject.Username, m.authenticator.Name(), clientIP(r))
		}

		next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
	})
}

// handleAuthError maps authenticator errors to 401 responses.
func (m *Middleware) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	username, _, _ := r.BasicAuth()
	m.audit.LoginFailure(username, m.authenticator.Name(), clientIP(r), err.Error())

	if m.challenge != "" {
		w.Header().Set("WWW-Authenticate", m.challenge)
	}

	switch {
	case errors.Is(err, ErrNoCredentials):
		m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, ErrExpiredCredentials):
		m.writeError(w, r, http.StatusUnauthorized, "TOKEN_EXPIRED", "credentials expired")
	case errors.Is(err, ErrInvalidCredentials):
		m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
	default:
		m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication failed")
	}
}

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware
// rewrites RemoteAddr from proxy headers upstream of this.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
