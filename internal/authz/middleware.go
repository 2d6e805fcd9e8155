// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package authz

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/auth"
	"github.com/tomtom215/affinity/internal/logging"
)

// Middleware enforces the RBAC policy on routes.
type Middleware struct {
	enforcer   *Enforcer
	audit      *logging.AuditLogger
	logger     zerolog.Logger
	writeError auth.ErrorWriter
}

// NewMiddleware creates an authorization middleware.
func NewMiddleware(enforcer *Enforcer, logger zerolog.Logger) *Middleware {
	return &Middleware{
		enforcer:   enforcer,
		audit:      logging.NewAuditLogger(logger),
		logger:     logger,
		writeError: auth.PlainErrorWriter,
	}
}

// SetErrorWriter replaces the failure renderer.
func (m *Middleware) SetErrorWriter(w auth.ErrorWriter) {
	if w != nil {
		m.writeError = w
	}
}

// Require returns middleware that admits only subjects allowed to perform
// action on object. It must run after auth.Middleware.Authenticate.
func (m *Middleware) Require(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.GetAuthSubject(r.Context())
			if subject == nil {
				m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "no authentication context")
				return
			}

			start := time.Now()
			allowed, err := m.enforcer.EnforceWithRoles(subject.ID, subject.Roles, object, action)
			if err != nil {
				m.logger.Error().Err(err).Str("object", object).Str("action", action).Msg("Authorization error")
				m.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "authorization failed")
				return
			}
			RecordAuthzDecision(object, action, allowed, time.Since(start))

			if !allowed {
				m.audit.AccessDenied(subject.Username, strings.Join(subject.Roles, ","), object, action, remoteHost(r))
				m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
