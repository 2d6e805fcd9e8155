// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// AuthMode represents the authentication strategy.
type AuthMode string

const (
	// AuthModeNone disables authentication. Every request runs as the
	// anonymous admin subject.
	AuthModeNone AuthMode = "none"

	// AuthModeBasic uses HTTP Basic Authentication against the admin account.
	AuthModeBasic AuthMode = "basic"

	// AuthModeJWT uses HS256 bearer tokens.
	AuthModeJWT AuthMode = "jwt"
)

// Role names known to the authorization policy.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// ParseAuthMode converts a string to AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "none", "":
		return AuthModeNone, nil
	case "basic":
		return AuthModeBasic, nil
	case "jwt":
		return AuthModeJWT, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

// String returns the string representation of AuthMode.
func (m AuthMode) String() string {
	return string(m)
}

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Authenticator extracts and validates credentials from a request.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error)
	Name() string
}

// AuthSubject is the authenticated caller, normalized across auth methods.
type AuthSubject struct {
	// ID is the token subject or the basic auth username.
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Roles      []string `json:"roles,omitempty"`
	Issuer     string   `json:"issuer,omitempty"`
	AuthMethod AuthMode `json:"auth_method"`
	IssuedAt   int64    `json:"issued_at,omitempty"`
	ExpiresAt  int64    `json:"expires_at,omitempty"`
}

// HasRole checks if the subject has a specific role.
func (s *AuthSubject) HasRole(role string) bool {
	if role == "" {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsExpired checks if the authentication has expired.
func (s *AuthSubject) IsExpired() bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() > s.ExpiresAt
}

// AuthSubjectFromClaims creates an AuthSubject from validated JWT claims.
func AuthSubjectFromClaims(claims *Claims) *AuthSubject {
	if claims == nil {
		return nil
	}

	id := claims.Subject
	if id == "" {
		id = claims.Username
	}
	subject := &AuthSubject{
		ID:         id,
		Username:   claims.Username,
		Issuer:     claims.Issuer,
		AuthMethod: AuthModeJWT,
	}
	if claims.Role != "" {
		subject.Roles = []string{claims.Role}
	}
	if claims.ExpiresAt != nil {
		subject.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		subject.IssuedAt = claims.IssuedAt.Unix()
	}
	return subject
}

// anonymousSubject is attached to requests when authentication is disabled.
func anonymousSubject() *AuthSubject {
	return &AuthSubject{
		ID:         "anonymous",
		Username:   "anonymous",
		Roles:      []string{RoleAdmin},
		Issuer:     "local",
		AuthMethod: AuthModeNone,
	}
}

type contextKey string

// AuthSubjectContextKey is the request context key for *AuthSubject.
const AuthSubjectContextKey contextKey = "auth_subject"

// ContextWithSubject returns ctx carrying subject.
func ContextWithSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, AuthSubjectContextKey, subject)
}

// GetAuthSubject retrieves the AuthSubject from the request context.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	subject, ok := ctx.Value(AuthSubjectContextKey).(*AuthSubject)
	if !ok {
		return nil
	}
	return subject
}
