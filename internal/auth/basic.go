// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// BasicAuthManager verifies HTTP Basic credentials for a single account.
// The password is hashed once at startup.
type BasicAuthManager struct {
	username     string
	passwordHash []byte
}

// NewBasicAuthManager hashes password with bcrypt.
func NewBasicAuthManager(username, password string) (*BasicAuthManager, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &BasicAuthManager{username: username, passwordHash: hash}, nil
}

// Verify reports whether the credentials match. Both the username and the
// password comparison always run.
func (m *BasicAuthManager) Verify(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	return usernameMatch && passwordMatch
}

// WWWAuthenticate returns the challenge sent with 401 responses.
func (m *BasicAuthManager) WWWAuthenticate() string {
	return `Basic realm="Affinity", charset="UTF-8"`
}

// BasicAuthenticator authenticates HTTP Basic requests. The configured admin
// user receives the admin role; any other accepted user gets DefaultRole.
type BasicAuthenticator struct {
	manager       *BasicAuthManager
	defaultRole   string
	adminUsername string
}

// NewBasicAuthenticator creates a Basic authenticator.
func NewBasicAuthenticator(manager *BasicAuthManager, defaultRole, adminUsername string) *BasicAuthenticator {
	if defaultRole == "" {
		defaultRole = RoleViewer
	}
	return &BasicAuthenticator{
		manager:       manager,
		defaultRole:   defaultRole,
		adminUsername: adminUsername,
	}
}

// Authenticate validates the Authorization header.
func (a *BasicAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrNoCredentials
	}
	if !a.manager.Verify(username, password) {
		return nil, ErrInvalidCredentials
	}

	role := a.defaultRole
	if a.adminUsername != "" && username == a.adminUsername {
		role = RoleAdmin
	}
	return &AuthSubject{
		ID:         username,
		Username:   username,
		Roles:      []string{role},
		Issuer:     "local",
		AuthMethod: AuthModeBasic,
	}, nil
}

// Name returns the authenticator name.
func (a *BasicAuthenticator) Name() string {
	return string(AuthModeBasic)
}
