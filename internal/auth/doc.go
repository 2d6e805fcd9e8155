// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package auth authenticates API callers.

Three modes are selected by security.auth_mode:

  - jwt: HS256 bearer tokens carrying username and role claims. Tokens are
    minted by `affinityctl token` with the shared secret.
  - basic: HTTP Basic against the configured admin account, verified with
    bcrypt.
  - none: development only. Every request runs as an anonymous admin.

Middleware.Authenticate stores an *AuthSubject in the request context;
package authz reads it with GetAuthSubject to enforce the RBAC policy.
Outcomes are written to the audit log through logging.AuditLogger, with
tokens and usernames sanitized.
*/
package auth
