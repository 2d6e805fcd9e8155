// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package authz enforces role-based access control with Casbin.

The model (model.conf) and policy (policy.csv) are embedded; either can be
replaced on disk through security.authz_model_path and
security.authz_policy_path. The shipped policy:

	viewer  recommendations:read, teams:match
	editor  viewer + catalog:write, interactions:write
	admin   everything

Decisions are cached in a cache.LRU keyed by subject, object and action.
Denials are written to the audit log and counted in
affinity_authz_decisions_total.
*/
package authz
