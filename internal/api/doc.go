// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package api serves the Affinity HTTP API with chi.

Routes:

	GET  /api/v1/health/live                       public
	GET  /api/v1/health/ready                      public
	GET  /metrics                                  public
	GET  /api/v1/recommendations/{actorID}         recommendations:read
	GET  /api/v1/users/{actorID}/similar           recommendations:read
	GET  /api/v1/content/{actorID}/{itemID}        recommendations:read
	POST /api/v1/teams/match                       teams:match
	PUT  /api/v1/profiles/{actorID}                catalog:write
	PUT  /api/v1/items/{itemID}                    catalog:write
	POST /api/v1/interactions                      interactions:write
	POST /api/v1/interactions/batch                interactions:write
	POST /api/v1/admin/train                       admin:manage
	GET  /api/v1/admin/status                      admin:manage

Every response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}
	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}, "meta": {...}}

Request bodies are decoded with goccy/go-json, limited to api.max_body_bytes
and validated with go-playground/validator through package validation.
*/
package api
