// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/affinity/internal/auth"
)

const routerTestSecret = "router-test-secret-0123456789abcdef"

func jwtServer(t *testing.T) (*testServer, *auth.JWTManager) {
	t.Helper()
	cfg := testConfig()
	cfg.Security.AuthMode = "jwt"
	cfg.Security.JWTSecret = routerTestSecret
	cfg.Security.JWTIssuer = "affinity"
	cfg.Security.TokenTTL = time.Hour

	manager, err := auth.NewJWTManager(routerTestSecret, "affinity", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return newTestServer(t, cfg), manager
}

func bearer(t *testing.T, m *auth.JWTManager, user, role string) []string {
	t.Helper()
	token, err := m.GenerateToken(user, role)
	if err != nil {
		t.Fatal(err)
	}
	return []string{"Authorization", "Bearer " + token}
}

func TestRouter_RBAC(t *testing.T) {
	ts, m := jwtServer(t)
	viewer := bearer(t, m, "vera", auth.RoleViewer)
	editor := bearer(t, m, "ed", auth.RoleEditor)
	admin := bearer(t, m, "root", auth.RoleAdmin)

	profile := `{"skills":["go"],"interests":[]}`
	tests := []struct {
		name   string
		method string
		target string
		body   string
		header []string
		code   int
	}{
		{"anonymous read", http.MethodGet, "/api/v1/recommendations/alice", "", nil, http.StatusUnauthorized},
		{"viewer read", http.MethodGet, "/api/v1/recommendations/alice", "", viewer, http.StatusOK},
		{"viewer match", http.MethodPost, "/api/v1/teams/match", `{"candidates":[{"actor_id":"a","skills":[]}]}`, viewer, http.StatusOK},
		{"viewer write", http.MethodPut, "/api/v1/profiles/alice", profile, viewer, http.StatusForbidden},
		{"editor write", http.MethodPut, "/api/v1/profiles/alice", profile, editor, http.StatusOK},
		{"editor ingest", http.MethodPost, "/api/v1/interactions", `{"actor_id":"a","target_id":"b","kind":"view"}`, editor, http.StatusAccepted},
		{"editor admin", http.MethodGet, "/api/v1/admin/status", "", editor, http.StatusForbidden},
		{"admin status", http.MethodGet, "/api/v1/admin/status", "", admin, http.StatusOK},
		{"health is public", http.MethodGet, "/api/v1/health/live", "", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := ts.do(t, tt.method, tt.target, tt.body, tt.header...)
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
			if tt.code >= 400 && (resp.Error == nil || resp.Success) {
				t.Errorf("error response not enveloped: %s", rec.Body.String())
			}
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodGet, "/api/v1/recommendations/alice", "")

	rec, _ := ts.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "affinity_api_requests_total") {
		t.Error("affinity_api_requests_total not exported")
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimitDisabled = false
	cfg.Security.RateLimitReqs = 2
	cfg.Security.RateLimitWindow = time.Minute
	ts := newTestServer(t, cfg)

	var rec *httptest.ResponseRecorder
	var resp APIResponse
	for i := 0; i < 3; i++ {
		rec, resp = ts.do(t, http.MethodGet, "/api/v1/users/alice/similar", "")
	}
	if rec.Code != http.StatusTooManyRequests || resp.Error == nil || resp.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("third request = %d %+v", rec.Code, resp.Error)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)
	rec, _ := ts.do(t, http.MethodOptions, "/api/v1/recommendations/alice", "",
		"Origin", "https://app.example.com",
		"Access-Control-Request-Method", "GET")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Errorf("Access-Control-Allow-Origin missing, status %d", rec.Code)
	}
}
