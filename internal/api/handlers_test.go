// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/auth"
	"github.com/tomtom215/affinity/internal/authz"
	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/database"
	"github.com/tomtom215/affinity/internal/eventprocessor"
	"github.com/tomtom215/affinity/internal/recommend"
)

// fakeEngine records calls and returns canned results.
type fakeEngine struct {
	mu         sync.Mutex
	lastActor  string
	lastCands  []string
	lastN      int
	profiles   []recommend.Profile
	items      []recommend.ItemFeature
	trainErr   error
	trainCalls int
	status     recommend.TrainingStatus
}

func (f *fakeEngine) Recommend(ctx context.Context, actor string, candidates []string, n int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastActor, f.lastCands, f.lastN = actor, candidates, n
	if len(candidates) > 3 {
		return nil, recommend.ErrTooManyCandidates
	}
	if n <= 0 {
		return []string{}, nil
	}
	return []string{"repo-1", "repo-2"}, nil
}

func (f *fakeEngine) SimilarUsers(ctx context.Context, actor string, n int) ([]recommend.ScoredActor, error) {
	return []recommend.ScoredActor{{ActorID: "bob", Similarity: 0.5}}, nil
}

func (f *fakeEngine) ContentSimilarity(actor, item string) float64 { return 0.25 }

func (f *fakeEngine) UpsertProfile(p recommend.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, p)
}

func (f *fakeEngine) UpsertItem(it recommend.ItemFeature) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, it)
}

func (f *fakeEngine) Train(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trainCalls++
	if f.trainErr == nil {
		f.status.Trained = true
		f.status.ModelVersion++
	}
	return f.trainErr
}

func (f *fakeEngine) Status() recommend.TrainingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeEngine) BreakerState() string { return "closed" }

type fakeCatalog struct {
	pingErr   error
	upsertErr error
	profiles  []recommend.Profile
	items     []recommend.ItemFeature
}

func (c *fakeCatalog) UpsertProfile(ctx context.Context, p recommend.Profile) error {
	if c.upsertErr != nil {
		return c.upsertErr
	}
	c.profiles = append(c.profiles, p)
	return nil
}

func (c *fakeCatalog) UpsertItem(ctx context.Context, f recommend.ItemFeature) error {
	if c.upsertErr != nil {
		return c.upsertErr
	}
	c.items = append(c.items, f)
	return nil
}

func (c *fakeCatalog) Stats(ctx context.Context) (database.Stats, error) {
	return database.Stats{Interactions: 7, Profiles: int64(len(c.profiles))}, nil
}

func (c *fakeCatalog) Ping(ctx context.Context) error { return c.pingErr }

type fakeIngestor struct {
	mu     sync.Mutex
	events []*eventprocessor.InteractionEvent
	err    error
}

func (i *fakeIngestor) Ingest(ctx context.Context, ev *eventprocessor.InteractionEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return i.err
	}
	i.events = append(i.events, ev)
	return nil
}

type testServer struct {
	engine   *fakeEngine
	catalog  *fakeCatalog
	ingestor *fakeIngestor
	handler  http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Recommend: config.RecommendConfig{DefaultN: 10, MaxN: 100, MaxCandidates: 3, TrainTimeout: time.Minute},
		Security:  config.SecurityConfig{AuthMode: "none", RateLimitDisabled: true, CORSOrigins: []string{"*"}},
		API:       config.APIConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 4096, MaxBatchSize: 2},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	ts := &testServer{engine: &fakeEngine{}, catalog: &fakeCatalog{}, ingestor: &fakeIngestor{}}
	h, err := NewHandler(Deps{
		Engine:   ts.engine,
		Catalog:  ts.catalog,
		Ingestor: ts.ingestor,
		Config:   cfg,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	authn, err := auth.NewMiddleware(&cfg.Security, zerolog.Nop())
	if err != nil {
		t.Fatalf("auth.NewMiddleware() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("authz.NewEnforcer() error = %v", err)
	}
	router := NewRouter(h, authn, authz.NewMiddleware(enforcer, zerolog.Nop()), NewChiMiddleware(ChiMiddlewareConfigFrom(&cfg.Security)))
	ts.handler = router.SetupChi()
	return ts
}

func (ts *testServer) do(t *testing.T, method, target, body string, header ...string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var resp APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

// dataAs re-decodes the envelope data into v.
func dataAs(t *testing.T, resp APIResponse, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatal(err)
	}
}

func TestNewHandler_RequiresDeps(t *testing.T) {
	if _, err := NewHandler(Deps{}); err == nil {
		t.Error("NewHandler(Deps{}) error = nil")
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, resp := ts.do(t, http.MethodGet, "/api/v1/health/live", "")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Errorf("live = %d %+v", rec.Code, resp)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Errorf("ready = %d", rec.Code)
	}

	ts.catalog.pingErr = errors.New("database is closed")
	rec, resp = ts.do(t, http.MethodGet, "/api/v1/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable || resp.Error == nil || resp.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("ready with failing db = %d %+v", rec.Code, resp.Error)
	}
}

func TestRecommendations(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, resp := ts.do(t, http.MethodGet, "/api/v1/recommendations/alice?n=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var got RecommendationsResponse
	dataAs(t, resp, &got)
	if diff := cmp.Diff([]string{"repo-1", "repo-2"}, got.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if ts.engine.lastN != 5 || ts.engine.lastCands != nil {
		t.Errorf("engine got n=%d candidates=%v, want 5 and nil", ts.engine.lastN, ts.engine.lastCands)
	}
	if resp.Meta == nil || resp.Meta.RequestID == "" {
		t.Error("meta.request_id missing")
	}
}

func TestRecommendations_Params(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name      string
		target    string
		code      int
		wantN     int
		wantCands []string
	}{
		{"default n", "/api/v1/recommendations/alice", http.StatusOK, 10, nil},
		{"candidates", "/api/v1/recommendations/alice?candidates=a,%20b,,c", http.StatusOK, 10, []string{"a", "b", "c"}},
		{"empty candidates", "/api/v1/recommendations/alice?candidates=", http.StatusOK, 10, []string{}},
		{"zero n", "/api/v1/recommendations/alice?n=0", http.StatusOK, 0, nil},
		{"negative n", "/api/v1/recommendations/alice?n=-1", http.StatusBadRequest, 0, nil},
		{"garbage n", "/api/v1/recommendations/alice?n=ten", http.StatusBadRequest, 0, nil},
		{"too many candidates", "/api/v1/recommendations/alice?candidates=a,b,c,d", http.StatusBadRequest, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.engine.lastN, ts.engine.lastCands = -99, nil
			rec, _ := ts.do(t, http.MethodGet, tt.target, "")
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
			if tt.code != http.StatusOK {
				return
			}
			if ts.engine.lastN != tt.wantN {
				t.Errorf("n = %d, want %d", ts.engine.lastN, tt.wantN)
			}
			if diff := cmp.Diff(tt.wantCands, ts.engine.lastCands); diff != "" {
				t.Errorf("candidates mismatch (-want +got):\n%s", diff)
			}
			if (tt.wantCands == nil) != (ts.engine.lastCands == nil) {
				t.Errorf("candidates nil-ness = %v, want %v", ts.engine.lastCands == nil, tt.wantCands == nil)
			}
		})
	}
}

func TestSimilarAndContent(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, resp := ts.do(t, http.MethodGet, "/api/v1/users/alice/similar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("similar = %d", rec.Code)
	}
	var sim SimilarUsersResponse
	dataAs(t, resp, &sim)
	if len(sim.Similar) != 1 || sim.Similar[0].ActorID != "bob" {
		t.Errorf("similar = %+v", sim)
	}

	rec, resp = ts.do(t, http.MethodGet, "/api/v1/content/alice/repo-9", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("content = %d", rec.Code)
	}
	var cs ContentSimilarityResponse
	dataAs(t, resp, &cs)
	if cs.Similarity != 0.25 || cs.ItemID != "repo-9" {
		t.Errorf("content = %+v", cs)
	}
}

func TestTeamMatch(t *testing.T) {
	ts := newTestServer(t, nil)
	body := `{"required":["go","sql"],"candidates":[{"actor_id":"a","skills":["go"]},{"actor_id":"b","skills":["go","sql"]}],"n":1}`

	rec, resp := ts.do(t, http.MethodPost, "/api/v1/teams/match", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got TeamMatchResponse
	dataAs(t, resp, &got)
	if len(got.Matches) != 1 || got.Matches[0].ActorID != "b" || got.Matches[0].Score != 1 {
		t.Errorf("matches = %+v", got.Matches)
	}

	rec, resp = ts.do(t, http.MethodPost, "/api/v1/teams/match", `{"required":["go"],"candidates":[]}`)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("empty candidates = %d %+v", rec.Code, resp.Error)
	}
}

func TestPutProfileAndItem(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.do(t, http.MethodPut, "/api/v1/profiles/alice", `{"skills":["go"],"interests":["ml"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile = %d: %s", rec.Code, rec.Body.String())
	}
	want := recommend.Profile{ActorID: "alice", Skills: []string{"go"}, Interests: []string{"ml"}}
	if diff := cmp.Diff([]recommend.Profile{want}, ts.catalog.profiles); diff != "" {
		t.Errorf("stored profiles (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]recommend.Profile{want}, ts.engine.profiles); diff != "" {
		t.Errorf("engine profiles (-want +got):\n%s", diff)
	}

	rec, _ = ts.do(t, http.MethodPut, "/api/v1/items/repo-1", `{"tags":["go"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("item = %d", rec.Code)
	}
	if len(ts.engine.items) != 1 || ts.engine.items[0].Category != "" || ts.engine.items[0].Tags[0] != "go" {
		t.Errorf("engine items = %+v", ts.engine.items)
	}

	ts.catalog.upsertErr = errors.New("disk full")
	rec, resp := ts.do(t, http.MethodPut, "/api/v1/items/repo-2", `{"tags":["go"]}`)
	if rec.Code != http.StatusInternalServerError || resp.Error.Code != ErrCodeDatabaseError {
		t.Errorf("store failure = %d %+v", rec.Code, resp.Error)
	}
	if len(ts.engine.items) != 1 {
		t.Error("engine updated although the store failed")
	}
}

func TestBodyErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		code int
		err  string
	}{
		{"empty", "", http.StatusBadRequest, ErrCodeBadRequest},
		{"malformed", `{"skills":`, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown field", `{"skils":["go"]}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"blank skill", `{"skills":[""]}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"too large", `{"skills":["` + strings.Repeat("x", 5000) + `"]}`, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := ts.do(t, http.MethodPut, "/api/v1/profiles/alice", tt.body)
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
			if resp.Error == nil || resp.Error.Code != tt.err {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.err)
			}
		})
	}
}

func TestPostInteraction(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, resp := ts.do(t, http.MethodPost, "/api/v1/interactions",
		`{"event_id":"e-1","actor_id":"alice","target_id":"repo-1","kind":"like","occurred_at":"2026-03-01T12:00:00Z"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got IngestResponse
	dataAs(t, resp, &got)
	if got.Accepted != 1 || got.EventIDs[0] != "e-1" {
		t.Errorf("response = %+v", got)
	}
	ev := ts.ingestor.events[0]
	if ev.Kind != "like" || ev.Source != eventprocessor.SourceAPI || !ev.OccurredAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("event = %+v", ev)
	}

	// event id and timestamp are generated when absent
	rec, resp = ts.do(t, http.MethodPost, "/api/v1/interactions", `{"actor_id":"alice","target_id":"repo-2","kind":"view"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	dataAs(t, resp, &got)
	if got.EventIDs[0] == "" || ts.ingestor.events[1].OccurredAt.IsZero() {
		t.Error("event id or timestamp not generated")
	}

	rec, resp = ts.do(t, http.MethodPost, "/api/v1/interactions", `{"actor_id":"alice","target_id":"repo-2","kind":"poke"}`)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("unknown kind = %d %+v", rec.Code, resp.Error)
	}

	ts.ingestor.err = eventprocessor.ErrPublisherClosed
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/interactions", `{"actor_id":"alice","target_id":"repo-3","kind":"view"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("closed publisher = %d", rec.Code)
	}
}

func TestPostInteractionBatch(t *testing.T) {
	ts := newTestServer(t, nil)
	one := `{"actor_id":"alice","target_id":"repo-1","kind":"view"}`

	rec, resp := ts.do(t, http.MethodPost, "/api/v1/interactions/batch", `{"interactions":[`+one+`,`+one+`]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got IngestResponse
	dataAs(t, resp, &got)
	if got.Accepted != 2 || len(ts.ingestor.events) != 2 {
		t.Errorf("accepted = %d, ingested = %d", got.Accepted, len(ts.ingestor.events))
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/interactions/batch", `{"interactions":[`+one+`,`+one+`,`+one+`]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized batch = %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/interactions/batch", `{"interactions":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch = %d", rec.Code)
	}
	if len(ts.ingestor.events) != 2 {
		t.Error("rejected batches reached the ingestor")
	}
}

func TestAdmin(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, resp := ts.do(t, http.MethodPost, "/api/v1/admin/train?wait=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("train = %d: %s", rec.Code, rec.Body.String())
	}
	var status recommend.TrainingStatus
	dataAs(t, resp, &status)
	if !status.Trained || status.ModelVersion != 1 {
		t.Errorf("status = %+v", status)
	}

	ts.engine.trainErr = recommend.ErrInsufficientData
	rec, resp = ts.do(t, http.MethodPost, "/api/v1/admin/train?wait=true", "")
	if rec.Code != http.StatusUnprocessableEntity || resp.Error.Code != ErrCodeInsufficientData {
		t.Errorf("insufficient data = %d %+v", rec.Code, resp.Error)
	}

	ts.engine.mu.Lock()
	ts.engine.status.InProgress = true
	ts.engine.mu.Unlock()
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/admin/train", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("train while in progress = %d", rec.Code)
	}

	rec, resp = ts.do(t, http.MethodGet, "/api/v1/admin/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var admin AdminStatus
	dataAs(t, resp, &admin)
	if admin.DataBreaker != "closed" || admin.Catalog == nil || admin.Catalog.Interactions != 7 || admin.WAL != nil {
		t.Errorf("admin status = %+v", admin)
	}
}

func TestAdminTrain_Background(t *testing.T) {
	ts := newTestServer(t, nil)
	rec, _ := ts.do(t, http.MethodPost, "/api/v1/admin/train", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("train = %d", rec.Code)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ts.engine.Status().Trained {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("background training did not run")
}

func TestNotFoundEnvelope(t *testing.T) {
	ts := newTestServer(t, nil)
	rec, resp := ts.do(t, http.MethodGet, "/api/v1/nope", "")
	if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("got %d %+v", rec.Code, resp.Error)
	}
}
