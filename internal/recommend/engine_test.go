// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/goleak"

	"github.com/tomtom215/affinity/internal/recommend/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockDataProvider implements DataProvider for testing.
type mockDataProvider struct {
	mu           sync.Mutex
	interactions []Interaction
	profiles     []Profile
	items        []ItemFeature
	err          error
	calls        int

	// block, when set, is waited on inside GetInteractions.
	block   chan struct{}
	entered chan struct{}
}

func (m *mockDataProvider) GetInteractions(ctx context.Context, since time.Time) ([]Interaction, error) {
	m.mu.Lock()
	m.calls++
	block, entered, err := m.block, m.entered, m.err
	m.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return m.interactions, nil
}

func (m *mockDataProvider) GetProfiles(ctx context.Context) ([]Profile, error) {
	return m.profiles, nil
}

func (m *mockDataProvider) GetItems(ctx context.Context) ([]ItemFeature, error) {
	return m.items, nil
}

func newTestEngine(t *testing.T, modify func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if modify != nil {
		modify(cfg)
	}
	e, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func scenarioProvider() *mockDataProvider {
	return &mockDataProvider{
		interactions: twoUserHistory(),
		profiles:     []Profile{{ActorID: "u1", Skills: []string{"go"}, Interests: []string{"backend"}}},
		items:        []ItemFeature{{ItemID: "job-go", Tags: []string{"go"}, Category: "backend"}},
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.DefaultN = 0
	if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
		t.Error("NewEngine() with invalid config should fail")
	}
	if _, err := NewEngine(nil, zerolog.Nop()); err != nil {
		t.Errorf("NewEngine(nil) error = %v, want defaults", err)
	}
}

func TestEngine_UntrainedServesEmpty(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	got, err := e.Recommend(ctx, "u1", nil, 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Recommend() = %#v, want empty non-nil", got)
	}
	if e.Status().Trained {
		t.Error("Status().Trained = true before any training")
	}
}

func TestEngine_TrainAndRecommend(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetDataProvider(scenarioProvider())
	ctx := context.Background()

	if err := e.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	got, err := e.Recommend(ctx, "u1", nil, 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if diff := cmp.Diff([]string{"i3"}, got); diff != "" {
		t.Errorf("Recommend mismatch (-want +got):\n%s", diff)
	}

	similar, err := e.SimilarUsers(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}
	if len(similar) != 1 || similar[0].ActorID != "u2" {
		t.Errorf("SimilarUsers = %+v, want [u2]", similar)
	}

	if got := e.ContentSimilarity("u1", "job-go"); got != 1 {
		t.Errorf("ContentSimilarity = %v, want 1", got)
	}

	status := e.Status()
	if !status.Trained || status.InProgress {
		t.Errorf("status trained=%v inProgress=%v, want true/false", status.Trained, status.InProgress)
	}
	if status.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", status.ModelVersion)
	}
	if status.Actors != 2 || status.Items != 3 || status.Profiles != 1 || status.Features != 1 {
		t.Errorf("status shape = %+v", status)
	}
	if status.InteractionCount != 4 {
		t.Errorf("InteractionCount = %d, want 4", status.InteractionCount)
	}
}

func TestEngine_TrainErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no provider", func(t *testing.T) {
		e := newTestEngine(t, nil)
		if err := e.Train(ctx); !errors.Is(err, ErrNoDataProvider) {
			t.Errorf("Train() error = %v, want ErrNoDataProvider", err)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		e := newTestEngine(t, func(c *Config) { c.Training.MinInteractions = 10 })
		e.SetDataProvider(scenarioProvider())
		if err := e.Train(ctx); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Train() error = %v, want ErrInsufficientData", err)
		}
		status := e.Status()
		if status.Trained || status.LastError == "" {
			t.Errorf("status after skipped run = %+v", status)
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		e := newTestEngine(t, nil)
		e.SetDataProvider(&mockDataProvider{interactions: []Interaction{{ActorID: "u", TargetID: "i"}}})
		if err := e.Train(ctx); !errors.Is(err, ErrUnknownInteractionKind) {
			t.Errorf("Train() error = %v, want ErrUnknownInteractionKind", err)
		}
	})

	t.Run("breaker opens after consecutive failures", func(t *testing.T) {
		e := newTestEngine(t, func(c *Config) { c.Breaker.FailureThreshold = 2 })
		provider := &mockDataProvider{err: errors.New("database unavailable")}
		e.SetDataProvider(provider)

		for i := 0; i < 2; i++ {
			if err := e.Train(ctx); err == nil {
				t.Fatalf("Train() #%d error = nil", i+1)
			}
		}
		err := e.Train(ctx)
		if !errors.Is(err, gobreaker.ErrOpenState) {
			t.Errorf("Train() error = %v, want breaker open", err)
		}
		if provider.calls != 2 {
			t.Errorf("provider calls = %d, want 2 (third rejected by breaker)", provider.calls)
		}
		if e.BreakerState() != "open" {
			t.Errorf("BreakerState() = %s, want open", e.BreakerState())
		}
	})
}

func TestEngine_FailedTrainKeepsServingModel(t *testing.T) {
	e := newTestEngine(t, nil)
	provider := scenarioProvider()
	e.SetDataProvider(provider)
	ctx := context.Background()

	if err := e.Train(ctx); err != nil {
		t.Fatal(err)
	}
	provider.err = errors.New("boom")
	if err := e.Train(ctx); err == nil {
		t.Fatal("second Train() error = nil")
	}

	got, _ := e.Recommend(ctx, "u1", nil, 1)
	if diff := cmp.Diff([]string{"i3"}, got); diff != "" {
		t.Errorf("serving model lost after failed train (-want +got):\n%s", diff)
	}
	if v := e.Status().ModelVersion; v != 1 {
		t.Errorf("ModelVersion = %d, want 1", v)
	}
}

func TestEngine_ConcurrentTrainRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	provider := scenarioProvider()
	provider.block = make(chan struct{})
	provider.entered = make(chan struct{})
	e.SetDataProvider(provider)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- e.Train(ctx) }()
	<-provider.entered

	if !e.Status().InProgress {
		t.Error("Status().InProgress = false during training")
	}
	if err := e.Train(ctx); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("concurrent Train() error = %v, want ErrTrainingInProgress", err)
	}

	close(provider.block)
	if err := <-done; err != nil {
		t.Fatalf("first Train() error = %v", err)
	}
}

func TestEngine_UpsertDuringTrainingSurvivesSwap(t *testing.T) {
	e := newTestEngine(t, nil)
	provider := scenarioProvider()
	provider.block = make(chan struct{})
	provider.entered = make(chan struct{})
	e.SetDataProvider(provider)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- e.Train(ctx) }()
	<-provider.entered

	e.UpsertProfile(Profile{ActorID: "u2", Skills: []string{"css"}, Interests: []string{"frontend"}})
	e.UpsertItem(ItemFeature{ItemID: "job-css", Tags: []string{"css"}, Category: "frontend"})

	close(provider.block)
	if err := <-done; err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if got := e.ContentSimilarity("u2", "job-css"); got != 1 {
		t.Errorf("ContentSimilarity(u2, job-css) = %v, want 1 after swap", got)
	}
	if got := e.Status().Profiles; got != 2 {
		t.Errorf("Profiles = %d, want 2", got)
	}
}

func TestEngine_RecommendLimits(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Limits.MaxCandidates = 2 })
	e.SetDataProvider(scenarioProvider())
	ctx := context.Background()
	if err := e.Train(ctx); err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{0, -1} {
		got, err := e.Recommend(ctx, "u1", nil, n)
		if err != nil || len(got) != 0 {
			t.Errorf("Recommend(n=%d) = %v, %v, want empty", n, got, err)
		}
	}

	_, err := e.Recommend(ctx, "u1", []string{"a", "b", "c"}, 3)
	if !errors.Is(err, ErrTooManyCandidates) {
		t.Errorf("Recommend() error = %v, want ErrTooManyCandidates", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := e.Recommend(cancelled, "u1", nil, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("Recommend(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestEngine_ResultCache(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetDataProvider(scenarioProvider())
	ctx := context.Background()
	if err := e.Train(ctx); err != nil {
		t.Fatal(err)
	}

	first, _ := e.Recommend(ctx, "u1", nil, 3)
	first[0] = "mutated"
	second, _ := e.Recommend(ctx, "u1", nil, 3)

	if second[0] != "i3" {
		t.Errorf("cached result was mutated through returned slice: %v", second)
	}
	status := e.Status()
	if status.CacheHits != 1 || status.CacheMisses != 1 {
		t.Errorf("cache hits=%d misses=%d, want 1/1", status.CacheHits, status.CacheMisses)
	}

	// nil and empty candidate sets must not share an entry
	empty, _ := e.Recommend(ctx, "u1", []string{}, 3)
	if len(empty) != 0 {
		t.Errorf("Recommend(empty candidates) = %v, want empty", empty)
	}

	e.UpsertItem(ItemFeature{ItemID: "i3", Tags: []string{"go"}, Category: "backend"})
	if _, err := e.Recommend(ctx, "u1", nil, 3); err != nil {
		t.Fatal(err)
	}
	if got := e.Status().CacheMisses; got != 3 {
		t.Errorf("CacheMisses after upsert = %d, want 3 (upsert invalidates)", got)
	}
}

func TestEngine_ResultCacheSkipsFillAfterMutation(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetDataProvider(scenarioProvider())
	ctx := context.Background()
	if err := e.Train(ctx); err != nil {
		t.Fatal(err)
	}

	candidates := []string{"other", "job-go"}
	e.beforeCache = func() {
		e.beforeCache = nil
		// u1 loses the go skill, so job-go no longer outranks other
		e.UpsertProfile(Profile{ActorID: "u1", Skills: []string{"rust"}})
	}

	first, err := e.Recommend(ctx, "u1", candidates, 1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"job-go"}, first); diff != "" {
		t.Fatalf("first Recommend() mismatch (-want +got):\n%s", diff)
	}

	second, err := e.Recommend(ctx, "u1", candidates, 1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"other"}, second); diff != "" {
		t.Errorf("Recommend() after profile change served stale ranking (-want +got):\n%s", diff)
	}
	if hits := e.Status().CacheHits; hits != 0 {
		t.Errorf("CacheHits = %d, want 0", hits)
	}
}

func TestEngine_SnapshotAndRestore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := storage.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	trainer := newTestEngine(t, func(c *Config) { c.Training.RetainVersions = 2 })
	trainer.SetStore(store)
	trainer.SetDataProvider(scenarioProvider())
	for i := 0; i < 3; i++ {
		if err := trainer.Train(ctx); err != nil {
			t.Fatalf("Train() #%d error = %v", i+1, err)
		}
	}

	versions, err := store.ListVersions(ctx, SnapshotName)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 || versions[1].Version != 3 {
		t.Errorf("stored versions = %+v, want v2 and v3", versions)
	}

	reopened, err := storage.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	restored := newTestEngine(t, nil)
	restored.SetStore(reopened)
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	want, _ := trainer.Recommend(ctx, "u1", nil, 3)
	got, _ := restored.Recommend(ctx, "u1", nil, 3)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("restored model differs (-want +got):\n%s", diff)
	}
	status := restored.Status()
	if status.ModelVersion != 3 || !status.Trained || status.InteractionCount != 4 {
		t.Errorf("restored status = %+v", status)
	}

	restored.SetDataProvider(scenarioProvider())
	if err := restored.Train(ctx); err != nil {
		t.Fatal(err)
	}
	if v := restored.Status().ModelVersion; v != 4 {
		t.Errorf("version after retrain = %d, want 4", v)
	}
}

func TestEngine_RestoreWithoutSnapshot(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.Restore(context.Background()); !errors.Is(err, storage.ErrModelNotFound) {
		t.Errorf("Restore() without store error = %v, want ErrModelNotFound", err)
	}

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	e.SetStore(store)
	if err := e.Restore(context.Background()); !errors.Is(err, storage.ErrModelNotFound) {
		t.Errorf("Restore() on empty store error = %v, want ErrModelNotFound", err)
	}
}

func TestEngine_InstallLoadedModel(t *testing.T) {
	e := newTestEngine(t, nil)
	h := richScorer(t)

	if v := e.Install(h); v != 1 {
		t.Errorf("Install() version = %d, want 1", v)
	}
	got, err := e.Recommend(context.Background(), "u1", nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(h.Recommend("u1", nil, 3), got); diff != "" {
		t.Errorf("installed model differs (-want +got):\n%s", diff)
	}
}
