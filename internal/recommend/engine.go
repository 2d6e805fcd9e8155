// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/affinity/internal/cache"
	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend/storage"
)

// ErrTooManyCandidates is returned when a request exceeds Limits.MaxCandidates.
var ErrTooManyCandidates = errors.New("too many candidates")

const breakerName = "recommend-data"

// trainingData is one consistent read from the DataProvider.
type trainingData struct {
	interactions []Interaction
	profiles     []Profile
	items        []ItemFeature
}

// Engine hosts the live HybridScorer for a service. It is safe for concurrent use.
//
// Training builds a new scorer off to the side and swaps it in whole, so queries
// never observe a partially fitted model. Profile and item upserts apply to the
// live scorer immediately and are replayed onto a scorer being trained.
type Engine struct {
	config *Config
	logger zerolog.Logger

	dataProvider DataProvider
	store        *storage.Store
	breaker      *gobreaker.CircuitBreaker[*trainingData]

	// mu guards scorer, status, generation and the pending upserts.
	mu              sync.RWMutex
	scorer          *HybridScorer
	status          TrainingStatus
	pendingProfiles []Profile
	pendingItems    []ItemFeature

	// generation increments on every model mutation.
	generation uint64

	trainMu      sync.Mutex
	modelVersion atomic.Int64

	results *cache.LRU[string, []string]

	// beforeCache runs between scoring and caching a result. Tests only.
	beforeCache func()
}

// NewEngine creates an Engine serving an empty model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	scorer, err := NewHybridScorer(cfg.Hybrid)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		scorer: scorer,
	}
	if cfg.Cache.Enabled {
		e.results = cache.NewLRU[string, []string](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	e.breaker = gobreaker.NewCircuitBreaker[*trainingData](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
			metrics.RecordBreakerTransition(name, from.String(), to.String())
			e.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	return e, nil
}

// SetDataProvider sets the source of training data.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetStore enables snapshots. Version numbering continues from the newest
// snapshot already in the store.
func (e *Engine) SetStore(store *storage.Store) {
	e.store = store
	if store == nil {
		return
	}
	if latest, ok := store.LatestVersion(SnapshotName); ok && int64(latest) > e.modelVersion.Load() {
		e.modelVersion.Store(int64(latest))
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config { return e.config }

// Train reloads all data from the DataProvider, fits a new scorer and swaps it in.
// Only one run proceeds at a time; a concurrent call returns ErrTrainingInProgress.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return ErrNoDataProvider
	}

	start := time.Now()
	e.beginTraining()
	e.logger.Info().Msg("starting model training")

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	scorer, data, err := e.fitScorer(trainCtx)
	if err != nil {
		result := metrics.ResultFailure
		if errors.Is(err, ErrInsufficientData) {
			result = metrics.ResultSkipped
		}
		metrics.RecordTraining(result, time.Since(start))
		e.endTraining(err, time.Since(start))
		return err
	}

	version := e.swap(scorer, data, start)
	duration := time.Since(start)
	metrics.RecordTraining(metrics.ResultSuccess, duration)

	e.logger.Info().
		Int64("version", version).
		Int("interactions", len(data.interactions)).
		Int("actors", scorer.Collaborative().Actors()).
		Int("items", scorer.Collaborative().Items()).
		Int("profiles", scorer.Content().Profiles()).
		Int("features", scorer.Content().Features()).
		Dur("duration", duration).
		Msg("model training complete")

	e.snapshot(ctx, scorer, version, len(data.interactions), start, duration)
	return nil
}

func (e *Engine) beginTraining() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.InProgress = true
	e.status.LastError = ""
	e.pendingProfiles = nil
	e.pendingItems = nil
}

func (e *Engine) endTraining(err error, duration time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.InProgress = false
	e.status.LastDuration = duration
	e.pendingProfiles = nil
	e.pendingItems = nil
	if err != nil {
		e.status.LastError = err.Error()
		e.logger.Error().Err(err).Msg("model training failed")
	}
}

// fitScorer loads data through the breaker and builds a fresh scorer.
func (e *Engine) fitScorer(ctx context.Context) (*HybridScorer, *trainingData, error) {
	data, err := e.breaker.Execute(func() (*trainingData, error) {
		return e.loadTrainingData(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordBreakerRequest(breakerName, metrics.ResultRejected)
		} else {
			metrics.RecordBreakerRequest(breakerName, metrics.ResultFailure)
		}
		return nil, nil, fmt.Errorf("load training data: %w", err)
	}
	metrics.RecordBreakerRequest(breakerName, metrics.ResultSuccess)

	if len(data.interactions) < e.config.Training.MinInteractions {
		return nil, nil, fmt.Errorf("%w: %d < %d", ErrInsufficientData, len(data.interactions), e.config.Training.MinInteractions)
	}

	scorer, err := NewHybridScorer(e.config.Hybrid)
	if err != nil {
		return nil, nil, err
	}
	if err := scorer.Fit(data.interactions); err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}
	for _, p := range data.profiles {
		scorer.BuildProfile(p.ActorID, p.Skills, p.Interests)
	}
	for _, f := range data.items {
		scorer.AddItem(f.ItemID, f.Tags, f.Category)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return scorer, data, nil
}

func (e *Engine) loadTrainingData(ctx context.Context) (*trainingData, error) {
	interactions, err := e.dataProvider.GetInteractions(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("get interactions: %w", err)
	}
	profiles, err := e.dataProvider.GetProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	items, err := e.dataProvider.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return &trainingData{interactions: interactions, profiles: profiles, items: items}, nil
}

// swap installs scorer as the live model and returns its version.
func (e *Engine) swap(scorer *HybridScorer, data *trainingData, start time.Time) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range e.pendingProfiles {
		scorer.BuildProfile(p.ActorID, p.Skills, p.Interests)
	}
	for _, f := range e.pendingItems {
		scorer.AddItem(f.ItemID, f.Tags, f.Category)
	}
	e.pendingProfiles = nil
	e.pendingItems = nil

	version := e.modelVersion.Add(1)
	e.scorer = scorer
	e.status.Trained = true
	e.status.InProgress = false
	e.status.ModelVersion = version
	e.status.LastTrainedAt = time.Now()
	e.status.LastDuration = time.Since(start)
	e.status.InteractionCount = len(data.interactions)
	e.refreshShapeLocked()
	e.invalidate()
	return version
}

// snapshot persists scorer when a store is configured. Failures are logged only.
func (e *Engine) snapshot(ctx context.Context, scorer *HybridScorer, version int64, interactions int, trainedAt time.Time, duration time.Duration) {
	if e.store == nil || !e.config.Training.SnapshotOnTrain {
		return
	}

	meta, err := scorer.SaveTo(ctx, e.store, int(version), storage.ModelMetadata{
		TrainedAt:          trainedAt,
		InteractionCount:   interactions,
		TrainingDurationMS: duration.Milliseconds(),
	})
	if err != nil {
		e.logger.Warn().Err(err).Int64("version", version).Msg("failed to save model snapshot")
		return
	}
	if err := e.store.Prune(ctx, SnapshotName, e.config.Training.RetainVersions); err != nil {
		e.logger.Warn().Err(err).Msg("failed to prune model snapshots")
	}
	e.logger.Debug().
		Int64("version", version).
		Int64("size_bytes", meta.SizeBytes).
		Str("checksum", meta.Checksum).
		Msg("model snapshot saved")
}

// Restore loads the newest snapshot from the store into the live model.
// It returns storage.ErrModelNotFound when the store holds no snapshot.
func (e *Engine) Restore(ctx context.Context) error {
	if e.store == nil {
		return fmt.Errorf("restore: %w", storage.ErrModelNotFound)
	}

	scorer, meta, err := LoadFrom(ctx, e.store, 0)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	e.install(scorer, int64(meta.Version), meta.TrainedAt, meta.InteractionCount)

	e.logger.Info().
		Int("version", meta.Version).
		Time("trained_at", meta.TrainedAt).
		Int("actors", meta.ActorCount).
		Int("items", meta.ItemCount).
		Msg("restored model snapshot")
	return nil
}

// Install replaces the live model with scorer, e.g. one produced by Load.
func (e *Engine) Install(scorer *HybridScorer) int64 {
	return e.install(scorer, 0, time.Now(), 0)
}

func (e *Engine) install(scorer *HybridScorer, version int64, trainedAt time.Time, interactions int) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if version <= 0 {
		version = e.modelVersion.Add(1)
	} else if version > e.modelVersion.Load() {
		e.modelVersion.Store(version)
	}

	e.scorer = scorer
	e.status.Trained = scorer.Collaborative().Fitted()
	e.status.ModelVersion = version
	e.status.LastTrainedAt = trainedAt
	e.status.InteractionCount = interactions
	e.refreshShapeLocked()
	e.invalidate()
	return version
}

// caller holds mu
func (e *Engine) refreshShapeLocked() {
	e.status.Actors = e.scorer.Collaborative().Actors()
	e.status.Items = e.scorer.Collaborative().Items()
	e.status.Profiles = e.scorer.Content().Profiles()
	e.status.Features = e.scorer.Content().Features()
	metrics.SetModelShape(e.status.ModelVersion, e.status.Actors, e.status.Items, e.status.Profiles, e.status.Features)
}

func (e *Engine) invalidate() {
	e.generation++
	if e.results != nil {
		e.results.Purge()
	}
}

// Recommend returns up to n item ids for actor. A nil candidates slice ranks the
// collaborative shortlist; a non-nil slice restricts ranking to those ids.
// n <= 0 yields an empty result and n above Limits.MaxN is clamped.
func (e *Engine) Recommend(ctx context.Context, actor string, candidates []string, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []string{}, nil
	}
	if n > e.config.Limits.MaxN {
		n = e.config.Limits.MaxN
	}
	if len(candidates) > e.config.Limits.MaxCandidates {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCandidates, len(candidates), e.config.Limits.MaxCandidates)
	}

	start := time.Now()
	defer func() { metrics.RecordRecommend("hybrid", time.Since(start)) }()

	key := cacheKey(actor, candidates, n)
	if e.results != nil {
		if ids, ok := e.results.Get(key); ok {
			metrics.RecordCacheLookup(true)
			return append([]string(nil), ids...), nil
		}
		metrics.RecordCacheLookup(false)
	}

	e.mu.RLock()
	ids := e.scorer.Recommend(actor, candidates, n)
	gen := e.generation
	e.mu.RUnlock()

	if ids == nil {
		ids = []string{}
	}
	if e.results != nil {
		if e.beforeCache != nil {
			e.beforeCache()
		}
		// Skip the fill when the model changed after scoring.
		e.mu.RLock()
		if e.generation == gen {
			e.results.Add(key, ids)
		}
		e.mu.RUnlock()
	}
	return append([]string(nil), ids...), nil
}

// cacheKey distinguishes a nil candidate set from an empty one.
func cacheKey(actor string, candidates []string, n int) string {
	var b strings.Builder
	b.WriteString(actor)
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(n))
	b.WriteByte(0)
	if candidates == nil {
		b.WriteByte('*')
		return b.String()
	}
	b.WriteByte('=')
	for i, c := range candidates {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(c)
	}
	return b.String()
}

// SimilarUsers returns up to n actors most similar to actor.
func (e *Engine) SimilarUsers(ctx context.Context, actor string, n int) ([]ScoredActor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n > e.config.Limits.MaxN {
		n = e.config.Limits.MaxN
	}

	start := time.Now()
	e.mu.RLock()
	out := e.scorer.SimilarUsers(actor, n)
	e.mu.RUnlock()
	metrics.RecordRecommend("similar", time.Since(start))

	if out == nil {
		out = []ScoredActor{}
	}
	return out, nil
}

// ContentSimilarity returns the content affinity of actor for item.
func (e *Engine) ContentSimilarity(actor, item string) float64 {
	start := time.Now()
	e.mu.RLock()
	s := e.scorer.Content().Similarity(actor, item)
	e.mu.RUnlock()
	metrics.RecordRecommend("content", time.Since(start))
	return s
}

// UpsertProfile replaces an actor profile on the live model.
func (e *Engine) UpsertProfile(p Profile) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.scorer.BuildProfile(p.ActorID, p.Skills, p.Interests)
	if e.status.InProgress {
		e.pendingProfiles = append(e.pendingProfiles, p)
	}
	e.status.Profiles = e.scorer.Content().Profiles()
	metrics.ModelProfiles.Set(float64(e.status.Profiles))
	e.invalidate()
}

// UpsertItem replaces an item feature on the live model.
func (e *Engine) UpsertItem(f ItemFeature) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.scorer.AddItem(f.ItemID, f.Tags, f.Category)
	if e.status.InProgress {
		e.pendingItems = append(e.pendingItems, f)
	}
	e.status.Features = e.scorer.Content().Features()
	metrics.ModelFeatures.Set(float64(e.status.Features))
	e.invalidate()
}

// Status returns a snapshot of training state and cache counters.
func (e *Engine) Status() TrainingStatus {
	e.mu.RLock()
	status := e.status
	e.mu.RUnlock()

	if e.results != nil {
		s := e.results.Stats()
		status.CacheHits = s.Hits
		status.CacheMisses = s.Misses
	}
	return status
}

// BreakerState returns the data breaker state name.
func (e *Engine) BreakerState() string {
	return e.breaker.State().String()
}

// Save writes the live model to path.
func (e *Engine) Save(path string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scorer.Save(path)
}
