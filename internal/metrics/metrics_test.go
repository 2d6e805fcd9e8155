// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func histogramCount(t *testing.T, h prometheus.Metric) uint64 {
	t.Helper()
	m := &dto.Metric{}
	if err := h.Write(m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		wantErr   float64
	}{
		{name: "successful select", operation: "SELECT", table: "interactions"},
		{name: "successful insert", operation: "INSERT", table: "profiles"},
		{name: "failed upsert", operation: "UPSERT", table: "items", err: errors.New("constraint"), wantErr: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)
			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			if after-before != tt.wantErr {
				t.Errorf("error counter delta = %v, want %v", after-before, tt.wantErr)
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations/{actorID}", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/v1/recommendations/{actorID}", 200, 12*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("affinity_api_requests_total delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 2 {
		t.Errorf("active delta after two starts = %v, want 2", got)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 0 {
		t.Errorf("active delta after completion = %v, want 0", got)
	}
}

func TestRecordTraining(t *testing.T) {
	successBefore := testutil.ToFloat64(TrainTotal.WithLabelValues(ResultSuccess))
	skippedBefore := testutil.ToFloat64(TrainTotal.WithLabelValues(ResultSkipped))
	observedBefore := histogramCount(t, TrainDuration)

	RecordTraining(ResultSuccess, 2*time.Second)
	RecordTraining(ResultSkipped, 0)

	if got := testutil.ToFloat64(TrainTotal.WithLabelValues(ResultSuccess)) - successBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(TrainTotal.WithLabelValues(ResultSkipped)) - skippedBefore; got != 1 {
		t.Errorf("skipped delta = %v, want 1", got)
	}
	if got := histogramCount(t, TrainDuration) - observedBefore; got != 1 {
		t.Errorf("duration observations delta = %d, want 1 (skipped runs are not timed)", got)
	}
}

func TestSetModelShape(t *testing.T) {
	SetModelShape(7, 120, 340, 95, 210)

	checks := map[string]struct {
		gauge prometheus.Gauge
		want  float64
	}{
		"version":  {ModelVersion, 7},
		"actors":   {ModelActors, 120},
		"items":    {ModelItems, 340},
		"profiles": {ModelProfiles, 95},
		"features": {ModelFeatures, 210},
	}
	for name, c := range checks {
		if got := testutil.ToFloat64(c.gauge); got != c.want {
			t.Errorf("%s = %v, want %v", name, got, c.want)
		}
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := RecommendCacheTotal.WithLabelValues(ResultHit)
	misses := RecommendCacheTotal.WithLabelValues(ResultMiss)
	hitsBefore, missesBefore := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	if got := testutil.ToFloat64(hits) - hitsBefore; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(misses) - missesBefore; got != 2 {
		t.Errorf("miss delta = %v, want 2", got)
	}
}

func TestRecordIngest(t *testing.T) {
	tests := []struct {
		result string
	}{
		{ResultSuccess},
		{ResultInvalid},
		{ResultDup},
		{ResultFailure},
	}

	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			c := IngestEventsTotal.WithLabelValues(tt.result)
			before := testutil.ToFloat64(c)
			RecordIngest(tt.result, time.Millisecond)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("delta = %v, want 1", got)
			}
		})
	}
}

func TestWALMetrics(t *testing.T) {
	failBefore := testutil.ToFloat64(WALWrites.WithLabelValues(ResultFailure))
	compactedBefore := testutil.ToFloat64(WALEntriesCompacted)
	retryBefore := testutil.ToFloat64(WALRetries.WithLabelValues(ResultSuccess))

	RecordWALWrite(nil)
	RecordWALWrite(errors.New("disk full"))
	RecordWALCompaction(4)
	RecordWALRetry(true)

	if got := testutil.ToFloat64(WALWrites.WithLabelValues(ResultFailure)) - failBefore; got != 1 {
		t.Errorf("failed writes delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(WALEntriesCompacted) - compactedBefore; got != 4 {
		t.Errorf("compacted delta = %v, want 4", got)
	}
	if got := testutil.ToFloat64(WALRetries.WithLabelValues(ResultSuccess)) - retryBefore; got != 1 {
		t.Errorf("retry delta = %v, want 1", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	SetBreakerState("test-breaker", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}

	RecordBreakerRequest("test-breaker", ResultRejected)
	RecordBreakerTransition("test-breaker", "closed", "open")

	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("test-breaker", "closed", "open")); got < 1 {
		t.Errorf("transitions = %v, want >= 1", got)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordRecommend("hybrid", time.Millisecond)
				RecordCacheLookup(j%2 == 0)
				RecordNATSPublish()
				RecordNATSConsume()
			}
		}()
	}
	wg.Wait()
}

func TestMetricGathering(t *testing.T) {
	RecordDBQuery("SELECT", "interactions", time.Millisecond, nil)
	RecordAPIRequest("GET", "/api/v1/health/live", 200, time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordRecommend(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordRecommend("hybrid", 250*time.Microsecond)
	}
}
