// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package wal

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// clockedLoop returns a retry loop whose clock is offset from real time.
func clockedLoop(w *BadgerWAL, p Publisher, offset time.Duration) *RetryLoop {
	r := NewRetryLoop(w, p)
	r.now = func() time.Time { return time.Now().Add(offset) }
	return r
}

func TestBackoff(t *testing.T) {
	r := &RetryLoop{config: Config{RetryBackoff: time.Second}}
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{8, 256 * time.Second},
		{9, maxBackoff},
		{51, maxBackoff},
	}
	for _, tt := range tests {
		if got := r.backoff(tt.attempts); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestRunOnce_RepublishesAndConfirms(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	id, err := w.Write(ctx, &testEvent{EventID: "e1"})
	if err != nil {
		t.Fatal(err)
	}

	var published []string
	pub := PublisherFunc(func(ctx context.Context, e *Entry) error {
		published = append(published, e.ID)
		return nil
	})

	// Fresh entries wait one backoff for the write path to confirm them.
	if res := clockedLoop(w, pub, 0).RunOnce(ctx); res.Skipped != 1 || len(published) != 0 {
		t.Fatalf("RunOnce() on fresh entry = %+v, published %v", res, published)
	}

	res := clockedLoop(w, pub, 2*time.Second).RunOnce(ctx)
	if res.Succeeded != 1 || len(published) != 1 || published[0] != id {
		t.Fatalf("RunOnce() = %+v, published %v", res, published)
	}
	if stats := w.Stats(); stats.PendingCount != 0 || stats.ConfirmedCount != 1 {
		t.Errorf("Stats() = %+v, want 0 pending 1 confirmed", stats)
	}
}

func TestRunOnce_FailureRecordsAttempt(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	if _, err := w.Write(ctx, &testEvent{EventID: "e1"}); err != nil {
		t.Fatal(err)
	}
	failing := PublisherFunc(func(ctx context.Context, e *Entry) error {
		return errors.New("circuit breaker is open")
	})

	res := clockedLoop(w, failing, 2*time.Second).RunOnce(ctx)
	if res.Failed != 1 {
		t.Fatalf("RunOnce() = %+v, want 1 failed", res)
	}
	pending, _ := w.GetPending(ctx, 0)
	if len(pending) != 1 || pending[0].Attempts != 1 || pending[0].LastError != "circuit breaker is open" {
		t.Fatalf("pending = %+v", pending)
	}

	// Inside the 2s backoff window after the first failure.
	if res := clockedLoop(w, failing, time.Second).RunOnce(ctx); res.Skipped != 1 {
		t.Errorf("RunOnce() inside backoff = %+v, want skipped", res)
	}
}

func TestRunOnce_DropsExhaustedAndExpired(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	exhausted, _ := w.Write(ctx, &testEvent{EventID: "exhausted"})
	for i := 0; i < w.Config().MaxRetries; i++ {
		if err := w.UpdateAttempt(ctx, exhausted, "down"); err != nil {
			t.Fatal(err)
		}
	}

	var calls atomic.Int32
	pub := PublisherFunc(func(ctx context.Context, e *Entry) error {
		calls.Add(1)
		return nil
	})

	res := clockedLoop(w, pub, time.Minute).RunOnce(ctx)
	if res.MaxRetried != 1 || calls.Load() != 0 {
		t.Errorf("RunOnce() = %+v with %d publishes, want 1 max-retried and none", res, calls.Load())
	}

	if _, err := w.Write(ctx, &testEvent{EventID: "old"}); err != nil {
		t.Fatal(err)
	}
	res = clockedLoop(w, pub, 2*time.Hour).RunOnce(ctx)
	if res.Expired != 1 || calls.Load() != 0 {
		t.Errorf("RunOnce() = %+v, want 1 expired", res)
	}
	if pending, _ := w.GetPending(ctx, 0); len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestRunOnce_SkipsClaimedEntries(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	id, _ := w.Write(ctx, &testEvent{EventID: "busy"})
	w.tryClaim(id)
	defer w.release(id)

	res := clockedLoop(w, PublisherFunc(func(context.Context, *Entry) error { return nil }), time.Minute).RunOnce(ctx)
	if res.Skipped != 1 || res.Succeeded != 0 {
		t.Errorf("RunOnce() = %+v, want claimed entry skipped", res)
	}
}

func TestRetryLoop_ServeStopsOnCancel(t *testing.T) {
	w := openTestWAL(t)
	r := NewRetryLoop(w, PublisherFunc(func(context.Context, *Entry) error { return nil }))
	if r.String() != "wal-retry" {
		t.Errorf("String() = %q", r.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	time.Sleep(120 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
