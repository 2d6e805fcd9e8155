// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package eventprocessor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/affinity/internal/metrics"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(topic string, msgs ...*message.Message) error {
	f.calls++
	return errors.New("nats: no responders available for request")
}

func (f *failingPublisher) Close() error { return nil }

func newGoChannel(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 16,
		Persistent:          true,
	}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubsub.Close() })
	return pubsub
}

func TestPublisher_PublishEventSetsMsgID(t *testing.T) {
	pubsub := newGoChannel(t)
	pub := WrapPublisher(pubsub, "affinity-interactions")

	if err := pub.PublishEvent(context.Background(), testEvent("e1")); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := pubsub.Subscribe(ctx, "affinity-interactions")
	if err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-messages:
		msg.Ack()
		if msg.UUID != "e1" || msg.Metadata.Get(natsgo.MsgIdHdr) != "e1" {
			t.Errorf("message uuid=%q msg-id=%q, want e1", msg.UUID, msg.Metadata.Get(natsgo.MsgIdHdr))
		}
		if msg.Metadata.Get("kind") != "like" {
			t.Errorf("kind metadata = %q", msg.Metadata.Get("kind"))
		}
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestPublisher_RejectsInvalidEvent(t *testing.T) {
	pub := WrapPublisher(newGoChannel(t), "t")
	bad := testEvent("e1")
	bad.Kind = "purchase"
	var verr *ValidationError
	if err := pub.PublishEvent(context.Background(), bad); !errors.As(err, &verr) {
		t.Errorf("PublishEvent() error = %v, want ValidationError", err)
	}
}

func TestPublisher_Closed(t *testing.T) {
	pub := WrapPublisher(newGoChannel(t), "t")
	if err := pub.Close(); err != nil {
		t.Fatal(err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := pub.PublishEvent(context.Background(), testEvent("e1")); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("PublishEvent() after Close error = %v, want ErrPublisherClosed", err)
	}
}

func TestPublisher_BreakerOpensAfterFailures(t *testing.T) {
	failing := &failingPublisher{}
	pub := WrapPublisher(failing, "t")
	if pub.BreakerState() != "disabled" {
		t.Errorf("BreakerState() = %q, want disabled", pub.BreakerState())
	}

	cfg := DefaultCircuitBreakerConfig("publish-test")
	cfg.FailureThreshold = 2
	cfg.Timeout = time.Minute
	pub.SetCircuitBreaker(NewCircuitBreaker(cfg, zerolog.New(io.Discard)))

	before := testutil.ToFloat64(metrics.CircuitBreakerTransitions.WithLabelValues("publish-test", "closed", "open"))

	for i := 0; i < 2; i++ {
		if err := pub.PublishEvent(context.Background(), testEvent("e1")); err == nil {
			t.Fatal("PublishEvent() succeeded against failing publisher")
		}
	}
	if pub.BreakerState() != "open" {
		t.Fatalf("BreakerState() = %q, want open", pub.BreakerState())
	}

	err := pub.PublishEvent(context.Background(), testEvent("e2"))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("PublishEvent() with open breaker error = %v, want ErrOpenState", err)
	}
	if failing.calls != 2 {
		t.Errorf("underlying publisher called %d times, want 2", failing.calls)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerTransitions.WithLabelValues("publish-test", "closed", "open")) - before; got != 1 {
		t.Errorf("closed->open transitions = %v, want 1", got)
	}
}

func TestBreakerResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.ResultSuccess},
		{gobreaker.ErrOpenState, metrics.ResultRejected},
		{gobreaker.ErrTooManyRequests, metrics.ResultRejected},
		{errors.New("timeout"), metrics.ResultFailure},
	}
	for _, tt := range tests {
		if got := breakerResult(tt.err); got != tt.want {
			t.Errorf("breakerResult(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
