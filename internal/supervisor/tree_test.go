// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/tomtom215/affinity/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// runTree serves the tree for d and waits for it to stop.
func runTree(t *testing.T, tree *SupervisorTree, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	select {
	case err := <-tree.ServeBackground(ctx):
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(d + 2*time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("creates hierarchical supervisor tree", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  10 * time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Error("root supervisor should not be nil")
		}
	})

	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
		}
	})
}

func TestTreeConfigFrom(t *testing.T) {
	if got := TreeConfigFrom(nil); got != DefaultTreeConfig() {
		t.Errorf("TreeConfigFrom(nil) = %+v", got)
	}

	cfg := &config.Config{}
	cfg.Server.ShutdownTimeout = 3 * time.Second
	if got := TreeConfigFrom(cfg).ShutdownTimeout; got != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", got)
	}
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	data := NewMockService("mock-data")
	messaging := NewMockService("mock-messaging")
	api := NewMockService("mock-api")
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	runTree(t, tree, 200*time.Millisecond)

	for _, svc := range []*MockService{data, messaging, api} {
		if svc.StartCount() < 1 {
			t.Errorf("%s was not started", svc)
		}
		if svc.StopCount() != svc.StartCount() {
			t.Errorf("%s: %d starts, %d stops", svc, svc.StartCount(), svc.StopCount())
		}
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatal(err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTreeFailureHandling(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := NewMockService("failing")
	failing.SetFailCount(2)
	stable := NewMockService("stable")

	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	runTree(t, tree, 300*time.Millisecond)

	if failing.StartCount() < 3 {
		t.Errorf("expected at least 3 starts for failing service, got %d", failing.StartCount())
	}
	if stable.StartCount() != 1 {
		t.Errorf("stable service started %d times, want 1", stable.StartCount())
	}
}

func TestRemoveMessagingService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	svc := NewMockService("removable")
	token := tree.AddMessagingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for svc.StartCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := tree.RemoveMessagingService(token); err != nil {
		t.Errorf("RemoveMessagingService: %v", err)
	}

	deadline = time.Now().Add(time.Second)
	for svc.StopCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if svc.StopCount() != 1 {
		t.Errorf("removed service stop count = %d, want 1", svc.StopCount())
	}

	cancel()
	<-done
}
