// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// isolate points the file layers at an empty temp dir so a developer's
// config.yaml or .env cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv(DotenvPathEnvVar, "")
	t.Setenv("JWT_SECRET", testSecret)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8470 {
		t.Errorf("Server.Port = %d, want 8470", cfg.Server.Port)
	}
	if cfg.Recommend.CacheTTL != time.Hour {
		t.Errorf("Recommend.CacheTTL = %v, want 1h", cfg.Recommend.CacheTTL)
	}
	if cfg.Recommend.ModelDir != "/data/models" {
		t.Errorf("Recommend.ModelDir = %q", cfg.Recommend.ModelDir)
	}
	if cfg.NATS.Topic != "affinity-interactions" {
		t.Errorf("NATS.Topic = %q", cfg.NATS.Topic)
	}
	if diff := cmp.Diff([]string{"*"}, cfg.Security.CORSOrigins); diff != "" {
		t.Errorf("CORSOrigins mismatch (-want +got):\n%s", diff)
	}
	if !cfg.WALActive() {
		t.Error("WALActive() = false with defaults")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("ML_MODEL_PATH", "/tmp/models")
	t.Setenv("ML_CACHE_TTL", "15m")
	t.Setenv("RECOMMEND_CONTENT_WEIGHT", "0.5")
	t.Setenv("RECOMMEND_BREAKER_FAILURE_THRESHOLD", "7")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("NATS_ENABLED", "false")
	t.Setenv("SOME_UNRELATED_VAR", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Recommend.ModelDir != "/tmp/models" {
		t.Errorf("ModelDir = %q, want /tmp/models", cfg.Recommend.ModelDir)
	}
	if cfg.Recommend.CacheTTL != 15*time.Minute {
		t.Errorf("CacheTTL = %v, want 15m", cfg.Recommend.CacheTTL)
	}
	if cfg.Recommend.ContentWeight != 0.5 {
		t.Errorf("ContentWeight = %v, want 0.5", cfg.Recommend.ContentWeight)
	}
	if cfg.Recommend.BreakerFailureThreshold != 7 {
		t.Errorf("BreakerFailureThreshold = %d, want 7", cfg.Recommend.BreakerFailureThreshold)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if diff := cmp.Diff(want, cfg.Security.CORSOrigins); diff != "" {
		t.Errorf("CORSOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.WALActive() {
		t.Error("WALActive() = true with NATS disabled")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "affinity.yaml")
	yaml := `
server:
  port: 8123
recommend:
  train_interval: 5m
  max_n: 50
security:
  cors_origins:
    - https://app.example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("RECOMMEND_MAX_N", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want 8123 from file", cfg.Server.Port)
	}
	if cfg.Recommend.TrainInterval != 5*time.Minute {
		t.Errorf("TrainInterval = %v, want 5m from file", cfg.Recommend.TrainInterval)
	}
	if cfg.Recommend.MaxN != 60 {
		t.Errorf("MaxN = %d, want 60 (env beats file)", cfg.Recommend.MaxN)
	}
	if diff := cmp.Diff([]string{"https://app.example.com"}, cfg.Security.CORSOrigins); diff != "" {
		t.Errorf("CORSOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Dotenv(t *testing.T) {
	dir := isolate(t)
	env := "LOG_LEVEL=debug\nHTTP_PORT=7001\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_PORT", "7002")
	// godotenv sets LOG_LEVEL on the process; register it so t.Setenv restores it.
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug from .env", cfg.Logging.Level)
	}
	if cfg.Server.Port != 7002 {
		t.Errorf("Server.Port = %d, want 7002 (process env beats .env)", cfg.Server.Port)
	}
}

func TestLoad_ExplicitDotenvMissing(t *testing.T) {
	dir := isolate(t)
	t.Setenv(DotenvPathEnvVar, filepath.Join(dir, "nope.env"))

	if _, err := Load(); err == nil {
		t.Error("Load() with missing DOTENV_PATH succeeded, want error")
	}
}

func TestLoad_InvalidFails(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("Load() error = %v, want JWT_SECRET complaint", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"HTTP_PORT", "server.port"},
		{"ML_MODEL_PATH", "recommend.model_dir"},
		{"ml_cache_ttl", "recommend.cache_ttl"},
		{"NATS_SUBSCRIBERS", "nats.subscribers_count"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8470}
	if got := s.Addr(); got != "127.0.0.1:8470" {
		t.Errorf("Addr() = %q", got)
	}
}
