// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// ErrMalformedArtifact is returned when an artifact is missing, unreadable,
// corrupt, or was written for a different schema.
var ErrMalformedArtifact = errors.New("malformed model artifact")

// maxArtifactBytes bounds decompressed artifact size.
const maxArtifactBytes = 1 << 30

// Schema identifies the shape of an artifact payload.
type Schema struct {
	// Kind names the payload type, e.g. "affinity.hybrid".
	Kind string `json:"kind"`

	// Version increments on any incompatible payload change.
	Version int `json:"version"`
}

// String formats the schema as kind/vN.
func (s Schema) String() string {
	return fmt.Sprintf("%s/v%d", s.Kind, s.Version)
}

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the logical model name within a Store.
	Name string `json:"name,omitempty"`

	// Version is the model version (monotonically increasing per name).
	Version int `json:"version,omitempty"`

	// Schema is the payload schema.
	Schema Schema `json:"schema"`

	// TrainedAt is when the model was fitted.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// InteractionCount is the number of interactions used for training.
	InteractionCount int `json:"interaction_count"`

	// ActorCount is the number of matrix rows.
	ActorCount int `json:"actor_count"`

	// ItemCount is the number of matrix columns.
	ItemCount int `json:"item_count"`

	// ProfileCount is the number of stored actor profiles.
	ProfileCount int `json:"profile_count"`

	// FeatureCount is the number of stored item features.
	FeatureCount int `json:"feature_count"`

	// Checksum is the SHA-256 of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed artifact size.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// envelope is the on-disk document, gzip compressed.
type envelope struct {
	Schema   Schema          `json:"schema"`
	Metadata ModelMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

// WriteArtifact encodes payload as a single gzip-compressed JSON artifact at path.
// Parent directories are created. The file is written to a temporary sibling and
// renamed into place so readers never observe a partial artifact.
//
//nolint:gocritic // meta passed by value, it is filled in and returned
func WriteArtifact(path string, schema Schema, payload interface{}, meta ModelMetadata) (ModelMetadata, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return meta, fmt.Errorf("encode payload: %w", err)
	}

	sum := sha256.Sum256(raw)
	meta.Schema = schema
	meta.Checksum = hex.EncodeToString(sum[:])
	meta.SavedAt = time.Now().UTC()

	doc, err := json.Marshal(&envelope{Schema: schema, Metadata: meta, Payload: raw})
	if err != nil {
		return meta, fmt.Errorf("encode artifact: %w", err)
	}

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(doc); err != nil {
		return meta, fmt.Errorf("compress artifact: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return meta, fmt.Errorf("finalize compression: %w", err)
	}
	meta.SizeBytes = int64(compressed.Len())

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return meta, fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return meta, fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(compressed.Bytes()); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return meta, fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync error takes precedence
		return meta, fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return meta, fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return meta, fmt.Errorf("rename artifact: %w", err)
	}

	return meta, nil
}

// ReadArtifact decodes the artifact at path into target after verifying the
// schema and checksum. Every failure wraps ErrMalformedArtifact.
func ReadArtifact(path string, schema Schema, target interface{}) (*ModelMetadata, error) {
	env, err := readEnvelope(path)
	if err != nil {
		return nil, err
	}

	if env.Schema.Kind != schema.Kind {
		return nil, fmt.Errorf("%w: kind %q, want %q", ErrMalformedArtifact, env.Schema.Kind, schema.Kind)
	}
	if env.Schema.Version != schema.Version {
		return nil, fmt.Errorf("%w: %s is not supported, want %s", ErrMalformedArtifact, env.Schema, schema)
	}

	sum := sha256.Sum256(env.Payload)
	if checksum := hex.EncodeToString(sum[:]); checksum != env.Metadata.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch: expected %s, got %s", ErrMalformedArtifact, env.Metadata.Checksum, checksum)
	}

	if err := json.Unmarshal(env.Payload, target); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrMalformedArtifact, err)
	}

	return &env.Metadata, nil
}

// ReadMetadata returns the metadata of the artifact at path without decoding the payload.
func ReadMetadata(path string) (*ModelMetadata, error) {
	env, err := readEnvelope(path)
	if err != nil {
		return nil, err
	}
	meta := env.Metadata
	meta.Schema = env.Schema
	return &meta, nil
}

func readEnvelope(path string) (*envelope, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrMalformedArtifact, err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrMalformedArtifact, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	doc, err := io.ReadAll(io.LimitReader(gzr, maxArtifactBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrMalformedArtifact, err)
	}

	var env envelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrMalformedArtifact, err)
	}
	if env.Schema.Kind == "" {
		return nil, fmt.Errorf("%w: missing schema", ErrMalformedArtifact)
	}
	return &env, nil
}
