// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// artifactExt is the file suffix for stored artifacts.
const artifactExt = ".json.gz"

// ErrModelNotFound is returned when no artifact exists for a name/version.
var ErrModelNotFound = errors.New("model not found")

// Store manages versioned model artifacts in a directory.
// Files are named {name}_v{version}.json.gz.
type Store struct {
	baseDir string

	mu       sync.RWMutex
	versions map[string]int // name -> latest version
}

// NewStore creates a store rooted at baseDir, creating the directory if needed,
// and indexes existing artifacts.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	return s, nil
}

// BaseDir returns the directory the store writes to.
func (s *Store) BaseDir() string { return s.baseDir }

func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseArtifactFilename(entry.Name())
		if !ok {
			continue
		}
		if version > s.versions[name] {
			s.versions[name] = version
		}
	}
	return nil
}

// parseArtifactFilename splits "name_vN.json.gz" into name and N.
func parseArtifactFilename(filename string) (string, int, bool) {
	base, ok := strings.CutSuffix(filename, artifactExt)
	if !ok {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version <= 0 {
		return "", 0, false
	}
	return base[:idx], version, true
}

// Save writes payload as the given version of name.
//
//nolint:gocritic // meta is copied and enriched before writing
func (s *Store) Save(ctx context.Context, name string, version int, schema Schema, payload interface{}, meta ModelMetadata) (ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return meta, err
	}
	if version <= 0 {
		return meta, fmt.Errorf("version must be positive, got %d", version)
	}

	meta.Name = name
	meta.Version = version

	s.mu.Lock()
	defer s.mu.Unlock()

	written, err := WriteArtifact(s.path(name, version), schema, payload, meta)
	if err != nil {
		return written, fmt.Errorf("save %s v%d: %w", name, version, err)
	}
	if version > s.versions[name] {
		s.versions[name] = version
	}
	return written, nil
}

// Load decodes the given version of name into target. Version 0 loads the latest.
func (s *Store) Load(ctx context.Context, name string, version int, schema Schema, target interface{}) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		latest, ok := s.versions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
		version = latest
	}

	path := s.path(name, version)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
	}
	return ReadArtifact(path, schema, target)
}

// LatestVersion returns the highest stored version of name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[name]
	return v, ok
}

// ListVersions returns metadata for every stored version of name, oldest first.
// Unreadable artifacts are skipped.
func (s *Store) ListVersions(ctx context.Context, name string) ([]ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, err := s.versionsOf(name)
	if err != nil {
		return nil, err
	}

	out := make([]ModelMetadata, 0, len(versions))
	for _, v := range versions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		meta, err := ReadMetadata(s.path(name, v))
		if err != nil {
			continue
		}
		out = append(out, *meta)
	}
	return out, nil
}

// Prune removes all but the newest keep versions of name.
func (s *Store) Prune(ctx context.Context, name string, keep int) error {
	if keep < 1 {
		return fmt.Errorf("keep must be positive, got %d", keep)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.versionsOf(name)
	if err != nil {
		return err
	}
	if len(versions) <= keep {
		return nil
	}

	for _, v := range versions[:len(versions)-keep] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(s.path(name, v)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s v%d: %w", name, v, err)
		}
	}
	return nil
}

// versionsOf lists the on-disk versions of name in ascending order. Caller holds mu.
func (s *Store) versionsOf(name string) ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read storage directory: %w", err)
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		n, v, ok := parseArtifactFilename(entry.Name())
		if ok && n == name {
			versions = append(versions, v)
		}
	}
	sort.Ints(versions)
	return versions, nil
}

func (s *Store) path(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, artifactExt))
}
