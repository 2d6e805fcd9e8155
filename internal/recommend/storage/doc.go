// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package storage persists fitted recommendation models.
//
// An artifact is a single gzip-compressed JSON document:
//
//	{
//	  "schema":   {"kind": "affinity.hybrid", "version": 1},
//	  "metadata": {... "checksum": "<sha256 of payload>" ...},
//	  "payload":  {...}
//	}
//
// WriteArtifact and ReadArtifact operate on one path. Readers verify the
// schema kind, schema version, and payload checksum before decoding, and every
// read failure wraps ErrMalformedArtifact.
//
// Store layers versioning on top, naming files {name}_v{version}.json.gz in a
// single directory:
//
//	store, err := storage.NewStore("/data/models")
//	meta, err := store.Save(ctx, "hybrid", 4, schema, payload, storage.ModelMetadata{})
//	_, err = store.Load(ctx, "hybrid", 0, schema, &payload) // 0 = latest
//	err = store.Prune(ctx, "hybrid", 3)
//
// Writes go to a temporary sibling file and are renamed into place.
package storage
