// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package recommend turns interaction signals and declared attributes into
// ranked suggestions.
//
// # Architecture
//
//   - CollaborativeEngine: user-based collaborative filtering. Interactions are
//     weighted by kind (view 1, like 3, bookmark 4, share 5, comment 6, join 7),
//     summed per actor-target pair, and compared by cosine similarity.
//   - ContentEngine: 0.7 * Jaccard(actor skills, item tags) plus 0.3 when the
//     item's category is one of the actor's interests. Serves cold start.
//   - HybridScorer: fuses the two with configurable weights (default 0.6/0.4).
//     The collaborative component is 1 for items in the actor's collaborative
//     top 2n and 0 otherwise.
//   - Engine: hosts one HybridScorer for a service. Adds training from a
//     DataProvider, result caching, metrics and snapshots.
//
// The core types hold no locks and perform no I/O apart from Save and Load.
// Engine serializes access: Train fits a new scorer without blocking readers
// and swaps it in whole.
//
// # Determinism
//
// Actors and targets are indexed in ascending id order, and every ranking is a
// stable sort, so ties resolve the same way on every run.
//
// # Persistence
//
// Save writes a versioned artifact (schema affinity.hybrid, version 1) holding
// the sparse weight rows, the similarity matrix, profiles, features and hybrid
// weights. Load rejects artifacts of another kind or version, failed checksums
// and inconsistent shapes with ErrMalformedArtifact.
//
// # Usage
//
//	scorer, _ := recommend.NewHybridScorer(recommend.DefaultHybridConfig())
//	if err := scorer.Fit(interactions); err != nil {
//	    return err
//	}
//	scorer.BuildProfile("u1", []string{"go", "sql"}, []string{"backend"})
//	scorer.AddItem("job-7", []string{"go", "k8s"}, "backend")
//	ids := scorer.Recommend("u1", nil, 10)
package recommend
