// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package cache provides a thread-safe generic LRU cache with TTL expiration.

Two uses in Affinity:
  - recommendation results keyed by actor, candidate set and n, invalidated
    wholesale when a new model is swapped in
  - event id deduplication in the ingest consumer (IsDuplicate)

# Usage

	results := cache.NewLRU[string, []string](10000, time.Hour)
	results.Add("u1|10|", []string{"i3", "i7"})
	if ids, ok := results.Get("u1|10|"); ok {
	    // serve ids
	}
	results.Purge()

	seen := cache.NewLRU[string, struct{}](100000, 10*time.Minute)
	if seen.IsDuplicate(eventID, struct{}{}) {
	    // drop redelivery
	}

Expiration is lazy: entries past their TTL are removed when touched, or in
bulk by CleanupExpired.
*/
package cache
