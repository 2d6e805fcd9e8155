// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package wal is the BadgerDB write-ahead log in front of the interaction
// publisher.
//
// The accept path is Write, publish, Confirm. An entry that is never
// confirmed (broker down, breaker open, process killed) stays under the
// pending: prefix until the RetryLoop republishes it or it exceeds
// MaxRetries or EntryTTL. Confirmed entries move to the confirmed: prefix
// and are removed by the Compactor, which also runs value log GC.
//
//	w, err := wal.Open(wal.FromSettings(&cfg.WAL))
//	id, err := w.Write(ctx, event)
//	if err := publisher.Publish(ctx, event); err == nil {
//	    _ = w.Confirm(ctx, id)
//	}
//
// RetryLoop and Compactor implement suture.Service and are run by the data
// layer of the supervisor tree. Republishing may deliver an event twice;
// consumers dedupe on the event id.
package wal
