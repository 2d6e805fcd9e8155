// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package services provides suture.Service wrappers for Affinity components
that do not implement Serve themselves.

HTTPServerService adapts *http.Server (ListenAndServe/Shutdown) to the
context-driven Serve pattern. TrainService retrains the recommendation
engine on startup and every TrainInterval.

The WAL retry loop, WAL compactor, embedded NATS server and ingest consumer
implement suture.Service directly in their own packages and are added to the
tree without a wrapper.
*/
package services
