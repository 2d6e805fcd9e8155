// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package supervisor provides process supervision for Affinity using suture v4.

Every long-running component of the server runs as a suture.Service inside a
three-layer tree:

	RootSupervisor ("affinity")
	├── DataSupervisor ("data-layer")
	│   ├── wal-retry-loop   (if wal.enabled)
	│   └── wal-compactor    (if wal.enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── nats-server      (if nats.embedded)
	│   ├── ingest-consumer  (if nats.enabled)
	│   └── train-service
	└── APISupervisor ("api-layer")
	    └── http-server

Crashed services are restarted with suture's backoff. A service that keeps
failing past FailureThreshold puts only its own layer into backoff.

# Logging

Supervisor events are emitted through sutureslog. The server passes an
*slog.Logger backed by zerolog (see logging.NewSlogLogger), so restarts and
panics land in the same JSON stream as the rest of the process.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfigFrom(cfg))
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewTrainService(engine, trainCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor
