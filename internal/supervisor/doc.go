// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package supervisor runs ReelMatch's long-lived services under a suture v4
supervisor tree.

# Overview

Services are grouped into two layers so a failing snapshot rebuild loop
never takes the HTTP listener down with it:

	RootSupervisor ("reelmatch")
	├── EngineSupervisor ("engine-layer")
	│   └── SnapshotService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A service that returns an error is restarted with suture's backoff. The
snapshot service relies on this for its first build: if the dataset
cannot be loaded at startup, the service fails, the API keeps answering
readiness probes with 503, and the build is retried after the backoff.

Supervisor events are logged through sutureslog, bridged to zerolog by
logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddEngineService(services.NewSnapshotService(eng, services.SnapshotServiceConfig{
	    RebuildInterval: cfg.Recommend.RebuildInterval,
	}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
