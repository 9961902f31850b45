// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package supervisor provides process supervision for the server using
suture v4.

# Tree

	eatwhat
	├── data-layer
	│   ├── stats-dispatcher    (stats.Dispatcher)
	│   └── catalog-refresh     (services.CatalogRefreshService)
	├── messaging-layer
	│   └── websocket-hub       (websocket.Hub)
	└── api-layer
	    └── http-server         (services.HTTPServerService)

A crashed service is restarted by its own layer supervisor. Once a layer
exceeds FailureThreshold failures (decaying at FailureDecay per second) it
waits FailureBackoff before the next restart.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(dispatcher)
	tree.AddDataService(services.NewCatalogRefreshService(eligible, 0, logger))
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Logging

suture events go through sutureslog to a *slog.Logger. The server builds
that logger from the zerolog configuration, so supervisor events land in
the same stream as everything else.

# Shutdown

Canceling the context stops all layers. Services that have not returned
after ShutdownTimeout are reported by UnstoppedServiceReport.
*/
package supervisor
