// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package services adapts components whose lifecycle is not already
suture.Service shaped.

	type Service interface {
	    Serve(ctx context.Context) error
	}

HTTPServerService turns the blocking ListenAndServe of *http.Server into
Serve with a bounded graceful Shutdown.

CatalogRefreshService reloads the eligible-set cache at startup and on
every TTL tick. A failed reload is logged and retried on the next tick.

The stats dispatcher (stats.Dispatcher) and the WebSocket hub
(websocket.Hub) implement Serve and String themselves and are added to the
tree directly.
*/
package services
