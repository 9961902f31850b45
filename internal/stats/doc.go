// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package stats maintains the usage and per-food selection counters.

The Aggregator turns decision-flow events into counter increments against a
Store. Every increment is a single atomic upsert in the store, so counters
are created lazily at zero and concurrent writers never lose updates.

Counters written per event:

	click          total_clicks, daily_clicks, plus users on first sight of a device
	session_start  total_sessions, daily_sessions
	recommend      recommend_count per food; total_attempts, daily_attempts
	accept         accept_count per food; total_accepted, daily_accepted
	reject         reject_today_count or reject_forever_count per food; total_rejected, daily_rejected
	abandon        total_abandoned, daily_abandoned

The Dispatcher moves events off the request path. It publishes onto an
in-process watermill GoChannel and a router applies them with panic
recovery and retries. A failed event is logged and dropped; callers never
wait on it.

Usage:

	agg := stats.NewAggregator(db, hub)
	disp, err := stats.NewDispatcher(agg, stats.DispatcherConfig{})
	// run disp under the supervisor, then:
	disp.Dispatch(stats.NewEvent(stats.EventAccept, deviceID, foodID))
*/
package stats
