// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package websocket pushes live usage counters to browsers.

The Hub owns the set of connected clients. It runs as a supervised service
(RunWithContext or Serve) and fans each broadcast out to every client in
client id order. Broadcasts never block: when the hub's queue is full the
message is dropped, and a client whose own queue is full is disconnected.

Message format:

	{"type": "usage_update", "data": {"totalHelped": 128, "totalUsers": 40}}

Clients may send {"type": "ping"} and receive {"type": "pong"}. The
connection is also kept alive with protocol-level pings every 54 seconds.
*/
package websocket
