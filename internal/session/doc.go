// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package session tracks decision-flow sessions on both sides of the API.

A decision flow starts, collects zero or more attempts (one shown dish,
optionally with a drink) and ends with exactly one outcome: accepted,
rejected for today, rejected forever, or abandoned. A closed session never
reopens; every later transition fails with models.ErrSessionAlreadyClosed.

Client side, a Tracker holds the state machine for one device:

	Idle --Start--> Active --RecordAttempt--> Active
	Active --Accept|Reject|Abandon--> Terminal
	Terminal --Start--> Active (a new session)

The tracker persists a small Snapshot through a Storage after every change
so a restarted client can Resume. A snapshot idle for the session timeout
(five minutes) is discarded locally without contacting the server. Actions
after Start are handed to a Reporter and never wait on the network.

Server side, a Service owns the session rows. It validates each action,
closes sessions that timed out, updates the row with a conditional write
that only succeeds while the session is open, and dispatches the matching
statistics event.
*/
package session
