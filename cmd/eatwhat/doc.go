// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Command eatwhat is a terminal client for an Eat-What server.

	eatwhat [-server URL] [-state DIR] [pick|stats|ranking]

pick (the default) runs one decision: it draws a dish, optionally with a
drink (-drink), and asks whether to accept it, draw the next one, or reject
it for today or forever. The open session and the device id are kept in a
BadgerDB store under -state, so an interrupted decision resumes on the next
run until the session times out.

stats prints the public usage counters and the session summary. ranking
prints the leaderboard (-type all|dish|drink, -limit N).

The server URL defaults to $EATWHAT_SERVER, then http://localhost:3001.
*/
package main
