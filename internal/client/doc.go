// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package client is a typed Go client for the Eat-What HTTP JSON API.

Reads (recommend, catalog pages, ranking, statistics, health) are tried up
to ReadAttempts times with a linear backoff and share one gobreaker circuit
breaker. Five consecutive transport failures or 5xx answers open the breaker
for 30 seconds; 4xx answers do not count against it. Writes are sent once.

Error answers come back as *APIError. Its Unwrap maps 404 to
models.ErrNotFound and 409 SESSION_CLOSED to models.ErrSessionAlreadyClosed:

	_, err := c.GetRating(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
	    // food was deleted
	}

Client implements session.Backend, and Reporter implements session.Reporter,
so a session.Tracker can run a decision flow against a remote server:

	c, _ := client.New(client.Config{BaseURL: "http://localhost:3001", DeviceID: id})
	rep := client.NewReporter(c, client.ReporterConfig{})
	go rep.Run(ctx)
	defer rep.Close()

	tracker, _ := session.NewTracker(session.TrackerConfig{
	    DeviceID: id,
	    Backend:  c,
	    Reporter: rep,
	})
*/
package client
