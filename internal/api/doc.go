// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package api provides the HTTP JSON API using the Chi router.

# Routes

	GET    /api/recommend                 random dish, drink or both
	GET    /api/foods                     catalog list (all=true, or filtered and paged)
	POST   /api/foods                     create an ACTIVE item
	PUT    /api/foods/{id}                partial update
	DELETE /api/foods/{id}                delete with ratings and counters
	POST   /api/foods/batch               user upload, stored PENDING
	GET    /api/foods/ranking             leaderboard
	GET    /api/foods/{id}/rating         like and dislike totals
	POST   /api/foods/{id}/rating         like (1) or dislike (-1)
	DELETE /api/foods/{id}/rating         remove own rating
	GET    /api/stats                     ACTIVE counts per kind
	POST   /api/stats/recommendation      open a decision session
	PUT    /api/stats/recommendation      attempt, accept, reject or abandon
	GET    /api/stats/recommendation      session summary
	POST   /api/stats/usage               record a usage action
	GET    /api/stats/usage               simple or detailed usage
	GET    /api/health                    liveness and database ping
	GET    /api/ws                        live usage updates
	GET    /metrics                       Prometheus

# Response Envelope

Every /api response uses the same envelope:

	{"success": true, "data": {...}, "message": "...", "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "...", "request_id": "..."}, "meta": {...}}

Domain errors map to codes in respondServiceError. Storage failures are
logged and answered with a generic DATABASE_ERROR.

# Device Identity

Ratings, sessions and usage are attributed to the X-Device-ID header. When
it is absent the server falls back to a fingerprint of the user agent,
accept headers and client IP.

# Middleware

Global: request ID with logging context, RealIP, Recoverer, CORS.
Under /api: httprate limiting, security headers, Prometheus request
metrics and gzip compression.
*/
package api
