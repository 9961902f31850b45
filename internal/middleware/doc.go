// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package middleware provides HTTP middleware for the eat-what API.

Both middlewares use the chi signature func(http.Handler) http.Handler:

  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - Compression: gzip for clients that send Accept-Encoding: gzip

Request ids, CORS and rate limiting come from the chi ecosystem and are
assembled in package api.

Typical stack:

	r := chi.NewRouter()
	r.Use(api.RequestIDWithLogging())
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
*/
package middleware
