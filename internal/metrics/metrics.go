// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

// Package metrics exposes the Prometheus instrumentation for the service.
//
// All collectors are registered on the default registry through promauto,
// so importing the package is enough for /metrics to report them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eatwhat_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwhat_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConflictRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwhat_duckdb_conflict_retries_total",
			Help: "Total number of retried writes after a transaction conflict",
		},
		[]string{"table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwhat_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eatwhat_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eatwhat_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwhat_recommendations_total",
			Help: "Total number of recommendations served",
		},
		[]string{"kind"},
	)

	RecommendationEmpty = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwhat_recommendation_empty_catalog_total",
			Help: "Recommendation requests that found no eligible item",
		},
		[]string{"kind"},
	)

	EligibleCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatwhat_eligible_cache_hits_total",
			Help: "Eligible-pool lookups served from memory",
		},
	)

	EligibleCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatwhat_eligible_cache_misses_total",
			Help: "Eligible-pool lookups that reloaded from the catalog",
		},
	)

	EligibleCacheRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatwhat_eligible_cache_refreshes_total",
			Help: "Scheduled reloads of the eligible pools",
		},
	)

	// Session Metrics
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatwhat_sessions_started_total",
			Help: "Total number of recommendation sessions started",
		},
	)

	SessionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwhat_sessions_closed_total",
			Help: "Recommendation sessions closed, by outcome",
		},
		[]string{"outcome"},
	)

	// Statistics pipeline
	StatsEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwhat_stats_events_published_total",
			Help: "Statistics events handed to the dispatcher",
		},
		[]string{"event"},
	)

	StatsEventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatwhat_stats_events_failed_total",
			Help: "Statistics events that could not be applied",
		},
		[]string{"event"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eatwhat_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatwhat_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatwhat_websocket_messages_dropped_total",
			Help: "WebSocket messages dropped because a buffer was full",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation counts a served recommendation, or an empty pool when found is false.
func RecordRecommendation(kind string, found bool) {
	if found {
		RecommendationsTotal.WithLabelValues(kind).Inc()
		return
	}
	RecommendationEmpty.WithLabelValues(kind).Inc()
}

// RecordCacheLookup records an eligible-pool cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		EligibleCacheHits.Inc()
	} else {
		EligibleCacheMisses.Inc()
	}
}

// RecordCacheRefresh records a completed scheduled reload.
func RecordCacheRefresh() {
	EligibleCacheRefreshes.Inc()
}

// RecordSessionClosed records a terminal session outcome.
func RecordSessionClosed(outcome string) {
	SessionsClosed.WithLabelValues(outcome).Inc()
}

// RecordStatsEvent records a dispatched statistics event and whether applying it failed.
func RecordStatsEvent(event string, err error) {
	StatsEventsPublished.WithLabelValues(event).Inc()
	if err != nil {
		StatsEventsFailed.WithLabelValues(event).Inc()
	}
}
