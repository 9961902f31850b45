// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/eatwhat/internal/cache"
)

// Version is reported by the health endpoint. Release builds set it with
// -ldflags "-X github.com/tomtom215/eatwhat/internal/api.Version=...".
var Version = "dev"

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status            string      `json:"status"`
	Version           string      `json:"version"`
	DatabaseConnected bool        `json:"databaseConnected"`
	WebSocketClients  int         `json:"websocketClients"`
	ResponseCache     cache.Stats `json:"responseCache"`
	Uptime            float64     `json:"uptime"`
}

// Health handles GET /api/health. The status is "degraded" with a 503 when
// the database does not answer a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	health := HealthStatus{
		Status:            "healthy",
		Version:           Version,
		DatabaseConnected: dbConnected,
		ResponseCache:     h.cache.GetStats(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.ClientCount()
	}

	if !dbConnected {
		health.Status = "degraded"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database unavailable", health)
		return
	}
	rw.Success(health)
}
