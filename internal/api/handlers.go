// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/eatwhat/internal/cache"
	"github.com/tomtom215/eatwhat/internal/config"
	"github.com/tomtom215/eatwhat/internal/database"
	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/recommend"
	"github.com/tomtom215/eatwhat/internal/session"
	"github.com/tomtom215/eatwhat/internal/stats"
	ws "github.com/tomtom215/eatwhat/internal/websocket"
)

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, WebSocket upgrade (this file)
//   - handlers_helpers.go: shared request helpers
//   - handlers_health.go: health endpoint
//   - handlers_recommend.go: random recommendation
//   - handlers_foods.go: catalog CRUD and batch upload
//   - handlers_ratings.go: like and dislike
//   - handlers_stats.go: sessions, usage and catalog counts
//   - handlers_ranking.go: leaderboard
type Handler struct {
	db        *database.DB
	selector  *recommend.Selector
	eligible  *recommend.EligibleCache
	sessions  *session.Service
	stats     *stats.Aggregator
	events    session.EventSink
	wsHub     *ws.Hub
	config    *config.Config
	cache     *cache.Cache
	startTime time.Time
}

// Deps are the collaborators a Handler needs. Events and Hub are optional:
// a nil Events applies usage writes synchronously through Stats, and a nil
// Hub disables /api/ws.
type Deps struct {
	DB       *database.DB
	Eligible *recommend.EligibleCache
	Selector *recommend.Selector
	Sessions *session.Service
	Stats    *stats.Aggregator
	Events   session.EventSink
	Hub      *ws.Hub
	Config   *config.Config
}

// NewHandler creates the API handler.
//
// Example:
//
//	handler := api.NewHandler(api.Deps{DB: db, Eligible: eligible, ...})
//	router := api.NewRouter(handler, api.MiddlewareConfigFrom(cfg.Security))
//	http.ListenAndServe(":3001", router.SetupChi())
func NewHandler(d Deps) *Handler {
	var ttl time.Duration
	if d.Config != nil {
		ttl = d.Config.API.CacheTTL
	}
	return &Handler{
		db:        d.DB,
		selector:  d.Selector,
		eligible:  d.Eligible,
		sessions:  d.Sessions,
		stats:     d.Stats,
		events:    d.Events,
		wsHub:     d.Hub,
		config:    d.Config,
		cache:     cache.New(ttl),
		startTime: time.Now(),
	}
}

// Close releases the handler's response cache.
func (h *Handler) Close() {
	h.cache.Close()
}

// catalogChanged drops every derived view of the catalog.
func (h *Handler) catalogChanged() {
	if h.eligible != nil {
		h.eligible.Invalidate()
	}
	h.cache.Clear()
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins. Browsers
// always send Origin, so a missing header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// WebSocket upgrades the connection and registers it for live usage updates.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
