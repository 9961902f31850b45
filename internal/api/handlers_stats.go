// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/eatwhat/internal/cache"
	"github.com/tomtom215/eatwhat/internal/models"
	"github.com/tomtom215/eatwhat/internal/session"
	"github.com/tomtom215/eatwhat/internal/stats"
)

// usageMessages confirms each accepted usage action.
var usageMessages = map[models.UsageAction]string{
	models.UsageClick:        "点击统计已记录",
	models.UsageSessionStart: "会话统计已记录",
	models.UsageAttempt:      "尝试统计已记录",
	models.UsageAccept:       "接受统计已记录",
	models.UsageReject:       "拒绝统计已记录",
	models.UsageAbandon:      "放弃统计已记录",
}

const msgUnknownStatType = "未知的统计类型"

// SessionRef is returned by the session update endpoint.
type SessionRef struct {
	SessionID string `json:"sessionId"`
}

// CatalogStats handles GET /api/stats with the ACTIVE counts per kind.
func (h *Handler) CatalogStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	counts, err := h.db.CountActive(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(counts)
}

// StartSession handles POST /api/stats/recommendation.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req session.StartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(msgInvalidJSON)
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		req.DeviceID = deviceID(r)
	}
	if !validateRequest(rw, &req) {
		return
	}

	resp, err := h.sessions.Start(r.Context(), req)
	if err != nil {
		respondServiceError(rw, r, err, msgSessionMissing)
		return
	}
	rw.Success(resp)
}

// UpdateSession handles PUT /api/stats/recommendation.
//
// A missing session is 404. A session that is already closed, or that timed
// out before this action, is 409 SESSION_CLOSED.
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SessionUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(msgInvalidJSON)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		rw.BadRequest("缺少会话ID")
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	row, err := h.sessions.Apply(r.Context(), req.toUpdate())
	if err != nil {
		respondServiceError(rw, r, err, msgSessionMissing)
		return
	}
	rw.Success(SessionRef{SessionID: row.SessionID})
}

// SessionStats handles GET /api/stats/recommendation?type=summary.
func (h *Handler) SessionStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	typ := r.URL.Query().Get("type")
	if typ == "" {
		typ = "summary"
	}
	if typ != "summary" {
		rw.BadRequest(msgUnknownStatType)
		return
	}

	summary, err := h.cache.GetOrLoad(cache.GenerateKey("session_summary", nil), func() (interface{}, error) {
		return h.stats.SessionSummary(r.Context())
	})
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(summary)
}

// RecordUsage handles POST /api/stats/usage.
//
// The write is queued on the stats dispatcher and the response does not wait
// for it. Without a dispatcher it is applied inline.
func (h *Handler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req UsageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(msgInvalidJSON)
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	action := models.UsageAction(req.Action)
	device := strings.TrimSpace(req.DeviceID)
	if device == "" {
		device = deviceID(r)
	}

	ev, err := stats.EventForUsage(action, device)
	if err != nil {
		respondServiceError(rw, r, err, "")
		return
	}

	if h.events != nil {
		h.events.Dispatch(ev)
	} else if err := h.stats.Apply(r.Context(), ev); err != nil {
		respondServiceError(rw, r, err, "")
		return
	}
	rw.SuccessMessage(nil, usageMessages[action])
}

// UsageStats handles GET /api/stats/usage?type=simple|detailed.
func (h *Handler) UsageStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var (
		data interface{}
		err  error
	)
	switch r.URL.Query().Get("type") {
	case "", "simple":
		data, err = h.stats.SimpleUsage(r.Context())
	case "detailed":
		data, err = h.stats.DetailedUsage(r.Context())
	default:
		rw.BadRequest(msgUnknownStatType)
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(data)
}
