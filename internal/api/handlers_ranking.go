// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"net/http"

	"github.com/tomtom215/eatwhat/internal/cache"
	"github.com/tomtom215/eatwhat/internal/models"
	"github.com/tomtom215/eatwhat/internal/recommend"
)

// RankingResponse is the body of GET /api/foods/ranking.
type RankingResponse struct {
	Ranking []models.RankedFood `json:"ranking"`
	Total   int                 `json:"total"`
	Type    string              `json:"type"`
}

// Ranking handles GET /api/foods/ranking?type=all|dish|drink&limit=N.
// Results are cached for the configured API cache TTL.
func (h *Handler) Ranking(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	typ := r.URL.Query().Get("type")
	if typ == "" {
		typ = "all"
	}
	var kind models.FoodKind
	if typ != "all" {
		k, ok := models.ParseFoodKind(typ)
		if !ok {
			rw.BadRequest("无效的类型参数")
			return
		}
		kind = k
	}
	limit := clamp(getIntParam(r, "limit", h.config.API.DefaultRankLimit), h.config.API.DefaultRankLimit, h.config.API.MaxRankLimit)

	key := cache.GenerateKey("ranking", map[string]interface{}{"kind": kind, "limit": limit})
	v, err := h.cache.GetOrLoad(key, func() (interface{}, error) {
		return recommend.Leaderboard(r.Context(), h.db, kind, limit)
	})
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	ranked, _ := v.([]models.RankedFood)
	if ranked == nil {
		ranked = []models.RankedFood{}
	}
	rw.Success(RankingResponse{Ranking: ranked, Total: len(ranked), Type: typ})
}
