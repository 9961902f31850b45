// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/eatwhat/internal/models"
)

// GetRating handles GET /api/foods/{id}/rating. userRating is the calling
// device's own rating or null.
func (h *Handler) GetRating(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	summary, err := h.db.GetRatingSummary(r.Context(), chi.URLParam(r, "id"), deviceID(r))
	if err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}
	rw.Success(summary)
}

// RateFood handles POST /api/foods/{id}/rating with {"rating": 1 | -1}.
// A device has at most one rating per food; rating again replaces it.
func (h *Handler) RateFood(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	foodID := chi.URLParam(r, "id")

	var req RatingRequest
	if err := decodeJSON(w, r, &req); err != nil || !models.ValidRating(req.Rating) {
		rw.BadRequest("评分值必须是 1（点赞）或 -1（点踩）")
		return
	}

	if _, err := h.db.GetFood(r.Context(), foodID); err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}

	device := deviceID(r)
	err := h.db.UpsertRating(r.Context(), models.FoodRating{
		FoodID:    foodID,
		DeviceID:  device,
		Rating:    req.Rating,
		IPAddress: clientIP(r),
	})
	if err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}

	summary, err := h.db.GetRatingSummary(r.Context(), foodID, device)
	if err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}

	message := "点赞成功"
	if req.Rating == models.RatingDislike {
		message = "点踩成功"
	}
	rw.SuccessMessage(summary, message)
}

// DeleteRating handles DELETE /api/foods/{id}/rating.
func (h *Handler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	foodID := chi.URLParam(r, "id")
	device := deviceID(r)

	if err := h.db.DeleteRating(r.Context(), foodID, device); err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}

	summary, err := h.db.GetRatingSummary(r.Context(), foodID, device)
	if err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}
	rw.SuccessMessage(summary, "取消评分成功")
}
