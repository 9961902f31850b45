// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/eatwhat/internal/database"
	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/models"
)

// FoodListResponse is the paginated form of GET /api/foods.
type FoodListResponse struct {
	Foods      []models.FoodItem `json:"foods"`
	Pagination models.Pagination `json:"pagination"`
}

// ListFoods handles GET /api/foods.
//
// all=true returns the whole catalog as a bare array. Otherwise type,
// status (default ACTIVE, or ALL), search, page and limit filter and page
// the result.
func (h *Handler) ListFoods(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()

	if q.Get("all") == "true" {
		foods, err := h.db.ListAllFoods(r.Context())
		if err != nil {
			rw.DatabaseError(err)
			return
		}
		rw.Success(foods)
		return
	}

	filter := models.FoodFilter{
		Status: models.StatusActive,
		Search: strings.TrimSpace(q.Get("search")),
		Page:   getIntParam(r, "page", 1),
		Limit:  clamp(getIntParam(r, "limit", h.config.API.DefaultPageSize), h.config.API.DefaultPageSize, h.config.API.MaxPageSize),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if raw := q.Get("type"); raw != "" {
		kind, ok := models.ParseFoodKind(raw)
		if !ok {
			rw.BadRequest("无效的类型参数")
			return
		}
		filter.Kind = kind
	}
	if raw := q.Get("status"); raw != "" {
		status := models.FoodStatus(strings.ToUpper(raw))
		if status != models.StatusAll && !status.Valid() {
			rw.BadRequest("无效的状态参数")
			return
		}
		filter.Status = status
	}

	foods, total, err := h.db.ListFoods(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(FoodListResponse{
		Foods:      foods,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	})
}

// CreateFood handles POST /api/foods. The item is created ACTIVE.
func (h *Handler) CreateFood(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateFoodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(msgInvalidJSON)
		return
	}
	if !req.hasRequired() {
		rw.BadRequest("名称、类型和分类为必填项")
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	food := req.toFood()
	if err := h.db.CreateFood(r.Context(), food); err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}
	h.catalogChanged()

	logging.CtxInfo(r.Context()).
		Str("food_id", food.ID).
		Str("kind", string(food.Kind)).
		Msg("food created")
	rw.Created(food, "创建成功")
}

// UpdateFood handles PUT /api/foods/{id} as a partial update.
func (h *Handler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")

	var req UpdateFoodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(msgInvalidJSON)
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	food, err := h.db.UpdateFood(r.Context(), id, req.toUpdate())
	if err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}
	h.catalogChanged()
	rw.SuccessMessage(food, "更新成功")
}

// DeleteFood handles DELETE /api/foods/{id}. Ratings and counters of the
// item are removed with it.
func (h *Handler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")

	if err := h.db.DeleteFood(r.Context(), id); err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}
	h.catalogChanged()

	logging.CtxInfo(r.Context()).Str("food_id", sanitizeLogValue(id)).Msg("food deleted")
	rw.SuccessMessage(nil, "删除成功")
}

// BatchUpload handles POST /api/foods/batch.
//
// Items are stored PENDING and attributed to the X-Device-ID header and
// the client IP. Per-item failures are reported, never fatal.
func (h *Handler) BatchUpload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req BatchUploadRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Foods == nil {
		rw.BadRequest("请提供有效的菜品数组")
		return
	}

	limit := h.config.Catalog.BatchMaxItems
	if err := database.ValidateBatchSize(len(*req.Foods), limit); err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}

	meta := models.UploadMeta{
		UploaderRef: strings.TrimSpace(r.Header.Get(DeviceIDHeader)),
		UploadIP:    clientIP(r),
	}
	result, err := h.db.BatchUpload(r.Context(), *req.Foods, meta, limit)
	if err != nil {
		respondServiceError(rw, r, err, msgFoodNotFound)
		return
	}

	logging.CtxInfo(r.Context()).
		Int("success", result.Success).
		Int("duplicates", len(result.Duplicates)).
		Int("errors", len(result.Errors)).
		Msg("batch upload processed")
	rw.SuccessMessage(result, batchMessage(result))
}

// batchMessage renders "成功上传 N 个菜品" plus the duplicate and failure
// counts when non-zero.
func batchMessage(res *models.BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "成功上传 %d 个菜品", res.Success)
	if n := len(res.Duplicates); n > 0 {
		fmt.Fprintf(&b, "，%d 个重复", n)
	}
	if n := len(res.Errors); n > 0 {
		fmt.Fprintf(&b, "，%d 个失败", n)
	}
	return b.String()
}
