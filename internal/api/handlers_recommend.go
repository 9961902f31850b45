// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/eatwhat/internal/models"
	"github.com/tomtom215/eatwhat/internal/recommend"
)

// Recommend handles GET /api/recommend.
//
// Query parameters:
//   - includeDrink=true adds a drink to the dish
//   - onlyDrink=true returns a drink only
//   - type=food|drink returns exactly one item of that kind
//
// Each returned item carries its rating totals.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	opts := recommend.Options{
		WantsDrink: queryBool(r, "includeDrink"),
		OnlyDrink:  queryBool(r, "onlyDrink"),
	}
	switch r.URL.Query().Get("type") {
	case "food":
		opts.Kind = models.KindDish
	case "drink":
		opts.Kind = models.KindDrink
	}

	res, err := h.selector.Recommend(r.Context(), opts)
	if err != nil {
		respondServiceError(rw, r, err, emptyPoolMessage(err, opts))
		return
	}
	rw.Success(res)
}

// emptyPoolMessage names the kind whose pool was empty. A drink can only be
// the failing kind when the request asked for a drink alone.
func emptyPoolMessage(err error, opts recommend.Options) string {
	if !errors.Is(err, models.ErrEmptyCatalog) {
		return msgFoodNotFound
	}
	if opts.Kind == models.KindDrink || (opts.Kind == "" && opts.OnlyDrink) {
		return msgNoDrink
	}
	return msgNoDish
}
