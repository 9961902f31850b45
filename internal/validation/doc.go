// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is created on first use and shared by all
// callers; it caches struct metadata and is safe for concurrent use.
// Error field names come from the json tag, so messages name the field the
// client actually sent.
//
// # Custom tags
//
//   - foodkind: DISH or DRINK, case-insensitive, plus the "food" alias
//   - foodstatus: ACTIVE, PENDING or HIDDEN
//   - rating: 1 or -1
//
// # Usage
//
//	type createFoodRequest struct {
//	    Name     string `json:"name" validate:"required,max=100"`
//	    Type     string `json:"type" validate:"required,foodkind"`
//	    Category string `json:"category" validate:"required"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    rw.ValidationError(verr.Message(), verr.Details())
//	}
package validation
