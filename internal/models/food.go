// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package models

import (
	"strings"
	"time"
)

// FoodKind distinguishes dishes from drinks.
type FoodKind string

const (
	KindDish  FoodKind = "DISH"
	KindDrink FoodKind = "DRINK"
)

// Valid reports whether k is a known kind.
func (k FoodKind) Valid() bool {
	return k == KindDish || k == KindDrink
}

// ParseFoodKind accepts the canonical upper-case names and the lower-case
// query aliases used by the HTTP API ("dish"/"food" and "drink").
func ParseFoodKind(s string) (FoodKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dish", "food":
		return KindDish, true
	case "drink":
		return KindDrink, true
	}
	return "", false
}

// FoodStatus is the moderation state of a catalog item.
type FoodStatus string

const (
	StatusActive  FoodStatus = "ACTIVE"
	StatusPending FoodStatus = "PENDING"
	StatusHidden  FoodStatus = "HIDDEN"

	// StatusAll is a query-only value that disables status filtering.
	StatusAll FoodStatus = "ALL"
)

// Valid reports whether s is a storable status.
func (s FoodStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusHidden:
		return true
	}
	return false
}

// FoodItem is a single dish or drink in the catalog. Only ACTIVE items are
// eligible for recommendation and ranking.
type FoodItem struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Kind           FoodKind   `json:"type"`
	Category       string     `json:"category"`
	Description    string     `json:"description,omitempty"`
	Tags           []string   `json:"tags"`
	Status         FoodStatus `json:"status"`
	IsUserUploaded bool       `json:"isUserUploaded"`
	UploaderRef    string     `json:"uploadedBy,omitempty"`
	UploadIP       string     `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// IsEligible reports whether the item may be recommended.
func (f *FoodItem) IsEligible() bool {
	return f != nil && f.Status == StatusActive
}

// FoodUpdate carries a partial update. Nil fields are left unchanged.
type FoodUpdate struct {
	Name        *string
	Kind        *FoodKind
	Category    *string
	Description *string
	Tags        []string
	Status      *FoodStatus
}

// FoodFilter selects a page of catalog items.
type FoodFilter struct {
	Kind   FoodKind
	Status FoodStatus
	Search string
	Page   int
	Limit  int
}

// Pagination describes a page of results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes TotalPages as ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// UploadItem is one entry of a user batch upload.
type UploadItem struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// UploadMeta identifies who contributed a batch.
type UploadMeta struct {
	UploaderRef string
	UploadIP    string
}

// BatchResult enumerates per-item outcomes of a batch upload. Duplicates
// holds one entry per rejected line, so in-batch repeats appear repeatedly.
type BatchResult struct {
	Success    int      `json:"success"`
	Duplicates []string `json:"duplicates"`
	Errors     []string `json:"errors"`
}

// CatalogCounts holds the number of ACTIVE items per kind.
type CatalogCounts struct {
	DishCount  int `json:"dishCount"`
	DrinkCount int `json:"drinkCount"`
	TotalCount int `json:"totalCount"`
}
