// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eatwhat/internal/database"
	"github.com/tomtom215/eatwhat/internal/models"
)

// CreateFoodRequest is the body of POST /api/foods.
// Tags may be a JSON array or a comma separated string.
type CreateFoodRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Type        string          `json:"type" validate:"required,foodkind"`
	Category    string          `json:"category" validate:"required,max=50"`
	Description string          `json:"description" validate:"max=500"`
	Tags        json.RawMessage `json:"tags,omitempty" validate:"-"`
}

// hasRequired reports whether the three mandatory fields are non-blank.
func (req *CreateFoodRequest) hasRequired() bool {
	return strings.TrimSpace(req.Name) != "" &&
		strings.TrimSpace(req.Type) != "" &&
		strings.TrimSpace(req.Category) != ""
}

// toFood builds the ACTIVE catalog item. Type must already be validated.
func (req *CreateFoodRequest) toFood() *models.FoodItem {
	kind, _ := models.ParseFoodKind(req.Type)
	return &models.FoodItem{
		Name:        strings.TrimSpace(req.Name),
		Kind:        kind,
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Tags:        parseRawTags(req.Tags),
		Status:      models.StatusActive,
	}
}

// UpdateFoodRequest is the body of PUT /api/foods/{id}. Absent fields are
// left unchanged.
type UpdateFoodRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=100"`
	Type        *string         `json:"type" validate:"omitempty,foodkind"`
	Category    *string         `json:"category" validate:"omitempty,min=1,max=50"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Tags        json.RawMessage `json:"tags,omitempty" validate:"-"`
	Status      *string         `json:"status" validate:"omitempty,foodstatus"`
}

func (req *UpdateFoodRequest) toUpdate() models.FoodUpdate {
	upd := models.FoodUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Type != nil {
		kind, _ := models.ParseFoodKind(*req.Type)
		upd.Kind = &kind
	}
	if req.Status != nil {
		status := models.FoodStatus(*req.Status)
		upd.Status = &status
	}
	if len(req.Tags) > 0 && string(req.Tags) != "null" {
		upd.Tags = parseRawTags(req.Tags)
	}
	return upd
}

func parseRawTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	return database.ParseTags(string(raw))
}

// BatchUploadRequest is the body of POST /api/foods/batch. Foods is a
// pointer so a missing array is told apart from an empty one.
type BatchUploadRequest struct {
	Foods *[]models.UploadItem `json:"foods"`
}

// RatingRequest is the body of POST /api/foods/{id}/rating.
type RatingRequest struct {
	Rating int `json:"rating"`
}

// SessionUpdateRequest is the body of PUT /api/stats/recommendation.
type SessionUpdateRequest struct {
	SessionID     string `json:"sessionId" validate:"max=64"`
	FoodID        string `json:"foodId,omitempty" validate:"max=64"`
	DrinkID       string `json:"drinkId,omitempty" validate:"max=64"`
	Action        string `json:"action" validate:"required,oneof=attempt accept reject abandon"`
	RejectionType string `json:"rejectionType,omitempty" validate:"omitempty,oneof=today forever"`
	AbandonReason string `json:"abandonReason,omitempty" validate:"omitempty,oneof=page_leave page_hidden timeout"`
}

func (req *SessionUpdateRequest) toUpdate() models.SessionUpdate {
	return models.SessionUpdate{
		SessionID:     req.SessionID,
		Action:        models.SessionAction(req.Action),
		FoodID:        req.FoodID,
		DrinkID:       req.DrinkID,
		RejectScope:   models.RejectScope(req.RejectionType),
		AbandonReason: models.AbandonReason(req.AbandonReason),
	}
}

// UsageRequest is the body of POST /api/stats/usage.
type UsageRequest struct {
	Action   string `json:"action"`
	DeviceID string `json:"deviceId" validate:"max=128"`
}
