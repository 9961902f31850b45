// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/eatwhat/internal/models"
	"github.com/tomtom215/eatwhat/internal/session"
)

// Recommendation is the body of GET /api/recommend. Either side may be nil.
type Recommendation struct {
	Food  *models.RatedFood `json:"food"`
	Drink *models.RatedFood `json:"drink"`
}

// RecommendOptions mirrors the recommend query string.
type RecommendOptions struct {
	IncludeDrink bool
	OnlyDrink    bool
	Kind         models.FoodKind
}

// FoodPage is one page of GET /api/foods.
type FoodPage struct {
	Foods      []models.FoodItem `json:"foods"`
	Pagination models.Pagination `json:"pagination"`
}

// Ranking is the body of GET /api/foods/ranking.
type Ranking struct {
	Ranking []models.RankedFood `json:"ranking"`
	Total   int                 `json:"total"`
	Type    string              `json:"type"`
}

// Health is the subset of GET /api/health the client reads.
type Health struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"databaseConnected"`
	WebSocketClients  int     `json:"websocketClients"`
	Uptime            float64 `json:"uptime"`
}

// Recommend draws a random dish, drink or pair.
func (c *Client) Recommend(ctx context.Context, opts RecommendOptions) (*Recommendation, error) {
	q := url.Values{}
	if opts.IncludeDrink {
		q.Set("includeDrink", "true")
	}
	if opts.OnlyDrink {
		q.Set("onlyDrink", "true")
	}
	switch opts.Kind {
	case models.KindDish:
		q.Set("type", "food")
	case models.KindDrink:
		q.Set("type", "drink")
	}

	var rec Recommendation
	if err := c.get(ctx, "/api/recommend", q, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListFoods returns one page of the catalog. Zero fields use server defaults.
func (c *Client) ListFoods(ctx context.Context, filter models.FoodFilter) (*FoodPage, error) {
	q := url.Values{}
	if filter.Kind != "" {
		q.Set("type", strings.ToLower(string(filter.Kind)))
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q.Set("search", s)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	var page FoodPage
	if err := c.get(ctx, "/api/foods", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Ranking returns the leaderboard. An empty kind ranks the whole catalog.
func (c *Client) Ranking(ctx context.Context, kind models.FoodKind, limit int) (*Ranking, error) {
	q := url.Values{}
	if kind == "" {
		q.Set("type", "all")
	} else {
		q.Set("type", strings.ToLower(string(kind)))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var r Ranking
	if err := c.get(ctx, "/api/foods/ranking", q, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRating returns the rating totals of a food and this device's vote.
func (c *Client) GetRating(ctx context.Context, foodID string) (*models.RatingSummary, error) {
	var s models.RatingSummary
	if err := c.get(ctx, "/api/foods/"+url.PathEscape(foodID)+"/rating", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Rate records a like (1) or dislike (-1) for this device.
func (c *Client) Rate(ctx context.Context, foodID string, rating int) (*models.RatingSummary, error) {
	var s models.RatingSummary
	body := map[string]int{"rating": rating}
	if _, err := c.send(ctx, http.MethodPost, "/api/foods/"+url.PathEscape(foodID)+"/rating", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateFood adds an ACTIVE item to the catalog.
func (c *Client) CreateFood(ctx context.Context, item models.UploadItem) (*models.FoodItem, error) {
	var food models.FoodItem
	if _, err := c.send(ctx, http.MethodPost, "/api/foods", item, &food); err != nil {
		return nil, err
	}
	return &food, nil
}

// BatchUpload submits user contributed items. The message is the server's
// summary line.
func (c *Client) BatchUpload(ctx context.Context, items []models.UploadItem) (*models.BatchResult, string, error) {
	var res models.BatchResult
	body := map[string][]models.UploadItem{"foods": items}
	resp, err := c.send(ctx, http.MethodPost, "/api/foods/batch", body, &res)
	if err != nil {
		return nil, "", err
	}
	return &res, resp.Message, nil
}

// CatalogStats returns the active dish and drink counts.
func (c *Client) CatalogStats(ctx context.Context) (*models.CatalogCounts, error) {
	var counts models.CatalogCounts
	if err := c.get(ctx, "/api/stats", nil, &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}

// StartSession opens a decision session. It satisfies session.Backend.
func (c *Client) StartSession(ctx context.Context, req session.StartRequest) (*session.StartResponse, error) {
	if req.DeviceID == "" {
		req.DeviceID = c.deviceID
	}
	var resp session.StartResponse
	if _, err := c.send(ctx, http.MethodPost, "/api/stats/recommendation", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// sessionUpdateBody is the wire form of models.SessionUpdate.
type sessionUpdateBody struct {
	SessionID     string `json:"sessionId"`
	Action        string `json:"action"`
	FoodID        string `json:"foodId,omitempty"`
	DrinkID       string `json:"drinkId,omitempty"`
	RejectionType string `json:"rejectionType,omitempty"`
	AbandonReason string `json:"abandonReason,omitempty"`
}

// UpdateSession sends one session action.
func (c *Client) UpdateSession(ctx context.Context, upd models.SessionUpdate) error {
	body := sessionUpdateBody{
		SessionID:     upd.SessionID,
		Action:        string(upd.Action),
		FoodID:        upd.FoodID,
		DrinkID:       upd.DrinkID,
		RejectionType: string(upd.RejectScope),
		AbandonReason: string(upd.AbandonReason),
	}
	_, err := c.send(ctx, http.MethodPut, "/api/stats/recommendation", body, nil)
	return err
}

// SessionSummary returns the aggregate session statistics.
func (c *Client) SessionSummary(ctx context.Context) (*models.SessionSummary, error) {
	var s models.SessionSummary
	q := url.Values{"type": {"summary"}}
	if err := c.get(ctx, "/api/stats/recommendation", q, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordUsage reports a usage action for this device.
func (c *Client) RecordUsage(ctx context.Context, action models.UsageAction) error {
	body := map[string]string{"action": string(action), "deviceId": c.deviceID}
	_, err := c.send(ctx, http.MethodPost, "/api/stats/usage", body, nil)
	return err
}

// SimpleUsage returns the landing page counters.
func (c *Client) SimpleUsage(ctx context.Context) (*models.SimpleUsage, error) {
	var u models.SimpleUsage
	if err := c.get(ctx, "/api/stats/usage", url.Values{"type": {"simple"}}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DetailedUsage returns the global usage row and recent days.
func (c *Client) DetailedUsage(ctx context.Context) (*models.DetailedUsage, error) {
	var u models.DetailedUsage
	if err := c.get(ctx, "/api/stats/usage", url.Values{"type": {"detailed"}}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Health reports server health. A degraded server answers 503, which comes
// back as an *APIError.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
