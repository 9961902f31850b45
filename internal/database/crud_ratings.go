// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tomtom215/eatwhat/internal/metrics"
	"github.com/tomtom215/eatwhat/internal/models"
)

// UpsertRating stores one device's rating for a food, replacing any previous one.
func (db *DB) UpsertRating(ctx context.Context, r models.FoodRating) error {
	if !models.ValidRating(r.Rating) {
		return models.NewValidationError("rating", "评分值必须为 1 或 -1")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.timestamp()
	_, err := db.execWithRetry(ctx, "rating:"+r.FoodID+":"+r.DeviceID, "food_ratings", `
		INSERT INTO food_ratings (food_id, device_id, rating, ip_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (food_id, device_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			ip_address = EXCLUDED.ip_address,
			updated_at = EXCLUDED.updated_at`,
		r.FoodID, r.DeviceID, r.Rating, nullString(r.IPAddress), now, now)
	return storeError("upsert rating", err)
}

// DeleteRating removes a device's rating. Deleting a missing rating is not an error.
func (db *DB) DeleteRating(ctx context.Context, foodID, deviceID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM food_ratings WHERE food_id = ? AND device_id = ?`, foodID, deviceID)
	metrics.RecordDBQuery("DELETE", "food_ratings", time.Since(start), err)
	return storeError("delete rating", err)
}

// GetRatingSummary returns like and dislike totals and, when deviceID is set,
// that device's own rating.
func (db *DB) GetRatingSummary(ctx context.Context, foodID, deviceID string) (*models.RatingSummary, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stats, err := db.RatingStatsFor(ctx, []string{foodID})
	if err != nil {
		return nil, err
	}
	summary := &models.RatingSummary{RatingStats: stats[foodID]}
	if deviceID == "" {
		return summary, nil
	}

	var rating int
	err = db.conn.QueryRowContext(ctx,
		`SELECT rating FROM food_ratings WHERE food_id = ? AND device_id = ?`, foodID, deviceID).Scan(&rating)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, storeError("get user rating", err)
	default:
		summary.UserRating = &rating
	}
	return summary, nil
}

// RatingStatsFor aggregates ratings for several foods in one query.
// Foods without ratings are present with zero counts.
func (db *DB) RatingStatsFor(ctx context.Context, foodIDs []string) (map[string]models.RatingStats, error) {
	out := make(map[string]models.RatingStats, len(foodIDs))
	if len(foodIDs) == 0 {
		return out, nil
	}
	for _, id := range foodIDs {
		out[id] = models.RatingStats{}
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	args := make([]interface{}, len(foodIDs))
	for i, id := range foodIDs {
		args[i] = id
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT food_id,
			COUNT(*) FILTER (WHERE rating = 1),
			COUNT(*) FILTER (WHERE rating = -1),
			COUNT(*)
		FROM food_ratings
		WHERE food_id IN (`+placeholders(len(args))+`)
		GROUP BY food_id`, args...)
	if err != nil {
		metrics.RecordDBQuery("SELECT", "food_ratings", time.Since(start), err)
		return nil, storeError("rating stats", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var (
			id string
			s  models.RatingStats
		)
		if err := rows.Scan(&id, &s.Likes, &s.Dislikes, &s.Total); err != nil {
			return nil, storeError("scan rating stats", err)
		}
		out[id] = s
	}
	err = rows.Err()
	metrics.RecordDBQuery("SELECT", "food_ratings", time.Since(start), err)
	if err != nil {
		return nil, storeError("rating stats", err)
	}
	return out, nil
}
