// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/eatwhat/internal/metrics"
	"github.com/tomtom215/eatwhat/internal/models"
)

// foodCounterColumns maps each per-food counter to its count and timestamp columns.
var foodCounterColumns = map[models.FoodCounter][2]string{
	models.FoodRecommended:     {"recommend_count", "last_recommended"},
	models.FoodAccepted:        {"accept_count", "last_accepted"},
	models.FoodRejectedToday:   {"reject_today_count", "last_rejected"},
	models.FoodRejectedForever: {"reject_forever_count", "last_rejected"},
}

// IncrementFoodCounter adds one to a per-food counter, creating the stats row
// on first use. The whole change is a single UPSERT statement.
func (db *DB) IncrementFoodCounter(ctx context.Context, foodID string, counter models.FoodCounter) error {
	cols, ok := foodCounterColumns[counter]
	if !ok {
		return models.NewValidationError("counter", fmt.Sprintf("unknown food counter %q", counter))
	}
	if foodID == "" {
		return models.NewValidationError("foodId", "food id is required")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	// Column names come from the fixed map above, never from input.
	query := fmt.Sprintf(`
		INSERT INTO food_selection_stats (food_id, %[1]s, %[2]s) VALUES (?, 1, ?)
		ON CONFLICT (food_id) DO UPDATE SET
			%[1]s = %[1]s + 1,
			%[2]s = EXCLUDED.%[2]s`, cols[0], cols[1])

	_, err := db.execWithRetry(ctx, "food_stat:"+foodID, "food_selection_stats", query, foodID, db.timestamp())
	return storeError("increment food counter", err)
}

// IncrementGlobalUsage adds one to a counter on the global usage singleton.
func (db *DB) IncrementGlobalUsage(ctx context.Context, counter models.UsageCounter) error {
	if !counter.Valid() {
		return models.NewValidationError("counter", fmt.Sprintf("unknown usage counter %q", counter))
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	col := "total_" + string(counter)
	query := fmt.Sprintf(`
		INSERT INTO global_usage_stats (id, %[1]s, last_updated) VALUES (?, 1, ?)
		ON CONFLICT (id) DO UPDATE SET
			%[1]s = %[1]s + 1,
			last_updated = EXCLUDED.last_updated`, col)

	_, err := db.execWithRetry(ctx, "usage:global", "global_usage_stats", query, globalUsageID, db.timestamp())
	return storeError("increment global usage", err)
}

// IncrementDailyUsage adds one to a counter on the row for date, creating it on first use.
func (db *DB) IncrementDailyUsage(ctx context.Context, date string, counter models.UsageCounter) error {
	if !counter.Valid() {
		return models.NewValidationError("counter", fmt.Sprintf("unknown usage counter %q", counter))
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	col := "daily_" + string(counter)
	query := fmt.Sprintf(`
		INSERT INTO daily_usage_stats (date, %[1]s) VALUES (?, 1)
		ON CONFLICT (date) DO UPDATE SET %[1]s = %[1]s + 1`, col)

	_, err := db.execWithRetry(ctx, "usage:daily:"+date, "daily_usage_stats", query, date)
	return storeError("increment daily usage", err)
}

// RegisterDevice records a device in the all-time registry and reports
// whether this call was the first sighting.
func (db *DB) RegisterDevice(ctx context.Context, deviceID string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.execWithRetry(ctx, "device:"+deviceID, "known_devices",
		`INSERT INTO known_devices (device_id, first_seen) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		deviceID, db.timestamp())
	return firstInsert(result, err, "register device")
}

// RegisterDailyDevice records a device for one date and reports whether this
// call was its first sighting that day.
func (db *DB) RegisterDailyDevice(ctx context.Context, date, deviceID string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.execWithRetry(ctx, "device:"+date+":"+deviceID, "daily_devices",
		`INSERT INTO daily_devices (date, device_id, first_seen) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		date, deviceID, db.timestamp())
	return firstInsert(result, err, "register daily device")
}

func firstInsert(result sql.Result, err error, op string) (bool, error) {
	if err != nil {
		return false, storeError(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, storeError(op, err)
	}
	return n == 1, nil
}

// GetGlobalUsage returns the global usage singleton.
func (db *DB) GetGlobalUsage(ctx context.Context) (*models.GlobalUsageStat, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		g       models.GlobalUsageStat
		updated sql.NullTime
	)
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, `
		SELECT total_clicks, total_users, total_sessions, total_attempts,
			total_accepted, total_rejected, total_abandoned, last_updated
		FROM global_usage_stats WHERE id = ?`, globalUsageID).Scan(
		&g.TotalClicks, &g.TotalUsers, &g.TotalSessions, &g.TotalAttempts,
		&g.TotalAccepted, &g.TotalRejected, &g.TotalAbandoned, &updated)
	metrics.RecordDBQuery("SELECT", "global_usage_stats", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		// Recreate a singleton lost to manual cleanup.
		if err := db.ensureGlobalUsageRow(ctx); err != nil {
			return nil, storeError("get global usage", err)
		}
		return &models.GlobalUsageStat{LastUpdated: db.timestamp()}, nil
	}
	if err != nil {
		return nil, storeError("get global usage", err)
	}
	if updated.Valid {
		g.LastUpdated = updated.Time
	}
	return &g, nil
}

// ListDailyUsage returns the most recent daily rows, newest first, each with
// the set of devices seen that day.
func (db *DB) ListDailyUsage(ctx context.Context, limit int) ([]models.DailyUsageStat, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 30
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date, daily_clicks, daily_users, daily_sessions, daily_attempts,
			daily_accepted, daily_rejected, daily_abandoned
		FROM daily_usage_stats ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		metrics.RecordDBQuery("SELECT", "daily_usage_stats", time.Since(start), err)
		return nil, storeError("list daily usage", err)
	}

	days := make([]models.DailyUsageStat, 0, limit)
	index := make(map[string]int, limit)
	for rows.Next() {
		var d models.DailyUsageStat
		if err := rows.Scan(&d.Date, &d.DailyClicks, &d.DailyUsers, &d.DailySessions, &d.DailyAttempts,
			&d.DailyAccepted, &d.DailyRejected, &d.DailyAbandoned); err != nil {
			closeQuietly(rows)
			return nil, storeError("scan daily usage", err)
		}
		d.ActiveUsers = []string{}
		index[d.Date] = len(days)
		days = append(days, d)
	}
	err = rows.Err()
	closeQuietly(rows)
	metrics.RecordDBQuery("SELECT", "daily_usage_stats", time.Since(start), err)
	if err != nil {
		return nil, storeError("list daily usage", err)
	}
	if len(days) == 0 {
		return days, nil
	}

	args := make([]interface{}, len(days))
	for i, d := range days {
		args[i] = d.Date
	}
	devRows, err := db.conn.QueryContext(ctx,
		`SELECT date, device_id FROM daily_devices WHERE date IN (`+placeholders(len(args))+`) ORDER BY date, first_seen, device_id`,
		args...)
	if err != nil {
		return nil, storeError("list daily devices", err)
	}
	defer closeQuietly(devRows)
	for devRows.Next() {
		var date, device string
		if err := devRows.Scan(&date, &device); err != nil {
			return nil, storeError("scan daily device", err)
		}
		if i, ok := index[date]; ok {
			days[i].ActiveUsers = append(days[i].ActiveUsers, device)
		}
	}
	if err := devRows.Err(); err != nil {
		return nil, storeError("list daily devices", err)
	}
	return days, nil
}

// GetFoodStat returns the counters for one food, or zero counters when none exist.
func (db *DB) GetFoodStat(ctx context.Context, foodID string) (*models.FoodSelectionStat, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `
		SELECT food_id, recommend_count, accept_count, reject_today_count, reject_forever_count,
			last_recommended, last_accepted, last_rejected
		FROM food_selection_stats WHERE food_id = ?`, foodID)
	stat, err := scanFoodStat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.FoodSelectionStat{FoodID: foodID}, nil
	}
	if err != nil {
		return nil, storeError("get food stat", err)
	}
	return stat, nil
}

func scanFoodStat(row rowScanner) (*models.FoodSelectionStat, error) {
	var s models.FoodSelectionStat
	var lastRec, lastAcc, lastRej sql.NullTime
	if err := row.Scan(&s.FoodID, &s.RecommendCount, &s.AcceptCount, &s.RejectTodayCount,
		&s.RejectForeverCount, &lastRec, &lastAcc, &lastRej); err != nil {
		return nil, err
	}
	s.LastRecommended = nullTimePtr(lastRec)
	s.LastAccepted = nullTimePtr(lastAcc)
	s.LastRejected = nullTimePtr(lastRej)
	return &s, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// statJoinColumns selects a food followed by its counters.
const statJoinColumns = `f.id, f.name, f.kind, f.category, COALESCE(f.description, ''), f.tags, f.status,
	f.is_user_uploaded, COALESCE(f.uploaded_by, ''), COALESCE(f.upload_ip, ''), f.created_at, f.updated_at,
	s.recommend_count, s.accept_count, s.reject_today_count, s.reject_forever_count,
	s.last_recommended, s.last_accepted, s.last_rejected`

func (db *DB) queryFoodStats(ctx context.Context, query string, args ...interface{}) ([]models.FoodStatEntry, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBQuery("SELECT", "food_selection_stats", time.Since(start), err)
		return nil, err
	}
	defer closeQuietly(rows)

	entries := make([]models.FoodStatEntry, 0)
	for rows.Next() {
		var (
			e                         models.FoodStatEntry
			kind, status, tags        string
			lastRec, lastAcc, lastRej sql.NullTime
		)
		f := &e.Food
		s := &e.Stat
		if err := rows.Scan(&f.ID, &f.Name, &kind, &f.Category, &f.Description, &tags, &status,
			&f.IsUserUploaded, &f.UploaderRef, &f.UploadIP, &f.CreatedAt, &f.UpdatedAt,
			&s.RecommendCount, &s.AcceptCount, &s.RejectTodayCount, &s.RejectForeverCount,
			&lastRec, &lastAcc, &lastRej); err != nil {
			return nil, fmt.Errorf("failed to scan food stat: %w", err)
		}
		f.Kind = models.FoodKind(kind)
		f.Status = models.FoodStatus(status)
		f.Tags = ParseTags(tags)
		s.FoodID = f.ID
		s.LastRecommended = nullTimePtr(lastRec)
		s.LastAccepted = nullTimePtr(lastAcc)
		s.LastRejected = nullTimePtr(lastRej)
		entries = append(entries, e)
	}
	err = rows.Err()
	metrics.RecordDBQuery("SELECT", "food_selection_stats", time.Since(start), err)
	return entries, err
}

// RankingInputs returns ACTIVE foods of kind (all kinds when empty) that have a stats row.
func (db *DB) RankingInputs(ctx context.Context, kind models.FoodKind) ([]models.FoodStatEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT ` + statJoinColumns + `
		FROM food_selection_stats s JOIN foods f ON f.id = s.food_id
		WHERE f.status = 'ACTIVE'`
	args := []interface{}{}
	if kind != "" {
		query += ` AND f.kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY f.id`

	entries, err := db.queryFoodStats(ctx, query, args...)
	if err != nil {
		return nil, storeError("ranking inputs", err)
	}
	return entries, nil
}

// TopAcceptedFoods returns up to limit foods with counters, by accept count.
func (db *DB) TopAcceptedFoods(ctx context.Context, limit int) ([]models.FoodStatEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	entries, err := db.queryFoodStats(ctx, `SELECT `+statJoinColumns+`
		FROM food_selection_stats s JOIN foods f ON f.id = s.food_id
		ORDER BY s.accept_count DESC, s.recommend_count DESC, f.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, storeError("top accepted foods", err)
	}
	return entries, nil
}
