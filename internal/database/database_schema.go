// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
database_schema.go - Database Schema Management

Tables:
  - foods: the catalog of dishes and drinks, tags stored as a JSON array string
  - food_ratings: one like or dislike per (food, device)
  - recommendation_sessions: one decision flow per row, history as JSON
  - food_selection_stats: per-food counters, created lazily by the first UPSERT
  - global_usage_stats: singleton row keyed 'global'
  - daily_usage_stats: one row per server-local calendar date
  - known_devices / daily_devices: first-seen registries backing new-user detection

foods(name, kind) is unique, so concurrent uploads of one name cannot both
land. There are no foreign keys. DuckDB cannot cascade deletes, so DeleteFood
removes dependent rows itself inside one transaction.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/eatwhat/internal/logging"
)

// globalUsageID is the primary key of the global usage singleton row.
const globalUsageID = "global"

// createTables creates the core database tables
func (db *DB) createTables(ctx context.Context) error {
	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS foods (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			kind VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			description VARCHAR,
			tags VARCHAR NOT NULL DEFAULT '[]',
			status VARCHAR NOT NULL DEFAULT 'ACTIVE',
			is_user_uploaded BOOLEAN NOT NULL DEFAULT false,
			uploaded_by VARCHAR,
			upload_ip VARCHAR,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS food_ratings (
			food_id VARCHAR NOT NULL,
			device_id VARCHAR NOT NULL,
			rating INTEGER NOT NULL,
			ip_address VARCHAR,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (food_id, device_id)
		);`,

		`CREATE TABLE IF NOT EXISTS recommendation_sessions (
			id VARCHAR PRIMARY KEY,
			session_id VARCHAR NOT NULL UNIQUE,
			device_id VARCHAR NOT NULL,
			user_id VARCHAR,
			include_drink BOOLEAN NOT NULL DEFAULT false,
			total_attempts INTEGER NOT NULL DEFAULT 0,
			attempt_history VARCHAR NOT NULL DEFAULT '[]',
			outcome VARCHAR NOT NULL DEFAULT '',
			abandon_reason VARCHAR,
			final_food_id VARCHAR,
			final_drink_id VARCHAR,
			started_at TIMESTAMP NOT NULL,
			last_activity_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS food_selection_stats (
			food_id VARCHAR PRIMARY KEY,
			recommend_count BIGINT NOT NULL DEFAULT 0,
			accept_count BIGINT NOT NULL DEFAULT 0,
			reject_today_count BIGINT NOT NULL DEFAULT 0,
			reject_forever_count BIGINT NOT NULL DEFAULT 0,
			last_recommended TIMESTAMP,
			last_accepted TIMESTAMP,
			last_rejected TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS global_usage_stats (
			id VARCHAR PRIMARY KEY,
			total_clicks BIGINT NOT NULL DEFAULT 0,
			total_users BIGINT NOT NULL DEFAULT 0,
			total_sessions BIGINT NOT NULL DEFAULT 0,
			total_attempts BIGINT NOT NULL DEFAULT 0,
			total_accepted BIGINT NOT NULL DEFAULT 0,
			total_rejected BIGINT NOT NULL DEFAULT 0,
			total_abandoned BIGINT NOT NULL DEFAULT 0,
			last_updated TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS daily_usage_stats (
			date VARCHAR PRIMARY KEY,
			daily_clicks BIGINT NOT NULL DEFAULT 0,
			daily_users BIGINT NOT NULL DEFAULT 0,
			daily_sessions BIGINT NOT NULL DEFAULT 0,
			daily_attempts BIGINT NOT NULL DEFAULT 0,
			daily_accepted BIGINT NOT NULL DEFAULT 0,
			daily_rejected BIGINT NOT NULL DEFAULT 0,
			daily_abandoned BIGINT NOT NULL DEFAULT 0
		);`,

		`CREATE TABLE IF NOT EXISTS known_devices (
			device_id VARCHAR PRIMARY KEY,
			first_seen TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS daily_devices (
			date VARCHAR NOT NULL,
			device_id VARCHAR NOT NULL,
			first_seen TIMESTAMP NOT NULL,
			PRIMARY KEY (date, device_id)
		);`,
	}
}

// createIndexes creates the secondary indexes and the (name, kind) unique index.
func (db *DB) createIndexes(ctx context.Context) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_foods_kind ON foods(kind);`,
		`CREATE INDEX IF NOT EXISTS idx_foods_created_at ON foods(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_device ON recommendation_sessions(device_id);`,
		`CREATE INDEX IF NOT EXISTS idx_daily_devices_date ON daily_devices(date);`,
	}
	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	// A catalog written before the index existed may already hold repeats.
	// Such a file still opens; inserts then fall back to the read check only.
	if _, err := db.conn.ExecContext(ctx, uniqueFoodIndex); err != nil {
		if !isConstraintViolation(err) {
			return fmt.Errorf("failed to execute index query: %s: %w", uniqueFoodIndex, err)
		}
		logging.Warn().Err(err).Msg("Catalog has repeated (name, kind) pairs, unique index not created")
	}
	return nil
}

// uniqueFoodIndex makes (name, kind) the natural key of the catalog.
const uniqueFoodIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_foods_name_kind ON foods(name, kind);`

// ensureGlobalUsageRow creates the global usage singleton with zero counters.
func (db *DB) ensureGlobalUsageRow(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO global_usage_stats (id, last_updated) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		globalUsageID, db.timestamp())
	if err != nil {
		return fmt.Errorf("failed to create global usage row: %w", err)
	}
	return nil
}
