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

	"github.com/goccy/go-json"

	"github.com/tomtom215/eatwhat/internal/metrics"
	"github.com/tomtom215/eatwhat/internal/models"
)

const sessionColumns = `id, session_id, device_id, COALESCE(user_id, ''), include_drink, total_attempts,
	attempt_history, outcome, COALESCE(abandon_reason, ''), COALESCE(final_food_id, ''),
	COALESCE(final_drink_id, ''), started_at, last_activity_at, completed_at`

// CreateSession inserts a new open session row.
func (db *DB) CreateSession(ctx context.Context, s *models.RecommendationSession) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if s.ID == "" {
		s.ID = NewID()
	}
	if s.History == nil {
		s.History = []models.Attempt{}
	}
	now := db.timestamp()
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	if s.LastActivityAt.IsZero() {
		s.LastActivityAt = s.StartedAt
	}
	history, err := json.Marshal(s.History)
	if err != nil {
		return fmt.Errorf("failed to encode attempt history: %w", err)
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO recommendation_sessions (
			id, session_id, device_id, user_id, include_drink, total_attempts,
			attempt_history, outcome, started_at, last_activity_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
		s.ID, s.SessionID, s.DeviceID, nullString(s.UserID), s.IncludeDrink, s.TotalAttempts,
		string(history), s.StartedAt, s.LastActivityAt)
	metrics.RecordDBQuery("INSERT", "recommendation_sessions", time.Since(start), err)
	return storeError("create session", err)
}

// GetSession loads a session by its public session id.
func (db *DB) GetSession(ctx context.Context, sessionID string) (*models.RecommendationSession, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM recommendation_sessions WHERE session_id = ?`, sessionID)

	var (
		s         models.RecommendationSession
		history   string
		outcome   string
		reason    string
		completed sql.NullTime
	)
	err := row.Scan(&s.ID, &s.SessionID, &s.DeviceID, &s.UserID, &s.IncludeDrink, &s.TotalAttempts,
		&history, &outcome, &reason, &s.FinalFoodID, &s.FinalDrinkID,
		&s.StartedAt, &s.LastActivityAt, &completed)
	metrics.RecordDBQuery("SELECT", "recommendation_sessions", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, models.ErrNotFound)
	}
	if err != nil {
		return nil, storeError("get session", err)
	}

	s.Outcome = models.SessionOutcome(outcome)
	s.AbandonReason = models.AbandonReason(reason)
	if completed.Valid {
		t := completed.Time
		s.CompletedAt = &t
	}
	if err := json.Unmarshal([]byte(history), &s.History); err != nil || s.History == nil {
		s.History = []models.Attempt{}
	}
	return &s, nil
}

// SaveOpenSession writes the mutable fields of s, but only while the stored
// row is still open. A row that another caller already closed is left
// untouched and models.ErrSessionAlreadyClosed is returned.
func (db *DB) SaveOpenSession(ctx context.Context, s *models.RecommendationSession) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	history, err := json.Marshal(s.History)
	if err != nil {
		return fmt.Errorf("failed to encode attempt history: %w", err)
	}
	var completed sql.NullTime
	if s.CompletedAt != nil {
		completed = sql.NullTime{Time: *s.CompletedAt, Valid: true}
	}

	result, err := db.execWithRetry(ctx, "session:"+s.SessionID, "recommendation_sessions", `
		UPDATE recommendation_sessions SET
			total_attempts = ?,
			attempt_history = ?,
			outcome = ?,
			abandon_reason = ?,
			final_food_id = ?,
			final_drink_id = ?,
			last_activity_at = ?,
			completed_at = ?
		WHERE session_id = ? AND outcome = ''`,
		s.TotalAttempts, string(history), string(s.Outcome), nullString(string(s.AbandonReason)),
		nullString(s.FinalFoodID), nullString(s.FinalDrinkID), s.LastActivityAt, completed,
		s.SessionID)
	if err != nil {
		return storeError("save session", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", s.SessionID, models.ErrSessionAlreadyClosed)
	}
	return nil
}

// SessionCounts aggregates the session table for the summary view.
func (db *DB) SessionCounts(ctx context.Context) (models.SessionCounts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var c models.SessionCounts
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE completed_at IS NOT NULL),
			COUNT(*) FILTER (WHERE outcome = 'accepted'),
			COUNT(*) FILTER (WHERE outcome = 'abandoned'),
			CAST(COALESCE(SUM(total_attempts) FILTER (WHERE completed_at IS NOT NULL), 0) AS BIGINT)
		FROM recommendation_sessions`).Scan(&c.Total, &c.Completed, &c.Accepted, &c.Abandoned, &c.AttemptsTotal)
	metrics.RecordDBQuery("SELECT", "recommendation_sessions", time.Since(start), err)
	if err != nil {
		return c, storeError("session counts", err)
	}
	return c, nil
}
