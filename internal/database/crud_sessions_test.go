// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eatwhat/internal/models"
)

func newTestSession(t *testing.T, db *DB, device string) *models.RecommendationSession {
	t.Helper()
	s := &models.RecommendationSession{
		SessionID:    uuid.NewString(),
		DeviceID:     device,
		IncludeDrink: true,
	}
	if err := db.CreateSession(context.Background(), s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return s
}

func TestCreateAndGetSession(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := newTestSession(t, db, "dev-1")

	got, err := db.GetSession(ctx, s.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != s.ID || got.DeviceID != "dev-1" || !got.IncludeDrink {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.TotalAttempts != 0 || len(got.History) != 0 || got.Outcome.Terminal() {
		t.Errorf("new session should be open and empty: %+v", got)
	}
	if got.CompletedAt != nil {
		t.Error("completedAt should be nil")
	}

	if _, err := db.GetSession(ctx, "nope"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveOpenSession_ProgressAndClose(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := newTestSession(t, db, "dev-1")

	now := time.Now().UTC().Truncate(time.Microsecond)
	s.TotalAttempts = 1
	s.History = append(s.History, models.Attempt{FoodID: "f1", DrinkID: "d1", Timestamp: now})
	s.LastActivityAt = now
	if err := db.SaveOpenSession(ctx, s); err != nil {
		t.Fatalf("save attempt: %v", err)
	}

	s.Outcome = models.OutcomeAccepted
	s.FinalFoodID = "f1"
	s.CompletedAt = &now
	if err := db.SaveOpenSession(ctx, s); err != nil {
		t.Fatalf("save accept: %v", err)
	}

	got, err := db.GetSession(ctx, s.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Outcome != models.OutcomeAccepted || got.FinalFoodID != "f1" || got.CompletedAt == nil {
		t.Errorf("close not persisted: %+v", got)
	}
	if len(got.History) != 1 || got.History[0].DrinkID != "d1" {
		t.Errorf("history = %+v", got.History)
	}

	// Terminal rows are immutable.
	s.Outcome = models.OutcomeAbandoned
	if err := db.SaveOpenSession(ctx, s); !errors.Is(err, models.ErrSessionAlreadyClosed) {
		t.Fatalf("expected ErrSessionAlreadyClosed, got %v", err)
	}
	got, _ = db.GetSession(ctx, s.SessionID)
	if got.Outcome != models.OutcomeAccepted {
		t.Errorf("terminal outcome overwritten to %s", got.Outcome)
	}
}

func TestSaveOpenSession_RacingTerminalCallsOneWins(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := newTestSession(t, db, "dev-race")

	outcomes := []models.SessionOutcome{
		models.OutcomeAccepted, models.OutcomeRejectedToday,
		models.OutcomeRejectedForever, models.OutcomeAbandoned,
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		closed int
	)
	for _, o := range outcomes {
		wg.Add(1)
		go func(o models.SessionOutcome) {
			defer wg.Done()
			cp := *s
			cp.Outcome = o
			now := time.Now().UTC()
			cp.CompletedAt = &now
			err := db.SaveOpenSession(ctx, &cp)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, models.ErrSessionAlreadyClosed):
				closed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(o)
	}
	wg.Wait()

	if wins != 1 || closed != len(outcomes)-1 {
		t.Errorf("wins = %d, closed = %d, want exactly one winner", wins, closed)
	}
}

func TestSessionCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	closeAs := func(outcome models.SessionOutcome, attempts int) {
		s := newTestSession(t, db, "dev")
		now := time.Now().UTC()
		s.TotalAttempts = attempts
		s.Outcome = outcome
		s.CompletedAt = &now
		if err := db.SaveOpenSession(ctx, s); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	closeAs(models.OutcomeAccepted, 3)
	closeAs(models.OutcomeAbandoned, 1)
	closeAs(models.OutcomeRejectedToday, 2)
	open := newTestSession(t, db, "dev")
	open.TotalAttempts = 7
	if err := db.SaveOpenSession(ctx, open); err != nil {
		t.Fatalf("progress: %v", err)
	}

	c, err := db.SessionCounts(ctx)
	if err != nil {
		t.Fatalf("SessionCounts: %v", err)
	}
	want := models.SessionCounts{Total: 4, Completed: 3, Accepted: 1, Abandoned: 1, AttemptsTotal: 6}
	if c != want {
		t.Errorf("counts = %+v, want %+v", c, want)
	}
}
