// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/eatwhat/internal/models"
	"github.com/tomtom215/eatwhat/internal/stats"
)

// memSessionStore mirrors the conditional save of the database store.
type memSessionStore struct {
	mu      sync.Mutex
	rows    map[string]models.RecommendationSession
	nextID  int
	saveErr error
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{rows: make(map[string]models.RecommendationSession)}
}

func (m *memSessionStore) CreateSession(_ context.Context, s *models.RecommendationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = fmt.Sprintf("row-%d", m.nextID)
	m.rows[s.SessionID] = cloneSession(*s)
	return nil
}

func (m *memSessionStore) GetSession(_ context.Context, sessionID string) (*models.RecommendationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, models.ErrNotFound)
	}
	out := cloneSession(row)
	return &out, nil
}

func (m *memSessionStore) SaveOpenSession(_ context.Context, s *models.RecommendationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	row, ok := m.rows[s.SessionID]
	if !ok || row.Outcome.Terminal() {
		return models.ErrSessionAlreadyClosed
	}
	m.rows[s.SessionID] = cloneSession(*s)
	return nil
}

// closeBehindBack marks a row terminal as a concurrent writer would.
func (m *memSessionStore) closeBehindBack(sessionID string) {
	m.mu.Lock()
	row := m.rows[sessionID]
	row.Outcome = models.OutcomeAccepted
	m.rows[sessionID] = row
	m.mu.Unlock()
}

func cloneSession(s models.RecommendationSession) models.RecommendationSession {
	s.History = append([]models.Attempt(nil), s.History...)
	return s
}

type recordingSink struct {
	mu     sync.Mutex
	events []stats.Event
}

func (r *recordingSink) Dispatch(ev stats.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingSink) types() []stats.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]stats.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recordingSink) last() stats.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func newTestService(t *testing.T) (*Service, *memSessionStore, *recordingSink, *time.Time) {
	t.Helper()
	store := newMemSessionStore()
	sink := &recordingSink{}
	svc := NewService(store, sink, 0)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, store, sink, &now
}

func TestService_Start(t *testing.T) {
	t.Parallel()
	svc, store, sink, now := newTestService(t)
	ctx := context.Background()

	if svc.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %v", svc.Timeout())
	}

	if _, err := svc.Start(ctx, StartRequest{}); !models.IsValidationError(err) {
		t.Errorf("Start without device err = %v", err)
	}

	resp, err := svc.Start(ctx, StartRequest{DeviceID: "dev", IncludeDrink: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if resp.SessionID == "" || resp.ID != "row-1" {
		t.Errorf("response = %+v", resp)
	}

	row, err := svc.Get(ctx, resp.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row.DeviceID != "dev" || !row.IncludeDrink || row.TotalAttempts != 0 ||
		row.Outcome != models.OutcomeNone || !row.StartedAt.Equal(*now) {
		t.Errorf("row = %+v", row)
	}
	if len(store.rows) != 1 {
		t.Errorf("rows = %d", len(store.rows))
	}

	ev := sink.last()
	if ev.Type != stats.EventSessionStart || ev.DeviceID != "dev" || !ev.OccurredAt.Equal(*now) {
		t.Errorf("event = %+v", ev)
	}

	other, err := svc.Start(ctx, StartRequest{DeviceID: "dev"})
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if other.SessionID == resp.SessionID {
		t.Error("session ids must be unique")
	}
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()
	svc, _, sink, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Start(ctx, StartRequest{DeviceID: "dev"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := resp.SessionID

	for _, food := range []string{"food1", "food2"} {
		if _, err := svc.Apply(ctx, models.SessionUpdate{SessionID: id, Action: models.ActionAttempt, FoodID: food}); err != nil {
			t.Fatalf("attempt %s: %v", food, err)
		}
	}
	row, err := svc.Apply(ctx, models.SessionUpdate{SessionID: id, Action: models.ActionAccept, FoodID: "food2"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if row.TotalAttempts != 2 || len(row.History) != 2 || row.FinalFoodID != "food2" ||
		row.Outcome != models.OutcomeAccepted || row.CompletedAt == nil {
		t.Errorf("row after accept = %+v", row)
	}

	_, err = svc.Apply(ctx, models.SessionUpdate{SessionID: id, Action: models.ActionAccept, FoodID: "food2"})
	if !errors.Is(err, models.ErrSessionAlreadyClosed) {
		t.Errorf("second accept err = %v", err)
	}

	want := []stats.EventType{stats.EventSessionStart, stats.EventRecommend, stats.EventRecommend, stats.EventAccept}
	got := sink.types()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestService_AttemptWithDrink(t *testing.T) {
	t.Parallel()
	svc, _, sink, _ := newTestService(t)
	ctx := context.Background()

	resp, _ := svc.Start(ctx, StartRequest{DeviceID: "dev", IncludeDrink: true})
	row, err := svc.Apply(ctx, models.SessionUpdate{SessionID: resp.SessionID, Action: models.ActionAttempt, FoodID: "f", DrinkID: "d"})
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if row.TotalAttempts != 1 || row.History[0].DrinkID != "d" {
		t.Errorf("row = %+v", row)
	}
	ev := sink.last()
	if ev.Type != stats.EventRecommend || len(ev.FoodIDs) != 2 {
		t.Errorf("event = %+v", ev)
	}
}

func TestService_Reject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		scope     models.RejectScope
		want      models.SessionOutcome
		wantScope models.RejectScope
	}{
		{"today", models.RejectToday, models.OutcomeRejectedToday, models.RejectToday},
		{"forever", models.RejectForever, models.OutcomeRejectedForever, models.RejectForever},
		{"omitted defaults to today", "", models.OutcomeRejectedToday, models.RejectToday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _, sink, _ := newTestService(t)
			ctx := context.Background()
			resp, _ := svc.Start(ctx, StartRequest{DeviceID: "dev"})

			row, err := svc.Apply(ctx, models.SessionUpdate{
				SessionID: resp.SessionID, Action: models.ActionReject, FoodID: "f", RejectScope: tt.scope,
			})
			if err != nil {
				t.Fatalf("reject: %v", err)
			}
			if row.Outcome != tt.want {
				t.Errorf("outcome = %q, want %q", row.Outcome, tt.want)
			}
			ev := sink.last()
			if ev.Type != stats.EventReject || ev.Scope != tt.wantScope {
				t.Errorf("event = %+v", ev)
			}
		})
	}
}

func TestService_Abandon(t *testing.T) {
	t.Parallel()
	svc, _, sink, _ := newTestService(t)
	ctx := context.Background()
	resp, _ := svc.Start(ctx, StartRequest{DeviceID: "dev"})

	row, err := svc.Apply(ctx, models.SessionUpdate{SessionID: resp.SessionID, Action: models.ActionAbandon})
	if err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if row.Outcome != models.OutcomeAbandoned || row.AbandonReason != models.AbandonPageLeave {
		t.Errorf("row = %+v", row)
	}
	if len(row.History) != 1 || row.History[0].Reason != models.AbandonPageLeave {
		t.Errorf("history = %+v", row.History)
	}
	if sink.last().Type != stats.EventAbandon {
		t.Errorf("event = %+v", sink.last())
	}
}

func TestService_ApplyValidation(t *testing.T) {
	t.Parallel()
	svc, _, sink, _ := newTestService(t)
	ctx := context.Background()
	resp, _ := svc.Start(ctx, StartRequest{DeviceID: "dev"})
	before := len(sink.types())

	tests := []struct {
		name string
		upd  models.SessionUpdate
	}{
		{"missing session id", models.SessionUpdate{Action: models.ActionAttempt}},
		{"unknown action", models.SessionUpdate{SessionID: resp.SessionID, Action: "dance"}},
		{"bad scope", models.SessionUpdate{SessionID: resp.SessionID, Action: models.ActionReject, RejectScope: "later"}},
		{"bad reason", models.SessionUpdate{SessionID: resp.SessionID, Action: models.ActionAbandon, AbandonReason: "bored"}},
	}
	for _, tt := range tests {
		if _, err := svc.Apply(ctx, tt.upd); !models.IsValidationError(err) {
			t.Errorf("%s: err = %v, want validation error", tt.name, err)
		}
	}
	if len(sink.types()) != before {
		t.Error("invalid updates must not dispatch events")
	}

	_, err := svc.Apply(ctx, models.SessionUpdate{SessionID: "missing", Action: models.ActionAttempt})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing session err = %v", err)
	}
}

func TestService_Timeout(t *testing.T) {
	t.Parallel()
	svc, store, sink, now := newTestService(t)
	ctx := context.Background()
	resp, _ := svc.Start(ctx, StartRequest{DeviceID: "dev"})

	*now = now.Add(DefaultTimeout)
	_, err := svc.Apply(ctx, models.SessionUpdate{SessionID: resp.SessionID, Action: models.ActionAccept, FoodID: "f"})
	if !errors.Is(err, models.ErrSessionAlreadyClosed) {
		t.Fatalf("accept after timeout err = %v", err)
	}
	row := store.rows[resp.SessionID]
	if row.Outcome != models.OutcomeAbandoned || row.AbandonReason != models.AbandonTimeout {
		t.Errorf("row = %+v", row)
	}
	if sink.last().Type != stats.EventAbandon {
		t.Errorf("event = %+v", sink.last())
	}
}

func TestService_TimeoutAllowsAbandon(t *testing.T) {
	t.Parallel()
	svc, _, _, now := newTestService(t)
	ctx := context.Background()
	resp, _ := svc.Start(ctx, StartRequest{DeviceID: "dev"})

	*now = now.Add(time.Hour)
	row, err := svc.Apply(ctx, models.SessionUpdate{SessionID: resp.SessionID, Action: models.ActionAbandon, AbandonReason: models.AbandonPageHidden})
	if err != nil {
		t.Fatalf("abandon after timeout: %v", err)
	}
	if row.AbandonReason != models.AbandonPageHidden {
		t.Errorf("reason = %q", row.AbandonReason)
	}
}

func TestService_ConcurrentClose(t *testing.T) {
	t.Parallel()
	svc, store, sink, _ := newTestService(t)
	ctx := context.Background()
	resp, _ := svc.Start(ctx, StartRequest{DeviceID: "dev"})
	before := len(sink.types())

	// Another writer closes the row between our read and conditional save.
	racing := &racingStore{memSessionStore: store, sessionID: resp.SessionID}
	svc.store = racing

	_, err := svc.Apply(ctx, models.SessionUpdate{SessionID: resp.SessionID, Action: models.ActionAccept, FoodID: "f"})
	if !errors.Is(err, models.ErrSessionAlreadyClosed) {
		t.Fatalf("err = %v, want ErrSessionAlreadyClosed", err)
	}
	if len(sink.types()) != before {
		t.Error("a lost race must not dispatch events")
	}
}

func TestService_StoreError(t *testing.T) {
	t.Parallel()
	svc, store, sink, _ := newTestService(t)
	ctx := context.Background()
	resp, _ := svc.Start(ctx, StartRequest{DeviceID: "dev"})
	before := len(sink.types())

	store.saveErr = models.ErrStoreUnavailable
	_, err := svc.Apply(ctx, models.SessionUpdate{SessionID: resp.SessionID, Action: models.ActionAttempt, FoodID: "f"})
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("err = %v", err)
	}
	if len(sink.types()) != before {
		t.Error("failed save must not dispatch events")
	}
}

// racingStore closes the session right after it is read.
type racingStore struct {
	*memSessionStore
	sessionID string
}

func (r *racingStore) GetSession(ctx context.Context, sessionID string) (*models.RecommendationSession, error) {
	row, err := r.memSessionStore.GetSession(ctx, sessionID)
	if err == nil && sessionID == r.sessionID {
		r.closeBehindBack(sessionID)
	}
	return row, err
}

func TestNewService_NilSink(t *testing.T) {
	t.Parallel()
	svc := NewService(newMemSessionStore(), nil, time.Minute)
	if svc.Timeout() != time.Minute {
		t.Errorf("Timeout() = %v", svc.Timeout())
	}
	if _, err := svc.Start(context.Background(), StartRequest{DeviceID: "dev"}); err != nil {
		t.Errorf("Start with nil sink: %v", err)
	}
}
