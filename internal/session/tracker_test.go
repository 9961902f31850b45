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

	"github.com/goccy/go-json"

	"github.com/tomtom215/eatwhat/internal/models"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []StartRequest
	err   error
}

func (b *fakeBackend) StartSession(_ context.Context, req StartRequest) (*StartResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	b.calls = append(b.calls, req)
	n := len(b.calls)
	return &StartResponse{SessionID: fmt.Sprintf("sess-%d", n), ID: fmt.Sprintf("row-%d", n)}, nil
}

type recordingReporter struct {
	mu      sync.Mutex
	updates []models.SessionUpdate
}

func (r *recordingReporter) Report(u models.SessionUpdate) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
}

func (r *recordingReporter) all() []models.SessionUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.SessionUpdate(nil), r.updates...)
}

type trackerFixture struct {
	tracker  *Tracker
	backend  *fakeBackend
	reporter *recordingReporter
	storage  *MemoryStorage
	clock    *time.Time
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()
	f := &trackerFixture{
		backend:  &fakeBackend{},
		reporter: &recordingReporter{},
		storage:  NewMemoryStorage(),
	}
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	f.clock = &now

	tr, err := NewTracker(TrackerConfig{
		DeviceID: "device-1",
		Backend:  f.backend,
		Reporter: f.reporter,
		Storage:  f.storage,
	})
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	tr.now = func() time.Time { return *f.clock }
	f.tracker = tr
	return f
}

func (f *trackerFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *trackerFixture) storedSnapshot(t *testing.T) (Snapshot, bool) {
	t.Helper()
	raw, err := f.storage.Get(context.Background(), SnapshotKey)
	if errors.Is(err, ErrKeyNotFound) {
		return Snapshot{}, false
	}
	if err != nil {
		t.Fatalf("storage.Get: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap, true
}

func TestNewTracker_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewTracker(TrackerConfig{DeviceID: "d"}); err == nil {
		t.Error("expected error without backend")
	}
	_, err := NewTracker(TrackerConfig{Backend: &fakeBackend{}})
	if !models.IsValidationError(err) {
		t.Errorf("expected validation error without device id, got %v", err)
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	t.Parallel()
	f := newTrackerFixture(t)
	ctx := context.Background()

	if f.tracker.State() != StateIdle {
		t.Fatalf("initial state = %s", f.tracker.State())
	}

	snap, err := f.tracker.Start(ctx, true)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap.SessionID != "sess-1" || snap.ID != "row-1" || snap.AttemptCount != 0 {
		t.Errorf("Start snapshot = %+v", snap)
	}
	if len(f.backend.calls) != 1 || !f.backend.calls[0].IncludeDrink || f.backend.calls[0].DeviceID != "device-1" {
		t.Errorf("backend calls = %+v", f.backend.calls)
	}

	f.advance(10 * time.Second)
	if err := f.tracker.RecordAttempt(ctx, "food1", "drink1"); err != nil {
		t.Fatalf("RecordAttempt 1: %v", err)
	}
	f.advance(10 * time.Second)
	if err := f.tracker.RecordAttempt(ctx, "food2", ""); err != nil {
		t.Fatalf("RecordAttempt 2: %v", err)
	}

	stored, ok := f.storedSnapshot(t)
	if !ok || stored.AttemptCount != 2 || !stored.LastActivity.Equal(*f.clock) {
		t.Errorf("stored snapshot = %+v, ok=%v", stored, ok)
	}

	if err := f.tracker.Accept(ctx, "food2", ""); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if f.tracker.State() != StateTerminal {
		t.Errorf("state after accept = %s", f.tracker.State())
	}
	if f.tracker.Outcome() != models.OutcomeAccepted {
		t.Errorf("outcome = %q", f.tracker.Outcome())
	}
	if food, drink := f.tracker.Final(); food != "food2" || drink != "" {
		t.Errorf("Final() = %q, %q, want food2 and no drink", food, drink)
	}
	history := f.tracker.History()
	if len(history) != 2 || history[0].FoodID != "food1" || history[1].FoodID != "food2" {
		t.Errorf("history = %+v", history)
	}
	if _, ok := f.storedSnapshot(t); ok {
		t.Error("snapshot should be cleared after accept")
	}

	if err := f.tracker.Accept(ctx, "food2", ""); !errors.Is(err, models.ErrSessionAlreadyClosed) {
		t.Errorf("second Accept err = %v, want ErrSessionAlreadyClosed", err)
	}

	updates := f.reporter.all()
	if len(updates) != 3 {
		t.Fatalf("reported %d updates, want 3: %+v", len(updates), updates)
	}
	wantActions := []models.SessionAction{models.ActionAttempt, models.ActionAttempt, models.ActionAccept}
	for i, u := range updates {
		if u.Action != wantActions[i] || u.SessionID != "sess-1" {
			t.Errorf("update[%d] = %+v", i, u)
		}
	}
	if updates[0].DrinkID != "drink1" || updates[2].FoodID != "food2" {
		t.Errorf("update payloads = %+v", updates)
	}
}

func TestTracker_StartWhileActive(t *testing.T) {
	t.Parallel()
	f := newTrackerFixture(t)
	ctx := context.Background()

	if _, err := f.tracker.Start(ctx, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.tracker.Start(ctx, false); !errors.Is(err, models.ErrSessionActive) {
		t.Errorf("second Start err = %v, want ErrSessionActive", err)
	}

	// After the timeout a new Start abandons the old session.
	f.advance(DefaultTimeout)
	snap, err := f.tracker.Start(ctx, false)
	if err != nil {
		t.Fatalf("Start after timeout: %v", err)
	}
	if snap.SessionID != "sess-2" {
		t.Errorf("new session = %q", snap.SessionID)
	}
	updates := f.reporter.all()
	if len(updates) != 1 || updates[0].Action != models.ActionAbandon ||
		updates[0].AbandonReason != models.AbandonTimeout || updates[0].SessionID != "sess-1" {
		t.Errorf("updates = %+v", updates)
	}
}

func TestTracker_StartAfterTerminal(t *testing.T) {
	t.Parallel()
	f := newTrackerFixture(t)
	ctx := context.Background()

	if _, err := f.tracker.Start(ctx, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.tracker.Reject(ctx, "food1", "", models.RejectForever); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if f.tracker.Outcome() != models.OutcomeRejectedForever {
		t.Errorf("outcome = %q", f.tracker.Outcome())
	}
	snap, err := f.tracker.Start(ctx, false)
	if err != nil {
		t.Fatalf("Start after terminal: %v", err)
	}
	if snap.SessionID != "sess-2" || f.tracker.State() != StateActive || len(f.tracker.History()) != 0 {
		t.Errorf("restart snapshot = %+v, state = %s", snap, f.tracker.State())
	}
}

func TestTracker_StartBackendError(t *testing.T) {
	t.Parallel()
	f := newTrackerFixture(t)
	f.backend.err = errors.New("offline")

	if _, err := f.tracker.Start(context.Background(), false); err == nil {
		t.Fatal("expected error")
	}
	if f.tracker.State() != StateIdle {
		t.Errorf("state = %s, want idle", f.tracker.State())
	}
}

func TestTracker_TransitionsWithoutSession(t *testing.T) {
	t.Parallel()
	f := newTrackerFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"attempt", func() error { return f.tracker.RecordAttempt(ctx, "a", "") }},
		{"accept", func() error { return f.tracker.Accept(ctx, "a", "") }},
		{"reject", func() error { return f.tracker.Reject(ctx, "a", "", models.RejectToday) }},
		{"abandon", func() error { return f.tracker.Abandon(ctx, "") }},
	}
	for _, tt := range tests {
		if err := tt.fn(); !errors.Is(err, ErrNoSession) {
			t.Errorf("%s: err = %v, want ErrNoSession", tt.name, err)
		}
	}
	if len(f.reporter.all()) != 0 {
		t.Error("nothing should be reported without a session")
	}
}

func TestTracker_RejectAndAbandonValidation(t *testing.T) {
	t.Parallel()
	f := newTrackerFixture(t)
	ctx := context.Background()

	if _, err := f.tracker.Start(ctx, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.tracker.Reject(ctx, "a", "", "someday"); !models.IsValidationError(err) {
		t.Errorf("Reject invalid scope err = %v", err)
	}
	if err := f.tracker.Abandon(ctx, "bored"); !models.IsValidationError(err) {
		t.Errorf("Abandon invalid reason err = %v", err)
	}
	if f.tracker.State() != StateActive {
		t.Errorf("invalid input must not close the session, state = %s", f.tracker.State())
	}

	if err := f.tracker.Abandon(ctx, ""); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	updates := f.reporter.all()
	if len(updates) != 1 || updates[0].AbandonReason != models.AbandonPageLeave {
		t.Errorf("updates = %+v", updates)
	}
	history := f.tracker.History()
	if len(history) != 1 || history[0].Reason != models.AbandonPageLeave {
		t.Errorf("history = %+v", history)
	}
	if food, drink := f.tracker.Final(); food != "" || drink != "" {
		t.Errorf("Final() after abandon = %q, %q, want empty", food, drink)
	}
}

func TestTracker_ActionAfterTimeout(t *testing.T) {
	t.Parallel()
	f := newTrackerFixture(t)
	ctx := context.Background()

	if _, err := f.tracker.Start(ctx, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.advance(DefaultTimeout + time.Second)

	if err := f.tracker.Accept(ctx, "a", ""); !errors.Is(err, models.ErrSessionAlreadyClosed) {
		t.Fatalf("Accept after timeout err = %v", err)
	}
	if f.tracker.Outcome() != models.OutcomeAbandoned {
		t.Errorf("outcome = %q", f.tracker.Outcome())
	}
	updates := f.reporter.all()
	if len(updates) != 1 || updates[0].Action != models.ActionAbandon || updates[0].AbandonReason != models.AbandonTimeout {
		t.Errorf("updates = %+v", updates)
	}
}

func TestTracker_CheckTimeout(t *testing.T) {
	t.Parallel()
	f := newTrackerFixture(t)
	ctx := context.Background()

	if f.tracker.CheckTimeout(ctx) {
		t.Error("idle tracker should not time out")
	}
	if _, err := f.tracker.Start(ctx, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.advance(DefaultTimeout - time.Second)
	if f.tracker.CheckTimeout(ctx) {
		t.Error("session timed out early")
	}
	f.advance(time.Second)
	if !f.tracker.CheckTimeout(ctx) {
		t.Fatal("session should time out at the timeout")
	}
	if f.tracker.State() != StateTerminal || f.tracker.Outcome() != models.OutcomeAbandoned {
		t.Errorf("state = %s outcome = %q", f.tracker.State(), f.tracker.Outcome())
	}
	if f.tracker.CheckTimeout(ctx) {
		t.Error("closed session timed out twice")
	}
}

func TestTracker_Resume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fresh snapshot resumes", func(t *testing.T) {
		t.Parallel()
		f := newTrackerFixture(t)
		writeSnapshot(t, f.storage, Snapshot{
			SessionID:    "stored",
			ID:           "row-9",
			StartTime:    f.clock.Add(-2 * time.Minute),
			LastActivity: f.clock.Add(-time.Minute),
			AttemptCount: 4,
		})

		snap, ok, err := f.tracker.Resume(ctx)
		if err != nil || !ok {
			t.Fatalf("Resume = %v, %v", ok, err)
		}
		if snap.SessionID != "stored" || snap.AttemptCount != 4 || f.tracker.State() != StateActive {
			t.Errorf("resumed %+v, state %s", snap, f.tracker.State())
		}
		if err := f.tracker.RecordAttempt(ctx, "x", ""); err != nil {
			t.Fatalf("RecordAttempt after resume: %v", err)
		}
		if cur, _ := f.tracker.Current(); cur.AttemptCount != 5 {
			t.Errorf("attempt count = %d, want 5", cur.AttemptCount)
		}
		if len(f.backend.calls) != 0 {
			t.Error("resume must not start a new server session")
		}
	})

	t.Run("expired snapshot discarded", func(t *testing.T) {
		t.Parallel()
		f := newTrackerFixture(t)
		writeSnapshot(t, f.storage, Snapshot{
			SessionID:    "old",
			LastActivity: f.clock.Add(-DefaultTimeout),
		})

		_, ok, err := f.tracker.Resume(ctx)
		if err != nil || ok {
			t.Fatalf("Resume = %v, %v; want false, nil", ok, err)
		}
		if _, stored := f.storedSnapshot(t); stored {
			t.Error("expired snapshot should be deleted")
		}
		if f.tracker.State() != StateIdle {
			t.Errorf("state = %s", f.tracker.State())
		}
		if len(f.reporter.all()) != 0 {
			t.Error("discarding an expired snapshot reports nothing")
		}
	})

	t.Run("unreadable snapshot discarded", func(t *testing.T) {
		t.Parallel()
		f := newTrackerFixture(t)
		_ = f.storage.Set(ctx, SnapshotKey, []byte("{not json"))

		_, ok, err := f.tracker.Resume(ctx)
		if err != nil || ok {
			t.Fatalf("Resume = %v, %v", ok, err)
		}
		if _, stored := f.storedSnapshot(t); stored {
			t.Error("unreadable snapshot should be deleted")
		}
	})

	t.Run("nothing stored", func(t *testing.T) {
		t.Parallel()
		f := newTrackerFixture(t)
		_, ok, err := f.tracker.Resume(ctx)
		if err != nil || ok {
			t.Errorf("Resume = %v, %v", ok, err)
		}
	})
}

func TestTracker_ConcurrentAttempts(t *testing.T) {
	t.Parallel()
	f := newTrackerFixture(t)
	ctx := context.Background()

	if _, err := f.tracker.Start(ctx, false); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = f.tracker.RecordAttempt(ctx, fmt.Sprintf("food-%d", i), "")
		}(i)
	}
	wg.Wait()

	cur, ok := f.tracker.Current()
	if !ok || cur.AttemptCount != 50 || len(f.tracker.History()) != 50 {
		t.Errorf("attempts = %d, history = %d", cur.AttemptCount, len(f.tracker.History()))
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()
	tests := map[State]string{StateIdle: "idle", StateActive: "active", StateTerminal: "terminal", State(9): "state(9)"}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func writeSnapshot(t *testing.T, s Storage, snap Snapshot) {
	t.Helper()
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("encode snapshot: %v", err)
	}
	if err := s.Set(context.Background(), SnapshotKey, raw); err != nil {
		t.Fatalf("store snapshot: %v", err)
	}
}
