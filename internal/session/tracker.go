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
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/models"
)

// ErrNoSession is returned for a transition that needs an open session
// while the tracker is idle.
var ErrNoSession = errors.New("no active session")

// State is the tracker's position in the decision flow.
type State int

const (
	StateIdle State = iota
	StateActive
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateTerminal:
		return "terminal"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StartRequest opens a server-side session.
type StartRequest struct {
	DeviceID     string `json:"deviceId" validate:"required,max=128"`
	UserID       string `json:"userId,omitempty" validate:"omitempty,max=128"`
	IncludeDrink bool   `json:"includeDrink"`
}

// StartResponse identifies a newly opened session.
type StartResponse struct {
	SessionID string `json:"sessionId"`
	ID        string `json:"id"`
}

// Backend allocates sessions. client.Client implements it.
type Backend interface {
	StartSession(ctx context.Context, req StartRequest) (*StartResponse, error)
}

// Reporter delivers session actions to the server without blocking.
type Reporter interface {
	Report(update models.SessionUpdate)
}

type discardReporter struct{}

func (discardReporter) Report(models.SessionUpdate) {}

// Tracker is the client-side state machine for one device. It is safe for
// concurrent use; transitions are serialized.
type Tracker struct {
	deviceID string
	backend  Backend
	reporter Reporter
	storage  Storage
	timeout  time.Duration
	now      func() time.Time
	logger   zerolog.Logger

	mu           sync.Mutex
	state        State
	current      Snapshot
	outcome      models.SessionOutcome
	history      []models.Attempt
	finalFoodID  string
	finalDrinkID string
}

// TrackerConfig wires a Tracker. Only Backend and DeviceID are required.
type TrackerConfig struct {
	DeviceID string
	Backend  Backend
	Reporter Reporter
	Storage  Storage
	Timeout  time.Duration
}

// NewTracker creates an idle tracker. Call Resume to pick up a stored session.
func NewTracker(cfg TrackerConfig) (*Tracker, error) {
	if cfg.Backend == nil {
		return nil, errors.New("session tracker requires a backend")
	}
	if cfg.DeviceID == "" {
		return nil, models.NewValidationError("deviceId", "device id is required")
	}
	if cfg.Reporter == nil {
		cfg.Reporter = discardReporter{}
	}
	if cfg.Storage == nil {
		cfg.Storage = NewMemoryStorage()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Tracker{
		deviceID: cfg.DeviceID,
		backend:  cfg.Backend,
		reporter: cfg.Reporter,
		storage:  cfg.Storage,
		timeout:  cfg.Timeout,
		now:      time.Now,
		logger:   logging.WithComponent("session-tracker").With().Str("device_id", cfg.DeviceID).Logger(),
	}, nil
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Current returns the open session snapshot, if any.
func (t *Tracker) Current() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateActive {
		return Snapshot{}, false
	}
	return t.current, true
}

// Outcome returns the outcome of the last closed session.
func (t *Tracker) Outcome() models.SessionOutcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome
}

// Final returns the food and drink accepted in the last session. Both are
// empty unless that session ended accepted; drinkID is empty when no drink
// was chosen.
func (t *Tracker) Final() (foodID, drinkID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finalFoodID, t.finalDrinkID
}

// History returns the attempts of the current or last session.
func (t *Tracker) History() []models.Attempt {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Attempt(nil), t.history...)
}

// Start opens a new session. It fails with models.ErrSessionActive while a
// non-expired session is open; an expired one is abandoned first.
func (t *Tracker) Start(ctx context.Context, wantsDrink bool) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateActive {
		if !t.current.Expired(t.now(), t.timeout) {
			return Snapshot{}, models.ErrSessionActive
		}
		t.closeLocked(ctx, models.OutcomeAbandoned, models.SessionUpdate{
			Action:        models.ActionAbandon,
			AbandonReason: models.AbandonTimeout,
		})
	}

	resp, err := t.backend.StartSession(ctx, StartRequest{DeviceID: t.deviceID, IncludeDrink: wantsDrink})
	if err != nil {
		return Snapshot{}, fmt.Errorf("start session: %w", err)
	}

	now := t.now()
	t.state = StateActive
	t.outcome = models.OutcomeNone
	t.history = nil
	t.finalFoodID, t.finalDrinkID = "", ""
	t.current = Snapshot{
		SessionID:    resp.SessionID,
		ID:           resp.ID,
		StartTime:    now,
		LastActivity: now,
	}
	t.persistLocked(ctx)

	t.logger.Info().Str("session_id", resp.SessionID).Bool("include_drink", wantsDrink).Msg("session started")
	return t.current, nil
}

// RecordAttempt records one shown recommendation. drinkID may be empty.
func (t *Tracker) RecordAttempt(ctx context.Context, foodID, drinkID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpenLocked(ctx, models.ActionAttempt); err != nil {
		return err
	}

	now := t.now()
	t.current.AttemptCount++
	t.current.LastActivity = now
	t.history = append(t.history, models.Attempt{FoodID: foodID, DrinkID: drinkID, Timestamp: now})
	t.persistLocked(ctx)

	t.reporter.Report(models.SessionUpdate{
		SessionID: t.current.SessionID,
		Action:    models.ActionAttempt,
		FoodID:    foodID,
		DrinkID:   drinkID,
	})
	return nil
}

// Accept closes the session with the chosen food and optional drink.
func (t *Tracker) Accept(ctx context.Context, foodID, drinkID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpenLocked(ctx, models.ActionAccept); err != nil {
		return err
	}
	t.finalFoodID, t.finalDrinkID = foodID, drinkID
	t.closeLocked(ctx, models.OutcomeAccepted, models.SessionUpdate{
		Action:  models.ActionAccept,
		FoodID:  foodID,
		DrinkID: drinkID,
	})
	return nil
}

// Reject closes the session, rejecting the shown items for scope.
func (t *Tracker) Reject(ctx context.Context, foodID, drinkID string, scope models.RejectScope) error {
	if !scope.Valid() {
		return models.NewValidationError("rejectionType", fmt.Sprintf("invalid rejection scope %q", scope))
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpenLocked(ctx, models.ActionReject); err != nil {
		return err
	}
	t.closeLocked(ctx, scope.Outcome(), models.SessionUpdate{
		Action:      models.ActionReject,
		FoodID:      foodID,
		DrinkID:     drinkID,
		RejectScope: scope,
	})
	return nil
}

// Abandon closes the session without a decision. An empty reason means
// page_leave.
func (t *Tracker) Abandon(ctx context.Context, reason models.AbandonReason) error {
	if reason == "" {
		reason = models.AbandonPageLeave
	}
	if !reason.Valid() {
		return models.NewValidationError("abandonReason", fmt.Sprintf("invalid abandon reason %q", reason))
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpenLocked(ctx, models.ActionAbandon); err != nil {
		return err
	}
	t.closeLocked(ctx, models.OutcomeAbandoned, models.SessionUpdate{
		Action:        models.ActionAbandon,
		AbandonReason: reason,
	})
	return nil
}

// CheckTimeout abandons the open session if it has been idle for the
// timeout. It reports whether it did.
func (t *Tracker) CheckTimeout(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateActive || !t.current.Expired(t.now(), t.timeout) {
		return false
	}
	t.closeLocked(ctx, models.OutcomeAbandoned, models.SessionUpdate{
		Action:        models.ActionAbandon,
		AbandonReason: models.AbandonTimeout,
	})
	return true
}

// Resume loads the stored snapshot and resumes it when it has not expired.
// An expired or unreadable snapshot is deleted without contacting the server.
func (t *Tracker) Resume(ctx context.Context) (Snapshot, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateActive {
		return t.current, true, nil
	}

	raw, err := t.storage.Get(ctx, SnapshotKey)
	if errors.Is(err, ErrKeyNotFound) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load session snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.logger.Warn().Err(err).Msg("discarding unreadable session snapshot")
		t.clearLocked(ctx)
		return Snapshot{}, false, nil
	}

	restored, ok := Restore(snap, t.now(), t.timeout)
	if !ok {
		t.logger.Info().Str("session_id", snap.SessionID).Msg("stored session expired, discarded")
		t.clearLocked(ctx)
		return Snapshot{}, false, nil
	}

	t.state = StateActive
	t.current = restored
	t.outcome = models.OutcomeNone
	t.history = nil
	t.finalFoodID, t.finalDrinkID = "", ""
	t.logger.Info().Str("session_id", restored.SessionID).Int("attempts", restored.AttemptCount).Msg("session resumed")
	return restored, true, nil
}

// requireOpenLocked returns nil when a transition may proceed. An open
// session that has timed out is abandoned first and then counts as closed.
func (t *Tracker) requireOpenLocked(ctx context.Context, action models.SessionAction) error {
	switch t.state {
	case StateIdle:
		return ErrNoSession
	case StateTerminal:
		t.logger.Warn().Str("action", string(action)).Str("outcome", string(t.outcome)).Msg("transition on closed session ignored")
		return models.ErrSessionAlreadyClosed
	}

	if action != models.ActionAbandon && t.current.Expired(t.now(), t.timeout) {
		t.closeLocked(ctx, models.OutcomeAbandoned, models.SessionUpdate{
			Action:        models.ActionAbandon,
			AbandonReason: models.AbandonTimeout,
		})
		t.logger.Warn().Str("action", string(action)).Msg("session timed out before transition")
		return models.ErrSessionAlreadyClosed
	}
	return nil
}

// closeLocked moves an open session to Terminal and reports update.
func (t *Tracker) closeLocked(ctx context.Context, outcome models.SessionOutcome, update models.SessionUpdate) {
	update.SessionID = t.current.SessionID
	if update.Action == models.ActionAbandon {
		t.history = append(t.history, models.Attempt{Reason: update.AbandonReason, Timestamp: t.now()})
	}
	t.state = StateTerminal
	t.outcome = outcome
	t.clearLocked(ctx)

	t.reporter.Report(update)
	t.logger.Info().
		Str("session_id", update.SessionID).
		Str("outcome", string(outcome)).
		Int("attempts", t.current.AttemptCount).
		Msg("session closed")
}

// persistLocked saves the snapshot. A storage failure only costs resumability.
func (t *Tracker) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(t.current)
	if err == nil {
		err = t.storage.Set(ctx, SnapshotKey, raw)
	}
	if err != nil {
		t.logger.Warn().Err(err).Str("session_id", t.current.SessionID).Msg("session snapshot not saved")
	}
}

func (t *Tracker) clearLocked(ctx context.Context) {
	if err := t.storage.Delete(ctx, SnapshotKey); err != nil {
		t.logger.Warn().Err(err).Msg("session snapshot not cleared")
	}
}
