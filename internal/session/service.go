// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/metrics"
	"github.com/tomtom215/eatwhat/internal/models"
	"github.com/tomtom215/eatwhat/internal/stats"
)

// Store persists session rows. database.DB implements it.
type Store interface {
	CreateSession(ctx context.Context, s *models.RecommendationSession) error
	GetSession(ctx context.Context, sessionID string) (*models.RecommendationSession, error)
	// SaveOpenSession writes s only if the stored row is still open and
	// returns models.ErrSessionAlreadyClosed otherwise.
	SaveOpenSession(ctx context.Context, s *models.RecommendationSession) error
}

// EventSink receives statistics events. stats.Dispatcher implements it.
type EventSink interface {
	Dispatch(ev stats.Event)
}

type discardSink struct{}

func (discardSink) Dispatch(stats.Event) {}

// Service owns server-side session rows and their statistics.
type Service struct {
	store   Store
	events  EventSink
	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

// NewService creates a Service. A nil events sink drops statistics; a
// timeout <= 0 uses DefaultTimeout.
func NewService(store Store, events EventSink, timeout time.Duration) *Service {
	if events == nil {
		events = discardSink{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		store:   store,
		events:  events,
		timeout: timeout,
		now:     time.Now,
		logger:  logging.WithComponent("session-service"),
	}
}

// Timeout returns the inactivity window.
func (s *Service) Timeout() time.Duration {
	return s.timeout
}

// Start creates an open session with no attempts. The store assigns the row id.
func (s *Service) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	if req.DeviceID == "" {
		return nil, models.NewValidationError("deviceId", "缺少设备ID")
	}

	now := s.now().UTC()
	row := &models.RecommendationSession{
		SessionID:      uuid.NewString(),
		DeviceID:       req.DeviceID,
		UserID:         req.UserID,
		IncludeDrink:   req.IncludeDrink,
		History:        []models.Attempt{},
		StartedAt:      now,
		LastActivityAt: now,
	}
	if err := s.store.CreateSession(ctx, row); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.SessionsStarted.Inc()
	s.dispatch(stats.NewEvent(stats.EventSessionStart, req.DeviceID), now)

	logging.Ctx(ctx).Info().
		Str("component", "session-service").
		Str("session_id", row.SessionID).
		Str("device_id", row.DeviceID).
		Bool("include_drink", row.IncludeDrink).
		Msg("session started")
	return &StartResponse{SessionID: row.SessionID, ID: row.ID}, nil
}

// Get returns one session row.
func (s *Service) Get(ctx context.Context, sessionID string) (*models.RecommendationSession, error) {
	return s.store.GetSession(ctx, sessionID)
}

// Apply performs one client action on an open session and returns the
// updated row.
//
// A missing session returns models.ErrNotFound and a closed one returns
// models.ErrSessionAlreadyClosed. A session idle for the timeout is closed
// as abandoned (timeout) first; only an abandon action then succeeds.
// A reject without a scope rejects for today.
func (s *Service) Apply(ctx context.Context, upd models.SessionUpdate) (*models.RecommendationSession, error) {
	if upd.Action == models.ActionReject && upd.RejectScope == "" {
		upd.RejectScope = models.RejectToday
	}
	if err := validateUpdate(upd); err != nil {
		return nil, err
	}

	row, err := s.store.GetSession(ctx, upd.SessionID)
	if err != nil {
		return nil, err
	}
	if row.Outcome.Terminal() {
		s.logClosed(ctx, upd, row.Outcome)
		return nil, models.ErrSessionAlreadyClosed
	}

	now := s.now().UTC()
	if row.Expired(now, s.timeout) && upd.Action != models.ActionAbandon {
		expired := models.SessionUpdate{SessionID: upd.SessionID, Action: models.ActionAbandon, AbandonReason: models.AbandonTimeout}
		if _, err := s.commit(ctx, row, expired, now); err != nil && !errors.Is(err, models.ErrSessionAlreadyClosed) {
			return nil, err
		}
		s.logClosed(ctx, upd, models.OutcomeAbandoned)
		return nil, models.ErrSessionAlreadyClosed
	}

	return s.commit(ctx, row, upd, now)
}

// commit applies upd to row, saves it conditionally and dispatches stats.
func (s *Service) commit(ctx context.Context, row *models.RecommendationSession, upd models.SessionUpdate, now time.Time) (*models.RecommendationSession, error) {
	var ev stats.Event
	switch upd.Action {
	case models.ActionAttempt:
		row.TotalAttempts++
		row.History = append(row.History, models.Attempt{FoodID: upd.FoodID, DrinkID: upd.DrinkID, Timestamp: now})
		ev = stats.NewEvent(stats.EventRecommend, row.DeviceID, upd.FoodID, upd.DrinkID)

	case models.ActionAccept:
		row.Outcome = models.OutcomeAccepted
		row.FinalFoodID = upd.FoodID
		row.FinalDrinkID = upd.DrinkID
		ev = stats.NewEvent(stats.EventAccept, row.DeviceID, upd.FoodID, upd.DrinkID)

	case models.ActionReject:
		row.Outcome = upd.RejectScope.Outcome()
		ev = stats.NewEvent(stats.EventReject, row.DeviceID, upd.FoodID, upd.DrinkID).WithScope(upd.RejectScope)

	case models.ActionAbandon:
		reason := upd.AbandonReason
		if reason == "" {
			reason = models.AbandonPageLeave
		}
		row.Outcome = models.OutcomeAbandoned
		row.AbandonReason = reason
		row.History = append(row.History, models.Attempt{Reason: reason, Timestamp: now})
		ev = stats.NewEvent(stats.EventAbandon, row.DeviceID)
	}

	row.LastActivityAt = now
	if row.Outcome.Terminal() {
		completed := now
		row.CompletedAt = &completed
	}

	if err := s.store.SaveOpenSession(ctx, row); err != nil {
		if errors.Is(err, models.ErrSessionAlreadyClosed) {
			s.logClosed(ctx, upd, "")
		}
		return nil, err
	}
	if row.Outcome.Terminal() {
		metrics.RecordSessionClosed(string(row.Outcome))
	}
	s.dispatch(ev, now)

	logging.Ctx(ctx).Debug().
		Str("component", "session-service").
		Str("session_id", row.SessionID).
		Str("action", string(upd.Action)).
		Str("food_id", upd.FoodID).
		Int("attempts", row.TotalAttempts).
		Str("outcome", string(row.Outcome)).
		Msg("session updated")
	return row, nil
}

func (s *Service) dispatch(ev stats.Event, at time.Time) {
	ev.OccurredAt = at
	s.events.Dispatch(ev)
}

func (s *Service) logClosed(ctx context.Context, upd models.SessionUpdate, outcome models.SessionOutcome) {
	logging.Ctx(ctx).Warn().
		Str("component", "session-service").
		Str("session_id", upd.SessionID).
		Str("action", string(upd.Action)).
		Str("outcome", string(outcome)).
		Msg("action on closed session rejected")
}

func validateUpdate(upd models.SessionUpdate) error {
	if upd.SessionID == "" {
		return models.NewValidationError("sessionId", "缺少会话ID")
	}
	switch upd.Action {
	case models.ActionAttempt, models.ActionAccept:
	case models.ActionReject:
		if !upd.RejectScope.Valid() {
			return models.NewValidationError("rejectionType", "拒绝类型无效")
		}
	case models.ActionAbandon:
		if upd.AbandonReason != "" && !upd.AbandonReason.Valid() {
			return models.NewValidationError("abandonReason", "放弃原因无效")
		}
	default:
		return models.NewValidationError("action", "未知的操作类型")
	}
	return nil
}
