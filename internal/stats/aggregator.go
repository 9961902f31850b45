// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/models"
)

// DefaultDailyLimit is how many recent days the detailed usage view returns.
const DefaultDailyLimit = 30

// DefaultPopularLimit is the size of the summary's popular food list.
const DefaultPopularLimit = 10

// Store is the counter storage. database.DB implements it.
type Store interface {
	IncrementFoodCounter(ctx context.Context, foodID string, counter models.FoodCounter) error
	IncrementGlobalUsage(ctx context.Context, counter models.UsageCounter) error
	IncrementDailyUsage(ctx context.Context, date string, counter models.UsageCounter) error
	RegisterDevice(ctx context.Context, deviceID string) (bool, error)
	RegisterDailyDevice(ctx context.Context, date, deviceID string) (bool, error)

	GetGlobalUsage(ctx context.Context) (*models.GlobalUsageStat, error)
	ListDailyUsage(ctx context.Context, limit int) ([]models.DailyUsageStat, error)
	SessionCounts(ctx context.Context) (models.SessionCounts, error)
	TopAcceptedFoods(ctx context.Context, limit int) ([]models.FoodStatEntry, error)
}

// UsageNotifier receives the public usage counters after each change.
// websocket.Hub implements it.
type UsageNotifier interface {
	BroadcastUsage(usage models.SimpleUsage)
}

// Aggregator applies statistics events to a Store. It holds no counter
// state of its own and is safe for concurrent use.
type Aggregator struct {
	store    Store
	notifier UsageNotifier
	loc      *time.Location
	logger   zerolog.Logger
}

// NewAggregator creates an aggregator. notifier may be nil.
func NewAggregator(store Store, notifier UsageNotifier) *Aggregator {
	return &Aggregator{
		store:    store,
		notifier: notifier,
		loc:      time.Local,
		logger:   logging.WithComponent("stats"),
	}
}

// SetLocation sets the time zone that defines a calendar day.
func (a *Aggregator) SetLocation(loc *time.Location) {
	if loc != nil {
		a.loc = loc
	}
}

// DateOf returns the daily counter key for t.
func (a *Aggregator) DateOf(t time.Time) string {
	return t.In(a.loc).Format(models.DateLayout)
}

// OnRecommend counts one attempt, and one recommendation for each food shown.
func (a *Aggregator) OnRecommend(ctx context.Context, deviceID string, foodIDs ...string) error {
	return a.Apply(ctx, NewEvent(EventRecommend, deviceID, foodIDs...))
}

// OnAccept counts one accepted session, and one acceptance for each food.
func (a *Aggregator) OnAccept(ctx context.Context, deviceID string, foodIDs ...string) error {
	return a.Apply(ctx, NewEvent(EventAccept, deviceID, foodIDs...))
}

// OnReject counts one rejected session, and one rejection of scope for each food.
func (a *Aggregator) OnReject(ctx context.Context, deviceID string, scope models.RejectScope, foodIDs ...string) error {
	return a.Apply(ctx, NewEvent(EventReject, deviceID, foodIDs...).WithScope(scope))
}

// OnClick counts a click and registers the device globally and for today.
func (a *Aggregator) OnClick(ctx context.Context, deviceID string) error {
	return a.Apply(ctx, NewEvent(EventClick, deviceID))
}

// OnSessionStart counts a started session.
func (a *Aggregator) OnSessionStart(ctx context.Context, deviceID string) error {
	return a.Apply(ctx, NewEvent(EventSessionStart, deviceID))
}

// OnAbandon counts an abandoned session.
func (a *Aggregator) OnAbandon(ctx context.Context, deviceID string) error {
	return a.Apply(ctx, NewEvent(EventAbandon, deviceID))
}

// RecordUsage applies a client usage action synchronously. An unknown
// action returns a ValidationError.
func (a *Aggregator) RecordUsage(ctx context.Context, action models.UsageAction, deviceID string) error {
	ev, err := EventForUsage(action, deviceID)
	if err != nil {
		return err
	}
	return a.Apply(ctx, ev)
}

// Apply writes every counter ev affects. It stops at the first store error.
func (a *Aggregator) Apply(ctx context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	date := a.DateOf(ev.OccurredAt)

	var err error
	switch ev.Type {
	case EventClick:
		err = a.applyClick(ctx, date, ev.DeviceID)
	case EventSessionStart:
		err = a.bumpUsage(ctx, date, models.CounterSessions)
	case EventRecommend:
		err = a.applyFoodEvent(ctx, date, ev.FoodIDs, models.FoodRecommended, models.CounterAttempts)
	case EventAccept:
		err = a.applyFoodEvent(ctx, date, ev.FoodIDs, models.FoodAccepted, models.CounterAccepted)
	case EventReject:
		counter := models.FoodRejectedToday
		if ev.Scope == models.RejectForever {
			counter = models.FoodRejectedForever
		}
		err = a.applyFoodEvent(ctx, date, ev.FoodIDs, counter, models.CounterRejected)
	case EventAbandon:
		err = a.bumpUsage(ctx, date, models.CounterAbandoned)
	}
	if err != nil {
		return fmt.Errorf("apply %s event: %w", ev.Type, err)
	}

	a.logger.Debug().
		Str("event_id", ev.ID).
		Str("action", string(ev.Type)).
		Str("device_id", ev.DeviceID).
		Strs("food_ids", ev.FoodIDs).
		Str("date", date).
		Msg("stats event applied")

	a.notify(ctx)
	return nil
}

func (a *Aggregator) applyClick(ctx context.Context, date, deviceID string) error {
	if err := a.bumpUsage(ctx, date, models.CounterClicks); err != nil {
		return err
	}
	if deviceID == "" {
		return nil
	}

	isNew, err := a.store.RegisterDevice(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	if isNew {
		if err := a.store.IncrementGlobalUsage(ctx, models.CounterUsers); err != nil {
			return err
		}
	}

	isNewToday, err := a.store.RegisterDailyDevice(ctx, date, deviceID)
	if err != nil {
		return fmt.Errorf("register daily device: %w", err)
	}
	if isNewToday {
		return a.store.IncrementDailyUsage(ctx, date, models.CounterUsers)
	}
	return nil
}

func (a *Aggregator) applyFoodEvent(ctx context.Context, date string, foodIDs []string, food models.FoodCounter, usage models.UsageCounter) error {
	for _, id := range foodIDs {
		if err := a.store.IncrementFoodCounter(ctx, id, food); err != nil {
			return fmt.Errorf("food %s: %w", id, err)
		}
	}
	return a.bumpUsage(ctx, date, usage)
}

func (a *Aggregator) bumpUsage(ctx context.Context, date string, counter models.UsageCounter) error {
	if err := a.store.IncrementGlobalUsage(ctx, counter); err != nil {
		return err
	}
	return a.store.IncrementDailyUsage(ctx, date, counter)
}

// notify pushes the public counters to the live feed. Failures only log.
func (a *Aggregator) notify(ctx context.Context) {
	if a.notifier == nil {
		return
	}
	usage, err := a.SimpleUsage(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("usage broadcast skipped")
		return
	}
	a.notifier.BroadcastUsage(*usage)
}

// GlobalUsage returns the lifetime counters.
func (a *Aggregator) GlobalUsage(ctx context.Context) (*models.GlobalUsageStat, error) {
	return a.store.GetGlobalUsage(ctx)
}

// SimpleUsage returns the landing-page counters. Every click counts as
// one person helped.
func (a *Aggregator) SimpleUsage(ctx context.Context) (*models.SimpleUsage, error) {
	g, err := a.store.GetGlobalUsage(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SimpleUsage{TotalHelped: g.TotalClicks, TotalUsers: g.TotalUsers}, nil
}

// DailyUsage returns up to limit days, newest first. limit <= 0 means DefaultDailyLimit.
func (a *Aggregator) DailyUsage(ctx context.Context, limit int) ([]models.DailyUsageStat, error) {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return a.store.ListDailyUsage(ctx, limit)
}

// DetailedUsage returns the lifetime counters with the last DefaultDailyLimit days.
func (a *Aggregator) DetailedUsage(ctx context.Context) (*models.DetailedUsage, error) {
	g, err := a.store.GetGlobalUsage(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := a.DailyUsage(ctx, DefaultDailyLimit)
	if err != nil {
		return nil, err
	}
	return &models.DetailedUsage{Global: *g, Daily: daily}, nil
}
