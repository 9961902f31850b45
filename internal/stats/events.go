// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package stats

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eatwhat/internal/models"
)

// EventType names a counter-bearing event.
type EventType string

const (
	EventClick        EventType = "click"
	EventSessionStart EventType = "session_start"
	EventRecommend    EventType = "recommend"
	EventAccept       EventType = "accept"
	EventReject       EventType = "reject"
	EventAbandon      EventType = "abandon"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventClick, EventSessionStart, EventRecommend, EventAccept, EventReject, EventAbandon:
		return true
	}
	return false
}

// Event is one statistics update. OccurredAt fixes the calendar day the
// event counts toward, so a retried event lands on the same day.
type Event struct {
	ID         string             `json:"id"`
	Type       EventType          `json:"type"`
	DeviceID   string             `json:"deviceId,omitempty"`
	FoodIDs    []string           `json:"foodIds,omitempty"`
	Scope      models.RejectScope `json:"scope,omitempty"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// NewEvent creates an event stamped with the current time. Empty food ids
// are dropped.
func NewEvent(typ EventType, deviceID string, foodIDs ...string) Event {
	ids := make([]string, 0, len(foodIDs))
	for _, id := range foodIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		DeviceID:   deviceID,
		FoodIDs:    ids,
		OccurredAt: time.Now(),
	}
}

// WithScope sets the rejection scope of a reject event.
func (e Event) WithScope(scope models.RejectScope) Event {
	e.Scope = scope
	return e
}

// Validate checks the event carries what its type needs.
func (e Event) Validate() error {
	if !e.Type.Valid() {
		return models.NewValidationError("type", fmt.Sprintf("unknown event type %q", e.Type))
	}
	if e.Type == EventReject && !e.Scope.Valid() {
		return models.NewValidationError("scope", fmt.Sprintf("invalid rejection scope %q", e.Scope))
	}
	return nil
}

// EventForUsage maps a client usage action to its event. Reject usage
// carries no food, so its scope defaults to today.
func EventForUsage(action models.UsageAction, deviceID string) (Event, error) {
	var typ EventType
	switch action {
	case models.UsageClick:
		typ = EventClick
	case models.UsageSessionStart:
		typ = EventSessionStart
	case models.UsageAttempt:
		typ = EventRecommend
	case models.UsageAccept:
		typ = EventAccept
	case models.UsageReject:
		typ = EventReject
	case models.UsageAbandon:
		typ = EventAbandon
	default:
		return Event{}, models.NewValidationError("action", "未知的操作类型")
	}
	ev := NewEvent(typ, deviceID)
	if typ == EventReject {
		ev.Scope = models.RejectToday
	}
	return ev, nil
}
