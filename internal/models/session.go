// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package models

import "time"

// SessionOutcome is the terminal state of a decision flow. The zero value
// means the session is still open.
type SessionOutcome string

const (
	OutcomeNone            SessionOutcome = ""
	OutcomeAccepted        SessionOutcome = "accepted"
	OutcomeRejectedToday   SessionOutcome = "rejected_today"
	OutcomeRejectedForever SessionOutcome = "rejected_forever"
	OutcomeAbandoned       SessionOutcome = "abandoned"
)

// Terminal reports whether the outcome closes the session.
func (o SessionOutcome) Terminal() bool {
	return o != OutcomeNone
}

// SessionAction is a client-reported step in a decision flow.
type SessionAction string

const (
	ActionAttempt SessionAction = "attempt"
	ActionAccept  SessionAction = "accept"
	ActionReject  SessionAction = "reject"
	ActionAbandon SessionAction = "abandon"
)

// RejectScope says how long a rejected food should be avoided.
type RejectScope string

const (
	RejectToday   RejectScope = "today"
	RejectForever RejectScope = "forever"
)

// Valid reports whether s is a known scope.
func (s RejectScope) Valid() bool {
	return s == RejectToday || s == RejectForever
}

// Outcome maps the scope to its terminal session outcome.
func (s RejectScope) Outcome() SessionOutcome {
	if s == RejectForever {
		return OutcomeRejectedForever
	}
	return OutcomeRejectedToday
}

// AbandonReason says why a session was abandoned.
type AbandonReason string

const (
	AbandonPageLeave  AbandonReason = "page_leave"
	AbandonPageHidden AbandonReason = "page_hidden"
	AbandonTimeout    AbandonReason = "timeout"
)

// Valid reports whether r is a known reason.
func (r AbandonReason) Valid() bool {
	switch r {
	case AbandonPageLeave, AbandonPageHidden, AbandonTimeout:
		return true
	}
	return false
}

// Attempt is one entry in a session's history.
type Attempt struct {
	FoodID    string        `json:"foodId,omitempty"`
	DrinkID   string        `json:"drinkId,omitempty"`
	Reason    AbandonReason `json:"reason,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// RecommendationSession is the server-side record of one decision flow.
type RecommendationSession struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"sessionId"`
	DeviceID       string         `json:"deviceId"`
	UserID         string         `json:"userId,omitempty"`
	IncludeDrink   bool           `json:"includeDrink"`
	TotalAttempts  int            `json:"totalAttempts"`
	History        []Attempt      `json:"history"`
	Outcome        SessionOutcome `json:"outcome,omitempty"`
	AbandonReason  AbandonReason  `json:"abandonReason,omitempty"`
	FinalFoodID    string         `json:"finalFoodId,omitempty"`
	FinalDrinkID   string         `json:"finalDrinkId,omitempty"`
	StartedAt      time.Time      `json:"startedAt"`
	LastActivityAt time.Time      `json:"lastActivityAt"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
}

// Expired reports whether the open session has been idle for at least timeout.
func (s *RecommendationSession) Expired(now time.Time, timeout time.Duration) bool {
	return !s.Outcome.Terminal() && timeout > 0 && now.Sub(s.LastActivityAt) >= timeout
}

// SessionUpdate is a client-reported action on an existing session.
type SessionUpdate struct {
	SessionID     string
	Action        SessionAction
	FoodID        string
	DrinkID       string
	RejectScope   RejectScope
	AbandonReason AbandonReason
}
