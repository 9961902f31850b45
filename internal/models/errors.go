// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog is returned when no ACTIVE item of a requested kind exists.
	ErrEmptyCatalog = errors.New("no eligible items to recommend")

	// ErrNotFound is returned when an operation targets a missing id.
	ErrNotFound = errors.New("not found")

	// ErrSessionAlreadyClosed is returned for any transition on a terminal session.
	ErrSessionAlreadyClosed = errors.New("session already closed")

	// ErrSessionActive is returned when starting a session while another one is live.
	ErrSessionActive = errors.New("an active session already exists")

	// ErrDuplicate is returned when an item with the same name and kind exists.
	ErrDuplicate = errors.New("an item with this name and kind already exists")

	// ErrStoreUnavailable marks transient storage failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports invalid or missing input. Message is user facing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
