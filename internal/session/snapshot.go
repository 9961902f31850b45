// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package session

import "time"

// DefaultTimeout is the inactivity window after which a session is abandoned.
const DefaultTimeout = 5 * time.Minute

// SnapshotKey is the storage key of the current session snapshot.
const SnapshotKey = "eat_what_current_session"

// Snapshot is the resumable client state of an open session.
type Snapshot struct {
	SessionID    string    `json:"sessionId"`
	ID           string    `json:"id"`
	StartTime    time.Time `json:"startTime"`
	LastActivity time.Time `json:"lastActivity"`
	AttemptCount int       `json:"attemptCount"`
}

// Expired reports whether the snapshot has been idle for at least timeout.
func (s Snapshot) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) >= timeout
}

// Restore validates a loaded snapshot. It returns the snapshot and true when
// it may be resumed; an expired or empty snapshot returns false.
func Restore(snap Snapshot, now time.Time, timeout time.Duration) (Snapshot, bool) {
	if snap.SessionID == "" {
		return Snapshot{}, false
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if snap.Expired(now, timeout) {
		return Snapshot{}, false
	}
	return snap, true
}
