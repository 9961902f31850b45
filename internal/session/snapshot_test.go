// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package session

import (
	"testing"
	"time"
)

func TestRestore(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	base := Snapshot{SessionID: "s1", ID: "row1", StartTime: now.Add(-10 * time.Minute), AttemptCount: 3}

	tests := []struct {
		name    string
		idle    time.Duration
		timeout time.Duration
		empty   bool
		wantOK  bool
	}{
		{name: "fresh", idle: time.Minute, timeout: DefaultTimeout, wantOK: true},
		{name: "just under timeout", idle: DefaultTimeout - time.Millisecond, timeout: DefaultTimeout, wantOK: true},
		{name: "exactly at timeout", idle: DefaultTimeout, timeout: DefaultTimeout, wantOK: false},
		{name: "long expired", idle: time.Hour, timeout: DefaultTimeout, wantOK: false},
		{name: "zero timeout uses default", idle: 4 * time.Minute, timeout: 0, wantOK: true},
		{name: "empty snapshot", idle: 0, timeout: DefaultTimeout, empty: true, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			snap := base
			snap.LastActivity = now.Add(-tt.idle)
			if tt.empty {
				snap = Snapshot{}
			}

			got, ok := Restore(snap, now, tt.timeout)
			if ok != tt.wantOK {
				t.Fatalf("Restore() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != snap {
				t.Errorf("Restore() = %+v, want %+v", got, snap)
			}
			if !ok && got != (Snapshot{}) {
				t.Errorf("rejected snapshot should be zero, got %+v", got)
			}
		})
	}
}
