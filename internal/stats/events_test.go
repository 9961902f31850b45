// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package stats

import (
	"testing"

	"github.com/tomtom215/eatwhat/internal/models"
)

func TestNewEvent_DropsEmptyFoodIDs(t *testing.T) {
	t.Parallel()

	ev := NewEvent(EventAccept, "dev", "", "f1", "")
	if len(ev.FoodIDs) != 1 || ev.FoodIDs[0] != "f1" {
		t.Errorf("FoodIDs = %v", ev.FoodIDs)
	}
	if ev.ID == "" || ev.OccurredAt.IsZero() {
		t.Error("event must carry an id and a timestamp")
	}
}

func TestEventForUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action  models.UsageAction
		want    EventType
		wantErr bool
	}{
		{models.UsageClick, EventClick, false},
		{models.UsageSessionStart, EventSessionStart, false},
		{models.UsageAttempt, EventRecommend, false},
		{models.UsageAccept, EventAccept, false},
		{models.UsageReject, EventReject, false},
		{models.UsageAbandon, EventAbandon, false},
		{"unknown", "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			t.Parallel()
			ev, err := EventForUsage(tt.action, "dev")
			if tt.wantErr {
				if !models.IsValidationError(err) {
					t.Errorf("err = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EventForUsage: %v", err)
			}
			if ev.Type != tt.want {
				t.Errorf("type = %s, want %s", ev.Type, tt.want)
			}
			if err := ev.Validate(); err != nil {
				t.Errorf("mapped event invalid: %v", err)
			}
		})
	}
}
