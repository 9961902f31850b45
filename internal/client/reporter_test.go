// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/eatwhat/internal/models"
	"github.com/tomtom215/eatwhat/internal/session"
)

type recordingUpdater struct {
	mu      sync.Mutex
	got     []models.SessionUpdate
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (u *recordingUpdater) UpdateSession(ctx context.Context, upd models.SessionUpdate) error {
	if u.block != nil {
		if u.entered != nil {
			u.entered <- struct{}{}
		}
		select {
		case <-u.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	u.got = append(u.got, upd)
	return nil
}

func (u *recordingUpdater) updates() []models.SessionUpdate {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]models.SessionUpdate(nil), u.got...)
}

func fastConfig() ReporterConfig {
	return ReporterConfig{Buffer: 8, RatePerSec: 1000, Burst: 100}
}

func TestReporterImplementsSessionReporter(t *testing.T) {
	t.Parallel()
	var _ session.Reporter = (*Reporter)(nil)
}

func TestReporterDeliversInOrder(t *testing.T) {
	t.Parallel()

	up := &recordingUpdater{}
	rep := NewReporter(up, fastConfig())
	go rep.Run(context.Background())

	actions := []models.SessionAction{models.ActionAttempt, models.ActionAttempt, models.ActionAccept}
	for _, a := range actions {
		rep.Report(models.SessionUpdate{SessionID: "s1", Action: a})
	}
	rep.Close()

	got := up.updates()
	if len(got) != len(actions) {
		t.Fatalf("delivered %d updates, want %d", len(got), len(actions))
	}
	for i, a := range actions {
		if got[i].Action != a {
			t.Errorf("update %d action = %s, want %s", i, got[i].Action, a)
		}
	}
	if rep.Sent() != 3 || rep.Dropped() != 0 {
		t.Errorf("sent/dropped = %d/%d, want 3/0", rep.Sent(), rep.Dropped())
	}
}

func TestReporterDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	up := &recordingUpdater{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	cfg := fastConfig()
	cfg.Buffer = 1
	cfg.DrainTimeout = 50 * time.Millisecond
	rep := NewReporter(up, cfg)
	go rep.Run(context.Background())

	rep.Report(models.SessionUpdate{SessionID: "s1", Action: models.ActionAttempt})
	<-up.entered // first update is in flight

	rep.Report(models.SessionUpdate{SessionID: "s1", Action: models.ActionAttempt}) // queued
	rep.Report(models.SessionUpdate{SessionID: "s1", Action: models.ActionAccept})  // dropped

	if rep.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", rep.Dropped())
	}
	close(up.block)
	rep.Close()

	if got := len(up.updates()); got != 2 {
		t.Errorf("delivered %d updates, want 2", got)
	}
}

func TestReporterFailedSendIsDropped(t *testing.T) {
	t.Parallel()

	up := &recordingUpdater{err: errors.New("connection refused")}
	rep := NewReporter(up, fastConfig())
	go rep.Run(context.Background())

	rep.Report(models.SessionUpdate{SessionID: "s1", Action: models.ActionAbandon})
	rep.Close()

	if rep.Sent() != 0 || rep.Dropped() != 1 {
		t.Errorf("sent/dropped = %d/%d, want 0/1", rep.Sent(), rep.Dropped())
	}
}

func TestReporterDrainsOnContextCancel(t *testing.T) {
	t.Parallel()

	up := &recordingUpdater{}
	rep := NewReporter(up, fastConfig())

	for i := 0; i < 4; i++ {
		rep.Report(models.SessionUpdate{SessionID: "s1", Action: models.ActionAttempt})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep.Run(ctx)

	if got := len(up.updates()); got != 4 {
		t.Errorf("delivered %d updates after cancel, want 4 drained", got)
	}
}

func TestReporterCloseWithoutRun(t *testing.T) {
	t.Parallel()

	rep := NewReporter(&recordingUpdater{}, fastConfig())

	done := make(chan struct{})
	go func() {
		rep.Close()
		rep.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked without Run")
	}

	rep.Report(models.SessionUpdate{SessionID: "s1", Action: models.ActionAccept})
	if rep.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want report after Close counted", rep.Dropped())
	}
}
