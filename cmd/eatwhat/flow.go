// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/eatwhat/internal/client"
	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/models"
	"github.com/tomtom215/eatwhat/internal/session"
)

// API is the part of client.Client the flow needs.
type API interface {
	Recommend(ctx context.Context, opts client.RecommendOptions) (*client.Recommendation, error)
	RecordUsage(ctx context.Context, action models.UsageAction) error
}

// Decider is the part of session.Tracker the flow drives.
type Decider interface {
	Resume(ctx context.Context) (session.Snapshot, bool, error)
	Start(ctx context.Context, wantsDrink bool) (session.Snapshot, error)
	RecordAttempt(ctx context.Context, foodID, drinkID string) error
	Accept(ctx context.Context, foodID, drinkID string) error
	Reject(ctx context.Context, foodID, drinkID string, scope models.RejectScope) error
	Abandon(ctx context.Context, reason models.AbandonReason) error
}

const promptLine = "[a]ccept  [n]ext  [r]eject today  [f]orever  [q]uit > "

// pickFlow runs one decision: draw, show, ask, until the user decides or
// leaves. It returns the session outcome.
type pickFlow struct {
	api     API
	tracker Decider
	in      *bufio.Scanner
	out     io.Writer
	drink   bool
}

func newPickFlow(api API, tracker Decider, in io.Reader, out io.Writer, drink bool) *pickFlow {
	return &pickFlow{
		api:     api,
		tracker: tracker,
		in:      bufio.NewScanner(in),
		out:     out,
		drink:   drink,
	}
}

func (f *pickFlow) run(ctx context.Context) (models.SessionOutcome, error) {
	snap, resumed, err := f.tracker.Resume(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("could not resume stored session")
	}
	if resumed {
		fmt.Fprintf(f.out, "Resuming session %s (%d attempts so far)\n", snap.SessionID, snap.AttemptCount)
	} else {
		if _, err := f.tracker.Start(ctx, f.drink); err != nil {
			return models.OutcomeNone, err
		}
	}

	if err := f.api.RecordUsage(ctx, models.UsageClick); err != nil {
		logging.Debug().Err(err).Msg("usage click not recorded")
	}

	for {
		rec, err := f.api.Recommend(ctx, client.RecommendOptions{IncludeDrink: f.drink})
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && errors.Is(err, models.ErrNotFound) {
				fmt.Fprintln(f.out, apiErr.Message)
			}
			_ = f.tracker.Abandon(ctx, models.AbandonPageLeave)
			return models.OutcomeAbandoned, err
		}

		foodID, drinkID := itemID(rec.Food), itemID(rec.Drink)
		if err := f.tracker.RecordAttempt(ctx, foodID, drinkID); err != nil {
			return f.closed(models.OutcomeNone, err)
		}
		f.show(rec)

		outcome, done, err := f.ask(ctx, foodID, drinkID)
		if err != nil {
			return f.closed(outcome, err)
		}
		if done {
			return outcome, nil
		}
	}
}

// closed maps models.ErrSessionAlreadyClosed, returned once an idle session
// has timed out, to an abandoned outcome.
func (f *pickFlow) closed(outcome models.SessionOutcome, err error) (models.SessionOutcome, error) {
	if !errors.Is(err, models.ErrSessionAlreadyClosed) {
		return outcome, err
	}
	fmt.Fprintln(f.out, "This session expired. Run eatwhat again to start a new one.")
	return models.OutcomeAbandoned, nil
}

// ask reads answers until one is understood. done is false for "next".
func (f *pickFlow) ask(ctx context.Context, foodID, drinkID string) (models.SessionOutcome, bool, error) {
	for {
		fmt.Fprint(f.out, promptLine)
		if !f.in.Scan() {
			err := f.tracker.Abandon(ctx, models.AbandonPageLeave)
			fmt.Fprintln(f.out)
			return models.OutcomeAbandoned, true, err
		}

		switch strings.ToLower(strings.TrimSpace(f.in.Text())) {
		case "a", "accept", "y":
			return f.decide(models.OutcomeAccepted, "Enjoy your meal!", f.tracker.Accept(ctx, foodID, drinkID))
		case "n", "next", "":
			return models.OutcomeNone, false, nil
		case "r", "reject":
			return f.decide(models.OutcomeRejectedToday, "Not today, then.", f.tracker.Reject(ctx, foodID, drinkID, models.RejectToday))
		case "f", "forever":
			return f.decide(models.OutcomeRejectedForever, "Noted, never again.", f.tracker.Reject(ctx, foodID, drinkID, models.RejectForever))
		case "q", "quit", "exit":
			return models.OutcomeAbandoned, true, f.tracker.Abandon(ctx, models.AbandonPageLeave)
		default:
			fmt.Fprintln(f.out, "Unknown answer.")
		}
	}
}

// decide prints msg once the transition err came from has succeeded.
func (f *pickFlow) decide(outcome models.SessionOutcome, msg string, err error) (models.SessionOutcome, bool, error) {
	if err != nil {
		return outcome, true, err
	}
	fmt.Fprintln(f.out, msg)
	return outcome, true, nil
}

func (f *pickFlow) show(rec *client.Recommendation) {
	if rec.Food != nil {
		fmt.Fprintf(f.out, "\n  %s  [%s]%s\n", rec.Food.Name, rec.Food.Category, ratingSuffix(rec.Food))
	}
	if rec.Drink != nil {
		fmt.Fprintf(f.out, "  + %s  [%s]%s\n", rec.Drink.Name, rec.Drink.Category, ratingSuffix(rec.Drink))
	}
	fmt.Fprintln(f.out)
}

func ratingSuffix(item *models.RatedFood) string {
	if item.RatingStats.Total == 0 {
		return ""
	}
	return fmt.Sprintf("  +%d/-%d", item.RatingStats.Likes, item.RatingStats.Dislikes)
}

func itemID(item *models.RatedFood) string {
	if item == nil {
		return ""
	}
	return item.ID
}
