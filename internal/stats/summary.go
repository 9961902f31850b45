// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package stats

import (
	"context"
	"strconv"

	"github.com/tomtom215/eatwhat/internal/models"
)

// SessionSummary aggregates the session table and the most accepted foods.
func (a *Aggregator) SessionSummary(ctx context.Context) (*models.SessionSummary, error) {
	counts, err := a.store.SessionCounts(ctx)
	if err != nil {
		return nil, err
	}
	popular, err := a.PopularFoods(ctx, DefaultPopularLimit)
	if err != nil {
		return nil, err
	}
	summary := BuildSummary(counts)
	summary.PopularFoods = popular
	return &summary, nil
}

// BuildSummary formats raw session counts. Rates are percentages of all
// sessions; avgAttempts is averaged over completed sessions. Every ratio
// with a zero denominator is "0".
func BuildSummary(c models.SessionCounts) models.SessionSummary {
	return models.SessionSummary{
		TotalSessions:     c.Total,
		CompletedSessions: c.Completed,
		AcceptedSessions:  c.Accepted,
		AbandonedSessions: c.Abandoned,
		CompletionRate:    percent(c.Completed, c.Total),
		AcceptanceRate:    percent(c.Accepted, c.Total),
		AbandonRate:       percent(c.Abandoned, c.Total),
		AvgAttempts:       ratio(c.AttemptsTotal, c.Completed, 1),
		PopularFoods:      []models.PopularFood{},
	}
}

// PopularFoods returns up to limit foods by accept count, highest first.
func (a *Aggregator) PopularFoods(ctx context.Context, limit int) ([]models.PopularFood, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	entries, err := a.store.TopAcceptedFoods(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.PopularFood, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.PopularFood{
			Food: e.Food,
			Stats: models.PopularFoodStats{
				RecommendCount: e.Stat.RecommendCount,
				AcceptCount:    e.Stat.AcceptCount,
				AcceptRate:     percent(e.Stat.AcceptCount, e.Stat.RecommendCount),
			},
		})
	}
	return out, nil
}

func percent(part, whole int64) string {
	return ratio(part, whole, 100)
}

func ratio(num, den int64, scale float64) string {
	if den <= 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(num)/float64(den)*scale, 'f', 1, 64)
}
