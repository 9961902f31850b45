// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/eatwhat/internal/models"
)

const (
	// DefaultRankLimit is the leaderboard size when no positive limit is given.
	DefaultRankLimit = 10

	acceptWeight    = 2.0
	rateWeight      = 0.1
	recommendWeight = 0.1
)

// RankingSource returns the ACTIVE foods of kind (all kinds when empty) that
// have counters. database.DB implements it.
type RankingSource interface {
	RankingInputs(ctx context.Context, kind models.FoodKind) ([]models.FoodStatEntry, error)
}

// Score computes the leaderboard statistics for one food's counters.
func Score(stat models.FoodSelectionStat) models.RankingStats {
	rate := 0.0
	if stat.RecommendCount > 0 {
		rate = float64(stat.AcceptCount) / float64(stat.RecommendCount) * 100
	}
	hot := float64(stat.AcceptCount)*acceptWeight + rate*rateWeight + float64(stat.RecommendCount)*recommendWeight

	return models.RankingStats{
		AcceptCount:    stat.AcceptCount,
		RecommendCount: stat.RecommendCount,
		RejectCount:    stat.RejectTodayCount + stat.RejectForeverCount,
		AcceptanceRate: round1(rate),
		HotScore:       round1(hot),
	}
}

// Rank orders entries by accept count then hot score, both descending, and
// returns at most limit items with 1-based ranks. Entries that are not
// ACTIVE, or that do not match a non-empty kind, are skipped. Full ties keep
// their input order.
func Rank(entries []models.FoodStatEntry, kind models.FoodKind, limit int) []models.RankedFood {
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	ranked := make([]models.RankedFood, 0, len(entries))
	for _, e := range entries {
		if !e.Food.IsEligible() {
			continue
		}
		if kind != "" && e.Food.Kind != kind {
			continue
		}
		ranked = append(ranked, models.RankedFood{Food: e.Food, Stats: Score(e.Stat)})
	}

	sortRanked(ranked)

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// sortRanked is a stable sort by accept count, then hot score, both descending.
func sortRanked(ranked []models.RankedFood) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Stats, ranked[j].Stats
		if a.AcceptCount != b.AcceptCount {
			return a.AcceptCount > b.AcceptCount
		}
		return a.HotScore > b.HotScore
	})
}

// Leaderboard loads ranking inputs from src and ranks them.
func Leaderboard(ctx context.Context, src RankingSource, kind models.FoodKind, limit int) ([]models.RankedFood, error) {
	entries, err := src.RankingInputs(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load ranking inputs: %w", err)
	}
	return Rank(entries, kind, limit), nil
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
