// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

// Package recommend picks random dishes and drinks and builds the leaderboard.
//
// # Selection
//
// Selector draws uniformly from the ACTIVE items of a kind. The eligible pool
// is read through EligibleCache, which keeps one copy per kind in memory for
// a fixed TTL (5 minutes by default). Catalog writes call Invalidate so the
// next read reloads, and a supervised refresher calls Refresh on every TTL
// tick so the first request after expiry rarely pays for the reload.
//
// Selection has no side effects. Counting a recommendation is an explicit,
// separate call to the stats package.
//
// # Ranking
//
// Rank turns per-food counters into an ordered leaderboard:
//
//	acceptanceRate = recommend > 0 ? accept / recommend * 100 : 0
//	hotScore       = accept*2 + acceptanceRate*0.1 + recommend*0.1
//
// Both values are rounded to one decimal. Entries sort by accept count, then
// hot score, both descending. The sort is stable, so full ties keep input order.
//
// # Usage
//
//	cache := recommend.NewEligibleCache(db, 5*time.Minute)
//	sel := recommend.NewSelector(cache, db, nil)
//	res, err := sel.Recommend(ctx, recommend.Options{WantsDrink: true})
//	if errors.Is(err, models.ErrEmptyCatalog) {
//		// nothing to recommend
//	}
package recommend
