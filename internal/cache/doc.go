// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package cache provides a thread-safe in-memory cache with TTL expiration.

The API uses it for the aggregate reads that scan every counter row: the
ranking leaderboard and the session summary. Catalog writes clear it;
statistic writes do not, so those reads may lag by up to one TTL.
Expiration is checked lazily on Get and by a background sweep that Close
stops.

# Usage Example

	c := cache.New(30 * time.Second)
	defer c.Close()

	key := cache.GenerateKey("ranking", map[string]interface{}{"type": "DISH", "limit": 10})
	v, err := c.GetOrLoad(key, func() (interface{}, error) {
	    return recommend.Leaderboard(ctx, db, models.KindDish, 10)
	})

A TTL of zero disables storage: Get always misses and Set is a no-op.
*/
package cache
