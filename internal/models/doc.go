// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package models defines the data structures shared by every Eat-What component.

Key Components:

  - FoodItem: a catalog entry (dish or drink) with tags and moderation status
  - RecommendationSession: one decision flow from first attempt to outcome
  - FoodSelectionStat: per-food recommend/accept/reject counters
  - GlobalUsageStat and DailyUsageStat: lifetime and per-day usage counters
  - FoodRating: a device's like or dislike of a food

The sentinel errors in errors.go form the error taxonomy used across the store,
the selector, the session service and the HTTP layer. Callers match them with
errors.Is; lower layers wrap them with fmt.Errorf and %w.
*/
package models
