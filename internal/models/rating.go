// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package models

import "time"

const (
	RatingLike    = 1
	RatingDislike = -1
)

// FoodRating is one device's opinion of one food, unique per (FoodID, DeviceID).
type FoodRating struct {
	FoodID    string    `json:"foodId"`
	DeviceID  string    `json:"deviceId"`
	Rating    int       `json:"rating"`
	IPAddress string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidRating reports whether r is a like or a dislike.
func ValidRating(r int) bool {
	return r == RatingLike || r == RatingDislike
}

// RatingStats summarizes the ratings of a food.
type RatingStats struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
	Total    int `json:"total"`
}

// RatingSummary is RatingStats plus the calling device's own rating.
type RatingSummary struct {
	RatingStats
	UserRating *int `json:"userRating"`
}

// RatedFood is a FoodItem decorated with its rating stats.
type RatedFood struct {
	FoodItem
	RatingStats RatingStats `json:"ratingStats"`
}
