// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package models

import "time"

// DateLayout keys daily statistics.
const DateLayout = "2006-01-02"

// FoodSelectionStat holds monotonically increasing counters for one food.
type FoodSelectionStat struct {
	FoodID             string     `json:"foodId"`
	RecommendCount     int64      `json:"recommendCount"`
	AcceptCount        int64      `json:"acceptCount"`
	RejectTodayCount   int64      `json:"rejectTodayCount"`
	RejectForeverCount int64      `json:"rejectForeverCount"`
	LastRecommended    *time.Time `json:"lastRecommended,omitempty"`
	LastAccepted       *time.Time `json:"lastAccepted,omitempty"`
	LastRejected       *time.Time `json:"lastRejected,omitempty"`
}

// GlobalUsageStat is the lifetime usage singleton.
type GlobalUsageStat struct {
	TotalClicks    int64     `json:"totalClicks"`
	TotalUsers     int64     `json:"totalUsers"`
	TotalSessions  int64     `json:"totalSessions"`
	TotalAttempts  int64     `json:"totalAttempts"`
	TotalAccepted  int64     `json:"totalAccepted"`
	TotalRejected  int64     `json:"totalRejected"`
	TotalAbandoned int64     `json:"totalAbandoned"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// DailyUsageStat holds one calendar day's counters and its device set.
type DailyUsageStat struct {
	Date           string   `json:"date"`
	DailyClicks    int64    `json:"dailyClicks"`
	DailyUsers     int64    `json:"dailyUsers"`
	DailySessions  int64    `json:"dailySessions"`
	DailyAttempts  int64    `json:"dailyAttempts"`
	DailyAccepted  int64    `json:"dailyAccepted"`
	DailyRejected  int64    `json:"dailyRejected"`
	DailyAbandoned int64    `json:"dailyAbandoned"`
	ActiveUsers    []string `json:"activeUsers"`
}

// UsageAction is a counter-bearing client action.
type UsageAction string

const (
	UsageClick        UsageAction = "click"
	UsageSessionStart UsageAction = "session_start"
	UsageAttempt      UsageAction = "attempt"
	UsageAccept       UsageAction = "accept"
	UsageReject       UsageAction = "reject"
	UsageAbandon      UsageAction = "abandon"
)

// Valid reports whether a is a known usage action.
func (a UsageAction) Valid() bool {
	switch a {
	case UsageClick, UsageSessionStart, UsageAttempt, UsageAccept, UsageReject, UsageAbandon:
		return true
	}
	return false
}

// SimpleUsage is the public counter shown on the landing page.
type SimpleUsage struct {
	TotalHelped int64 `json:"totalHelped"`
	TotalUsers  int64 `json:"totalUsers"`
}

// DetailedUsage is the global singleton plus recent days.
type DetailedUsage struct {
	Global GlobalUsageStat  `json:"global"`
	Daily  []DailyUsageStat `json:"daily"`
}

// SessionCounts are raw session aggregates read from the store.
type SessionCounts struct {
	Total         int64
	Completed     int64
	Accepted      int64
	Abandoned     int64
	AttemptsTotal int64 // summed over completed sessions
}

// PopularFood is one entry of the session summary's popular list.
type PopularFood struct {
	Food  FoodItem         `json:"food"`
	Stats PopularFoodStats `json:"stats"`
}

// PopularFoodStats is the compact stat block of a popular food.
type PopularFoodStats struct {
	RecommendCount int64  `json:"recommendCount"`
	AcceptCount    int64  `json:"acceptCount"`
	AcceptRate     string `json:"acceptRate"`
}

// SessionSummary is the aggregate view returned by the summary endpoint.
type SessionSummary struct {
	TotalSessions     int64         `json:"totalSessions"`
	CompletedSessions int64         `json:"completedSessions"`
	AcceptedSessions  int64         `json:"acceptedSessions"`
	AbandonedSessions int64         `json:"abandonedSessions"`
	CompletionRate    string        `json:"completionRate"`
	AcceptanceRate    string        `json:"acceptanceRate"`
	AbandonRate       string        `json:"abandonRate"`
	AvgAttempts       string        `json:"avgAttempts"`
	PopularFoods      []PopularFood `json:"popularFoods"`
}

// RankingStats is the computed stat block of a ranked food.
type RankingStats struct {
	AcceptCount    int64   `json:"acceptCount"`
	RecommendCount int64   `json:"recommendCount"`
	RejectCount    int64   `json:"rejectCount"`
	AcceptanceRate float64 `json:"acceptanceRate"`
	HotScore       float64 `json:"hotScore"`
}

// RankedFood is one leaderboard row.
type RankedFood struct {
	Food  FoodItem     `json:"food"`
	Stats RankingStats `json:"stats"`
	Rank  int          `json:"rank"`
}

// UsageCounter names one counter shared by the global and daily usage rows.
type UsageCounter string

const (
	CounterClicks    UsageCounter = "clicks"
	CounterUsers     UsageCounter = "users"
	CounterSessions  UsageCounter = "sessions"
	CounterAttempts  UsageCounter = "attempts"
	CounterAccepted  UsageCounter = "accepted"
	CounterRejected  UsageCounter = "rejected"
	CounterAbandoned UsageCounter = "abandoned"
)

func (c UsageCounter) Valid() bool {
	switch c {
	case CounterClicks, CounterUsers, CounterSessions, CounterAttempts,
		CounterAccepted, CounterRejected, CounterAbandoned:
		return true
	}
	return false
}

// FoodCounter names one per-food selection counter.
type FoodCounter string

const (
	FoodRecommended     FoodCounter = "recommend"
	FoodAccepted        FoodCounter = "accept"
	FoodRejectedToday   FoodCounter = "reject_today"
	FoodRejectedForever FoodCounter = "reject_forever"
)

func (c FoodCounter) Valid() bool {
	switch c {
	case FoodRecommended, FoodAccepted, FoodRejectedToday, FoodRejectedForever:
		return true
	}
	return false
}

// FoodStatEntry joins a catalog item with its selection counters.
type FoodStatEntry struct {
	Food FoodItem
	Stat FoodSelectionStat
}
