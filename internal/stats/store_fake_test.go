// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package stats

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/eatwhat/internal/models"
)

// memStore is an in-memory Store with the same upsert semantics as the
// DuckDB implementation.
type memStore struct {
	mu           sync.Mutex
	food         map[string]map[models.FoodCounter]int64
	global       map[models.UsageCounter]int64
	daily        map[string]map[models.UsageCounter]int64
	devices      map[string]bool
	dailyDevices map[string]map[string]bool
	sessions     models.SessionCounts
	foods        map[string]models.FoodItem

	failFood error
}

func newMemStore() *memStore {
	return &memStore{
		food:         make(map[string]map[models.FoodCounter]int64),
		global:       make(map[models.UsageCounter]int64),
		daily:        make(map[string]map[models.UsageCounter]int64),
		devices:      make(map[string]bool),
		dailyDevices: make(map[string]map[string]bool),
		foods:        make(map[string]models.FoodItem),
	}
}

func (m *memStore) IncrementFoodCounter(_ context.Context, foodID string, counter models.FoodCounter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFood != nil {
		return m.failFood
	}
	if m.food[foodID] == nil {
		m.food[foodID] = make(map[models.FoodCounter]int64)
	}
	m.food[foodID][counter]++
	return nil
}

func (m *memStore) IncrementGlobalUsage(_ context.Context, counter models.UsageCounter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.global[counter]++
	return nil
}

func (m *memStore) IncrementDailyUsage(_ context.Context, date string, counter models.UsageCounter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.daily[date] == nil {
		m.daily[date] = make(map[models.UsageCounter]int64)
	}
	m.daily[date][counter]++
	return nil
}

func (m *memStore) RegisterDevice(_ context.Context, deviceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.devices[deviceID] {
		return false, nil
	}
	m.devices[deviceID] = true
	return true, nil
}

func (m *memStore) RegisterDailyDevice(_ context.Context, date, deviceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dailyDevices[date] == nil {
		m.dailyDevices[date] = make(map[string]bool)
	}
	if m.dailyDevices[date][deviceID] {
		return false, nil
	}
	m.dailyDevices[date][deviceID] = true
	return true, nil
}

func (m *memStore) GetGlobalUsage(_ context.Context) (*models.GlobalUsageStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.GlobalUsageStat{
		TotalClicks:    m.global[models.CounterClicks],
		TotalUsers:     m.global[models.CounterUsers],
		TotalSessions:  m.global[models.CounterSessions],
		TotalAttempts:  m.global[models.CounterAttempts],
		TotalAccepted:  m.global[models.CounterAccepted],
		TotalRejected:  m.global[models.CounterRejected],
		TotalAbandoned: m.global[models.CounterAbandoned],
	}, nil
}

func (m *memStore) ListDailyUsage(_ context.Context, limit int) ([]models.DailyUsageStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dates := make([]string, 0, len(m.daily))
	for d := range m.daily {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > limit {
		dates = dates[:limit]
	}
	out := make([]models.DailyUsageStat, 0, len(dates))
	for _, d := range dates {
		c := m.daily[d]
		out = append(out, models.DailyUsageStat{
			Date:        d,
			DailyClicks: c[models.CounterClicks],
			DailyUsers:  c[models.CounterUsers],
		})
	}
	return out, nil
}

func (m *memStore) SessionCounts(_ context.Context) (models.SessionCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions, nil
}

func (m *memStore) TopAcceptedFoods(_ context.Context, limit int) ([]models.FoodStatEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.FoodStatEntry, 0, len(m.food))
	for id, c := range m.food {
		out = append(out, models.FoodStatEntry{
			Food: m.foods[id],
			Stat: models.FoodSelectionStat{
				FoodID:         id,
				RecommendCount: c[models.FoodRecommended],
				AcceptCount:    c[models.FoodAccepted],
			},
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Stat.AcceptCount != out[j].Stat.AcceptCount {
			return out[i].Stat.AcceptCount > out[j].Stat.AcceptCount
		}
		return out[i].Stat.FoodID < out[j].Stat.FoodID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) foodCount(id string, c models.FoodCounter) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.food[id][c]
}

func (m *memStore) globalCount(c models.UsageCounter) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.global[c]
}

func (m *memStore) dailyCount(date string, c models.UsageCounter) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.daily[date][c]
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []models.SimpleUsage
}

func (n *recordingNotifier) BroadcastUsage(u models.SimpleUsage) {
	n.mu.Lock()
	n.got = append(n.got, u)
	n.mu.Unlock()
}

func (n *recordingNotifier) last() (models.SimpleUsage, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.got) == 0 {
		return models.SimpleUsage{}, 0
	}
	return n.got[len(n.got)-1], len(n.got)
}
