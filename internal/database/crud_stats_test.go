// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package database

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/tomtom215/eatwhat/internal/models"
)

func TestIncrementFoodCounter_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	food := insertTestFood(t, db, "黄焖鸡米饭", models.KindDish, models.StatusActive)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := db.IncrementFoodCounter(ctx, food.ID, models.FoodRecommended); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("increment failed: %v", err)
	}

	stat, err := db.GetFoodStat(ctx, food.ID)
	if err != nil {
		t.Fatalf("GetFoodStat: %v", err)
	}
	if stat.RecommendCount != workers {
		t.Errorf("recommend_count = %d, want %d", stat.RecommendCount, workers)
	}
	if stat.LastRecommended == nil {
		t.Error("last_recommended not set")
	}
}

func TestIncrementFoodCounter_Columns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	id := "food-1"

	for _, c := range []models.FoodCounter{
		models.FoodRecommended, models.FoodRecommended,
		models.FoodAccepted,
		models.FoodRejectedToday,
		models.FoodRejectedForever, models.FoodRejectedForever,
	} {
		if err := db.IncrementFoodCounter(ctx, id, c); err != nil {
			t.Fatalf("increment %s: %v", c, err)
		}
	}

	stat, err := db.GetFoodStat(ctx, id)
	if err != nil {
		t.Fatalf("GetFoodStat: %v", err)
	}
	if stat.RecommendCount != 2 || stat.AcceptCount != 1 || stat.RejectTodayCount != 1 || stat.RejectForeverCount != 2 {
		t.Errorf("stat = %+v", stat)
	}
	if stat.LastAccepted == nil || stat.LastRejected == nil {
		t.Error("timestamps not set")
	}

	if err := db.IncrementFoodCounter(ctx, id, "bogus"); !models.IsValidationError(err) {
		t.Errorf("expected ValidationError for unknown counter, got %v", err)
	}

	zero, err := db.GetFoodStat(ctx, "never-seen")
	if err != nil || zero.RecommendCount != 0 {
		t.Errorf("missing stat should be zero, got %+v, %v", zero, err)
	}
}

func TestUsageCounters_ConcurrentGlobalAndDaily(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	const date = "2026-03-01"
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := db.IncrementGlobalUsage(ctx, models.CounterClicks); err != nil {
				t.Errorf("global: %v", err)
			}
			if err := db.IncrementDailyUsage(ctx, date, models.CounterClicks); err != nil {
				t.Errorf("daily: %v", err)
			}
		}()
	}
	wg.Wait()

	g, err := db.GetGlobalUsage(ctx)
	if err != nil {
		t.Fatalf("GetGlobalUsage: %v", err)
	}
	if g.TotalClicks != workers {
		t.Errorf("total_clicks = %d, want %d", g.TotalClicks, workers)
	}

	days, err := db.ListDailyUsage(ctx, 30)
	if err != nil {
		t.Fatalf("ListDailyUsage: %v", err)
	}
	if len(days) != 1 || days[0].DailyClicks != workers {
		t.Errorf("daily = %+v", days)
	}

	if err := db.IncrementGlobalUsage(ctx, "nope"); !models.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestRegisterDevice_FirstSightingOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.RegisterDevice(ctx, "dev-1")
	if err != nil || !first {
		t.Fatalf("first RegisterDevice = %v, %v; want true", first, err)
	}
	again, err := db.RegisterDevice(ctx, "dev-1")
	if err != nil || again {
		t.Fatalf("repeat RegisterDevice = %v, %v; want false", again, err)
	}

	d1, _ := db.RegisterDailyDevice(ctx, "2026-03-01", "dev-1")
	d1again, _ := db.RegisterDailyDevice(ctx, "2026-03-01", "dev-1")
	d2, _ := db.RegisterDailyDevice(ctx, "2026-03-02", "dev-1")
	if !d1 || d1again || !d2 {
		t.Errorf("daily registry = %v %v %v, want true false true", d1, d1again, d2)
	}
}

func TestRegisterDevice_ConcurrentSameDevice(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const workers = 20
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := db.RegisterDevice(ctx, "shared")
			if err != nil {
				t.Errorf("RegisterDevice: %v", err)
				return
			}
			if ok {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if fresh != 1 {
		t.Errorf("new-device reports = %d, want exactly 1", fresh)
	}
}

func TestListDailyUsage_OrderAndActiveUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		date := fmt.Sprintf("2026-03-%02d", day)
		if err := db.IncrementDailyUsage(ctx, date, models.CounterSessions); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	if _, err := db.RegisterDailyDevice(ctx, "2026-03-02", "dev-a"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := db.RegisterDailyDevice(ctx, "2026-03-02", "dev-b"); err != nil {
		t.Fatalf("register: %v", err)
	}

	days, err := db.ListDailyUsage(ctx, 2)
	if err != nil {
		t.Fatalf("ListDailyUsage: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("len = %d, want 2", len(days))
	}
	if days[0].Date != "2026-03-03" || days[1].Date != "2026-03-02" {
		t.Errorf("order = %s, %s", days[0].Date, days[1].Date)
	}
	if len(days[0].ActiveUsers) != 0 {
		t.Errorf("day 3 active users = %v", days[0].ActiveUsers)
	}
	if len(days[1].ActiveUsers) != 2 {
		t.Errorf("day 2 active users = %v", days[1].ActiveUsers)
	}
}

func TestRankingInputsAndTopAccepted(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	dish := insertTestFood(t, db, "鱼香肉丝", models.KindDish, models.StatusActive)
	drink := insertTestFood(t, db, "可口可乐", models.KindDrink, models.StatusActive)
	hidden := insertTestFood(t, db, "隐藏菜", models.KindDish, models.StatusHidden)
	insertTestFood(t, db, "无统计菜", models.KindDish, models.StatusActive)

	bump := func(id string, c models.FoodCounter, n int) {
		for i := 0; i < n; i++ {
			if err := db.IncrementFoodCounter(ctx, id, c); err != nil {
				t.Fatalf("increment: %v", err)
			}
		}
	}
	bump(dish.ID, models.FoodRecommended, 4)
	bump(dish.ID, models.FoodAccepted, 1)
	bump(drink.ID, models.FoodRecommended, 2)
	bump(drink.ID, models.FoodAccepted, 2)
	bump(hidden.ID, models.FoodAccepted, 9)

	all, err := db.RankingInputs(ctx, "")
	if err != nil {
		t.Fatalf("RankingInputs: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all ranking inputs = %d, want 2 (active with stats)", len(all))
	}
	dishes, err := db.RankingInputs(ctx, models.KindDish)
	if err != nil {
		t.Fatalf("RankingInputs dish: %v", err)
	}
	if len(dishes) != 1 || dishes[0].Food.ID != dish.ID || dishes[0].Stat.RecommendCount != 4 {
		t.Errorf("dish inputs = %+v", dishes)
	}

	top, err := db.TopAcceptedFoods(ctx, 10)
	if err != nil {
		t.Fatalf("TopAcceptedFoods: %v", err)
	}
	if len(top) != 3 || top[0].Food.ID != hidden.ID || top[1].Food.ID != drink.ID {
		t.Errorf("top order unexpected: %+v", top)
	}
}
