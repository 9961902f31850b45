// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package testinfra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/eatwhat/internal/config"
	"github.com/tomtom215/eatwhat/internal/database"
	"github.com/tomtom215/eatwhat/internal/models"
)

// dbSlots bounds how many test databases are open at once.
var dbSlots = make(chan struct{}, 2)

var createMu sync.Mutex

// CreateTimeout bounds database creation before the test fails.
const CreateTimeout = 120 * time.Second

// NewDB opens an empty in-memory database for the duration of the test.
// The catalog is not seeded.
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	dbSlots <- struct{}{}
	t.Cleanup(func() { <-dbSlots })

	cfg := &config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"}

	type result struct {
		db  *database.DB
		err error
	}
	ch := make(chan result, 1)
	go func() {
		createMu.Lock()
		defer createMu.Unlock()
		db, err := database.New(cfg)
		ch <- result{db: db, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			t.Fatalf("create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Logf("close test database: %v", err)
			}
		})
		return res.db
	case <-time.After(CreateTimeout):
		t.Fatalf("test database creation exceeded %v", CreateTimeout)
		return nil
	}
}

// InsertFood creates a catalog item and returns it with its assigned id.
func InsertFood(t testing.TB, db *database.DB, name string, kind models.FoodKind, status models.FoodStatus) *models.FoodItem {
	t.Helper()
	food := &models.FoodItem{
		Name:     name,
		Kind:     kind,
		Category: "测试",
		Tags:     []string{},
		Status:   status,
	}
	if err := db.CreateFood(context.Background(), food); err != nil {
		t.Fatalf("insert food %q: %v", name, err)
	}
	return food
}
