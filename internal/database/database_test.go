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
	"time"

	"github.com/tomtom215/eatwhat/internal/config"
	"github.com/tomtom215/eatwhat/internal/models"
)

// testDBSemaphore limits concurrent database creation to prevent resource exhaustion in CI.
// DuckDB CGO calls can hang when many tests hold connections at once.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes the New() call itself.
var testDBMutex sync.Mutex

// setupTestDB creates a new in-memory test database with timeout protection.
// The semaphore is held for the whole test and released in t.Cleanup.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Logf("close test database: %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s (DuckDB may be under resource pressure)")
		return nil
	}
}

// insertTestFood creates an item with the given name, kind and status.
func insertTestFood(t *testing.T, db *DB, name string, kind models.FoodKind, status models.FoodStatus) *models.FoodItem {
	t.Helper()
	food := &models.FoodItem{
		Name:     name,
		Kind:     kind,
		Category: "测试",
		Tags:     []string{"测试"},
		Status:   status,
	}
	if err := db.CreateFood(context.Background(), food); err != nil {
		t.Fatalf("CreateFood(%s) failed: %v", name, err)
	}
	return food
}

func TestNew_InitializesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	tables := []string{
		"foods", "food_ratings", "recommendation_sessions", "food_selection_stats",
		"global_usage_stats", "daily_usage_stats", "known_devices", "daily_devices",
	}
	for _, table := range tables {
		var n int
		err := db.Conn().QueryRowContext(ctx,
			`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`, table).Scan(&n)
		if err != nil {
			t.Fatalf("query information_schema for %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing", table)
		}
	}

	g, err := db.GetGlobalUsage(ctx)
	if err != nil {
		t.Fatalf("GetGlobalUsage failed: %v", err)
	}
	if g.TotalClicks != 0 || g.TotalUsers != 0 {
		t.Errorf("fresh global usage not zero: %+v", g)
	}
}

func TestEnsureContext(t *testing.T) {
	t.Parallel()
	db := &DB{}

	ctx, cancel := db.ensureContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline on a context without one")
	}

	parent, parentCancel := context.WithTimeout(context.Background(), time.Second)
	defer parentCancel()
	got, gotCancel := db.ensureContext(parent)
	defer gotCancel()
	if got != parent {
		t.Error("a context with a deadline should be returned unchanged")
	}
}

func TestIsTransactionConflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want bool
	}{
		{"TransactionContext Error: Transaction conflict: cannot update", true},
		{"Conflict on update of row", true},
		{"cannot update a table that has been altered", true},
		{"Constraint Error: duplicate key", false},
	}
	for _, tt := range tests {
		if got := isTransactionConflict(errString(tt.msg)); got != tt.want {
			t.Errorf("isTransactionConflict(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
	if isTransactionConflict(nil) {
		t.Error("nil error is not a conflict")
	}
	if !isInternalError(errString("INTERNAL Error: attempted to access index")) {
		t.Error("expected INTERNAL Error to be detected")
	}
}

func TestIsConstraintViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want bool
	}{
		{`Constraint Error: Duplicate key "name: 面, kind: DISH" violates unique constraint.`, true},
		{`Constraint Error: duplicate key "id: x" violates primary key constraint`, true},
		{"Constraint Error: NOT NULL constraint failed: foods.name", false},
		{"TransactionContext Error: Transaction conflict: cannot update", false},
	}
	for _, tt := range tests {
		if got := isConstraintViolation(errString(tt.msg)); got != tt.want {
			t.Errorf("isConstraintViolation(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
	if isConstraintViolation(nil) {
		t.Error("nil error is not a violation")
	}
}

func TestRowLockStripes(t *testing.T) {
	t.Parallel()
	db := &DB{}

	seen := make(map[int]bool)
	for i := 0; i < 10*rowLockStripes; i++ {
		key := fmt.Sprintf("daily:2026-10-%02d:%d", i%28+1, i)
		stripe := rowLockStripe(key)
		if stripe < 0 || stripe >= rowLockStripes {
			t.Fatalf("rowLockStripe(%q) = %d, outside [0, %d)", key, stripe, rowLockStripes)
		}
		if rowLockStripe(key) != stripe {
			t.Fatalf("rowLockStripe(%q) is not stable", key)
		}
		seen[stripe] = true

		mu := db.acquireRowLock(key)
		if mu != &db.rowLocks[stripe] {
			t.Fatalf("acquireRowLock(%q) returned a lock outside its stripe", key)
		}
		mu.Unlock()
	}
	if len(seen) < 2 {
		t.Errorf("keys spread over %d stripes, want several", len(seen))
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestPlaceholders(t *testing.T) {
	t.Parallel()
	tests := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range tests {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}
