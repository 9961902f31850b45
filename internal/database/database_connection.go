// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/metrics"
)

const (
	// maxWriteRetries bounds retries of a write that lost an MVCC conflict.
	maxWriteRetries = 3

	// rowLockStripes is the fixed number of write locks row keys hash onto.
	rowLockStripes = 64
)

// configureConnectionPool sets connection pool parameters
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "cannot update a table that has been altered")
}

// isInternalError checks if an error is a DuckDB INTERNAL error.
// These leave the connection in a bad state and are never retried.
func isInternalError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "INTERNAL Error")
}

// isConstraintViolation checks if an error is a DuckDB unique or primary key
// violation.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Constraint Error") &&
		strings.Contains(strings.ToLower(errStr), "duplicate key")
}

// rowLockStripe maps a row key onto one of the fixed lock stripes. Distinct
// keys may share a stripe; the same key always lands on the same one.
func rowLockStripe(key string) int {
	return int(xxhash.Sum64String(key) % rowLockStripes)
}

// acquireRowLock returns the locked mutex guarding writes to one row key.
func (db *DB) acquireRowLock(key string) *sync.Mutex {
	mu := &db.rowLocks[rowLockStripe(key)]
	mu.Lock()
	return mu
}

// execWithRetry runs a single write statement under the row lock for key,
// retrying DuckDB transaction conflicts with exponential backoff.
func (db *DB) execWithRetry(ctx context.Context, key, table, query string, args ...interface{}) (sql.Result, error) {
	mu := db.acquireRowLock(key)
	defer mu.Unlock()

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		result, err := db.conn.ExecContext(ctx, query, args...)
		if err == nil {
			metrics.RecordDBQuery("UPSERT", table, time.Since(start), nil)
			return result, nil
		}
		lastErr = err

		if isInternalError(err) {
			metrics.RecordDBQuery("UPSERT", table, time.Since(start), err)
			return nil, fmt.Errorf("duckdb internal error on %s: %w", table, err)
		}
		if !isTransactionConflict(err) {
			metrics.RecordDBQuery("UPSERT", table, time.Since(start), err)
			return nil, fmt.Errorf("failed to write %s: %w", table, err)
		}

		metrics.DBConflictRetries.WithLabelValues(table).Inc()
		logging.Debug().
			Str("table", table).
			Str("key", key).
			Int("attempt", attempt+1).
			Msg("Transaction conflict, retrying")

		// 1ms, 2ms, 4ms
		backoff := time.Millisecond * time.Duration(1<<uint(attempt))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	metrics.RecordDBQuery("UPSERT", table, time.Since(start), lastErr)
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
