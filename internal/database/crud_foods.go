// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tomtom215/eatwhat/internal/database/query"
	"github.com/tomtom215/eatwhat/internal/metrics"
	"github.com/tomtom215/eatwhat/internal/models"
)

const (
	defaultFoodPage  = 1
	defaultFoodLimit = 50
)

const foodColumns = `id, name, kind, category, COALESCE(description, ''), tags, status,
	is_user_uploaded, COALESCE(uploaded_by, ''), COALESCE(upload_ip, ''), created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFood(row rowScanner) (*models.FoodItem, error) {
	var (
		f    models.FoodItem
		kind string
		stat string
		tags string
	)
	if err := row.Scan(&f.ID, &f.Name, &kind, &f.Category, &f.Description, &tags, &stat,
		&f.IsUserUploaded, &f.UploaderRef, &f.UploadIP, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Kind = models.FoodKind(kind)
	f.Status = models.FoodStatus(stat)
	f.Tags = ParseTags(tags)
	return &f, nil
}

func (db *DB) queryFoods(ctx context.Context, stmt string, args ...interface{}) ([]models.FoodItem, error) {
	rows, err := db.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	foods := make([]models.FoodItem, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, *f)
	}
	return foods, rows.Err()
}

// NewID returns a new lexicographically time-ordered row id.
func NewID() string {
	return ulid.Make().String()
}

// CreateFood inserts a catalog item. ID and timestamps are assigned when empty,
// and an unset status defaults to ACTIVE.
func (db *DB) CreateFood(ctx context.Context, food *models.FoodItem) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if food.ID == "" {
		food.ID = NewID()
	}
	if food.Status == "" {
		food.Status = models.StatusActive
	}
	if food.Tags == nil {
		food.Tags = []string{}
	}
	now := db.timestamp()
	if food.CreatedAt.IsZero() {
		food.CreatedAt = now
	}
	food.UpdatedAt = now

	start := time.Now()
	err := db.insertFood(ctx, db.conn, food)
	metrics.RecordDBQuery("INSERT", "foods", time.Since(start), err)
	if isConstraintViolation(err) {
		return fmt.Errorf("food %q: %w", food.Name, models.ErrDuplicate)
	}
	if err != nil {
		return storeError("create food", err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (db *DB) insertFood(ctx context.Context, ex execer, food *models.FoodItem) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO foods (
			id, name, kind, category, description, tags, status,
			is_user_uploaded, uploaded_by, upload_ip, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		food.ID, food.Name, string(food.Kind), food.Category, nullString(food.Description),
		encodeTags(food.Tags), string(food.Status), food.IsUserUploaded,
		nullString(food.UploaderRef), nullString(food.UploadIP), food.CreatedAt, food.UpdatedAt)
	return err
}

// GetFood returns one catalog item or models.ErrNotFound.
func (db *DB) GetFood(ctx context.Context, id string) (*models.FoodItem, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ?`, id)
	food, err := scanFood(row)
	metrics.RecordDBQuery("SELECT", "foods", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("food %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, storeError("get food", err)
	}
	return food, nil
}

// UpdateFood applies the non-nil fields of upd and returns the updated item.
func (db *DB) UpdateFood(ctx context.Context, id string, upd models.FoodUpdate) (*models.FoodItem, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*upd.Name))
	}
	if upd.Kind != nil {
		sets = append(sets, "kind = ?")
		args = append(args, string(*upd.Kind))
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullString(*upd.Description))
	}
	if upd.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, encodeTags(upd.Tags))
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, db.timestamp(), id)

	start := time.Now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE foods SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	metrics.RecordDBQuery("UPDATE", "foods", time.Since(start), err)
	if isConstraintViolation(err) {
		return nil, fmt.Errorf("food %s: %w", id, models.ErrDuplicate)
	}
	if err != nil {
		return nil, storeError("update food", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("food %s: %w", id, models.ErrNotFound)
	}
	return db.GetFood(ctx, id)
}

// DeleteFood removes a catalog item together with its ratings and counters.
func (db *DB) DeleteFood(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin delete food", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM foods WHERE id = ?`, id)
	if err != nil {
		metrics.RecordDBQuery("DELETE", "foods", time.Since(start), err)
		return storeError("delete food", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("food %s: %w", id, models.ErrNotFound)
	}
	for _, q := range []string{
		`DELETE FROM food_ratings WHERE food_id = ?`,
		`DELETE FROM food_selection_stats WHERE food_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			metrics.RecordDBQuery("DELETE", "foods", time.Since(start), err)
			return storeError("delete food dependents", err)
		}
	}
	err = tx.Commit()
	metrics.RecordDBQuery("DELETE", "foods", time.Since(start), err)
	if err != nil {
		return storeError("commit delete food", err)
	}
	return nil
}

// ListAllFoods returns the whole catalog, newest first.
func (db *DB) ListAllFoods(ctx context.Context) ([]models.FoodItem, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	foods, err := db.queryFoods(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY created_at DESC, id DESC`)
	metrics.RecordDBQuery("SELECT", "foods", time.Since(start), err)
	if err != nil {
		return nil, storeError("list all foods", err)
	}
	return foods, nil
}

// ListFoods returns one page of the filtered catalog and the total match count.
func (db *DB) ListFoods(ctx context.Context, filter models.FoodFilter) ([]models.FoodItem, int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if filter.Page <= 0 {
		filter.Page = defaultFoodPage
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultFoodLimit
	}
	if filter.Status == "" {
		filter.Status = models.StatusActive
	}

	status := ""
	if filter.Status != models.StatusAll {
		status = string(filter.Status)
	}
	whereClause, args := query.NewWhereBuilder().
		AddEquals("kind", string(filter.Kind)).
		AddEquals("status", status).
		AddSearch(filter.Search, "name", "category", "COALESCE(description, '')").
		BuildWithPrefix()

	start := time.Now()
	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM foods`+whereClause, args...).Scan(&total); err != nil {
		metrics.RecordDBQuery("SELECT", "foods", time.Since(start), err)
		return nil, 0, storeError("count foods", err)
	}

	limitClause, limitArgs := query.Page(filter.Page, filter.Limit)
	pageArgs := append(append(make([]interface{}, 0, len(args)+2), args...), limitArgs...)
	foods, err := db.queryFoods(ctx,
		`SELECT `+foodColumns+` FROM foods`+whereClause+` ORDER BY created_at DESC, id DESC`+limitClause,
		pageArgs...)
	metrics.RecordDBQuery("SELECT", "foods", time.Since(start), err)
	if err != nil {
		return nil, 0, storeError("list foods", err)
	}
	return foods, total, nil
}

// ActiveFoods returns every eligible item of one kind.
func (db *DB) ActiveFoods(ctx context.Context, kind models.FoodKind) ([]models.FoodItem, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	foods, err := db.queryFoods(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE kind = ? AND status = ? ORDER BY id`,
		string(kind), string(models.StatusActive))
	metrics.RecordDBQuery("SELECT", "foods", time.Since(start), err)
	if err != nil {
		return nil, storeError("active foods", err)
	}
	return foods, nil
}

// CountActive returns the number of ACTIVE dishes and drinks.
func (db *DB) CountActive(ctx context.Context) (models.CatalogCounts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var c models.CatalogCounts
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'DISH'),
			COUNT(*) FILTER (WHERE kind = 'DRINK')
		FROM foods WHERE status = 'ACTIVE'`).Scan(&c.DishCount, &c.DrinkCount)
	metrics.RecordDBQuery("SELECT", "foods", time.Since(start), err)
	if err != nil {
		return c, storeError("count active foods", err)
	}
	c.TotalCount = c.DishCount + c.DrinkCount
	return c, nil
}

// CountFoods returns the size of the whole catalog regardless of status.
func (db *DB) CountFoods(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM foods`).Scan(&n); err != nil {
		return 0, storeError("count foods", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
