// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/metrics"
	"github.com/tomtom215/eatwhat/internal/models"
)

// DefaultBatchLimit is the largest accepted user upload.
const DefaultBatchLimit = 50

// uploadDefaults are the category and description given to uploads that omit them.
var uploadDefaults = map[models.FoodKind][2]string{
	models.KindDish:  {"家常菜", "用户贡献的菜品"},
	models.KindDrink: {"饮品", "用户贡献的饮品"},
}

// ValidateBatchSize rejects an empty batch or one larger than limit.
func ValidateBatchSize(n, limit int) error {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	if n == 0 {
		return models.NewValidationError("foods", "菜品数组不能为空")
	}
	if n > limit {
		return models.NewValidationError("foods", fmt.Sprintf("一次最多只能上传%d个菜品", limit))
	}
	return nil
}

// BatchUpload inserts user contributed items one at a time as PENDING.
//
// An item whose trimmed name already exists for its kind is reported as a
// duplicate. This includes repeats earlier in the same batch, so duplicates
// are counted per line. The read check is a fast path; the unique index on
// (name, kind) decides when two uploads race. Per-item failures never abort
// the batch.
func (db *DB) BatchUpload(ctx context.Context, items []models.UploadItem, meta models.UploadMeta, limit int) (*models.BatchResult, error) {
	if err := ValidateBatchSize(len(items), limit); err != nil {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result := &models.BatchResult{
		Duplicates: []string{},
		Errors:     []string{},
	}

	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		kind := models.FoodKind(strings.TrimSpace(item.Type))

		if name == "" || kind == "" {
			label := name
			if label == "" {
				label = "未知"
			}
			result.Errors = append(result.Errors, fmt.Sprintf("菜品 \"%s\" 缺少必填字段", label))
			continue
		}
		if !kind.Valid() {
			result.Errors = append(result.Errors, fmt.Sprintf("菜品 \"%s\" 的类型无效", name))
			continue
		}

		exists, err := db.foodExists(ctx, name, kind)
		if err != nil {
			logging.Warn().Err(err).Str("name", name).Msg("Duplicate check failed during batch upload")
			result.Errors = append(result.Errors, fmt.Sprintf("菜品 \"%s\" 创建失败", name))
			continue
		}
		if exists {
			result.Duplicates = append(result.Duplicates, name)
			continue
		}

		defaults := uploadDefaults[kind]
		food := &models.FoodItem{
			Name:           name,
			Kind:           kind,
			Category:       firstNonEmpty(item.Category, defaults[0]),
			Description:    firstNonEmpty(item.Description, defaults[1]),
			Tags:           []string{},
			Status:         models.StatusPending,
			IsUserUploaded: true,
			UploaderRef:    meta.UploaderRef,
			UploadIP:       meta.UploadIP,
		}
		if err := db.CreateFood(ctx, food); err != nil {
			if db.lostInsertRace(ctx, err, name, kind) {
				result.Duplicates = append(result.Duplicates, name)
				continue
			}
			logging.Warn().Err(err).Str("name", name).Msg("Failed to insert uploaded food")
			result.Errors = append(result.Errors, fmt.Sprintf("菜品 \"%s\" 创建失败", name))
			continue
		}
		result.Success++
	}

	logging.Info().
		Int("success", result.Success).
		Int("duplicates", len(result.Duplicates)).
		Int("errors", len(result.Errors)).
		Str("uploader", meta.UploaderRef).
		Msg("Batch upload processed")

	return result, nil
}

// foodExists reports whether an item with this exact name and kind is stored.
func (db *DB) foodExists(ctx context.Context, name string, kind models.FoodKind) (bool, error) {
	start := time.Now()
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM foods WHERE name = ? AND kind = ?`, name, string(kind)).Scan(&n)
	metrics.RecordDBQuery("SELECT", "foods", time.Since(start), err)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// lostInsertRace reports whether a failed insert collided with a concurrent
// insert of the same item. DuckDB reports the collision either as a unique
// violation or, while the other transaction is in flight, as a conflict.
func (db *DB) lostInsertRace(ctx context.Context, err error, name string, kind models.FoodKind) bool {
	if errors.Is(err, models.ErrDuplicate) {
		return true
	}
	if !isTransactionConflict(err) {
		return false
	}
	exists, existsErr := db.foodExists(ctx, name, kind)
	return existsErr == nil && exists
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
