// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/metrics"
	"github.com/tomtom215/eatwhat/internal/models"
)

// DefaultCacheTTL is how long an eligible pool is served before reloading.
const DefaultCacheTTL = 5 * time.Minute

// PoolLoader reads the ACTIVE items of one kind. database.DB implements it.
type PoolLoader interface {
	ActiveFoods(ctx context.Context, kind models.FoodKind) ([]models.FoodItem, error)
}

// EligibleCache holds the eligible pools for both kinds in memory.
// It is safe for concurrent use.
type EligibleCache struct {
	loader PoolLoader
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	mu        sync.RWMutex
	data      map[models.FoodKind][]models.FoodItem
	fetchedAt time.Time

	// serializes reloads so a stampede of stale reads loads once
	refreshMu sync.Mutex
}

// NewEligibleCache creates a cache over loader. A ttl <= 0 uses DefaultCacheTTL.
func NewEligibleCache(loader PoolLoader, ttl time.Duration) *EligibleCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &EligibleCache{
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
		logger: logging.WithComponent("eligible-cache"),
	}
}

// TTL returns the configured freshness window.
func (c *EligibleCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the eligible pool of kind, reloading first if the data is stale.
func (c *EligibleCache) Get(ctx context.Context, kind models.FoodKind) ([]models.FoodItem, error) {
	if pool, ok := c.fresh(kind); ok {
		metrics.RecordCacheLookup(true)
		return pool, nil
	}
	metrics.RecordCacheLookup(false)

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have reloaded while this one waited.
	if pool, ok := c.fresh(kind); ok {
		return pool, nil
	}
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	pool, _ := c.fresh(kind)
	return pool, nil
}

// Refresh reloads both pools unconditionally.
func (c *EligibleCache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.load(ctx)
}

// Invalidate marks the cached data stale. The next Get reloads.
func (c *EligibleCache) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

func (c *EligibleCache) fresh(kind models.FoodKind) ([]models.FoodItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil || c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	pool := c.data[kind]
	out := make([]models.FoodItem, len(pool))
	copy(out, pool)
	return out, true
}

func (c *EligibleCache) load(ctx context.Context) error {
	start := time.Now()
	data := make(map[models.FoodKind][]models.FoodItem, 2)
	for _, kind := range []models.FoodKind{models.KindDish, models.KindDrink} {
		pool, err := c.loader.ActiveFoods(ctx, kind)
		if err != nil {
			return fmt.Errorf("load eligible %s pool: %w", kind, err)
		}
		data[kind] = pool
	}

	c.mu.Lock()
	c.data = data
	c.fetchedAt = c.now()
	c.mu.Unlock()

	c.logger.Debug().
		Int("dishes", len(data[models.KindDish])).
		Int("drinks", len(data[models.KindDrink])).
		Dur("took", time.Since(start)).
		Msg("eligible pools reloaded")
	return nil
}
