// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/metrics"
	"github.com/tomtom215/eatwhat/internal/models"
)

// PoolSource yields the eligible items of one kind. EligibleCache implements it.
type PoolSource interface {
	Get(ctx context.Context, kind models.FoodKind) ([]models.FoodItem, error)
}

// RatingSource aggregates ratings for a set of foods. database.DB implements it.
type RatingSource interface {
	RatingStatsFor(ctx context.Context, foodIDs []string) (map[string]models.RatingStats, error)
}

// Options selects what a recommendation returns.
type Options struct {
	WantsDrink bool
	OnlyDrink  bool
	// Kind restricts the result to one item of that kind when set.
	Kind models.FoodKind
}

// Result is a recommendation. Either item may be nil depending on Options.
type Result struct {
	Food  *models.RatedFood `json:"food"`
	Drink *models.RatedFood `json:"drink"`
}

// Selector draws uniformly random items from the eligible pools.
// It is safe for concurrent use.
type Selector struct {
	pools   PoolSource
	ratings RatingSource
	logger  zerolog.Logger

	// *rand.Rand is not goroutine safe
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewSelector creates a selector. A nil rng is seeded from the clock.
func NewSelector(pools PoolSource, ratings RatingSource, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // math/rand is fine for meal picking
	}
	return &Selector{
		pools:   pools,
		ratings: ratings,
		logger:  logging.WithComponent("selector"),
		rng:     rng,
	}
}

// Recommend returns a random dish, drink or both.
//
// Kind DISH returns only a dish. Kind DRINK or OnlyDrink returns only a drink.
// Otherwise a dish is returned, plus a drink when WantsDrink is set; an empty
// drink pool in that combined mode leaves Drink nil without failing.
// A required kind with no eligible items fails with models.ErrEmptyCatalog.
func (s *Selector) Recommend(ctx context.Context, opts Options) (*Result, error) {
	var wantDish, wantDrink, drinkOptional bool
	switch {
	case opts.Kind == models.KindDish:
		wantDish = true
	case opts.Kind == models.KindDrink || opts.OnlyDrink:
		wantDrink = true
	default:
		wantDish = true
		wantDrink = opts.WantsDrink
		drinkOptional = true
	}

	res := &Result{}
	if wantDish {
		dish, err := s.pick(ctx, models.KindDish)
		if err != nil {
			return nil, err
		}
		res.Food = &models.RatedFood{FoodItem: *dish}
	}
	if wantDrink {
		drink, err := s.pick(ctx, models.KindDrink)
		switch {
		case err == nil:
			res.Drink = &models.RatedFood{FoodItem: *drink}
		case drinkOptional && isEmptyCatalog(err):
			s.logger.Debug().Msg("no eligible drink, returning dish only")
		default:
			return nil, err
		}
	}

	s.attachRatings(ctx, res)

	logging.Ctx(ctx).Debug().
		Str("component", "selector").
		Str("food_id", itemID(res.Food)).
		Str("drink_id", itemID(res.Drink)).
		Msg("recommendation selected")
	return res, nil
}

// pick draws one item of kind, uniformly at random.
func (s *Selector) pick(ctx context.Context, kind models.FoodKind) (*models.FoodItem, error) {
	pool, err := s.pools.Get(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s pool: %w", kind, err)
	}
	if len(pool) == 0 {
		metrics.RecordRecommendation(string(kind), false)
		return nil, fmt.Errorf("%s: %w", kind, models.ErrEmptyCatalog)
	}

	s.rngMu.Lock()
	idx := s.rng.Intn(len(pool))
	s.rngMu.Unlock()

	metrics.RecordRecommendation(string(kind), true)
	item := pool[idx]
	return &item, nil
}

// attachRatings fills RatingStats on the picked items. A failed lookup leaves
// zero counts, since ratings are decoration on a successful pick.
func (s *Selector) attachRatings(ctx context.Context, res *Result) {
	if s.ratings == nil {
		return
	}
	ids := make([]string, 0, 2)
	for _, item := range []*models.RatedFood{res.Food, res.Drink} {
		if item != nil {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	stats, err := s.ratings.RatingStatsFor(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Strs("food_ids", ids).Msg("rating stats unavailable for recommendation")
		return
	}
	for _, item := range []*models.RatedFood{res.Food, res.Drink} {
		if item != nil {
			item.RatingStats = stats[item.ID]
		}
	}
}

func isEmptyCatalog(err error) bool {
	return err != nil && errors.Is(err, models.ErrEmptyCatalog)
}

func itemID(f *models.RatedFood) string {
	if f == nil {
		return ""
	}
	return f.ID
}
