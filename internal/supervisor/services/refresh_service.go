// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eatwhat/internal/metrics"
)

// refreshTimeout bounds one reload of the eligible set.
const refreshTimeout = 30 * time.Second

// CatalogRefresher is satisfied by *recommend.EligibleCache.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
	TTL() time.Duration
}

// CatalogRefreshService reloads the eligible-set cache once at startup and
// then every interval, so request paths rarely pay for a cold load.
type CatalogRefreshService struct {
	cache    CatalogRefresher
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCatalogRefreshService creates the refresher. A non-positive interval
// uses the cache TTL.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCatalogRefreshService(cache CatalogRefresher, interval time.Duration, logger zerolog.Logger) *CatalogRefreshService {
	if interval <= 0 {
		interval = cache.TTL()
	}
	return &CatalogRefreshService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "catalog-refresh").Logger(),
		name:     "catalog-refresh",
	}
}

// Serve implements suture.Service. Refresh failures are logged and retried
// on the next tick; they never stop the service.
func (s *CatalogRefreshService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("catalog refresher starting")

	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("catalog refresher shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *CatalogRefreshService) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	start := time.Now()
	if err := s.cache.Refresh(refreshCtx); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("eligible set refresh failed")
		}
		return
	}
	metrics.RecordCacheRefresh()
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("eligible set refreshed")
}

// String names the service in suture events.
func (s *CatalogRefreshService) String() string {
	return s.name
}
