// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultJanitorInterval is used when no interval is configured.
const DefaultJanitorInterval = time.Minute

// CacheCleaner evicts expired cache entries and reports how many it removed.
// *recommend.Engine satisfies it.
type CacheCleaner interface {
	CleanupCache() int
}

// CacheJanitorService periodically evicts expired preference snapshots so
// idle users do not pin memory until LRU pressure removes them.
type CacheJanitorService struct {
	cleaner  CacheCleaner
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheJanitorService creates a janitor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(cleaner CacheCleaner, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	return &CacheJanitorService{
		cleaner:  cleaner,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("cache janitor running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.cleaner.CleanupCache(); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("evicted expired preference snapshots")
			}
		}
	}
}

// String names the service in supervisor events.
func (s *CacheJanitorService) String() string {
	return "cache-janitor"
}
