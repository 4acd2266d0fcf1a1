// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookwise/internal/config"
	"github.com/tomtom215/bookwise/internal/database"
	"github.com/tomtom215/bookwise/internal/narrator"
	"github.com/tomtom215/bookwise/internal/offers"
	"github.com/tomtom215/bookwise/internal/recommend"
)

// RecommendComponents holds the engine and its optional collaborators.
type RecommendComponents struct {
	Engine *recommend.Engine
	Offers *offers.Service // nil when live offers are disabled
}

// Close releases the offer cache.
func (c *RecommendComponents) Close() error {
	if c.Offers == nil {
		return nil
	}
	return c.Offers.Close()
}

// initRecommend builds the engine on top of db and wires the offer service
// and narrator when they are enabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, db *database.DB, logger zerolog.Logger) (*RecommendComponents, error) {
	engineCfg := cfg.Recommend.EngineConfig()
	engine, err := recommend.NewEngine(engineCfg, logger.With().Str("component", "recommend").Logger())
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetDataProvider(db)

	components := &RecommendComponents{Engine: engine}

	if cfg.Offers.Enabled {
		store, err := offers.OpenStore(cfg.Offers.CachePath, cfg.Offers.CacheTTL)
		if err != nil {
			return nil, err
		}
		components.Offers = offers.NewService(offers.NewClient(&cfg.Offers), store, logger)
		engine.SetOfferResolver(components.Offers)

		cachePath := cfg.Offers.CachePath
		if cachePath == "" {
			cachePath = "in-memory"
		}
		logger.Info().
			Str("base_url", cfg.Offers.BaseURL).
			Str("cache", cachePath).
			Dur("cache_ttl", cfg.Offers.CacheTTL).
			Msg("Live offers enabled")
	} else {
		logger.Info().Msg("Live offers disabled, using catalog availability")
	}

	if cfg.Narrator.Enabled {
		engine.SetNarrator(narrator.NewClient(&cfg.Narrator))
		logger.Info().
			Str("base_url", cfg.Narrator.BaseURL).
			Str("model", cfg.Narrator.Model).
			Msg("Narrator enabled")
	} else {
		logger.Info().Msg("Narrator disabled, explanations are templated")
	}

	logger.Info().
		Float64("category_weight", engineCfg.Weights.Category).
		Float64("author_weight", engineCfg.Weights.Author).
		Float64("format_weight", engineCfg.Weights.Format).
		Float64("popularity_weight", engineCfg.Weights.Popularity).
		Bool("cache_enabled", engineCfg.Cache.Enabled).
		Msg("Recommendation engine initialized")

	return components, nil
}
