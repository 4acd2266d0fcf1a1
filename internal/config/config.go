// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package config

import (
	"time"

	"github.com/tomtom215/bookwise/internal/recommend"
)

// Config holds all application configuration.
//
// Loading order (see LoadWithKoanf):
//  1. Built-in defaults
//  2. Optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment variables
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Offers    OffersConfig    `koanf:"offers"`  // Optional: live partner offers
	Narrator  NarratorConfig  `koanf:"narrator"` // Optional: generated explanations
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path         string `koanf:"path"` // ":memory:" or empty for an in-memory database
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"` // 0 = DuckDB default
	SeedDemoData bool   `koanf:"seed_demo_data"`
}

// SecurityConfig holds authentication and request limiting settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // jwt or none
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig exposes the tunable parts of the recommendation engine.
// Everything not listed here keeps its engine default.
type RecommendConfig struct {
	CategoryWeight   float64 `koanf:"category_weight"`
	AuthorWeight     float64 `koanf:"author_weight"`
	FormatWeight     float64 `koanf:"format_weight"`
	PopularityWeight float64 `koanf:"popularity_weight"`

	RecencyDecayDays float64 `koanf:"recency_decay_days"`
	MinConfidence    float64 `koanf:"min_confidence"`
	OfferBoost       float64 `koanf:"offer_boost"`
	MinScore         float64 `koanf:"min_score"`
	MaxCandidates    int     `koanf:"max_candidates"`

	CacheEnabled         bool          `koanf:"cache_enabled"`
	CacheTTL             time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries      int           `koanf:"cache_max_entries"`
	CacheCleanupInterval time.Duration `koanf:"cache_cleanup_interval"`
}

// EngineConfig converts the section into a recommendation engine configuration.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Weights = recommend.ScoringWeights{
		Category:   r.CategoryWeight,
		Author:     r.AuthorWeight,
		Format:     r.FormatWeight,
		Popularity: r.PopularityWeight,
	}
	cfg.Aggregation.RecencyDecayDays = r.RecencyDecayDays
	cfg.Fallback.MinConfidence = r.MinConfidence
	cfg.Scoring.OfferBoost = r.OfferBoost
	cfg.Scoring.MinScore = r.MinScore
	cfg.Limits.MaxCandidates = r.MaxCandidates
	cfg.Cache = recommend.CacheConfig{
		Enabled:    r.CacheEnabled,
		TTL:        r.CacheTTL,
		MaxEntries: r.CacheMaxEntries,
	}
	return cfg
}

// OffersConfig holds the partner offer API and its local cache settings.
type OffersConfig struct {
	Enabled   bool          `koanf:"enabled"`
	BaseURL   string        `koanf:"base_url"`
	APIKey    string        `koanf:"api_key"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"` // requests per second
	Burst     int           `koanf:"burst"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
	CachePath string        `koanf:"cache_path"` // empty = in-memory Badger
}

// NarratorConfig holds the OpenAI-compatible chat completion settings.
type NarratorConfig struct {
	Enabled     bool          `koanf:"enabled"`
	BaseURL     string        `koanf:"base_url"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxTokens   int           `koanf:"max_tokens"`
	Temperature float64       `koanf:"temperature"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
