// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bookwise/config.yaml",
	"/etc/bookwise/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:         "/data/bookwise.duckdb",
			MaxMemory:    "1GB",
			Threads:      0,
			SeedDemoData: false,
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTIssuer:         "bookwise",
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			CategoryWeight:       0.4,
			AuthorWeight:         0.3,
			FormatWeight:         0.2,
			PopularityWeight:     0.1,
			RecencyDecayDays:     180,
			MinConfidence:        0.2,
			OfferBoost:           0.05,
			MinScore:             0.1,
			MaxCandidates:        200,
			CacheEnabled:         true,
			CacheTTL:             5 * time.Minute,
			CacheMaxEntries:      10000,
			CacheCleanupInterval: time.Minute,
		},
		Offers: OffersConfig{
			Enabled:   false, // opt-in: requires a partner API
			Timeout:   5 * time.Second,
			RateLimit: 10,
			Burst:     20,
			CacheTTL:  time.Hour,
		},
		Narrator: NarratorConfig{
			Enabled:     false, // opt-in: templated explanations otherwise
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Timeout:     10 * time.Second,
			MaxTokens:   400,
			Temperature: 0.3,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence, and validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_demo_data":    "database.seed_demo_data",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation engine
	"recommend_category_weight":        "recommend.category_weight",
	"recommend_author_weight":          "recommend.author_weight",
	"recommend_format_weight":          "recommend.format_weight",
	"recommend_popularity_weight":      "recommend.popularity_weight",
	"recommend_recency_decay_days":     "recommend.recency_decay_days",
	"recommend_min_confidence":         "recommend.min_confidence",
	"recommend_offer_boost":            "recommend.offer_boost",
	"recommend_min_score":              "recommend.min_score",
	"recommend_max_candidates":         "recommend.max_candidates",
	"recommend_cache_enabled":          "recommend.cache_enabled",
	"recommend_cache_ttl":              "recommend.cache_ttl",
	"recommend_cache_max_entries":      "recommend.cache_max_entries",
	"recommend_cache_cleanup_interval": "recommend.cache_cleanup_interval",

	// Offers
	"offers_enabled":    "offers.enabled",
	"offers_base_url":   "offers.base_url",
	"offers_api_key":    "offers.api_key",
	"offers_timeout":    "offers.timeout",
	"offers_rate_limit": "offers.rate_limit",
	"offers_burst":      "offers.burst",
	"offers_cache_ttl":  "offers.cache_ttl",
	"offers_cache_path": "offers.cache_path",

	// Narrator
	"narrator_enabled":     "narrator.enabled",
	"narrator_base_url":    "narrator.base_url",
	"narrator_api_key":     "narrator.api_key",
	"narrator_model":       "narrator.model",
	"narrator_timeout":     "narrator.timeout",
	"narrator_max_tokens":  "narrator.max_tokens",
	"narrator_temperature": "narrator.temperature",
}

// envTransformFunc maps DUCKDB_PATH to database.path and so on.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
