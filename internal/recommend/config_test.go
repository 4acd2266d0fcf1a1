// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"math"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("weights sum to 1", func(t *testing.T) {
		if math.Abs(cfg.Weights.Sum()-1) > 1e-9 {
			t.Errorf("weights sum = %f, want 1.0", cfg.Weights.Sum())
		}
	})

	t.Run("limits are consistent", func(t *testing.T) {
		if cfg.Limits.DefaultLimit != 10 || cfg.Limits.MaxLimit != 50 || cfg.Limits.MaxResults != 20 {
			t.Errorf("unexpected limits: %+v", cfg.Limits)
		}
		if cfg.Limits.MaxCandidates != 200 {
			t.Errorf("Limits.MaxCandidates = %d, want 200", cfg.Limits.MaxCandidates)
		}
	})

	t.Run("aggregation defaults", func(t *testing.T) {
		if cfg.Aggregation.RecencyDecayDays != 180 {
			t.Errorf("RecencyDecayDays = %f, want 180", cfg.Aggregation.RecencyDecayDays)
		}
		if cfg.Aggregation.RecentActivityWindow != 30*24*time.Hour {
			t.Errorf("RecentActivityWindow = %v, want 720h", cfg.Aggregation.RecentActivityWindow)
		}
	})

	t.Run("default config validates", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{
			name:      "valid default config",
			modify:    func(c *Config) {},
			wantError: false,
		},
		{
			name: "reweighted but still summing to 1",
			modify: func(c *Config) {
				c.Weights = ScoringWeights{Category: 0.25, Author: 0.25, Format: 0.25, Popularity: 0.25}
			},
			wantError: false,
		},
		{
			name:      "weights not summing to 1",
			modify:    func(c *Config) { c.Weights.Popularity = 0.5 },
			wantError: true,
		},
		{
			name: "negative weight",
			modify: func(c *Config) {
				c.Weights = ScoringWeights{Category: 1.2, Author: -0.2}
			},
			wantError: true,
		},
		{
			name:      "zero recency decay",
			modify:    func(c *Config) { c.Aggregation.RecencyDecayDays = 0 },
			wantError: true,
		},
		{
			name:      "negative threshold out of range",
			modify:    func(c *Config) { c.Aggregation.NegativeRatingThreshold = 6 },
			wantError: true,
		},
		{
			name:      "offer boost above 1",
			modify:    func(c *Config) { c.Scoring.OfferBoost = 1.5 },
			wantError: true,
		},
		{
			name:      "zero reasons",
			modify:    func(c *Config) { c.Scoring.MaxReasonsPerBook = 0 },
			wantError: true,
		},
		{
			name:      "zero max candidates",
			modify:    func(c *Config) { c.Limits.MaxCandidates = 0 },
			wantError: true,
		},
		{
			name:      "max limit below default",
			modify:    func(c *Config) { c.Limits.MaxLimit = 5 },
			wantError: true,
		},
		{
			name:      "min confidence above 1",
			modify:    func(c *Config) { c.Fallback.MinConfidence = 1.1 },
			wantError: true,
		},
		{
			name:      "enabled cache without ttl",
			modify:    func(c *Config) { c.Cache.TTL = 0 },
			wantError: true,
		},
		{
			name:      "disabled cache ignores ttl",
			modify:    func(c *Config) { c.Cache.Enabled = false; c.Cache.TTL = 0 },
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantError && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	original := DefaultConfig()
	original.Scoring.OfferBoost = 0.2

	clone := original.Clone()

	t.Run("clone has same values", func(t *testing.T) {
		if clone.Scoring.OfferBoost != original.Scoring.OfferBoost {
			t.Errorf("clone.Scoring.OfferBoost = %f, want %f", clone.Scoring.OfferBoost, original.Scoring.OfferBoost)
		}
	})

	t.Run("clone is independent", func(t *testing.T) {
		clone.Scoring.OfferBoost = 0.9
		if original.Scoring.OfferBoost == clone.Scoring.OfferBoost {
			t.Error("modifying clone affected original")
		}
	})
}
