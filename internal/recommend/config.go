// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"fmt"
	"math"
	"time"
)

// AlgorithmVersion identifies the scoring formula in response metadata.
const AlgorithmVersion = "affinity-v1"

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the contribution of each scoring term. Must sum to 1.0.
	Weights ScoringWeights `json:"weights"`

	// Aggregation contains parameters for preference aggregation.
	Aggregation AggregationConfig `json:"aggregation"`

	// Scoring contains per-book scoring parameters.
	Scoring ScoringConfig `json:"scoring"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Fallback controls when the popularity fallback replaces personalization.
	Fallback FallbackConfig `json:"fallback"`

	// Cache contains preference cache parameters.
	Cache CacheConfig `json:"cache"`
}

// ScoringWeights defines the weight of each scoring term.
type ScoringWeights struct {
	Category   float64 `json:"category"`
	Author     float64 `json:"author"`
	Format     float64 `json:"format"`
	Popularity float64 `json:"popularity"`
}

// Sum returns the sum of all weights.
func (w ScoringWeights) Sum() float64 {
	return w.Category + w.Author + w.Format + w.Popularity
}

// AggregationConfig contains parameters for the affinity aggregator.
type AggregationConfig struct {
	// RecencyDecayDays is the e-folding time of the recency weight.
	RecencyDecayDays float64 `json:"recency_decay_days"`

	// NegativeRatingThreshold is the highest rating counted as low.
	NegativeRatingThreshold int `json:"negative_rating_threshold"`

	// MinNegativeOccurrences is the number of low-rated records an id must
	// appear in before it becomes a negative signal.
	MinNegativeOccurrences int `json:"min_negative_occurrences"`

	// MinSamplesForReliability is the number of rated books required
	// before preferences are considered usable.
	MinSamplesForReliability int `json:"min_samples_for_reliability"`

	// RecentActivityWindow bounds the recent activity counters.
	RecentActivityWindow time.Duration `json:"recent_activity_window"`
}

// ScoringConfig contains per-book scoring parameters.
type ScoringConfig struct {
	// OfferBoost is added to books with live offers.
	OfferBoost float64 `json:"offer_boost"`

	// MinScore drops personalized results scoring below it.
	MinScore float64 `json:"min_score"`

	// MaxReasonsPerBook caps the reasons attached to a recommendation.
	MaxReasonsPerBook int `json:"max_reasons_per_book"`

	// UnpreferredFormatScore is the format term for a book that offers
	// formats, none of which the user prefers.
	UnpreferredFormatScore float64 `json:"unpreferred_format_score"`

	// NeutralPopularity is the popularity term for books without ratings.
	NeutralPopularity float64 `json:"neutral_popularity"`

	// HighRatingThreshold and HighRatingMinCount gate the "highly rated" reason.
	HighRatingThreshold float64 `json:"high_rating_threshold"`
	HighRatingMinCount  int     `json:"high_rating_min_count"`

	// LovedCategoryRating is the category average rating above which the
	// category reason uses the stronger phrasing.
	LovedCategoryRating float64 `json:"loved_category_rating"`

	// LoyalAuthorBooks is the number of books read above which the author
	// reason mentions the count.
	LoyalAuthorBooks int `json:"loyal_author_books"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxCandidates bounds the candidate pool.
	MaxCandidates int `json:"max_candidates"`

	// DefaultLimit applies when a query has no limit.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit is the largest limit a query may request.
	MaxLimit int `json:"max_limit"`

	// MaxResults caps the number of returned recommendations.
	MaxResults int `json:"max_results"`

	// MaxAlternatives caps alternatives surfaced by explanations.
	MaxAlternatives int `json:"max_alternatives"`
}

// FallbackConfig controls the popularity fallback.
type FallbackConfig struct {
	// MinConfidence is the lowest confidence served personalized results.
	MinConfidence float64 `json:"min_confidence"`
}

// CacheConfig contains preference cache parameters.
type CacheConfig struct {
	Enabled    bool          `json:"enabled"`
	TTL        time.Duration `json:"ttl"`
	MaxEntries int           `json:"max_entries"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: ScoringWeights{
			Category:   0.4,
			Author:     0.3,
			Format:     0.2,
			Popularity: 0.1,
		},
		Aggregation: AggregationConfig{
			RecencyDecayDays:         180,
			NegativeRatingThreshold:  2,
			MinNegativeOccurrences:   2,
			MinSamplesForReliability: 3,
			RecentActivityWindow:     30 * 24 * time.Hour,
		},
		Scoring: ScoringConfig{
			OfferBoost:             0.05,
			MinScore:               0.1,
			MaxReasonsPerBook:      4,
			UnpreferredFormatScore: 0.3,
			NeutralPopularity:      0.3,
			HighRatingThreshold:    4.0,
			HighRatingMinCount:     10,
			LovedCategoryRating:    4.0,
			LoyalAuthorBooks:       2,
		},
		Limits: LimitsConfig{
			MaxCandidates:   200,
			DefaultLimit:    10,
			MaxLimit:        50,
			MaxResults:      20,
			MaxAlternatives: 3,
		},
		Fallback: FallbackConfig{
			MinConfidence: 0.2,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// weightSumTolerance absorbs float rounding in configured weights.
const weightSumTolerance = 1e-6

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	w := c.Weights
	if w.Category < 0 || w.Author < 0 || w.Format < 0 || w.Popularity < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}
	if math.Abs(w.Sum()-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %f", w.Sum())
	}

	if c.Aggregation.RecencyDecayDays <= 0 {
		return fmt.Errorf("aggregation.recency_decay_days must be positive, got %f", c.Aggregation.RecencyDecayDays)
	}
	if c.Aggregation.NegativeRatingThreshold < 1 || c.Aggregation.NegativeRatingThreshold > 5 {
		return fmt.Errorf("aggregation.negative_rating_threshold must be in [1, 5], got %d", c.Aggregation.NegativeRatingThreshold)
	}
	if c.Aggregation.MinNegativeOccurrences < 1 {
		return fmt.Errorf("aggregation.min_negative_occurrences must be positive, got %d", c.Aggregation.MinNegativeOccurrences)
	}
	if c.Aggregation.MinSamplesForReliability < 0 {
		return fmt.Errorf("aggregation.min_samples_for_reliability must be non-negative, got %d", c.Aggregation.MinSamplesForReliability)
	}
	if c.Aggregation.RecentActivityWindow <= 0 {
		return fmt.Errorf("aggregation.recent_activity_window must be positive, got %v", c.Aggregation.RecentActivityWindow)
	}

	if c.Scoring.OfferBoost < 0 || c.Scoring.OfferBoost > 1 {
		return fmt.Errorf("scoring.offer_boost must be in [0, 1], got %f", c.Scoring.OfferBoost)
	}
	if c.Scoring.MinScore < 0 || c.Scoring.MinScore > 1 {
		return fmt.Errorf("scoring.min_score must be in [0, 1], got %f", c.Scoring.MinScore)
	}
	if c.Scoring.MaxReasonsPerBook < 1 {
		return fmt.Errorf("scoring.max_reasons_per_book must be positive, got %d", c.Scoring.MaxReasonsPerBook)
	}
	if c.Scoring.UnpreferredFormatScore < 0 || c.Scoring.UnpreferredFormatScore > 1 {
		return fmt.Errorf("scoring.unpreferred_format_score must be in [0, 1], got %f", c.Scoring.UnpreferredFormatScore)
	}
	if c.Scoring.NeutralPopularity < 0 || c.Scoring.NeutralPopularity > 1 {
		return fmt.Errorf("scoring.neutral_popularity must be in [0, 1], got %f", c.Scoring.NeutralPopularity)
	}

	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.MaxResults < 1 {
		return fmt.Errorf("limits.max_results must be positive, got %d", c.Limits.MaxResults)
	}
	if c.Limits.MaxAlternatives < 0 {
		return fmt.Errorf("limits.max_alternatives must be non-negative, got %d", c.Limits.MaxAlternatives)
	}

	if c.Fallback.MinConfidence < 0 || c.Fallback.MinConfidence > 1 {
		return fmt.Errorf("fallback.min_confidence must be in [0, 1], got %f", c.Fallback.MinConfidence)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when enabled, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive when enabled, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
