// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookwise/internal/cache"
	"github.com/tomtom215/bookwise/internal/metrics"
)

// Engine produces personalized book recommendations, explanations and
// comparisons. It is safe for concurrent use.
type Engine struct {
	config     *Config
	logger     zerolog.Logger
	aggregator *Aggregator
	scorer     *Scorer

	// Collaborators, swappable at runtime
	mu           sync.RWMutex
	dataProvider DataProvider
	offers       OfferResolver
	narrator     Narrator

	// prefCache holds preference views keyed by user and library version.
	prefCache *cache.LRU[*UserPreferences]

	now func() time.Time

	requestCount  atomic.Int64
	fallbackCount atomic.Int64
	errorCount    atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
}

// EngineStats is a snapshot of engine counters.
type EngineStats struct {
	Requests    int64 `json:"requests"`
	Fallbacks   int64 `json:"fallbacks"`
	Errors      int64 `json:"errors"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	CacheSize   int   `json:"cache_size"`
}

// NewEngine creates a new recommendation engine. A nil config uses the defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "recommend").Logger(),
		aggregator: NewAggregator(cfg.Aggregation),
		scorer:     NewScorer(cfg),
		now:        time.Now,
	}
	if cfg.Cache.Enabled {
		e.prefCache = cache.NewLRU[*UserPreferences](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// SetDataProvider sets the catalog, library and purchase reader.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dataProvider = dp
}

// SetOfferResolver sets the optional live offer resolver.
func (e *Engine) SetOfferResolver(r OfferResolver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offers = r
}

// SetNarrator sets the optional narrative generator used by Explain and Compare.
func (e *Engine) SetNarrator(n Narrator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.narrator = n
}

// SetClock replaces the engine's time source. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
	if e.prefCache != nil {
		e.prefCache.SetClock(now)
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Scorer returns the engine's scorer.
func (e *Engine) Scorer() *Scorer {
	return e.scorer
}

func (e *Engine) provider() DataProvider {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dataProvider
}

func (e *Engine) offerResolver() OfferResolver {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.offers
}

func (e *Engine) currentNarrator() Narrator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.narrator
}

func (e *Engine) clock() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.now()
}

// GetRecommendations returns a ranked list of books for the user. Users
// without enough rated books, or with a confidence below the configured
// floor, receive the popularity fallback instead.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (e *Engine) GetRecommendations(ctx context.Context, userID string, query Query) (*RecommendationResponse, error) {
	start := time.Now()
	e.requestCount.Add(1)

	limit, err := e.effectiveLimit(query)
	if err != nil {
		return nil, err
	}

	logger := e.logger.With().
		Str("request_id", query.RequestID).
		Str("user_id", userID).
		Logger()

	prefs, cacheHit, err := e.LoadPreferences(ctx, userID)
	if err != nil {
		return nil, e.fail("recommendations", err)
	}

	dq := prefs.DataQuality
	if !dq.HasEnoughData || dq.Confidence < e.config.Fallback.MinConfidence {
		readIDs, err := e.readSet(ctx, userID)
		if err != nil {
			return nil, e.fail("recommendations", err)
		}
		resp, err := e.fallback(ctx, limit, dq.Confidence, readIDs)
		if err != nil {
			return nil, e.fail("fallback", err)
		}
		e.fallbackCount.Add(1)
		e.finishMeta(&resp.Meta, query, start, cacheHit)

		logger.Debug().
			Bool("has_enough_data", dq.HasEnoughData).
			Float64("confidence", dq.Confidence).
			Int("returned", len(resp.Items)).
			Msg("served popularity fallback")
		metrics.RecordRecommendation(true, time.Since(start), 0, resp.Meta.Excluded)
		return resp, nil
	}

	set, err := e.SelectCandidates(ctx, userID, prefs, CandidateFilter{Format: query.Format, CategoryID: query.CategoryID})
	if err != nil {
		return nil, e.fail("recommendations", err)
	}
	e.annotateOffers(ctx, set.Candidates, logger)

	items := e.rank(set.Candidates, prefs, query.Debug, limit)

	resp := &RecommendationResponse{
		Items: items,
		Meta: ResponseMeta{
			Confidence:           dq.Confidence,
			FallbackUsed:         false,
			CandidatesConsidered: len(set.Candidates),
			Excluded:             set.Excluded,
			AlgorithmVersion:     AlgorithmVersion,
		},
	}
	e.finishMeta(&resp.Meta, query, start, cacheHit)

	logger.Debug().
		Int("candidates", len(set.Candidates)).
		Int("excluded", set.Excluded).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Meta.LatencyMS).
		Msg("recommendation complete")
	metrics.RecordRecommendation(false, time.Since(start), len(set.Candidates), set.Excluded)

	return resp, nil
}

// rank scores candidates, drops those under MinScore, sorts by score
// descending (ties keep candidate order) and truncates to limit.
func (e *Engine) rank(candidates []Book, prefs *UserPreferences, debug bool, limit int) []Recommendation {
	items := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		rec := e.scorer.ScoreBook(&candidates[i], prefs, debug)
		if rec.Score < e.config.Scoring.MinScore {
			continue
		}
		items = append(items, rec)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// effectiveLimit validates the query and returns the number of results to serve.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (e *Engine) effectiveLimit(query Query) (int, error) {
	limit := query.Limit
	if limit == 0 {
		limit = e.config.Limits.DefaultLimit
	}
	if limit < 1 || limit > e.config.Limits.MaxLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidRequest, e.config.Limits.MaxLimit, query.Limit)
	}
	if query.Format != "" && !query.Format.Valid() {
		return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, query.Format)
	}
	if limit > e.config.Limits.MaxResults {
		limit = e.config.Limits.MaxResults
	}
	return limit, nil
}

// LoadPreferences returns the user's preference view, computing it from the
// library when it is not cached for the current library version.
func (e *Engine) LoadPreferences(ctx context.Context, userID string) (*UserPreferences, bool, error) {
	dp := e.provider()
	if dp == nil {
		return nil, false, ErrNoDataProvider
	}

	var key string
	if e.prefCache != nil {
		version, err := dp.GetLibraryVersion(ctx, userID)
		if err != nil {
			return nil, false, fmt.Errorf("fetch library version: %w", err)
		}
		key = userID + "|" + version
		if prefs, ok := e.prefCache.Get(key); ok {
			e.cacheHits.Add(1)
			metrics.RecordPreferenceCache(true)
			return prefs, true, nil
		}
		e.cacheMisses.Add(1)
		metrics.RecordPreferenceCache(false)
	}

	entries, err := dp.GetUserLibrary(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("fetch library: %w", err)
	}
	purchases, err := dp.GetPurchaseFormatCounts(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("fetch purchase formats: %w", err)
	}

	prefs := e.aggregator.Compute(userID, entries, purchases, e.clock())

	if e.prefCache != nil {
		// Older versions of this user's view can never be served again.
		prefix := userID + "|"
		e.prefCache.RemoveFunc(func(k string) bool { return k != key && strings.HasPrefix(k, prefix) })
		e.prefCache.Set(key, prefs)
	}
	return prefs, false, nil
}

// InvalidateUser drops every cached preference view of the user.
func (e *Engine) InvalidateUser(userID string) int {
	if e.prefCache == nil {
		return 0
	}
	prefix := userID + "|"
	return e.prefCache.RemoveFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
}

// CleanupCache removes expired preference views and returns how many were dropped.
func (e *Engine) CleanupCache() int {
	if e.prefCache == nil {
		return 0
	}
	return e.prefCache.CleanupExpired()
}

// Stats returns the engine counters.
func (e *Engine) Stats() EngineStats {
	s := EngineStats{
		Requests:    e.requestCount.Load(),
		Fallbacks:   e.fallbackCount.Load(),
		Errors:      e.errorCount.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
	}
	if e.prefCache != nil {
		s.CacheSize = e.prefCache.Len()
	}
	return s
}

func (e *Engine) readSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	dp := e.provider()
	if dp == nil {
		return nil, ErrNoDataProvider
	}
	ids, err := dp.GetReadBookIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch read books: %w", err)
	}
	return toSet(ids), nil
}

// annotateOffers refreshes HasOffers in place. Failures keep the catalog flag.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) annotateOffers(ctx context.Context, books []Book, logger zerolog.Logger) {
	r := e.offerResolver()
	if r == nil || len(books) == 0 {
		return
	}
	if err := r.Annotate(ctx, books); err != nil {
		logger.Warn().Err(err).Int("books", len(books)).Msg("offer lookup failed, using catalog availability")
	}
}

//nolint:gocritic // hugeParam: query passed by value for immutability
func (e *Engine) finishMeta(meta *ResponseMeta, query Query, start time.Time, cacheHit bool) {
	meta.RequestID = query.RequestID
	meta.CacheHit = cacheHit
	meta.LatencyMS = time.Since(start).Milliseconds()
	meta.GeneratedAt = e.clock()
}

func (e *Engine) fail(operation string, err error) error {
	e.errorCount.Add(1)
	metrics.RecordRecommendationError(operation)
	return err
}
