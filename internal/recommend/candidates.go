// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"context"
	"fmt"
)

// SelectCandidates fetches a bounded candidate pool and removes books the
// user has read or whose categories are mostly negative signals. Fetch order
// is preserved and every removed book is counted once.
func (e *Engine) SelectCandidates(ctx context.Context, userID string, prefs *UserPreferences, filter CandidateFilter) (*CandidateSet, error) {
	dp := e.provider()
	if dp == nil {
		return nil, ErrNoDataProvider
	}

	pool, err := dp.GetCandidatePool(ctx, filter, e.config.Limits.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate pool: %w", err)
	}

	readIDs, err := dp.GetReadBookIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch read books: %w", err)
	}

	return filterCandidates(pool, toSet(readIDs), negativeCategorySet(prefs)), nil
}

// filterCandidates applies read-set and negative-category exclusion.
func filterCandidates(pool []Book, read, negative map[string]struct{}) *CandidateSet {
	set := &CandidateSet{Candidates: make([]Book, 0, len(pool))}
	for i := range pool {
		b := &pool[i]
		if _, ok := read[b.ID]; ok {
			set.Excluded++
			continue
		}
		if dominatedByNegative(b, negative) {
			set.Excluded++
			continue
		}
		set.Candidates = append(set.Candidates, *b)
	}
	return set
}

// dominatedByNegative reports whether at least half of the book's categories
// are negative signals. Books without categories or without any negative
// category are never excluded.
func dominatedByNegative(b *Book, negative map[string]struct{}) bool {
	if len(negative) == 0 || len(b.Categories) == 0 {
		return false
	}
	matches := 0
	for _, c := range b.Categories {
		if _, ok := negative[c.ID]; ok {
			matches++
		}
	}
	return matches > 0 && float64(matches) >= float64(len(b.Categories))/2
}

func negativeCategorySet(prefs *UserPreferences) map[string]struct{} {
	if prefs == nil {
		return nil
	}
	set := make(map[string]struct{}, len(prefs.NegativeSignals.Categories))
	for _, s := range prefs.NegativeSignals.Categories {
		set[s.ID] = struct{}{}
	}
	return set
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
