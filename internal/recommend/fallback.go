// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"context"
	"fmt"
)

// Fallback returns the most popular catalog books, ordered by ratings count
// then average rating. Each is scored by popularity alone and carries only
// popularity and availability reasons. An empty catalog yields an empty list.
func (e *Engine) Fallback(ctx context.Context, limit int, confidence float64) (*RecommendationResponse, error) {
	if limit < 1 {
		limit = e.config.Limits.DefaultLimit
	}
	if limit > e.config.Limits.MaxResults {
		limit = e.config.Limits.MaxResults
	}
	return e.fallback(ctx, limit, confidence, nil)
}

// fallback serves popular books, skipping ids in exclude. Skipped books are
// reported in Excluded so the count stays truthful.
func (e *Engine) fallback(ctx context.Context, limit int, confidence float64, exclude map[string]struct{}) (*RecommendationResponse, error) {
	dp := e.provider()
	if dp == nil {
		return nil, ErrNoDataProvider
	}

	books, err := dp.GetPopularBooks(ctx, limit+len(exclude))
	if err != nil {
		return nil, fmt.Errorf("fetch popular books: %w", err)
	}

	kept := make([]Book, 0, limit)
	excluded := 0
	for i := range books {
		if _, ok := exclude[books[i].ID]; ok {
			excluded++
			continue
		}
		if len(kept) < limit {
			kept = append(kept, books[i])
		}
	}
	e.annotateOffers(ctx, kept, e.logger)

	items := make([]Recommendation, 0, len(kept))
	for i := range kept {
		items = append(items, e.scorer.PopularityRecommendation(&kept[i]))
	}

	return &RecommendationResponse{
		Items: items,
		Meta: ResponseMeta{
			Confidence:           confidence,
			FallbackUsed:         true,
			CandidatesConsidered: len(books),
			Excluded:             excluded,
			AlgorithmVersion:     AlgorithmVersion,
		},
	}, nil
}

// PopularityRecommendation scores a book by popularity only.
func (s *Scorer) PopularityRecommendation(book *Book) Recommendation {
	return Recommendation{
		Book:    *book,
		Score:   round2(clamp01(s.PopularityScore(book))),
		Reasons: s.reasons(book, nil, nil, ""),
	}
}
