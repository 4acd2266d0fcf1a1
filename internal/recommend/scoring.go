// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import "math"

// Scorer computes deterministic per-book scores against a preference view.
type Scorer struct {
	weights ScoringWeights
	cfg     ScoringConfig
}

// NewScorer creates a scorer from the engine configuration.
func NewScorer(cfg *Config) *Scorer {
	return &Scorer{weights: cfg.Weights, cfg: cfg.Scoring}
}

// termMatch is the outcome of matching one scoring term against preferences.
type termMatch struct {
	score   float64
	matched []string
}

// ScoreBook scores a single book. The result lies in [0, 1] and is rounded
// to two decimals. When includeDebug is set the per-term breakdown is attached.
func (s *Scorer) ScoreBook(book *Book, prefs *UserPreferences, includeDebug bool) Recommendation {
	category, topCategory := s.categoryTerm(book, prefs)
	author, topAuthor := s.authorTerm(book, prefs)
	format, matchedFormat := s.formatTerm(book, prefs)
	popularity := s.PopularityScore(book)

	raw := s.weights.Category*category.score +
		s.weights.Author*author.score +
		s.weights.Format*format +
		s.weights.Popularity*popularity

	boost := 0.0
	if book.HasOffers {
		boost = s.cfg.OfferBoost
	}

	rec := Recommendation{
		Book:    *book,
		Score:   round2(clamp01(raw + boost)),
		Reasons: s.reasons(book, topCategory, topAuthor, matchedFormat),
	}

	if includeDebug {
		rec.Debug = &ScoreBreakdown{
			CategoryScore:     category.score,
			AuthorScore:       author.score,
			FormatScore:       format,
			PopularityScore:   popularity,
			OfferBoost:        boost,
			RawScore:          raw,
			MatchedCategories: category.matched,
			MatchedAuthors:    author.matched,
			MatchedFormat:     matchedFormat,
		}
	}
	return rec
}

// PopularityScore blends the average rating with a log-scaled ratings count.
// Books without ratings get the neutral score.
func (s *Scorer) PopularityScore(book *Book) float64 {
	if book.RatingsCount <= 0 {
		return s.cfg.NeutralPopularity
	}
	quality := clamp01((book.AvgRating - 1) / 4)
	volume := math.Min(1, math.Log10(float64(book.RatingsCount)+1)/3)
	return 0.7*quality + 0.3*volume
}

// categoryTerm returns the best category affinity the book matches. The
// first category in book order wins ties.
func (s *Scorer) categoryTerm(book *Book, prefs *UserPreferences) (termMatch, *CategoryAffinity) {
	var (
		m   termMatch
		top *CategoryAffinity
	)
	if prefs == nil || len(prefs.Categories) == 0 {
		return m, nil
	}
	byID := make(map[string]int, len(prefs.Categories))
	for i := range prefs.Categories {
		byID[prefs.Categories[i].ID] = i
	}
	for _, ref := range uniqueRefs(book.Categories) {
		idx, ok := byID[ref.ID]
		if !ok {
			continue
		}
		aff := &prefs.Categories[idx]
		m.matched = append(m.matched, ref.ID)
		if top == nil || aff.Score > top.Score {
			top = aff
		}
	}
	if top != nil {
		m.score = top.Score
	}
	return m, top
}

// authorTerm mirrors categoryTerm for authors.
func (s *Scorer) authorTerm(book *Book, prefs *UserPreferences) (termMatch, *AuthorAffinity) {
	var (
		m   termMatch
		top *AuthorAffinity
	)
	if prefs == nil || len(prefs.Authors) == 0 {
		return m, nil
	}
	byID := make(map[string]int, len(prefs.Authors))
	for i := range prefs.Authors {
		byID[prefs.Authors[i].ID] = i
	}
	for _, ref := range uniqueRefs(book.Authors) {
		idx, ok := byID[ref.ID]
		if !ok {
			continue
		}
		aff := &prefs.Authors[idx]
		m.matched = append(m.matched, ref.ID)
		if top == nil || aff.Score > top.Score {
			top = aff
		}
	}
	if top != nil {
		m.score = top.Score
	}
	return m, top
}

// formatTerm returns the score of the user's strongest preferred format the
// book is offered in. A book offered only in non-preferred formats gets
// UnpreferredFormatScore; a book with no formats gets 0.
func (s *Scorer) formatTerm(book *Book, prefs *UserPreferences) (float64, BookFormat) {
	var (
		best   float64
		format BookFormat
	)
	if prefs != nil {
		for _, fa := range prefs.Formats {
			if fa.Score <= 0 || !book.OffersFormat(fa.Format) {
				continue
			}
			if format == "" || fa.Score > best {
				best = fa.Score
				format = fa.Format
			}
		}
	}
	if format != "" {
		return best, format
	}
	if len(book.Formats) > 0 {
		return s.cfg.UnpreferredFormatScore, ""
	}
	return 0, ""
}
