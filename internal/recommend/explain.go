// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookwise/internal/metrics"
	"github.com/tomtom215/bookwise/internal/recommend/guardrail"
)

const (
	// MinCompareBooks and MaxCompareBooks bound a comparison request.
	MinCompareBooks = 2
	MaxCompareBooks = 5

	// maxUserContextLength truncates free-text context passed to the narrator.
	maxUserContextLength = 1000

	// promptAffinities is the number of top categories and authors shared with the narrator.
	promptAffinities = 5
)

// Narrator turns deterministic scoring output into prose. Implementations
// must only reference books from the prompt's Candidates, using
// guardrail.Tag. Output is always filtered by the guardrail before use.
type Narrator interface {
	Explain(ctx context.Context, prompt *ExplainPrompt) (string, error)
	Compare(ctx context.Context, prompt *ComparePrompt) (string, error)
}

// NarrationBook is the scoring summary of a book handed to the narrator.
type NarrationBook struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// ExplainPrompt is the narrator input for a single-book explanation.
type ExplainPrompt struct {
	Book          NarrationBook         `json:"book"`
	UserContext   string                `json:"user_context,omitempty"`
	TopCategories []string              `json:"top_categories"`
	TopAuthors    []string              `json:"top_authors"`
	Candidates    []guardrail.Candidate `json:"candidates"`
}

// ComparePrompt is the narrator input for a comparison.
type ComparePrompt struct {
	Books         []NarrationBook       `json:"books"`
	BestFitID     string                `json:"best_fit_id"`
	UserContext   string                `json:"user_context,omitempty"`
	TopCategories []string              `json:"top_categories"`
	TopAuthors    []string              `json:"top_authors"`
	Candidates    []guardrail.Candidate `json:"candidates"`
}

// ExplainRequest asks why a book suits the user.
type ExplainRequest struct {
	BookID  string `json:"bookId" validate:"required,max=128"`
	Context string `json:"context,omitempty" validate:"max=1000"`
}

// CompareRequest asks which of several books suits the user best.
type CompareRequest struct {
	BookIDs []string `json:"bookIds" validate:"required,min=2,max=5,unique,dive,required,max=128"`
	Context string   `json:"context,omitempty" validate:"max=1000"`
}

// Explanation is the result of Explain.
type Explanation struct {
	BookID       string                      `json:"bookId"`
	Title        string                      `json:"title"`
	Explanation  string                      `json:"explanation"`
	Reasons      []string                    `json:"reasons"`
	Score        float64                     `json:"score"`
	Confidence   float64                     `json:"confidence"`
	Alternatives []guardrail.AlternativeBook `json:"alternatives"`
	Generated    bool                        `json:"generated"`
}

// ComparisonItem is one scored book of a comparison.
type ComparisonItem struct {
	BookID  string   `json:"bookId"`
	Title   string   `json:"title"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Comparison is the result of Compare.
type Comparison struct {
	Items         []ComparisonItem            `json:"items"`
	BestFitID     string                      `json:"bestFitId"`
	BestFitReason string                      `json:"bestFitReason"`
	Explanation   string                      `json:"explanation"`
	Alternatives  []guardrail.AlternativeBook `json:"alternatives"`
	Confidence    float64                     `json:"confidence"`
	Generated     bool                        `json:"generated"`
}

// Explain scores a single book for the user and describes the fit. The
// narrator is optional; when it is missing or fails, a templated explanation
// built from the deterministic reasons is returned instead.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Explain(ctx context.Context, userID string, req ExplainRequest) (*Explanation, error) {
	id := strings.TrimSpace(req.BookID)
	if id == "" {
		return nil, fmt.Errorf("%w: bookId is required", ErrInvalidRequest)
	}

	books, err := e.catalogBooks(ctx, []string{id})
	if err != nil {
		return nil, e.fail("explain", err)
	}

	prefs, _, err := e.LoadPreferences(ctx, userID)
	if err != nil {
		return nil, e.fail("explain", err)
	}

	logger := e.logger.With().Str("user_id", userID).Str("book_id", id).Logger()
	e.annotateOffers(ctx, books, logger)
	book := books[0]
	rec := e.scorer.ScoreBook(&book, prefs, false)

	candidates := e.alternativeCandidates(ctx, userID, prefs, map[string]struct{}{id: {}}, logger)

	result := &Explanation{
		BookID:       book.ID,
		Title:        book.Title,
		Reasons:      rec.Reasons,
		Score:        rec.Score,
		Confidence:   prefs.DataQuality.Confidence,
		Alternatives: []guardrail.AlternativeBook{},
	}

	prompt := &ExplainPrompt{
		Book:          narrationBook(&rec),
		UserContext:   truncateContext(req.Context),
		TopCategories: topCategoryNames(prefs),
		TopAuthors:    topAuthorNames(prefs),
		Candidates:    candidates,
	}

	text, generated := e.narrate(ctx, "explain", logger, func(ctx context.Context, n Narrator) (string, error) {
		return n.Explain(ctx, prompt)
	})
	if generated {
		// The explained book itself may be referenced in the narrative.
		allowed := append(bookCandidates([]Book{book}), candidates...)
		result.Explanation, result.Alternatives = e.filterNarration("explain", text, allowed, candidates, logger)
		result.Generated = result.Explanation != ""
	}
	if !result.Generated {
		result.Explanation = TemplateExplanation(&rec)
		result.Alternatives = []guardrail.AlternativeBook{}
	}
	return result, nil
}

// Compare scores 2 to 5 distinct books for the user and picks the best fit,
// the highest score with request order breaking ties.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Compare(ctx context.Context, userID string, req CompareRequest) (*Comparison, error) {
	if len(req.BookIDs) < MinCompareBooks || len(req.BookIDs) > MaxCompareBooks {
		return nil, fmt.Errorf("%w: compare needs between %d and %d books, got %d",
			ErrInvalidRequest, MinCompareBooks, MaxCompareBooks, len(req.BookIDs))
	}
	ids := make([]string, len(req.BookIDs))
	seen := make(map[string]struct{}, len(req.BookIDs))
	for i, raw := range req.BookIDs {
		ids[i] = strings.TrimSpace(raw)
		if ids[i] == "" {
			return nil, fmt.Errorf("%w: bookIds[%d] is empty", ErrInvalidRequest, i)
		}
		if _, dup := seen[ids[i]]; dup {
			return nil, fmt.Errorf("%w: bookIds[%d] repeats %s", ErrInvalidRequest, i, ids[i])
		}
		seen[ids[i]] = struct{}{}
	}

	books, err := e.catalogBooks(ctx, ids)
	if err != nil {
		return nil, e.fail("compare", err)
	}

	prefs, _, err := e.LoadPreferences(ctx, userID)
	if err != nil {
		return nil, e.fail("compare", err)
	}

	logger := e.logger.With().Str("user_id", userID).Strs("book_ids", ids).Logger()
	e.annotateOffers(ctx, books, logger)

	recs := make([]Recommendation, len(books))
	result := &Comparison{
		Items:        make([]ComparisonItem, len(books)),
		Confidence:   prefs.DataQuality.Confidence,
		Alternatives: []guardrail.AlternativeBook{},
	}
	best := 0
	for i := range books {
		recs[i] = e.scorer.ScoreBook(&books[i], prefs, false)
		result.Items[i] = ComparisonItem{
			BookID:  books[i].ID,
			Title:   books[i].Title,
			Score:   recs[i].Score,
			Reasons: recs[i].Reasons,
		}
		if recs[i].Score > recs[best].Score {
			best = i
		}
	}
	result.BestFitID = recs[best].Book.ID
	result.BestFitReason = MatchPercent(recs[best].Score)

	exclude := toSet(ids)
	candidates := e.alternativeCandidates(ctx, userID, prefs, exclude, logger)

	prompt := &ComparePrompt{
		Books:         make([]NarrationBook, len(recs)),
		BestFitID:     result.BestFitID,
		UserContext:   truncateContext(req.Context),
		TopCategories: topCategoryNames(prefs),
		TopAuthors:    topAuthorNames(prefs),
		Candidates:    candidates,
	}
	for i := range recs {
		prompt.Books[i] = narrationBook(&recs[i])
	}

	text, generated := e.narrate(ctx, "compare", logger, func(ctx context.Context, n Narrator) (string, error) {
		return n.Compare(ctx, prompt)
	})
	if generated {
		// The compared books themselves may be referenced in the narrative.
		allowed := append(bookCandidates(books), candidates...)
		result.Explanation, result.Alternatives = e.filterNarration("compare", text, allowed, candidates, logger)
		result.Generated = result.Explanation != ""
	}
	if !result.Generated {
		result.Explanation = TemplateComparison(recs, best)
		result.Alternatives = []guardrail.AlternativeBook{}
	}
	return result, nil
}

// catalogBooks fetches books in the order of ids. Every id must be in the
// catalog, otherwise ErrBookNotFound is returned.
func (e *Engine) catalogBooks(ctx context.Context, ids []string) ([]Book, error) {
	dp := e.provider()
	if dp == nil {
		return nil, ErrNoDataProvider
	}

	found, err := dp.GetBooks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch books: %w", err)
	}

	byID := make(map[string]Book, len(found))
	allowed := make([]string, 0, len(found))
	for i := range found {
		byID[found[i].ID] = found[i]
		allowed = append(allowed, found[i].ID)
	}

	out := make([]Book, 0, len(ids))
	for _, id := range ids {
		if res := guardrail.ValidateBookInCatalog(id, allowed); !res.Passed {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
		}
		out = append(out, byID[id])
	}
	return out, nil
}

// alternativeCandidates returns the allow-list of books the narrator may
// suggest: the user's current recommendations minus the excluded ids.
// Lookup failures degrade to an empty allow-list.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) alternativeCandidates(ctx context.Context, userID string, prefs *UserPreferences, exclude map[string]struct{}, logger zerolog.Logger) []guardrail.Candidate {
	limit := e.config.Limits.MaxResults
	var books []Book

	dq := prefs.DataQuality
	if dq.HasEnoughData && dq.Confidence >= e.config.Fallback.MinConfidence {
		set, err := e.SelectCandidates(ctx, userID, prefs, CandidateFilter{})
		if err != nil {
			logger.Warn().Err(err).Msg("alternative lookup failed")
			return []guardrail.Candidate{}
		}
		for _, rec := range e.rank(set.Candidates, prefs, false, limit+len(exclude)) {
			books = append(books, rec.Book)
		}
	} else {
		readIDs, err := e.readSet(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Msg("alternative lookup failed")
			return []guardrail.Candidate{}
		}
		resp, err := e.fallback(ctx, limit+len(exclude), dq.Confidence, readIDs)
		if err != nil {
			logger.Warn().Err(err).Msg("alternative lookup failed")
			return []guardrail.Candidate{}
		}
		for _, rec := range resp.Items {
			books = append(books, rec.Book)
		}
	}

	out := make([]guardrail.Candidate, 0, limit)
	for i := range books {
		if _, skip := exclude[books[i].ID]; skip {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, toCandidate(&books[i]))
	}
	return out
}

// narrate runs the narrator if one is configured. It reports whether text
// was produced; errors are logged and never returned.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) narrate(ctx context.Context, operation string, logger zerolog.Logger, call func(context.Context, Narrator) (string, error)) (string, bool) {
	n := e.currentNarrator()
	if n == nil {
		return "", false
	}

	start := time.Now()
	text, err := call(ctx, n)
	ok := err == nil && strings.TrimSpace(text) != ""
	metrics.RecordNarration(operation, ok, time.Since(start))
	if err != nil {
		logger.Warn().Err(err).Str("operation", operation).Msg("narrator unavailable, using templated explanation")
		return "", false
	}
	return text, ok
}

// filterNarration applies the guardrail. References outside allowed are
// counted and stripped; alternatives are extracted from candidates only.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) filterNarration(operation, text string, allowed, candidates []guardrail.Candidate, logger zerolog.Logger) (string, []guardrail.AlternativeBook) {
	if dropped := guardrail.Disallowed(text, allowed); len(dropped) > 0 {
		metrics.RecordGuardrailDrops(operation, len(dropped))
		logger.Debug().Strs("dropped_ids", dropped).Msg("removed references outside catalog context")
	}

	alternatives := guardrail.ExtractAlternatives(text, candidates)
	if n := e.config.Limits.MaxAlternatives; len(alternatives) > n {
		alternatives = alternatives[:n]
	}
	return guardrail.Sanitize(text, allowed), alternatives
}

// TemplateExplanation describes a recommendation from its deterministic reasons.
func TemplateExplanation(rec *Recommendation) string {
	pct := percent(rec.Score)
	if len(rec.Reasons) == 0 {
		return fmt.Sprintf("%s is a %d%% match for you, based on how readers across the catalog rate it.", rec.Book.Title, pct)
	}
	return fmt.Sprintf("%s is a %d%% match for you. %s.", rec.Book.Title, pct, strings.Join(rec.Reasons, ". "))
}

// TemplateComparison summarizes a comparison from scores and reasons.
func TemplateComparison(recs []Recommendation, best int) string {
	var b strings.Builder
	top := &recs[best]
	fmt.Fprintf(&b, "%s is the best fit at a %d%% match.", top.Book.Title, percent(top.Score))
	if len(top.Reasons) > 0 {
		fmt.Fprintf(&b, " %s.", strings.Join(top.Reasons, ". "))
	}
	for i := range recs {
		if i == best {
			continue
		}
		fmt.Fprintf(&b, " %s scores %d%%.", recs[i].Book.Title, percent(recs[i].Score))
	}
	return b.String()
}

// MatchPercent formats a score as "<pct>% match".
func MatchPercent(score float64) string {
	return fmt.Sprintf("%d%% match", percent(score))
}

func percent(score float64) int {
	return int(math.Round(score * 100))
}

func narrationBook(rec *Recommendation) NarrationBook {
	authors := make([]string, 0, len(rec.Book.Authors))
	for _, a := range rec.Book.Authors {
		authors = append(authors, a.Name)
	}
	return NarrationBook{
		ID:      rec.Book.ID,
		Title:   rec.Book.Title,
		Authors: authors,
		Score:   rec.Score,
		Reasons: rec.Reasons,
	}
}

func toCandidate(b *Book) guardrail.Candidate {
	c := guardrail.Candidate{ID: b.ID, Title: b.Title}
	if len(b.Authors) > 0 {
		c.Author = b.Authors[0].Name
	}
	return c
}

func bookCandidates(books []Book) []guardrail.Candidate {
	out := make([]guardrail.Candidate, 0, len(books))
	for i := range books {
		out = append(out, toCandidate(&books[i]))
	}
	return out
}

func topCategoryNames(prefs *UserPreferences) []string {
	out := make([]string, 0, promptAffinities)
	for i := 0; i < len(prefs.Categories) && i < promptAffinities; i++ {
		out = append(out, prefs.Categories[i].Name)
	}
	return out
}

func topAuthorNames(prefs *UserPreferences) []string {
	out := make([]string, 0, promptAffinities)
	for i := 0; i < len(prefs.Authors) && i < promptAffinities; i++ {
		out = append(out, prefs.Authors[i].Name)
	}
	return out
}

func truncateContext(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxUserContextLength {
		return string(r[:maxUserContextLength])
	}
	return s
}
