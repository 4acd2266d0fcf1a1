// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func testScorer() *Scorer {
	return NewScorer(DefaultConfig())
}

func floatPtr(f float64) *float64 { return &f }

// examplePrefs is a preference view with one entry per kind.
func examplePrefs() *UserPreferences {
	return &UserPreferences{
		Categories: []CategoryAffinity{{AffinityScore: AffinityScore{ID: "fantasy", Name: "Fantasy", Score: 0.9}}},
		Authors:    []AuthorAffinity{{AffinityScore: AffinityScore{ID: "author-a", Name: "Author A", Score: 0.8}}},
		Formats:    []FormatAffinity{{Format: FormatPaper, Score: 0.7}},
	}
}

func exampleBook() Book {
	return Book{
		ID:           "b1",
		Title:        "Dragon Gate",
		Categories:   []Ref{{ID: "fantasy", Name: "Fantasy"}},
		Authors:      []Ref{{ID: "author-a", Name: "Author A"}},
		Formats:      []BookFormat{FormatPaper},
		AvgRating:    4.5,
		RatingsCount: 100,
	}
}

func TestScoreBook_EndToEndExample(t *testing.T) {
	t.Parallel()

	book := exampleBook()
	rec := testScorer().ScoreBook(&book, examplePrefs(), true)

	// 0.4*0.9 + 0.3*0.8 + 0.2*0.7 + 0.1*(0.7*0.875 + 0.3*log10(101)/3)
	wantPopularity := 0.7*0.875 + 0.3*math.Log10(101)/3
	if math.Abs(rec.Debug.PopularityScore-wantPopularity) > 1e-9 {
		t.Errorf("popularity = %f, want %f", rec.Debug.PopularityScore, wantPopularity)
	}
	if rec.Score != 0.82 {
		t.Errorf("score = %f, want 0.82", rec.Score)
	}
	if rec.Debug.CategoryScore != 0.9 || rec.Debug.AuthorScore != 0.8 || rec.Debug.FormatScore != 0.7 {
		t.Errorf("unexpected breakdown: %+v", rec.Debug)
	}
	if rec.Debug.MatchedFormat != FormatPaper {
		t.Errorf("expected paper as matched format, got %q", rec.Debug.MatchedFormat)
	}
	if !reflect.DeepEqual(rec.Debug.MatchedCategories, []string{"fantasy"}) {
		t.Errorf("unexpected matched categories: %v", rec.Debug.MatchedCategories)
	}
}

func TestScoreBook_DebugOmittedByDefault(t *testing.T) {
	t.Parallel()

	book := exampleBook()
	if rec := testScorer().ScoreBook(&book, examplePrefs(), false); rec.Debug != nil {
		t.Error("expected no debug breakdown")
	}
}

func TestPopularityScore(t *testing.T) {
	t.Parallel()

	s := testScorer()
	tests := []struct {
		name  string
		book  Book
		want  float64
		delta float64
	}{
		{"no ratings is neutral", Book{AvgRating: 0, RatingsCount: 0}, 0.3, 0},
		{"perfect and saturated volume", Book{AvgRating: 5, RatingsCount: 999}, 1.0, 1e-9},
		{"minimum rating", Book{AvgRating: 1, RatingsCount: 9}, 0.3 * (1.0 / 3), 1e-9},
		{"bogus average clamps", Book{AvgRating: 0, RatingsCount: 9}, 0.3 * (1.0 / 3), 1e-9},
		{"volume capped at one", Book{AvgRating: 3, RatingsCount: 1000000}, 0.35 + 0.3, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.PopularityScore(&tt.book)
			if math.Abs(got-tt.want) > tt.delta {
				t.Errorf("PopularityScore() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestScoreBook_FormatTerm(t *testing.T) {
	t.Parallel()

	prefs := &UserPreferences{
		Formats: []FormatAffinity{
			{Format: FormatEbook, Score: 1.0},
			{Format: FormatPaper, Score: 0.4},
		},
	}

	tests := []struct {
		name    string
		formats []BookFormat
		score   float64
		matched BookFormat
	}{
		{"best preferred format wins", []BookFormat{FormatPaper, FormatEbook}, 1.0, FormatEbook},
		{"lesser preferred format", []BookFormat{FormatPaper}, 0.4, FormatPaper},
		{"only non-preferred formats", []BookFormat{FormatAudiobook}, 0.3, ""},
		{"no formats", nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			book := Book{ID: "b", Formats: tt.formats}
			rec := testScorer().ScoreBook(&book, prefs, true)
			if rec.Debug.FormatScore != tt.score {
				t.Errorf("format score = %f, want %f", rec.Debug.FormatScore, tt.score)
			}
			if rec.Debug.MatchedFormat != tt.matched {
				t.Errorf("matched format = %q, want %q", rec.Debug.MatchedFormat, tt.matched)
			}
		})
	}
}

func TestScoreBook_MaxMatchAndTies(t *testing.T) {
	t.Parallel()

	prefs := &UserPreferences{
		Categories: []CategoryAffinity{
			{AffinityScore: AffinityScore{ID: "scifi", Name: "Sci-Fi", Score: 0.5}},
			{AffinityScore: AffinityScore{ID: "space", Name: "Space Opera", Score: 0.5}},
			{AffinityScore: AffinityScore{ID: "mystery", Name: "Mystery", Score: 0.2}},
		},
	}
	book := Book{
		ID:         "b",
		Categories: []Ref{{ID: "mystery"}, {ID: "space"}, {ID: "scifi"}},
	}

	rec := testScorer().ScoreBook(&book, prefs, true)
	if rec.Debug.CategoryScore != 0.5 {
		t.Errorf("expected max category score 0.5, got %f", rec.Debug.CategoryScore)
	}
	if !reflect.DeepEqual(rec.Debug.MatchedCategories, []string{"mystery", "space", "scifi"}) {
		t.Errorf("unexpected matched list: %v", rec.Debug.MatchedCategories)
	}
	// "space" appears first in book order among the tied maxima.
	if len(rec.Reasons) == 0 || rec.Reasons[0] != "Matches your interest in Space Opera" {
		t.Errorf("expected first tied category in reason, got %v", rec.Reasons)
	}
}

func TestScoreBook_Bounds(t *testing.T) {
	t.Parallel()

	full := &UserPreferences{
		Categories: []CategoryAffinity{{AffinityScore: AffinityScore{ID: "c", Name: "C", Score: 1}}},
		Authors:    []AuthorAffinity{{AffinityScore: AffinityScore{ID: "a", Name: "A", Score: 1}}},
		Formats:    []FormatAffinity{{Format: FormatPaper, Score: 1}},
	}
	books := []Book{
		{ID: "max", Categories: []Ref{{ID: "c"}}, Authors: []Ref{{ID: "a"}}, Formats: []BookFormat{FormatPaper}, AvgRating: 5, RatingsCount: 5000, HasOffers: true},
		{ID: "empty"},
		{ID: "negative-ish", AvgRating: -3, RatingsCount: 1},
	}

	for _, prefs := range []*UserPreferences{nil, {}, full} {
		for i := range books {
			rec := testScorer().ScoreBook(&books[i], prefs, false)
			if rec.Score < 0 || rec.Score > 1 {
				t.Errorf("score for %s out of bounds: %f", books[i].ID, rec.Score)
			}
		}
	}

	rec := testScorer().ScoreBook(&books[0], full, false)
	if rec.Score != 1 {
		t.Errorf("expected clamped score 1.0, got %f", rec.Score)
	}
}

func TestScoreBook_OfferBoostNeverDecreases(t *testing.T) {
	t.Parallel()

	prefs := examplePrefs()
	for _, base := range []Book{exampleBook(), {ID: "plain"}, {ID: "p", Formats: []BookFormat{FormatEbook}, AvgRating: 3, RatingsCount: 4}} {
		without := base
		with := base
		with.HasOffers = true

		a := testScorer().ScoreBook(&without, prefs, false)
		b := testScorer().ScoreBook(&with, prefs, false)
		if b.Score < a.Score {
			t.Errorf("offer boost decreased score for %s: %f -> %f", base.ID, a.Score, b.Score)
		}
	}
}

func TestScoreBook_DoesNotMutateBook(t *testing.T) {
	t.Parallel()

	book := exampleBook()
	before := exampleBook()
	testScorer().ScoreBook(&book, examplePrefs(), true)
	if !reflect.DeepEqual(book, before) {
		t.Error("ScoreBook mutated its input")
	}
}

func TestScoreBook_Reasons(t *testing.T) {
	t.Parallel()

	prefs := &UserPreferences{
		Categories: []CategoryAffinity{{AffinityScore: AffinityScore{ID: "fantasy", Name: "Fantasy", Score: 1, AverageRating: floatPtr(4.5)}}},
		Authors:    []AuthorAffinity{{AffinityScore: AffinityScore{ID: "a", Name: "Ursula", Score: 1}, BooksRead: 3}},
		Formats:    []FormatAffinity{{Format: FormatEbook, Score: 1}},
	}
	book := Book{
		ID:           "b",
		Title:        "Wizard",
		Categories:   []Ref{{ID: "fantasy", Name: "Fantasy"}},
		Authors:      []Ref{{ID: "a", Name: "Ursula"}},
		Formats:      []BookFormat{FormatEbook},
		AvgRating:    4.4,
		RatingsCount: 25,
		HasOffers:    true,
	}

	rec := testScorer().ScoreBook(&book, prefs, false)
	want := []string{
		"You rate Fantasy books highly",
		"You've read 3 books by Ursula",
		"Available as an ebook, your preferred format",
		"Highly rated: 4.4/5 from 25 readers",
	}
	if !reflect.DeepEqual(rec.Reasons, want) {
		t.Errorf("reasons = %q, want %q", rec.Reasons, want)
	}
}

func TestScoreBook_ReasonVariants(t *testing.T) {
	t.Parallel()

	prefs := &UserPreferences{
		Categories: []CategoryAffinity{{AffinityScore: AffinityScore{ID: "fantasy", Name: "Fantasy", Score: 1, AverageRating: floatPtr(3.5)}}},
		Authors:    []AuthorAffinity{{AffinityScore: AffinityScore{ID: "a", Name: "Ursula", Score: 1}, BooksRead: 2}},
	}
	book := Book{
		ID:           "b",
		Categories:   []Ref{{ID: "fantasy", Name: "Fantasy"}},
		Authors:      []Ref{{ID: "a", Name: "Ursula"}},
		AvgRating:    4.9,
		RatingsCount: 9,
		HasOffers:    true,
	}

	rec := testScorer().ScoreBook(&book, prefs, false)
	want := []string{
		"Matches your interest in Fantasy",
		"By Ursula, an author you enjoy",
		"Available now from partner stores",
	}
	if !reflect.DeepEqual(rec.Reasons, want) {
		t.Errorf("reasons = %q, want %q", rec.Reasons, want)
	}
}

func TestScoreBook_NoMatchReasons(t *testing.T) {
	t.Parallel()

	book := Book{ID: "b", AvgRating: 3.0, RatingsCount: 50}
	rec := testScorer().ScoreBook(&book, examplePrefs(), false)
	if len(rec.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", rec.Reasons)
	}
	for _, r := range rec.Reasons {
		if strings.TrimSpace(r) == "" {
			t.Error("empty reason")
		}
	}
}
