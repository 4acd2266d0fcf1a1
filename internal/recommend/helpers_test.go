// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func daysAgo(n int) time.Time {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func cat(id string) Ref    { return Ref{ID: id, Name: id} }
func author(id string) Ref { return Ref{ID: id, Name: id} }

// rated builds a rated library entry.
func rated(bookID string, status ReadingStatus, rating, age int, cats []Ref, authors []Ref, formats ...BookFormat) LibraryEntry {
	t := daysAgo(age)
	return LibraryEntry{
		BookID:     bookID,
		Status:     status,
		Rating:     rating,
		RatedAt:    timePtr(t),
		AddedAt:    t,
		UpdatedAt:  t,
		Categories: cats,
		Authors:    authors,
		Formats:    formats,
	}
}

// mockDataProvider is an in-memory DataProvider.
type mockDataProvider struct {
	mu        sync.Mutex
	library   map[string][]LibraryEntry
	purchases map[string][]PurchaseFormatCount
	catalog   []Book
	versions  map[string]string

	libraryCalls int
	err          error
}

func newMockDataProvider() *mockDataProvider {
	return &mockDataProvider{
		library:   make(map[string][]LibraryEntry),
		purchases: make(map[string][]PurchaseFormatCount),
		versions:  make(map[string]string),
	}
}

func (m *mockDataProvider) GetUserLibrary(_ context.Context, userID string) ([]LibraryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.libraryCalls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]LibraryEntry(nil), m.library[userID]...), nil
}

func (m *mockDataProvider) GetReadBookIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var ids []string
	for _, e := range m.library[userID] {
		if e.Status == StatusRead {
			ids = append(ids, e.BookID)
		}
	}
	return ids, nil
}

func (m *mockDataProvider) GetLibraryVersion(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if v, ok := m.versions[userID]; ok {
		return v, nil
	}
	return fmt.Sprintf("n%d", len(m.library[userID])), nil
}

func (m *mockDataProvider) GetPurchaseFormatCounts(_ context.Context, userID string) ([]PurchaseFormatCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.purchases[userID], nil
}

// GetCandidatePool returns catalog order, which the tests treat as popularity order.
func (m *mockDataProvider) GetCandidatePool(_ context.Context, filter CandidateFilter, limit int) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []Book
	for _, b := range m.catalog {
		if filter.Format != "" && !b.OffersFormat(filter.Format) {
			continue
		}
		if filter.CategoryID != "" && !hasCategory(b, filter.CategoryID) {
			continue
		}
		out = append(out, b)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockDataProvider) GetPopularBooks(_ context.Context, limit int) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := append([]Book(nil), m.catalog...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RatingsCount != out[j].RatingsCount {
			return out[i].RatingsCount > out[j].RatingsCount
		}
		return out[i].AvgRating > out[j].AvgRating
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockDataProvider) GetBooks(_ context.Context, ids []string) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []Book
	for _, id := range ids {
		for _, b := range m.catalog {
			if b.ID == id {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func hasCategory(b Book, id string) bool {
	for _, c := range b.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// mockNarrator returns canned text or an error.
type mockNarrator struct {
	text string
	err  error

	lastExplain *ExplainPrompt
	lastCompare *ComparePrompt
}

func (n *mockNarrator) Explain(_ context.Context, p *ExplainPrompt) (string, error) {
	n.lastExplain = p
	return n.text, n.err
}

func (n *mockNarrator) Compare(_ context.Context, p *ComparePrompt) (string, error) {
	n.lastCompare = p
	return n.text, n.err
}

// mockOffers marks the configured ids as having offers.
type mockOffers struct {
	available map[string]bool
	err       error
}

func (o *mockOffers) Annotate(_ context.Context, books []Book) error {
	if o.err != nil {
		return o.err
	}
	for i := range books {
		books[i].HasOffers = o.available[books[i].ID]
	}
	return nil
}

var errBackend = errors.New("backend unavailable")

// newTestEngine creates an engine with a fixed clock.
func newTestEngine(dp DataProvider) *Engine {
	engine, err := NewEngine(DefaultConfig(), testLogger())
	if err != nil {
		panic(err)
	}
	engine.SetClock(func() time.Time { return testNow })
	if dp != nil {
		engine.SetDataProvider(dp)
	}
	return engine
}

// fantasyReader returns a library of a user who loves fantasy by author-a.
func fantasyReader() []LibraryEntry {
	fantasy := []Ref{{ID: "fantasy", Name: "Fantasy"}}
	a := []Ref{{ID: "author-a", Name: "Author A"}}
	b := []Ref{{ID: "author-b", Name: "Author B"}}
	horror := []Ref{{ID: "horror", Name: "Horror"}}
	return []LibraryEntry{
		rated("read-1", StatusRead, 5, 3, fantasy, a, FormatPaper),
		rated("read-2", StatusRead, 5, 5, fantasy, a, FormatPaper),
		rated("read-3", StatusRead, 4, 10, fantasy, a, FormatEbook),
		rated("read-4", StatusRead, 4, 12, fantasy, b, FormatPaper),
		rated("read-5", StatusRead, 1, 20, horror, b, FormatPaper),
		rated("read-6", StatusRead, 2, 25, horror, b, FormatPaper),
	}
}

// testCatalog returns books in popularity order.
func testCatalog() []Book {
	return []Book{
		{ID: "read-1", Title: "Already Read", Categories: []Ref{{ID: "fantasy", Name: "Fantasy"}}, Authors: []Ref{{ID: "author-a", Name: "Author A"}}, Formats: []BookFormat{FormatPaper}, AvgRating: 4.8, RatingsCount: 5000},
		{ID: "horror-1", Title: "Dark House", Categories: []Ref{{ID: "horror", Name: "Horror"}}, Authors: []Ref{{ID: "author-x", Name: "Author X"}}, Formats: []BookFormat{FormatPaper}, AvgRating: 4.5, RatingsCount: 3000},
		{ID: "fantasy-1", Title: "Dragon Gate", Categories: []Ref{{ID: "fantasy", Name: "Fantasy"}}, Authors: []Ref{{ID: "author-a", Name: "Author A"}}, Formats: []BookFormat{FormatPaper, FormatEbook}, AvgRating: 4.6, RatingsCount: 1200},
		{ID: "fantasy-2", Title: "Silver Road", Categories: []Ref{{ID: "fantasy", Name: "Fantasy"}}, Authors: []Ref{{ID: "author-z", Name: "Author Z"}}, Formats: []BookFormat{FormatAudiobook}, AvgRating: 3.9, RatingsCount: 800},
		{ID: "cook-1", Title: "Kitchen Basics", Categories: []Ref{{ID: "cooking", Name: "Cooking"}}, Authors: []Ref{{ID: "author-c", Name: "Author C"}}, Formats: []BookFormat{FormatPaper}, AvgRating: 4.0, RatingsCount: 400},
		{ID: "mixed-1", Title: "Haunted Kingdom", Categories: []Ref{{ID: "fantasy", Name: "Fantasy"}, {ID: "horror", Name: "Horror"}, {ID: "romance", Name: "Romance"}}, Authors: []Ref{{ID: "author-b", Name: "Author B"}}, Formats: []BookFormat{FormatEbook}, AvgRating: 4.1, RatingsCount: 150},
	}
}
