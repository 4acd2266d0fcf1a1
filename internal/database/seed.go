// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/bookwise/internal/logging"
	"github.com/tomtom215/bookwise/internal/recommend"
)

// DemoUserID owns the seeded demo shelf.
const DemoUserID = "demo-reader"

var (
	catFantasy   = recommend.Ref{ID: "fantasy", Name: "Fantasy"}
	catSciFi     = recommend.Ref{ID: "science-fiction", Name: "Science Fiction"}
	catMystery   = recommend.Ref{ID: "mystery", Name: "Mystery"}
	catHistory   = recommend.Ref{ID: "history", Name: "History"}
	catCooking   = recommend.Ref{ID: "cooking", Name: "Cooking"}
	catHorror    = recommend.Ref{ID: "horror", Name: "Horror"}
	catBiography = recommend.Ref{ID: "biography", Name: "Biography"}
)

func demoBooks() []recommend.Book {
	all := []recommend.BookFormat{recommend.FormatPaper, recommend.FormatEbook, recommend.FormatAudiobook}
	printed := []recommend.BookFormat{recommend.FormatPaper, recommend.FormatEbook}
	audio := []recommend.BookFormat{recommend.FormatAudiobook}

	author := func(id, name string) []recommend.Ref { return []recommend.Ref{{ID: id, Name: name}} }

	return []recommend.Book{
		{ID: "bk-silver-road", Title: "The Silver Road", Authors: author("a-mara-quill", "Mara Quill"), Categories: []recommend.Ref{catFantasy}, Formats: all, AvgRating: 4.4, RatingsCount: 12800, HasOffers: true, PublishedYear: 2019},
		{ID: "bk-dragon-gate", Title: "Dragon Gate", Authors: author("a-mara-quill", "Mara Quill"), Categories: []recommend.Ref{catFantasy}, Formats: printed, AvgRating: 4.2, RatingsCount: 9100, PublishedYear: 2021},
		{ID: "bk-ember-crown", Title: "The Ember Crown", Authors: author("a-ilse-varga", "Ilse Varga"), Categories: []recommend.Ref{catFantasy}, Formats: all, AvgRating: 4.0, RatingsCount: 15400, HasOffers: true, PublishedYear: 2017},
		{ID: "bk-tidebound", Title: "Tidebound", Authors: author("a-ilse-varga", "Ilse Varga"), Categories: []recommend.Ref{catFantasy, catHistory}, Formats: audio, AvgRating: 3.9, RatingsCount: 4300, PublishedYear: 2022},
		{ID: "bk-orbital-dusk", Title: "Orbital Dusk", Authors: author("a-ren-okafor", "Ren Okafor"), Categories: []recommend.Ref{catSciFi}, Formats: all, AvgRating: 4.3, RatingsCount: 22100, HasOffers: true, PublishedYear: 2018},
		{ID: "bk-quiet-engines", Title: "Quiet Engines", Authors: author("a-ren-okafor", "Ren Okafor"), Categories: []recommend.Ref{catSciFi}, Formats: printed, AvgRating: 3.8, RatingsCount: 6700, PublishedYear: 2020},
		{ID: "bk-glass-witness", Title: "The Glass Witness", Authors: author("a-tobias-lund", "Tobias Lund"), Categories: []recommend.Ref{catMystery}, Formats: all, AvgRating: 4.1, RatingsCount: 18300, HasOffers: true, PublishedYear: 2016},
		{ID: "bk-harbor-lights", Title: "Harbor Lights", Authors: author("a-tobias-lund", "Tobias Lund"), Categories: []recommend.Ref{catMystery}, Formats: printed, AvgRating: 3.7, RatingsCount: 5200, PublishedYear: 2023},
		{ID: "bk-iron-century", Title: "The Iron Century", Authors: author("a-helena-brandt", "Helena Brandt"), Categories: []recommend.Ref{catHistory}, Formats: printed, AvgRating: 4.5, RatingsCount: 7600, PublishedYear: 2015},
		{ID: "bk-salt-and-fire", Title: "Salt and Fire", Authors: author("a-jonas-petit", "Jonas Petit"), Categories: []recommend.Ref{catCooking}, Formats: []recommend.BookFormat{recommend.FormatPaper}, AvgRating: 4.6, RatingsCount: 3100, HasOffers: true, PublishedYear: 2020},
		{ID: "bk-hollow-house", Title: "The Hollow House", Authors: author("a-vera-kell", "Vera Kell"), Categories: []recommend.Ref{catHorror}, Formats: all, AvgRating: 3.6, RatingsCount: 11900, PublishedYear: 2019},
		{ID: "bk-night-choir", Title: "Night Choir", Authors: author("a-vera-kell", "Vera Kell"), Categories: []recommend.Ref{catHorror, catMystery}, Formats: printed, AvgRating: 3.9, RatingsCount: 8800, PublishedYear: 2021},
		{ID: "bk-first-light", Title: "First Light: A Life in Science", Authors: author("a-helena-brandt", "Helena Brandt"), Categories: []recommend.Ref{catBiography, catSciFi}, Formats: all, AvgRating: 4.2, RatingsCount: 2900, PublishedYear: 2022},
		{ID: "bk-lantern-sea", Title: "The Lantern Sea", Authors: []recommend.Ref{{ID: "a-mara-quill", Name: "Mara Quill"}, {ID: "a-ilse-varga", Name: "Ilse Varga"}}, Categories: []recommend.Ref{catFantasy}, Formats: all, AvgRating: 4.3, RatingsCount: 6100, HasOffers: true, PublishedYear: 2024},
	}
}

type demoShelfEntry struct {
	bookID  string
	status  recommend.ReadingStatus
	rating  int
	daysAgo int
	formats []recommend.BookFormat
}

func demoShelf() []demoShelfEntry {
	ebook := []recommend.BookFormat{recommend.FormatEbook}
	return []demoShelfEntry{
		{"bk-silver-road", recommend.StatusRead, 5, 12, ebook},
		{"bk-ember-crown", recommend.StatusRead, 4, 40, ebook},
		{"bk-orbital-dusk", recommend.StatusRead, 4, 75, ebook},
		{"bk-hollow-house", recommend.StatusRead, 1, 28, []recommend.BookFormat{recommend.FormatPaper}},
		{"bk-glass-witness", recommend.StatusRead, 3, 200, ebook},
		{"bk-tidebound", recommend.StatusReading, 0, 3, []recommend.BookFormat{recommend.FormatAudiobook}},
		{"bk-iron-century", recommend.StatusWantToRead, 0, 20, nil},
	}
}

// SeedDemoData fills an empty catalog with demo books and a shelf for
// DemoUserID. It does nothing when books already exist.
func (db *DB) SeedDemoData(ctx context.Context) error {
	n, err := db.CountBooks(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Debug().Int("books", n).Msg("Catalog not empty, skipping demo seed")
		return nil
	}

	books := demoBooks()
	for i := range books {
		if err := db.UpsertBook(ctx, &books[i]); err != nil {
			return fmt.Errorf("seed book %s: %w", books[i].ID, err)
		}
	}

	now := time.Now().UTC()
	for _, s := range demoShelf() {
		at := now.AddDate(0, 0, -s.daysAgo)
		entry := recommend.LibraryEntry{
			BookID:  s.bookID,
			Status:  s.status,
			Rating:  s.rating,
			AddedAt: at,
			Formats: s.formats,
		}
		if s.rating > 0 {
			entry.RatedAt = &at
		}
		if s.status == recommend.StatusRead {
			entry.FinishedAt = &at
		}
		if err := db.UpsertLibraryEntry(ctx, DemoUserID, &entry); err != nil {
			return fmt.Errorf("seed shelf %s: %w", s.bookID, err)
		}
	}

	for _, p := range []struct {
		bookID string
		format recommend.BookFormat
	}{
		{"bk-silver-road", recommend.FormatEbook},
		{"bk-ember-crown", recommend.FormatEbook},
		{"bk-tidebound", recommend.FormatAudiobook},
	} {
		if _, err := db.RecordPurchase(ctx, DemoUserID, p.bookID, p.format, now.AddDate(0, 0, -7)); err != nil {
			return fmt.Errorf("seed purchase %s: %w", p.bookID, err)
		}
	}

	logging.Info().
		Int("books", len(books)).
		Str("user_id", DemoUserID).
		Msg("Seeded demo catalog")
	return nil
}
