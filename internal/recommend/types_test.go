// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import "testing"

func TestBookFormat_Valid(t *testing.T) {
	for _, f := range AllFormats {
		if !f.Valid() {
			t.Errorf("%q should be valid", f)
		}
	}
	for _, f := range []BookFormat{"", "scroll", "PAPER"} {
		if f.Valid() {
			t.Errorf("%q should be invalid", f)
		}
	}
}

func TestReadingStatus_Valid(t *testing.T) {
	for _, s := range []ReadingStatus{StatusRead, StatusReading, StatusWantToRead} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if ReadingStatus("dnf").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestLibraryEntry_IsRated(t *testing.T) {
	tests := []struct {
		rating int
		want   bool
	}{
		{0, false},
		{1, true},
		{5, true},
		{6, false},
		{-1, false},
	}
	for _, tt := range tests {
		e := LibraryEntry{Rating: tt.rating}
		if got := e.IsRated(); got != tt.want {
			t.Errorf("IsRated() with rating %d = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestBook_OffersFormat(t *testing.T) {
	b := Book{Formats: []BookFormat{FormatPaper, FormatAudiobook}}
	if !b.OffersFormat(FormatAudiobook) {
		t.Error("expected audiobook to be offered")
	}
	if b.OffersFormat(FormatEbook) {
		t.Error("ebook should not be offered")
	}
}

func TestAffinity_ScoredEntity(t *testing.T) {
	entities := []ScoredEntity{
		CategoryAffinity{AffinityScore: AffinityScore{ID: "fantasy", Score: 0.9}},
		AuthorAffinity{AffinityScore: AffinityScore{ID: "author-a", Score: 0.5}},
		FormatAffinity{Format: FormatEbook, Score: 0.2},
	}
	wantKinds := []AffinityKind{KindCategory, KindAuthor, KindFormat}
	wantKeys := []string{"fantasy", "author-a", "ebook"}

	for i, e := range entities {
		if e.Kind() != wantKinds[i] || e.Key() != wantKeys[i] {
			t.Errorf("entity %d: kind=%s key=%s", i, e.Kind(), e.Key())
		}
	}
	if entities[0].Value() != 0.9 {
		t.Errorf("unexpected value %f", entities[0].Value())
	}
}

func TestFormatLabel(t *testing.T) {
	if FormatLabel(FormatEbook) != "an ebook" || FormatLabel("vinyl") != "vinyl" {
		t.Error("unexpected format labels")
	}
}
