// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import "fmt"

// reasons builds the ordered explanation list for a scored book:
// category, author, preferred format, high rating, availability.
func (s *Scorer) reasons(book *Book, category *CategoryAffinity, author *AuthorAffinity, format BookFormat) []string {
	out := make([]string, 0, s.cfg.MaxReasonsPerBook)
	add := func(r string) {
		if len(out) < s.cfg.MaxReasonsPerBook {
			out = append(out, r)
		}
	}

	if category != nil {
		if category.AverageRating != nil && *category.AverageRating >= s.cfg.LovedCategoryRating {
			add(fmt.Sprintf("You rate %s books highly", category.Name))
		} else {
			add(fmt.Sprintf("Matches your interest in %s", category.Name))
		}
	}

	if author != nil {
		if author.BooksRead > s.cfg.LoyalAuthorBooks {
			add(fmt.Sprintf("You've read %d books by %s", author.BooksRead, author.Name))
		} else {
			add(fmt.Sprintf("By %s, an author you enjoy", author.Name))
		}
	}

	if format != "" {
		add(fmt.Sprintf("Available as %s, your preferred format", FormatLabel(format)))
	}

	if book.AvgRating >= s.cfg.HighRatingThreshold && book.RatingsCount >= s.cfg.HighRatingMinCount {
		add(fmt.Sprintf("Highly rated: %.1f/5 from %d readers", book.AvgRating, book.RatingsCount))
	}

	if book.HasOffers {
		add("Available now from partner stores")
	}

	return out
}

// FormatLabel returns the reader-facing name of a format.
func FormatLabel(f BookFormat) string {
	switch f {
	case FormatPaper:
		return "a print edition"
	case FormatEbook:
		return "an ebook"
	case FormatAudiobook:
		return "an audiobook"
	default:
		return string(f)
	}
}
