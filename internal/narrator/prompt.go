// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package narrator

import (
	"fmt"
	"strings"

	"github.com/tomtom215/bookwise/internal/recommend"
	"github.com/tomtom215/bookwise/internal/recommend/guardrail"
)

const systemPrompt = `You are a friendly bookseller explaining reading recommendations.
Only mention books from the CANDIDATES list. Refer to every book you mention
with its tag, for example [[book:some-id]], and never invent titles, authors
or tags. Keep the answer under 120 words and do not use lists or headings.`

func explainMessage(p *recommend.ExplainPrompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explain why %s %s suits this reader.\n\n", p.Book.Title, guardrail.Tag(p.Book.ID))
	writeBook(&b, &p.Book)
	writeTaste(&b, p.TopCategories, p.TopAuthors, p.UserContext)
	writeCandidates(&b, p.Candidates)
	b.WriteString("\nYou may suggest up to three other candidates the reader might also enjoy.")
	return b.String()
}

func compareMessage(p *recommend.ComparePrompt) string {
	var b strings.Builder
	b.WriteString("Compare these books for this reader")
	if p.BestFitID != "" {
		fmt.Fprintf(&b, " and explain why %s is the best fit", guardrail.Tag(p.BestFitID))
	}
	b.WriteString(".\n\n")
	for i := range p.Books {
		writeBook(&b, &p.Books[i])
	}
	writeTaste(&b, p.TopCategories, p.TopAuthors, p.UserContext)
	writeCandidates(&b, p.Candidates)
	return b.String()
}

func writeBook(b *strings.Builder, book *recommend.NarrationBook) {
	fmt.Fprintf(b, "BOOK %s: %q", guardrail.Tag(book.ID), book.Title)
	if len(book.Authors) > 0 {
		fmt.Fprintf(b, " by %s", strings.Join(book.Authors, ", "))
	}
	fmt.Fprintf(b, " (match score %.2f)\n", book.Score)
	for _, r := range book.Reasons {
		fmt.Fprintf(b, "  - %s\n", r)
	}
}

func writeTaste(b *strings.Builder, categories, authors []string, userContext string) {
	if len(categories) > 0 {
		fmt.Fprintf(b, "Favorite categories: %s\n", strings.Join(categories, ", "))
	}
	if len(authors) > 0 {
		fmt.Fprintf(b, "Favorite authors: %s\n", strings.Join(authors, ", "))
	}
	if userContext != "" {
		fmt.Fprintf(b, "Reader says: %q\n", userContext)
	}
}

func writeCandidates(b *strings.Builder, candidates []guardrail.Candidate) {
	b.WriteString("\nCANDIDATES:\n")
	for _, c := range candidates {
		fmt.Fprintf(b, "%s %q", guardrail.Tag(c.ID), c.Title)
		if c.Author != "" {
			fmt.Fprintf(b, " by %s", c.Author)
		}
		b.WriteByte('\n')
	}
}
