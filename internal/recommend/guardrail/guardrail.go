// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

// Package guardrail restricts book references in generated text to an
// allow-list of catalog books.
//
// Generated text refers to books with inline tags of the form
//
//	[[book:<id>]]
//
// Every function in this package is pure: the same text and allow-list
// always yield the same result, and applying a function twice is the same
// as applying it once.
package guardrail

import (
	"regexp"
	"strings"
)

// MaxAlternatives is the number of alternatives ExtractAlternatives returns at most.
const MaxAlternatives = 3

// referencePattern matches a book reference tag and captures the id.
var referencePattern = regexp.MustCompile(`\[\[book:([A-Za-z0-9_.\-]+)\]\]`)

// Candidate is a book that generated text is allowed to reference.
type Candidate struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
}

// AlternativeBook is an allow-listed book extracted from generated text.
type AlternativeBook struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Result is the outcome of ValidateBookInCatalog.
type Result struct {
	Passed            bool   `json:"passed"`
	Error             string `json:"error,omitempty"`
	SuggestedResponse string `json:"suggested_response,omitempty"`
}

const (
	errNotInCatalog     = "book is not part of the catalog context"
	errEmptyBookID      = "book id is empty"
	suggestedNotInScope = "I can only discuss books that are available in our catalog. Try asking about one of the recommended titles instead."
)

// Tag returns the reference tag for a book id.
func Tag(id string) string {
	return "[[book:" + id + "]]"
}

// ValidateBookInCatalog checks that id belongs to the allowed context.
func ValidateBookInCatalog(id string, allowed []string) Result {
	if strings.TrimSpace(id) == "" {
		return Result{Passed: false, Error: errEmptyBookID, SuggestedResponse: suggestedNotInScope}
	}
	for _, a := range allowed {
		if a == id {
			return Result{Passed: true}
		}
	}
	return Result{Passed: false, Error: errNotInCatalog, SuggestedResponse: suggestedNotInScope}
}

// References returns every referenced id in text, in order, with duplicates.
func References(text string) []string {
	matches := referencePattern.FindAllStringSubmatch(text, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return ids
}

// ExtractAlternatives returns up to MaxAlternatives allow-listed books
// referenced in text, deduplicated, in first-seen order. References to
// books outside candidates are dropped silently.
func ExtractAlternatives(text string, candidates []Candidate) []AlternativeBook {
	allowed := index(candidates)
	out := make([]AlternativeBook, 0, MaxAlternatives)
	seen := make(map[string]bool)

	for _, id := range References(text) {
		if len(out) == MaxAlternatives {
			break
		}
		c, ok := allowed[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, AlternativeBook{ID: c.ID, Title: c.Title})
	}
	return out
}

// Disallowed returns the distinct ids referenced in text that are not in
// candidates, in first-seen order.
func Disallowed(text string, candidates []Candidate) []string {
	allowed := index(candidates)
	var out []string
	seen := make(map[string]bool)
	for _, id := range References(text) {
		if _, ok := allowed[id]; ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Sanitize replaces allow-listed reference tags with the book title and
// removes all other tags, so no disallowed id reaches the reader.
func Sanitize(text string, candidates []Candidate) string {
	allowed := index(candidates)
	out := referencePattern.ReplaceAllStringFunc(text, func(tag string) string {
		id := referencePattern.FindStringSubmatch(tag)[1]
		if c, ok := allowed[id]; ok {
			return c.Title
		}
		return ""
	})
	return collapseSpaces(out)
}

func index(candidates []Candidate) map[string]Candidate {
	m := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		if c.ID == "" {
			continue
		}
		if _, ok := m[c.ID]; !ok {
			m[c.ID] = c
		}
	}
	return m
}

// collapseSpaces tidies the gaps left behind by removed tags.
func collapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
