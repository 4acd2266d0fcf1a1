// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/bookwise/internal/recommend"
)

// refKind selects the link table for loadRefs.
type refKind struct {
	link      string
	ref       string
	refColumn string
}

var (
	authorRefs   = refKind{link: "book_authors", ref: "authors", refColumn: "author_id"}
	categoryRefs = refKind{link: "book_categories", ref: "categories", refColumn: "category_id"}
)

// loadRefs returns the ordered authors or categories of each book.
func (db *DB) loadRefs(ctx context.Context, kind refKind, bookIDs []string) (map[string][]recommend.Ref, error) {
	refs := make(map[string][]recommend.Ref, len(bookIDs))
	if len(bookIDs) == 0 {
		return refs, nil
	}

	query := fmt.Sprintf(`
		SELECT l.book_id, r.id, r.name
		FROM %s l
		JOIN %s r ON r.id = l.%s
		WHERE l.book_id IN (%s)
		ORDER BY l.book_id, l.position`,
		kind.link, kind.ref, kind.refColumn, placeholders(len(bookIDs)))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, stringArgs(bookIDs)...)
	if err != nil {
		observe("select", kind.link, start, err)
		return nil, fmt.Errorf("failed to query %s: %w", kind.ref, err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var bookID string
		var ref recommend.Ref
		if err := rows.Scan(&bookID, &ref.ID, &ref.Name); err != nil {
			observe("select", kind.link, start, err)
			return nil, fmt.Errorf("failed to scan %s: %w", kind.ref, err)
		}
		refs[bookID] = append(refs[bookID], ref)
	}
	err = rows.Err()
	observe("select", kind.link, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", kind.ref, err)
	}
	return refs, nil
}

// parseFormats splits a stored format list, dropping unknown values.
func parseFormats(stored string) []recommend.BookFormat {
	if stored == "" {
		return nil
	}
	parts := strings.Split(stored, ",")
	formats := make([]recommend.BookFormat, 0, len(parts))
	for _, p := range parts {
		if f := recommend.BookFormat(strings.TrimSpace(p)); f.Valid() {
			formats = append(formats, f)
		}
	}
	return formats
}

func joinFormats(formats []recommend.BookFormat) string {
	parts := make([]string, 0, len(formats))
	for _, f := range formats {
		if f.Valid() {
			parts = append(parts, string(f))
		}
	}
	return strings.Join(parts, ",")
}
