// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/bookwise/internal/recommend"
)

// GetUserLibrary returns every shelf entry of the user with the book's
// authors, categories and published formats attached. The formats stored on
// the shelf row are used only for books missing from the catalog.
func (db *DB) GetUserLibrary(ctx context.Context, userID string) ([]recommend.LibraryEntry, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query := `
		SELECT ub.book_id, ub.status, ub.rating, ub.rated_at, ub.finished_at,
			COALESCE(b.formats, ub.formats), ub.added_at, ub.updated_at
		FROM user_books ub
		LEFT JOIN books b ON b.id = ub.book_id
		WHERE ub.user_id = ?
		ORDER BY ub.added_at, ub.book_id`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		observe("select", "user_books", start, err)
		return nil, fmt.Errorf("failed to query user library: %w", err)
	}
	defer closeQuietly(rows)

	var entries []recommend.LibraryEntry
	var bookIDs []string
	for rows.Next() {
		var (
			entry      recommend.LibraryEntry
			status     string
			rating     sql.NullInt64
			ratedAt    sql.NullTime
			finishedAt sql.NullTime
			formats    string
		)
		if err := rows.Scan(&entry.BookID, &status, &rating, &ratedAt, &finishedAt,
			&formats, &entry.AddedAt, &entry.UpdatedAt); err != nil {
			observe("select", "user_books", start, err)
			return nil, fmt.Errorf("failed to scan library entry: %w", err)
		}
		entry.Status = recommend.ReadingStatus(status)
		if rating.Valid {
			entry.Rating = int(rating.Int64)
		}
		if ratedAt.Valid {
			t := ratedAt.Time.UTC()
			entry.RatedAt = &t
		}
		if finishedAt.Valid {
			t := finishedAt.Time.UTC()
			entry.FinishedAt = &t
		}
		entry.AddedAt = entry.AddedAt.UTC()
		entry.UpdatedAt = entry.UpdatedAt.UTC()
		entry.Formats = parseFormats(formats)

		entries = append(entries, entry)
		bookIDs = append(bookIDs, entry.BookID)
	}
	err = rows.Err()
	observe("select", "user_books", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to read user library: %w", err)
	}

	authors, err := db.loadRefs(ctx, authorRefs, bookIDs)
	if err != nil {
		return nil, err
	}
	categories, err := db.loadRefs(ctx, categoryRefs, bookIDs)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Authors = authors[entries[i].BookID]
		entries[i].Categories = categories[entries[i].BookID]
	}
	return entries, nil
}

// GetReadBookIDs returns the ids of books on the user's read shelf.
func (db *DB) GetReadBookIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT book_id FROM user_books WHERE user_id = ? AND status = ? ORDER BY book_id`,
		userID, string(recommend.StatusRead))
	if err != nil {
		observe("select", "user_books", start, err)
		return nil, fmt.Errorf("failed to query read books: %w", err)
	}
	defer closeQuietly(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			observe("select", "user_books", start, err)
			return nil, fmt.Errorf("failed to scan read book: %w", err)
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	observe("select", "user_books", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to read read books: %w", err)
	}
	return ids, nil
}

// GetLibraryVersion returns a token that changes whenever the user's shelf
// or purchases change: entry count, latest update and purchase count.
func (db *DB) GetLibraryVersion(ctx context.Context, userID string) (string, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query := `
		SELECT
			(SELECT COUNT(*) FROM user_books WHERE user_id = ?),
			(SELECT MAX(updated_at) FROM user_books WHERE user_id = ?),
			(SELECT COUNT(*) FROM purchases WHERE user_id = ?)`

	var (
		entries   int64
		updated   sql.NullTime
		purchases int64
	)
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, query, userID, userID, userID).Scan(&entries, &updated, &purchases)
	observe("select", "user_books", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to query library version: %w", err)
	}

	var updatedNanos int64
	if updated.Valid {
		updatedNanos = updated.Time.UnixNano()
	}
	return fmt.Sprintf("%d-%d-%d", entries, updatedNanos, purchases), nil
}

// GetPurchaseFormatCounts returns purchase counts per known format.
func (db *DB) GetPurchaseFormatCounts(ctx context.Context, userID string) ([]recommend.PurchaseFormatCount, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT format, COUNT(*)
		FROM purchases
		WHERE user_id = ?
		GROUP BY format
		ORDER BY format`, userID)
	if err != nil {
		observe("select", "purchases", start, err)
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer closeQuietly(rows)

	var counts []recommend.PurchaseFormatCount
	for rows.Next() {
		var format string
		var count int64
		if err := rows.Scan(&format, &count); err != nil {
			observe("select", "purchases", start, err)
			return nil, fmt.Errorf("failed to scan purchase count: %w", err)
		}
		if f := recommend.BookFormat(format); f.Valid() {
			counts = append(counts, recommend.PurchaseFormatCount{Format: f, Count: int(count)})
		}
	}
	err = rows.Err()
	observe("select", "purchases", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to read purchases: %w", err)
	}
	return counts, nil
}
