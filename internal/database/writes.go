// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/bookwise/internal/recommend"
)

// ErrInvalidEntry is returned for writes with missing ids or unknown enums.
var ErrInvalidEntry = errors.New("invalid entry")

// UpsertBook inserts or replaces a catalog book together with its author
// and category links.
func (db *DB) UpsertBook(ctx context.Context, book *recommend.Book) error {
	if book.ID == "" || book.Title == "" {
		return fmt.Errorf("%w: book id and title are required", ErrInvalidEntry)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var year interface{}
		if book.PublishedYear > 0 {
			year = book.PublishedYear
		}
		var cover interface{}
		if book.CoverURL != "" {
			cover = book.CoverURL
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO books
				(id, title, formats, avg_rating, ratings_count, has_offers, published_year, cover_url, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			book.ID, book.Title, joinFormats(book.Formats), book.AvgRating, book.RatingsCount,
			book.HasOffers, year, cover, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to upsert book: %w", err)
		}
		if err := replaceLinks(ctx, tx, authorRefs, book.ID, book.Authors); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, categoryRefs, book.ID, book.Categories)
	})
	observe("upsert", "books", start, err)
	return err
}

// replaceLinks upserts refs and their links, then removes links that are no
// longer listed. Existing link keys are replaced in place rather than deleted
// and reinserted within the transaction.
func replaceLinks(ctx context.Context, tx *sql.Tx, kind refKind, bookID string, refs []recommend.Ref) error {
	keep := make([]string, 0, len(refs))
	for i, ref := range refs {
		if ref.ID == "" {
			return fmt.Errorf("%w: empty %s id", ErrInvalidEntry, kind.ref)
		}
		name := ref.Name
		if name == "" {
			name = ref.ID
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, name) VALUES (?, ?)`, kind.ref),
			ref.ID, name); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", kind.ref, err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT OR REPLACE INTO %s (book_id, %s, position) VALUES (?, ?, ?)`, kind.link, kind.refColumn),
			bookID, ref.ID, i); err != nil {
			return fmt.Errorf("failed to link %s: %w", kind.ref, err)
		}
		keep = append(keep, ref.ID)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE book_id = ?`, kind.link)
	args := []interface{}{bookID}
	if len(keep) > 0 {
		query += fmt.Sprintf(` AND %s NOT IN (%s)`, kind.refColumn, placeholders(len(keep)))
		args = append(args, stringArgs(keep)...)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to prune %s links: %w", kind.ref, err)
	}
	return nil
}

// UpsertLibraryEntry stores a shelf entry. Authors and categories on entry
// are ignored; they come from the catalog. A zero AddedAt is set to now and
// UpdatedAt is always set to now.
func (db *DB) UpsertLibraryEntry(ctx context.Context, userID string, entry *recommend.LibraryEntry) error {
	if userID == "" || entry.BookID == "" {
		return fmt.Errorf("%w: user id and book id are required", ErrInvalidEntry)
	}
	if !entry.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEntry, entry.Status)
	}
	if entry.Rating < 0 || entry.Rating > 5 {
		return fmt.Errorf("%w: rating %d out of range", ErrInvalidEntry, entry.Rating)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	added := entry.AddedAt
	if added.IsZero() {
		added = now
	}
	var rating interface{}
	if entry.Rating > 0 {
		rating = entry.Rating
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_books
			(user_id, book_id, status, rating, rated_at, finished_at, formats, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, entry.BookID, string(entry.Status), rating,
		nullableTime(entry.RatedAt), nullableTime(entry.FinishedAt),
		joinFormats(entry.Formats), added.UTC(), now)
	observe("upsert", "user_books", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert library entry: %w", err)
	}
	return nil
}

// RemoveLibraryEntry deletes a shelf entry. Removing a missing entry is not
// an error.
func (db *DB) RemoveLibraryEntry(ctx context.Context, userID, bookID string) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `DELETE FROM user_books WHERE user_id = ? AND book_id = ?`, userID, bookID)
	observe("delete", "user_books", start, err)
	if err != nil {
		return fmt.Errorf("failed to remove library entry: %w", err)
	}
	return nil
}

// RecordPurchase appends a purchase and returns its id.
func (db *DB) RecordPurchase(ctx context.Context, userID, bookID string, format recommend.BookFormat, at time.Time) (string, error) {
	if userID == "" || bookID == "" {
		return "", fmt.Errorf("%w: user id and book id are required", ErrInvalidEntry)
	}
	if !format.Valid() {
		return "", fmt.Errorf("%w: unknown format %q", ErrInvalidEntry, format)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	id := uuid.New().String()
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO purchases (id, user_id, book_id, format, purchased_at) VALUES (?, ?, ?, ?, ?)`,
		id, userID, bookID, string(format), at.UTC())
	observe("insert", "purchases", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to record purchase: %w", err)
	}
	return id, nil
}

func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback() // the original error is more useful
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
