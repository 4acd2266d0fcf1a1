// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/bookwise/internal/recommend"
)

const bookColumns = `b.id, b.title, b.formats, b.avg_rating, b.ratings_count, b.has_offers, b.published_year, b.cover_url`

// popularityOrder is the catalog-wide ranking used for candidate pools and
// the fallback list. The id breaks ties so results are stable.
const popularityOrder = `ORDER BY b.ratings_count DESC, b.avg_rating DESC, b.id`

// GetCandidatePool returns at most limit books matching filter, most
// popular first.
func (db *DB) GetCandidatePool(ctx context.Context, filter recommend.CandidateFilter, limit int) ([]recommend.Book, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Format != "" {
		conditions = append(conditions, `(',' || b.formats || ',') LIKE ?`)
		args = append(args, "%,"+string(filter.Format)+",%")
	}
	if filter.CategoryID != "" {
		conditions = append(conditions,
			`EXISTS (SELECT 1 FROM book_categories bc WHERE bc.book_id = b.id AND bc.category_id = ?)`)
		args = append(args, filter.CategoryID)
	}

	query := "SELECT " + bookColumns + " FROM books b"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " " + popularityOrder + " LIMIT ?"
	args = append(args, limit)

	return db.queryBooks(ctx, query, args...)
}

// GetPopularBooks returns at most limit books ordered by ratings count then
// average rating.
func (db *DB) GetPopularBooks(ctx context.Context, limit int) ([]recommend.Book, error) {
	return db.GetCandidatePool(ctx, recommend.CandidateFilter{}, limit)
}

// GetBooks returns the books with the given ids in request order. Unknown
// ids are omitted.
func (db *DB) GetBooks(ctx context.Context, ids []string) ([]recommend.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := "SELECT " + bookColumns + " FROM books b WHERE b.id IN (" + placeholders(len(ids)) + ")"
	found, err := db.queryBooks(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]recommend.Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	books := make([]recommend.Book, 0, len(found))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok && !seen[id] {
			books = append(books, b)
			seen[id] = true
		}
	}
	return books, nil
}

// CountBooks returns the catalog size.
func (db *DB) CountBooks(ctx context.Context) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int64
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&n)
	observe("count", "books", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return int(n), nil
}

func (db *DB) queryBooks(ctx context.Context, query string, args ...interface{}) ([]recommend.Book, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		observe("select", "books", start, err)
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer closeQuietly(rows)

	var books []recommend.Book
	var ids []string
	for rows.Next() {
		var (
			b       recommend.Book
			formats string
			year    sql.NullInt64
			cover   sql.NullString
			count   int64
		)
		if err := rows.Scan(&b.ID, &b.Title, &formats, &b.AvgRating, &count, &b.HasOffers, &year, &cover); err != nil {
			observe("select", "books", start, err)
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		b.Formats = parseFormats(formats)
		b.RatingsCount = int(count)
		if year.Valid {
			b.PublishedYear = int(year.Int64)
		}
		b.CoverURL = cover.String
		books = append(books, b)
		ids = append(ids, b.ID)
	}
	err = rows.Err()
	observe("select", "books", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}

	authors, err := db.loadRefs(ctx, authorRefs, ids)
	if err != nil {
		return nil, err
	}
	categories, err := db.loadRefs(ctx, categoryRefs, ids)
	if err != nil {
		return nil, err
	}
	for i := range books {
		books[i].Authors = authors[books[i].ID]
		books[i].Categories = categories[books[i].ID]
	}
	return books, nil
}
