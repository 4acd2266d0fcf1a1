// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

/*
schema.go - Database Schema

Tables:
  - books: catalog entries with popularity signals and a comma-separated
    list of available formats
  - authors, categories: reference data
  - book_authors, book_categories: ordered many-to-many links
  - user_books: one row per (user, book) shelf entry
  - purchases: purchase history, one row per purchased format

All timestamps are TIMESTAMP in UTC. TIMESTAMPTZ would need the ICU
extension, which is not loaded.

Only insert-only tables carry secondary indexes.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS books (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			formats TEXT NOT NULL DEFAULT '',
			avg_rating DOUBLE NOT NULL DEFAULT 0,
			ratings_count INTEGER NOT NULL DEFAULT 0,
			has_offers BOOLEAN NOT NULL DEFAULT FALSE,
			published_year INTEGER,
			cover_url TEXT,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS book_authors (
			book_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (book_id, author_id)
		)`,
		`CREATE TABLE IF NOT EXISTS book_categories (
			book_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (book_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_books (
			user_id TEXT NOT NULL,
			book_id TEXT NOT NULL,
			status TEXT NOT NULL,
			rating INTEGER,
			rated_at TIMESTAMP,
			finished_at TIMESTAMP,
			formats TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, book_id)
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			book_id TEXT NOT NULL,
			format TEXT NOT NULL,
			purchased_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id)`,
	}
}
