// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

/*
Package database stores the book catalog, user shelves and purchases in DuckDB.

*DB implements recommend.DataProvider, so the engine reads everything it
needs through it:

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	engine.SetDataProvider(db)

Writes (UpsertBook, UpsertLibraryEntry, RecordPurchase) exist for ingestion
and for the demo seed enabled by database.seed_demo_data.

Every query records its latency in the duckdb_query_duration_seconds
histogram, labeled by operation and table. Queries without a caller deadline
get a 30 second timeout.

Library versions are derived from the shelf row count, the newest
updated_at and the purchase count, so any write to a user's shelf or
purchase history produces a new version and invalidates cached
preferences.
*/
package database
