// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

// Package recommend implements the preference-aggregation and recommendation
// scoring engine for book discovery.
//
// # Architecture
//
// A request flows through four stages:
//
//   - Aggregator: turns a user's library (reading status, ratings, dates) and
//     purchase history into normalized category, author and format affinities,
//     reading statistics, negative signals and a data-quality confidence.
//   - Candidate selection: pulls a bounded, popularity-ordered pool from the
//     catalog and drops books the user has read or that are dominated by
//     categories the user rates poorly.
//   - Scoring: a fixed weighted sum of category, author, format and popularity
//     terms plus an availability boost, with human-readable reasons.
//   - Fallback: popularity ranking for users without enough signal.
//
// Explanations and comparisons reuse the same deterministic scoring and pass
// any narrative text through the guardrail subpackage, which restricts book
// references to an allow-list of catalog books.
//
// # Determinism
//
// Every scoring function is a pure function of its inputs and the supplied
// reference time. Identical library data and catalog contents always produce
// identical scores, reasons and ordering.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetDataProvider(db)
//
//	resp, err := engine.GetRecommendations(ctx, userID, recommend.Query{Limit: 10})
//
// # Thread Safety
//
// The engine is safe for concurrent use. The only mutable state is the
// optional preference cache, which is keyed by user and library version.
package recommend
