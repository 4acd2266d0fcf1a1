// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

// Package main is the entry point for the Bookwise server.
//
// Bookwise recommends catalog books to readers from their shelf, ratings and
// purchases, and explains its picks.
//
// # Startup
//
//  1. Configuration: defaults, optional config.yaml (CONFIG_PATH) and
//     environment variables, loaded with koanf and validated
//  2. Logging: zerolog, json or console
//  3. Database: DuckDB catalog, shelves and purchases, optional demo seed
//  4. Recommendation engine, with the optional live offer service (Badger
//     cache in front of the offer API) and the optional narrator
//  5. Authentication: JWT bearer tokens, or X-User-ID with AUTH_MODE=none
//  6. Supervisor tree: cache janitor and HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server gracefully within HTTP_SHUTDOWN_TIMEOUT, then the offer cache and
// the database are closed.
package main
