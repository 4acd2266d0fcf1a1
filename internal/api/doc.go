// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

/*
Package api exposes the recommendation engine over HTTP using the chi router.

Routes:

	GET  /api/v1/health/live
	GET  /api/v1/health/ready                    pings DuckDB
	GET  /api/v1/recommendations                 ?limit=&debug=&format=&categoryId=
	GET  /api/v1/recommendations/preferences
	POST /api/v1/recommendations/explain         {"bookId", "context"}
	POST /api/v1/recommendations/compare         {"bookIds", "context"}
	GET  /api/v1/books/{bookID}/offers
	GET  /metrics

Everything under /api/v1 except health requires authentication (see package
auth) and is rate limited per client IP with go-chi/httprate.

Every JSON response uses the same envelope:

	{
	  "success": false,
	  "error": {"code": "NOT_FOUND", "message": "...", "request_id": "..."},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Engine errors map to status codes as follows: recommend.ErrBookNotFound is
404 NOT_FOUND, recommend.ErrInvalidRequest and validation failures are 400
VALIDATION_ERROR, and storage failures are 500 DATABASE_ERROR.
*/
package api
