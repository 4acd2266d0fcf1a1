// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

/*
Package middleware provides HTTP middleware for the Bookwise API.

Every middleware has the standard func(http.Handler) http.Handler shape so it
composes with chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logging.Logger(), middleware.DefaultSlowRequestThreshold))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

Key Components:

  - RequestID: reuses a printable upstream X-Request-ID or generates a UUID
  - RequestLogger: request-scoped zerolog logger, warn on slow requests
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern
  - Compression: pooled gzip writers, honoring q=0

Handlers read the request ID with GetRequestID and the request logger with
logging.Ctx.

See Also:

  - internal/auth: authentication middleware
  - internal/api: router construction
  - internal/metrics: Prometheus metric definitions
*/
package middleware
