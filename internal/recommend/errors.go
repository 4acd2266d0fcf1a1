// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import "errors"

var (
	// ErrBookNotFound is returned when a requested book is not in the catalog.
	ErrBookNotFound = errors.New("book not found")

	// ErrInvalidRequest is returned for malformed queries, before any work is done.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoDataProvider is returned when the engine has no data provider.
	ErrNoDataProvider = errors.New("data provider not configured")
)
