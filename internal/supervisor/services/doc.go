// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

// Package services holds the suture.Service implementations run by the
// supervisor tree. Each service blocks in Serve until its context is
// canceled and implements fmt.Stringer so supervisor events name it.
package services
