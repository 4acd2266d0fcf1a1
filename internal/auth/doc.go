// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

/*
Package auth resolves the calling user for the Bookwise API.

Two modes are supported, selected by security.auth_mode:

  - jwt: HS256 bearer tokens signed with JWT_SECRET. The sub claim is the
    user id; exp is required and iss must match JWT_ISSUER when set.
  - none: the user id is read from the X-User-ID header. Configuration
    validation rejects this mode in production.

The resolved id is stored with logging.ContextWithUserID, so every log line
written through logging.Ctx carries user_id.

Usage:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, writeAuthError)
	r.Use(mw.Authenticate)
*/
package auth
