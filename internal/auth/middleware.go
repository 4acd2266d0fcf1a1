// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/bookwise/internal/logging"
)

// Authentication modes.
const (
	ModeJWT  = "jwt"
	ModeNone = "none"
)

// UserIDHeader identifies the caller when authentication is disabled.
const UserIDHeader = "X-User-ID"

const maxUserIDLength = 128

// ErrorWriter writes an authentication failure. The API layer supplies one
// that renders its standard error envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware resolves the calling user and stores it in the request context.
type Middleware struct {
	jwtManager *JWTManager
	mode       string
	writeError ErrorWriter
}

// NewMiddleware creates the authentication middleware. jwtManager may be
// nil in ModeNone. A nil writeError falls back to http.Error.
func NewMiddleware(jwtManager *JWTManager, mode string, writeError ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _ string, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{jwtManager: jwtManager, mode: mode, writeError: writeError}
}

// Authenticate rejects requests without a resolvable user with 401.
//
// In ModeJWT the user id is the sub claim of an "Authorization: Bearer"
// token. In ModeNone it is taken from the X-User-ID header, for local
// development only.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.resolveUser(w, r)
		if !ok {
			return
		}
		ctx := logging.ContextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) resolveUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	if m.mode == ModeNone {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if !validUserID(userID) {
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-ID header is required")
			return "", false
		}
		return userID, true
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer realm="bookwise"`)
		m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token required")
		return "", false
	}
	if m.jwtManager == nil {
		m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Token authentication is not configured")
		return "", false
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
		w.Header().Set("WWW-Authenticate", `Bearer realm="bookwise", error="invalid_token"`)
		m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		return "", false
	}
	if !validUserID(claims.UserID()) {
		m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token subject")
		return "", false
	}
	return claims.UserID(), true
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	return logging.UserIDFromContext(ctx)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func validUserID(id string) bool {
	if id == "" || len(id) > maxUserIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
