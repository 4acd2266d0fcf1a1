// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

// Package logging provides the process-wide zerolog logger for Bookwise.
//
// JSON output is the default and is what production deployments should use.
// Console output is intended for local development.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("addr", addr).Msg("server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("offer lookup failed")
//
// # Request Context
//
// The HTTP middleware stores the request id and the authenticated user id
// in the request context. Ctx and CtxWith add both to every event, so
// handler and engine logs can be correlated with a single request.
//
// # slog Interop
//
// The supervisor tree logs through sutureslog, which expects a *slog.Logger.
// NewSlogLogger returns one that writes to zerolog.
//
// Always terminate event chains with Msg or Send; an unterminated chain is
// never written.
package logging
