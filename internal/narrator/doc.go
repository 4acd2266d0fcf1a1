// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

// Package narrator turns scored recommendations into short prose through an
// OpenAI-compatible chat completion API. The model is told to tag every book
// it mentions with [[book:<id>]]; the recommend engine then filters the text
// against the candidate allow-list before returning it.
package narrator
