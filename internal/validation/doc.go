// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

// Package validation validates request structs with go-playground/validator v10.
//
// The validator is a process-wide singleton so struct metadata is cached.
// Failures are returned as *RequestValidationError, which the API layer
// renders as a VALIDATION_ERROR response:
//
//	type RecommendationsRequest struct {
//	    Limit  int    `json:"limit" validate:"gte=0,lte=50"`
//	    Format string `json:"format" validate:"bookformat"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Details())
//	    return
//	}
//
// Custom tags:
//   - bookformat: empty or one of paper, ebook, audiobook
package validation
