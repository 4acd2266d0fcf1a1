// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/bookwise/internal/auth"
	"github.com/tomtom215/bookwise/internal/logging"
	"github.com/tomtom215/bookwise/internal/recommend"
	"github.com/tomtom215/bookwise/internal/validation"
)

// recommendationsParams are the query parameters of GET /recommendations.
type recommendationsParams struct {
	Limit      *int   `json:"limit" validate:"omitempty,gte=1,lte=50"`
	Debug      bool   `json:"debug"`
	Format     string `json:"format" validate:"bookformat"`
	CategoryID string `json:"categoryId" validate:"max=128"`
}

// parseRecommendationsParams reads and validates the query string.
func parseRecommendationsParams(r *http.Request) (*recommendationsParams, *validation.RequestValidationError) {
	q := r.URL.Query()
	params := &recommendationsParams{
		Format:     strings.ToLower(strings.TrimSpace(q.Get("format"))),
		CategoryID: strings.TrimSpace(q.Get("categoryId")),
	}

	var fields []validation.FieldError
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, validation.FieldError{Field: "limit", Tag: "number", Message: "limit must be an integer"})
		} else {
			params.Limit = &n
		}
	}
	if raw := q.Get("debug"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			fields = append(fields, validation.FieldError{Field: "debug", Tag: "boolean", Message: "debug must be true or false"})
		}
		params.Debug = b
	}
	if len(fields) > 0 {
		return nil, &validation.RequestValidationError{Fields: fields}
	}
	if verr := validation.ValidateStruct(params); verr != nil {
		return nil, verr
	}
	return params, nil
}

// Recommendations handles GET /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params, verr := parseRecommendationsParams(r)
	if verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return
	}

	query := recommend.Query{
		Debug:      params.Debug,
		Format:     recommend.BookFormat(params.Format),
		CategoryID: params.CategoryID,
		RequestID:  logging.RequestIDFromContext(r.Context()),
	}
	if params.Limit != nil {
		query.Limit = *params.Limit
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := h.engine.GetRecommendations(ctx, auth.UserIDFromContext(r.Context()), query)
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	rw.Success(resp)
}

// Preferences handles GET /api/v1/recommendations/preferences.
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prefs, _, err := h.engine.LoadPreferences(ctx, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	rw.Success(prefs)
}

// Explain handles POST /api/v1/recommendations/explain.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req recommend.ExplainRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.engine.Explain(ctx, auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	rw.Success(result)
}

// Compare handles POST /api/v1/recommendations/compare.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req recommend.CompareRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.engine.Compare(ctx, auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	rw.Success(result)
}
