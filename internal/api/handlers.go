// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bookwise/internal/offers"
	"github.com/tomtom215/bookwise/internal/recommend"
	"github.com/tomtom215/bookwise/internal/validation"
)

// requestTimeout bounds the work of a single recommendation request.
const requestTimeout = 10 * time.Second

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 * 1024

// Recommender is the subset of the recommendation engine used by handlers.
type Recommender interface {
	GetRecommendations(ctx context.Context, userID string, query recommend.Query) (*recommend.RecommendationResponse, error)
	LoadPreferences(ctx context.Context, userID string) (*recommend.UserPreferences, bool, error)
	Explain(ctx context.Context, userID string, req recommend.ExplainRequest) (*recommend.Explanation, error)
	Compare(ctx context.Context, userID string, req recommend.CompareRequest) (*recommend.Comparison, error)
}

// OfferLookup returns the live offers of a book.
type OfferLookup interface {
	BookOffers(ctx context.Context, bookID string) ([]offers.Offer, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	engine    Recommender
	db        Pinger
	offers    OfferLookup
	startTime time.Time
}

// NewHandler creates the API handler. offerLookup may be nil when live
// offers are disabled.
func NewHandler(engine Recommender, db Pinger, offerLookup OfferLookup) *Handler {
	return &Handler{
		engine:    engine,
		db:        db,
		offers:    offerLookup,
		startTime: time.Now(),
	}
}

// decodeJSON decodes a bounded request body into dst and validates it. It
// writes the error response and returns false on failure.
func decodeJSON(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(rw.w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
			return false
		}
		rw.BadRequest("Invalid JSON request body")
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return false
	}
	return true
}

// writeEngineError maps engine errors to API errors.
func writeEngineError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrBookNotFound):
		rw.NotFound(err.Error())
	case errors.Is(err, recommend.ErrInvalidRequest):
		rw.ValidationError(err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeServiceUnavailable, "Request timed out")
	case errors.Is(err, recommend.ErrNoDataProvider):
		rw.ServiceUnavailable("Recommendation engine is not ready")
	default:
		rw.DatabaseError(err)
	}
}
