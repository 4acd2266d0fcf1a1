// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/bookwise/internal/offers"
)

// BookOffersResponse is the payload of GET /books/{bookID}/offers.
type BookOffersResponse struct {
	BookID string         `json:"bookId"`
	Offers []offers.Offer `json:"offers"`
}

// BookOffers handles GET /api/v1/books/{bookID}/offers.
func (h *Handler) BookOffers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.offers == nil {
		rw.ServiceUnavailable("Live offers are disabled")
		return
	}

	bookID := chi.URLParam(r, "bookID")
	if bookID == "" || len(bookID) > 128 {
		rw.ValidationError("bookID must be between 1 and 128 characters", map[string]interface{}{"field": "bookID"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.offers.BookOffers(ctx, bookID)
	if err != nil {
		rw.ExternalServiceError("offers", err)
		return
	}
	if list == nil {
		list = []offers.Offer{}
	}
	rw.Success(BookOffersResponse{BookID: bookID, Offers: list})
}
