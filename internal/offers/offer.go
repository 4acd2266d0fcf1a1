// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package offers

import (
	"strings"
	"time"

	"github.com/tomtom215/bookwise/internal/recommend"
)

// Offer is a normalized retailer offer for one book format.
type Offer struct {
	BookID    string               `json:"book_id"`
	Retailer  string               `json:"retailer"`
	Format    recommend.BookFormat `json:"format"`
	Price     float64              `json:"price"`
	Currency  string               `json:"currency"`
	URL       string               `json:"url"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// apiOffer is the wire shape returned by the offer aggregation API.
type apiOffer struct {
	BookID   string `json:"book_id"`
	Retailer string `json:"retailer"`
	Format   string `json:"format"`
	Price    struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"price"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updated_at"`
}

type apiResponse struct {
	Offers []apiOffer `json:"offers"`
}

// normalize maps an API offer to an Offer. Offers without a book id, with
// an unknown format or a negative price are dropped.
func normalize(o *apiOffer) (Offer, bool) {
	format := recommend.BookFormat(strings.ToLower(strings.TrimSpace(o.Format)))
	if o.BookID == "" || !format.Valid() || o.Price.Amount < 0 {
		return Offer{}, false
	}
	return Offer{
		BookID:    o.BookID,
		Retailer:  strings.TrimSpace(o.Retailer),
		Format:    format,
		Price:     o.Price.Amount,
		Currency:  strings.ToUpper(strings.TrimSpace(o.Price.Currency)),
		URL:       o.URL,
		UpdatedAt: o.UpdatedAt.UTC(),
	}, true
}

// groupByBook returns offers keyed by book id, preserving input order.
func groupByBook(offers []Offer) map[string][]Offer {
	grouped := make(map[string][]Offer)
	for _, o := range offers {
		grouped[o.BookID] = append(grouped[o.BookID], o)
	}
	return grouped
}
