// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

/*
Package offers resolves live retailer offers for catalog books.

Lookups go through three layers:

  - Store: a Badger cache keyed by book id with a per-entry TTL. Books with
    no offers are cached as empty lists.
  - Client: an HTTP client for the offer aggregation API. Requests are
    batched, rate limited with golang.org/x/time/rate and wrapped in a
    circuit breaker.
  - Service: combines both and implements recommend.OfferResolver so the
    engine can refresh availability flags before scoring.

The API is expected to answer GET /v1/offers?book_ids=a,b with

	{"offers":[{"book_id":"a","retailer":"...","format":"ebook",
	  "price":{"amount":9.99,"currency":"USD"},"url":"...","updated_at":"..."}]}

Offers with an unknown format or a negative price are discarded.
*/
package offers
