// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package offers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookwise/internal/metrics"
	"github.com/tomtom215/bookwise/internal/recommend"
)

// ErrEmptyBookID is returned by BookOffers for an empty id.
var ErrEmptyBookID = errors.New("book id is required")

// Service resolves live offers through the cache first and the API second.
// It satisfies recommend.OfferResolver.
type Service struct {
	fetcher Fetcher
	store   *Store
	logger  zerolog.Logger
}

var _ recommend.OfferResolver = (*Service)(nil)

// NewService creates an offer service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(fetcher Fetcher, store *Store, logger zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		store:   store,
		logger:  logger.With().Str("component", "offers").Logger(),
	}
}

// OffersFor returns offers keyed by book id. Books without offers map to an
// empty slice. When the API fails, the cached subset plus any books resolved
// before the failure are returned together with the error.
func (s *Service) OffersFor(ctx context.Context, bookIDs []string) (map[string][]Offer, error) {
	ids := dedupe(bookIDs)
	if len(ids) == 0 {
		return map[string][]Offer{}, nil
	}

	found, missing, err := s.store.Get(ids)
	if err != nil {
		// A broken cache degrades to direct API lookups.
		s.logger.Warn().Err(err).Msg("offer cache read failed")
		found, missing = map[string][]Offer{}, ids
	}
	metrics.RecordOfferLookup("cache", len(found))
	if len(missing) == 0 {
		return found, nil
	}

	fetched, fetchErr := s.fetcher.FetchOffers(ctx, missing)
	resolved := missing
	if fetchErr != nil {
		resolved = nil
		var partial *PartialFetchError
		if errors.As(fetchErr, &partial) {
			resolved = partial.Resolved
		}
		metrics.RecordOfferLookup("error", len(missing)-len(resolved))
	}
	metrics.RecordOfferLookup("api", len(resolved))

	if len(resolved) > 0 {
		grouped := groupByBook(fetched)
		fresh := make(map[string][]Offer, len(resolved))
		for _, id := range resolved {
			fresh[id] = grouped[id]
			if fresh[id] == nil {
				fresh[id] = []Offer{}
			}
			found[id] = fresh[id]
		}
		if err := s.store.Put(fresh); err != nil {
			s.logger.Warn().Err(err).Int("books", len(fresh)).Msg("offer cache write failed")
		}
	}

	if fetchErr != nil {
		return found, fmt.Errorf("fetch offers: %w", fetchErr)
	}
	return found, nil
}

// BookOffers returns the offers of a single book.
func (s *Service) BookOffers(ctx context.Context, bookID string) ([]Offer, error) {
	if bookID == "" {
		return nil, ErrEmptyBookID
	}
	byBook, err := s.OffersFor(ctx, []string{bookID})
	if err != nil {
		return nil, err
	}
	return byBook[bookID], nil
}

// Annotate sets HasOffers on every book whose offers are known. Books that
// could not be resolved keep their catalog flag and the lookup error is
// returned.
func (s *Service) Annotate(ctx context.Context, books []recommend.Book) error {
	ids := make([]string, len(books))
	for i := range books {
		ids[i] = books[i].ID
	}
	byBook, err := s.OffersFor(ctx, ids)
	for i := range books {
		if offers, ok := byBook[books[i].ID]; ok {
			books[i].HasOffers = len(offers) > 0
		}
	}
	return err
}

// Close releases the cache.
func (s *Service) Close() error {
	return s.store.Close()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
