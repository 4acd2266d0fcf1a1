// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package offers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookwise/internal/config"
	"github.com/tomtom215/bookwise/internal/recommend"
)

const sampleResponse = `{"offers":[
	{"book_id":"bk-1","retailer":" Paperhouse ","format":"EBOOK","price":{"amount":9.99,"currency":"usd"},"url":"https://shop.example/bk-1","updated_at":"2026-01-02T03:04:05Z"},
	{"book_id":"bk-1","retailer":"Paperhouse","format":"hardcover","price":{"amount":19.99,"currency":"USD"},"url":"https://shop.example/bk-1-hc"},
	{"book_id":"bk-2","retailer":"Listen","format":"audiobook","price":{"amount":-1,"currency":"USD"},"url":"https://shop.example/bk-2"},
	{"book_id":"bk-9","retailer":"Other","format":"paper","price":{"amount":5,"currency":"USD"},"url":"https://shop.example/bk-9"}
]}`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore("", time.Hour)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestClientFetchOffers(t *testing.T) {
	t.Parallel()

	var gotKey, gotIDs string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/offers" {
			http.NotFound(w, r)
			return
		}
		gotKey = r.Header.Get("X-API-Key")
		gotIDs = r.URL.Query().Get("book_ids")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(&config.OffersConfig{BaseURL: server.URL + "/", APIKey: "secret", Timeout: time.Second})
	offers, err := client.FetchOffers(context.Background(), []string{"bk-1", "bk-2"})
	if err != nil {
		t.Fatalf("FetchOffers failed: %v", err)
	}

	if gotKey != "secret" {
		t.Errorf("X-API-Key = %q, want secret", gotKey)
	}
	if gotIDs != "bk-1,bk-2" {
		t.Errorf("book_ids = %q, want bk-1,bk-2", gotIDs)
	}
	// Unknown format, negative price and unrequested ids are dropped.
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1: %+v", len(offers), offers)
	}
	o := offers[0]
	if o.Format != recommend.FormatEbook || o.Retailer != "Paperhouse" || o.Currency != "USD" || o.Price != 9.99 {
		t.Errorf("unexpected normalized offer: %+v", o)
	}
}

func TestClientBatches(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var batches []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		batches = append(batches, len(strings.Split(r.URL.Query().Get("book_ids"), ",")))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"offers":[]}`))
	}))
	defer server.Close()

	ids := make([]string, MaxBatchSize+7)
	for i := range ids {
		ids[i] = fmt.Sprintf("bk-%d", i)
	}

	client := NewClient(&config.OffersConfig{BaseURL: server.URL, Timeout: time.Second})
	if _, err := client.FetchOffers(context.Background(), ids); err != nil {
		t.Fatalf("FetchOffers failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 2 || batches[0] != MaxBatchSize || batches[1] != 7 {
		t.Errorf("batches = %v, want [%d 7]", batches, MaxBatchSize)
	}
}

func TestClientKeepsEarlierBatchesOnFailure(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		requests++
		n := requests
		mu.Unlock()
		if n > 1 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"offers":[{"book_id":"bk-0","retailer":"Paperhouse","format":"paper","price":{"amount":4,"currency":"USD"},"url":"https://shop.example/bk-0"}]}`))
	}))
	defer server.Close()

	ids := make([]string, MaxBatchSize+3)
	for i := range ids {
		ids[i] = fmt.Sprintf("bk-%d", i)
	}

	client := NewClient(&config.OffersConfig{BaseURL: server.URL, Timeout: time.Second})
	offers, err := client.FetchOffers(context.Background(), ids)

	var partial *PartialFetchError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want *PartialFetchError", err)
	}
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("partial error should wrap the batch failure: %v", err)
	}
	if len(partial.Resolved) != MaxBatchSize || partial.Resolved[0] != "bk-0" {
		t.Errorf("resolved = %d ids, want the first %d", len(partial.Resolved), MaxBatchSize)
	}
	if len(offers) != 1 || offers[0].BookID != "bk-0" {
		t.Errorf("offers = %+v, want the first batch's offer", offers)
	}
}

func TestClientErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(&config.OffersConfig{BaseURL: server.URL, Timeout: time.Second})
	_, err := client.FetchOffers(context.Background(), []string{"bk-1"})
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("err = %v, want ErrUnexpectedStatus", err)
	}
	if !strings.Contains(err.Error(), "upstream down") {
		t.Errorf("error should carry the response body: %v", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	offer := Offer{BookID: "bk-1", Retailer: "Paperhouse", Format: recommend.FormatPaper, Price: 12.5, Currency: "EUR"}
	if err := store.Put(map[string][]Offer{"bk-1": {offer}, "bk-2": nil}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	found, missing, err := store.Get([]string{"bk-1", "bk-2", "bk-3"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(missing) != 1 || missing[0] != "bk-3" {
		t.Errorf("missing = %v, want [bk-3]", missing)
	}
	if got := found["bk-1"]; len(got) != 1 || got[0] != offer {
		t.Errorf("bk-1 = %+v, want [%+v]", got, offer)
	}
	if got, ok := found["bk-2"]; !ok || len(got) != 0 {
		t.Errorf("bk-2 should be cached as empty, got %v (present=%v)", got, ok)
	}
}

type fakeFetcher struct {
	mu     sync.Mutex
	offers []Offer
	err    error
	calls  [][]string

	// keepOffersOnError returns offers together with err.
	keepOffersOnError bool
}

func (f *fakeFetcher) FetchOffers(_ context.Context, ids []string) ([]Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), ids...))
	if f.err != nil && !f.keepOffersOnError {
		return nil, f.err
	}
	return f.offers, f.err
}

func TestServiceCachesLookups(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{offers: []Offer{{BookID: "bk-1", Retailer: "Paperhouse", Format: recommend.FormatEbook, Price: 3}}}
	svc := NewService(fetcher, newTestStore(t), zerolog.Nop())
	ctx := context.Background()

	first, err := svc.OffersFor(ctx, []string{"bk-1", "bk-2", "bk-1", ""})
	if err != nil {
		t.Fatalf("OffersFor failed: %v", err)
	}
	if len(first["bk-1"]) != 1 || len(first["bk-2"]) != 0 {
		t.Errorf("unexpected first lookup: %+v", first)
	}

	if _, err := svc.OffersFor(ctx, []string{"bk-2", "bk-1"}); err != nil {
		t.Fatalf("second OffersFor failed: %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("fetcher called %d times, want 1", len(fetcher.calls))
	}
	if got := strings.Join(fetcher.calls[0], ","); got != "bk-1,bk-2" {
		t.Errorf("fetched ids = %q, want bk-1,bk-2", got)
	}

	single, err := svc.BookOffers(ctx, "bk-1")
	if err != nil || len(single) != 1 {
		t.Errorf("BookOffers = %v, %v", single, err)
	}
	if _, err := svc.BookOffers(ctx, ""); !errors.Is(err, ErrEmptyBookID) {
		t.Errorf("empty id err = %v, want ErrEmptyBookID", err)
	}
}

func TestServicePartialFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		offers: []Offer{{BookID: "bk-1", Retailer: "Paperhouse", Format: recommend.FormatPaper, Price: 2}},
		err:    &PartialFetchError{Resolved: []string{"bk-1", "bk-2"}, Err: errors.New("boom")},
	}
	fetcher.keepOffersOnError = true
	store := newTestStore(t)
	svc := NewService(fetcher, store, zerolog.Nop())

	books := []recommend.Book{{ID: "bk-1"}, {ID: "bk-2", HasOffers: true}, {ID: "bk-3", HasOffers: true}}
	if err := svc.Annotate(context.Background(), books); err == nil {
		t.Fatal("expected the lookup error to be reported")
	}
	want := map[string]bool{"bk-1": true, "bk-2": false, "bk-3": true}
	for _, b := range books {
		if b.HasOffers != want[b.ID] {
			t.Errorf("%s HasOffers = %v, want %v", b.ID, b.HasOffers, want[b.ID])
		}
	}

	_, missing, err := store.Get([]string{"bk-1", "bk-2", "bk-3"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(missing) != 1 || missing[0] != "bk-3" {
		t.Errorf("only resolved books should be cached, missing = %v", missing)
	}
}

func TestServiceAnnotate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fetcher *fakeFetcher
		want    map[string]bool
		wantErr bool
	}{
		{
			name:    "api answers",
			fetcher: &fakeFetcher{offers: []Offer{{BookID: "live", Format: recommend.FormatPaper, Price: 1}}},
			want:    map[string]bool{"cached-empty": false, "live": true, "none": false},
		},
		{
			name:    "api fails keeps catalog flags",
			fetcher: &fakeFetcher{err: errors.New("boom")},
			want:    map[string]bool{"cached-empty": false, "live": false, "none": true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newTestStore(t)
			if err := store.Put(map[string][]Offer{"cached-empty": nil}); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			svc := NewService(tt.fetcher, store, zerolog.Nop())
			books := []recommend.Book{
				{ID: "cached-empty", HasOffers: true},
				{ID: "live"},
				{ID: "none", HasOffers: true},
			}
			err := svc.Annotate(context.Background(), books)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Annotate err = %v, wantErr %v", err, tt.wantErr)
			}
			for _, b := range books {
				if b.HasOffers != tt.want[b.ID] {
					t.Errorf("%s HasOffers = %v, want %v", b.ID, b.HasOffers, tt.want[b.ID])
				}
			}
		})
	}
}
