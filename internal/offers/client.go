// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package offers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/bookwise/internal/breaker"
	"github.com/tomtom215/bookwise/internal/config"
	"github.com/tomtom215/bookwise/internal/metrics"
)

const (
	// MaxBatchSize is the largest book_ids list sent in one request.
	MaxBatchSize = 50

	// maxErrorBodySize limits how much of an error response is read.
	maxErrorBodySize = 4 * 1024

	// maxResponseSize bounds a successful response body.
	maxResponseSize = 8 * 1024 * 1024

	breakerName = "offers-api"
)

// ErrUnexpectedStatus is wrapped for non-2xx API responses.
var ErrUnexpectedStatus = errors.New("unexpected status from offer API")

// PartialFetchError is returned by FetchOffers when a batch fails after
// earlier batches succeeded. The offers of the Resolved ids are returned
// alongside it.
type PartialFetchError struct {
	Resolved []string
	Err      error
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("offer lookup incomplete after %d books: %v", len(e.Resolved), e.Err)
}

func (e *PartialFetchError) Unwrap() error {
	return e.Err
}

// Fetcher looks up offers for a set of books.
type Fetcher interface {
	FetchOffers(ctx context.Context, bookIDs []string) ([]Offer, error)
}

// Client calls the external offer aggregation API. Requests are rate
// limited client-side and pass through a circuit breaker.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *breaker.Breaker[[]Offer]
}

// NewClient creates an API client from the offers configuration.
func NewClient(cfg *config.OffersConfig) *Client {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker.New[[]Offer](breakerName, breaker.Settings{}),
	}
}

// FetchOffers returns the normalized offers for bookIDs, issuing one request
// per MaxBatchSize ids. It stops at the first failed batch; if earlier
// batches succeeded their offers are returned with a *PartialFetchError.
func (c *Client) FetchOffers(ctx context.Context, bookIDs []string) ([]Offer, error) {
	var all []Offer
	for start := 0; start < len(bookIDs); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(bookIDs) {
			end = len(bookIDs)
		}
		batch := bookIDs[start:end]

		offers, err := c.breaker.Execute(func() ([]Offer, error) {
			return c.fetchBatch(ctx, batch)
		})
		if err != nil {
			if start == 0 {
				return nil, err
			}
			return all, &PartialFetchError{Resolved: bookIDs[:start:start], Err: err}
		}
		all = append(all, offers...)
	}
	return all, nil
}

func (c *Client) fetchBatch(ctx context.Context, bookIDs []string) ([]Offer, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("offer API rate limiter: %w", err)
	}

	endpoint := c.baseURL + "/v1/offers?" + url.Values{"book_ids": {strings.Join(bookIDs, ",")}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create offer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.OfferAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("offer API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode offer response: %w", err)
	}

	requested := make(map[string]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		requested[id] = struct{}{}
	}
	offers := make([]Offer, 0, len(decoded.Offers))
	for i := range decoded.Offers {
		o, ok := normalize(&decoded.Offers[i])
		if !ok {
			continue
		}
		if _, asked := requested[o.BookID]; !asked {
			continue
		}
		offers = append(offers, o)
	}
	return offers, nil
}
