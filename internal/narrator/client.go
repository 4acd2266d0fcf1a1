// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package narrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bookwise/internal/breaker"
	"github.com/tomtom215/bookwise/internal/config"
	"github.com/tomtom215/bookwise/internal/recommend"
)

const (
	maxErrorBodySize = 4 * 1024
	maxResponseSize  = 1024 * 1024

	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 300
)

var (
	// ErrUnexpectedStatus is wrapped for non-2xx completion responses.
	ErrUnexpectedStatus = errors.New("unexpected status from completion API")

	// ErrEmptyCompletion is returned when the API answers without text.
	ErrEmptyCompletion = errors.New("completion contained no text")
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client generates narratives through an OpenAI-compatible
// /chat/completions endpoint. It implements recommend.Narrator.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	breaker     *breaker.Breaker[string]
}

var _ recommend.Narrator = (*Client)(nil)

// NewClient creates a completion client from the narrator configuration.
func NewClient(cfg *config.NarratorConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
		breaker:     breaker.New[string]("narrator", breaker.Settings{}),
	}
}

// Explain narrates why a single book suits the reader.
func (c *Client) Explain(ctx context.Context, prompt *recommend.ExplainPrompt) (string, error) {
	return c.complete(ctx, explainMessage(prompt))
}

// Compare narrates a comparison of several books.
func (c *Client) Compare(ctx context.Context, prompt *recommend.ComparePrompt) (string, error) {
	return c.complete(ctx, compareMessage(prompt))
}

func (c *Client) complete(ctx context.Context, userMessage string) (string, error) {
	return c.breaker.Execute(func() (string, error) {
		return c.send(ctx, userMessage)
	})
}

func (c *Client) send(ctx context.Context, userMessage string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
