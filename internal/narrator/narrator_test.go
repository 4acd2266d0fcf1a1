// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package narrator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bookwise/internal/config"
	"github.com/tomtom215/bookwise/internal/recommend"
	"github.com/tomtom215/bookwise/internal/recommend/guardrail"
)

func samplePrompt() *recommend.ExplainPrompt {
	return &recommend.ExplainPrompt{
		Book: recommend.NarrationBook{
			ID: "bk-dragon-gate", Title: "Dragon Gate", Authors: []string{"Mara Quill"},
			Score: 0.82, Reasons: []string{"By Mara Quill, an author you rate highly"},
		},
		UserContext:   "something for a long flight",
		TopCategories: []string{"Fantasy"},
		TopAuthors:    []string{"Mara Quill"},
		Candidates: []guardrail.Candidate{
			{ID: "bk-dragon-gate", Title: "Dragon Gate", Author: "Mara Quill"},
			{ID: "bk-lantern-sea", Title: "The Lantern Sea"},
		},
	}
}

func TestClientExplain(t *testing.T) {
	t.Parallel()

	var got chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Try [[book:bk-dragon-gate]].  "}}]}`))
	}))
	defer server.Close()

	client := NewClient(&config.NarratorConfig{BaseURL: server.URL + "/v1/", APIKey: "k", Timeout: time.Second, Temperature: 0.3})
	text, err := client.Explain(context.Background(), samplePrompt())
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	if text != "Try [[book:bk-dragon-gate]]." {
		t.Errorf("text = %q", text)
	}
	if auth != "Bearer k" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Model != defaultModel || got.MaxTokens != defaultMaxTokens || got.Temperature != 0.3 {
		t.Errorf("unexpected request settings: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	user := got.Messages[1].Content
	for _, want := range []string{"[[book:bk-dragon-gate]]", "[[book:bk-lantern-sea]]", "Favorite categories: Fantasy", "long flight"} {
		if !strings.Contains(user, want) {
			t.Errorf("user message missing %q:\n%s", want, user)
		}
	}
}

func TestCompareMessage(t *testing.T) {
	t.Parallel()

	msg := compareMessage(&recommend.ComparePrompt{
		Books: []recommend.NarrationBook{
			{ID: "a", Title: "Alpha", Score: 0.7},
			{ID: "b", Title: "Beta", Score: 0.5},
		},
		BestFitID:  "a",
		Candidates: []guardrail.Candidate{{ID: "a", Title: "Alpha"}, {ID: "b", Title: "Beta"}},
	})

	if !strings.Contains(msg, "why [[book:a]] is the best fit") {
		t.Errorf("best fit not named:\n%s", msg)
	}
	if strings.Index(msg, `BOOK [[book:a]]`) > strings.Index(msg, `BOOK [[book:b]]`) {
		t.Errorf("books out of order:\n%s", msg)
	}
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, "overloaded", ErrUnexpectedStatus},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrEmptyCompletion},
		{"blank text", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`, ErrEmptyCompletion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(&config.NarratorConfig{BaseURL: server.URL, Timeout: time.Second})
			_, err := client.Compare(context.Background(), &recommend.ComparePrompt{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
