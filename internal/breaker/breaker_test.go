// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/bookwise/internal/metrics"
)

var errBackend = errors.New("backend down")

func TestBreaker_OpensAfterFailureRatio(t *testing.T) {
	t.Parallel()

	b := New[int]("test-open", Settings{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := b.Execute(func() (int, error) { return 0, errBackend }); !errors.Is(err, errBackend) {
			t.Fatalf("call %d: err = %v, want backend error", i, err)
		}
	}
	if b.State() != "open" {
		t.Fatalf("state = %s, want open", b.State())
	}

	called := false
	_, err := b.Execute(func() (int, error) { called = true; return 1, nil })
	if !IsOpen(err) {
		t.Errorf("err = %v, want open-state rejection", err)
	}
	if called {
		t.Error("function ran while breaker was open")
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-open")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-open", "rejected")); got != 1 {
		t.Errorf("rejected counter = %v, want 1", got)
	}
}

func TestBreaker_StaysClosedBelowMinimum(t *testing.T) {
	t.Parallel()

	b := New[string]("test-closed", Settings{MinRequests: 10})
	for i := 0; i < 5; i++ {
		_, _ = b.Execute(func() (string, error) { return "", errBackend })
	}
	got, err := b.Execute(func() (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Errorf("Execute = %q, %v", got, err)
	}
	if b.State() != "closed" || b.Name() != "test-closed" {
		t.Errorf("state = %s name = %s", b.State(), b.Name())
	}
}

func TestIsOpen(t *testing.T) {
	t.Parallel()

	if IsOpen(errBackend) || IsOpen(nil) {
		t.Error("ordinary errors are not open-state rejections")
	}
}
