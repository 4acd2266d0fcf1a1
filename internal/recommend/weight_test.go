// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"math"
	"testing"
	"time"
)

func TestReadingStatus_Weight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ReadingStatus
		want   float64
	}{
		{StatusRead, 1.0},
		{StatusReading, 0.6},
		{StatusWantToRead, 0.3},
		{ReadingStatus("abandoned"), 0.1},
		{ReadingStatus(""), 0.1},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.Weight(); got != tt.want {
				t.Errorf("Weight() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCalculateBookWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry LibraryEntry
		want  float64
	}{
		{
			name:  "read, five stars, rated now",
			entry: LibraryEntry{Status: StatusRead, Rating: 5, RatedAt: timePtr(testNow), UpdatedAt: testNow},
			want:  1.0,
		},
		{
			name:  "unrated uses neutral rating and updatedAt",
			entry: LibraryEntry{Status: StatusRead, UpdatedAt: testNow},
			want:  0.5,
		},
		{
			name:  "reading, three stars",
			entry: LibraryEntry{Status: StatusReading, Rating: 3, RatedAt: timePtr(testNow), UpdatedAt: testNow},
			want:  0.6 * 0.6,
		},
		{
			name:  "want to read, 180 days old, unrated",
			entry: LibraryEntry{Status: StatusWantToRead, UpdatedAt: daysAgo(180)},
			want:  0.3 * 0.5 * math.Exp(-1),
		},
		{
			name:  "rating date wins over update date",
			entry: LibraryEntry{Status: StatusRead, Rating: 5, RatedAt: timePtr(daysAgo(360)), UpdatedAt: testNow},
			want:  math.Exp(-2),
		},
		{
			name:  "out of range rating treated as unrated",
			entry: LibraryEntry{Status: StatusRead, Rating: 9, RatedAt: timePtr(daysAgo(360)), UpdatedAt: testNow},
			want:  0.5,
		},
		{
			name:  "future date clamps to now",
			entry: LibraryEntry{Status: StatusRead, UpdatedAt: testNow.Add(48 * time.Hour)},
			want:  0.5,
		},
		{
			name:  "unknown status still weighted",
			entry: LibraryEntry{Status: "lost", UpdatedAt: testNow},
			want:  0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateBookWeight(&tt.entry, testNow, 180)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateBookWeight() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCalculateBookWeight_Deterministic(t *testing.T) {
	t.Parallel()

	entry := rated("b1", StatusReading, 4, 42, nil, nil)
	first := CalculateBookWeight(&entry, testNow, 180)
	for i := 0; i < 100; i++ {
		if got := CalculateBookWeight(&entry, testNow, 180); got != first {
			t.Fatalf("weight changed between calls: %f vs %f", first, got)
		}
	}
}

func TestCalculateBookWeight_RecencyMonotonic(t *testing.T) {
	t.Parallel()

	prev := math.Inf(1)
	for _, age := range []int{0, 1, 7, 30, 90, 180, 365, 1000} {
		entry := rated("b1", StatusRead, 4, age, nil, nil)
		w := CalculateBookWeight(&entry, testNow, 180)
		if w >= prev {
			t.Errorf("weight at age %d (%f) not lower than newer record (%f)", age, w, prev)
		}
		prev = w
	}
}

func TestCalculateBookWeight_RatingMonotonic(t *testing.T) {
	t.Parallel()

	prev := 0.0
	for rating := 1; rating <= 5; rating++ {
		entry := rated("b1", StatusRead, rating, 10, nil, nil)
		w := CalculateBookWeight(&entry, testNow, 180)
		if w <= prev {
			t.Errorf("weight at rating %d (%f) not higher than rating %d (%f)", rating, w, rating-1, prev)
		}
		prev = w
	}
}

func TestRound2AndClamp(t *testing.T) {
	t.Parallel()

	if got := round2(0.8213); got != 0.82 {
		t.Errorf("round2(0.8213) = %f", got)
	}
	if got := round2(0.805); got != 0.81 && got != 0.8 {
		t.Errorf("round2(0.805) = %f", got)
	}
	if got := clamp01(1.3); got != 1 {
		t.Errorf("clamp01(1.3) = %f", got)
	}
	if got := clamp01(-0.2); got != 0 {
		t.Errorf("clamp01(-0.2) = %f", got)
	}
}
