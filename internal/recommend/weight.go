// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"math"
	"time"
)

// neutralRatingWeight is the rating weight of an unrated record.
const neutralRatingWeight = 0.5

// CalculateBookWeight returns the contribution of a single library record:
//
//	status weight × rating weight × exp(-days since reference / decayDays)
//
// The reference date is RatedAt for rated records and UpdatedAt otherwise.
// Missing or future dates count as "now", so malformed records still get
// a weight in (0, 1].
func CalculateBookWeight(entry *LibraryEntry, now time.Time, decayDays float64) float64 {
	ratingWeight := neutralRatingWeight
	ref := entry.UpdatedAt
	if entry.IsRated() {
		ratingWeight = float64(entry.Rating) / 5.0
		if entry.RatedAt != nil {
			ref = *entry.RatedAt
		}
	}

	return entry.Status.Weight() * ratingWeight * recencyWeight(ref, now, decayDays)
}

// recencyWeight decays exponentially with the age of ref in days.
func recencyWeight(ref, now time.Time, decayDays float64) float64 {
	if ref.IsZero() || decayDays <= 0 {
		return 1.0
	}
	days := now.Sub(ref).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / decayDays)
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clamp01 bounds v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
