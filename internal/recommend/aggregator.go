// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"sort"
	"time"
)

// Aggregator derives affinity signals from raw library activity.
// All methods are pure functions of their arguments.
type Aggregator struct {
	cfg AggregationConfig
}

// NewAggregator creates an aggregator with the given parameters.
func NewAggregator(cfg AggregationConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Compute builds the full preference view for a user.
func (a *Aggregator) Compute(userID string, entries []LibraryEntry, purchases []PurchaseFormatCount, now time.Time) *UserPreferences {
	stats := a.ReadingStats(entries, now)
	return &UserPreferences{
		UserID:          userID,
		CalculatedAt:    now,
		Categories:      a.CategoryAffinity(entries, now),
		Authors:         a.AuthorAffinity(entries, now),
		Formats:         a.FormatAffinity(entries, purchases),
		Stats:           stats,
		NegativeSignals: a.NegativeSignals(entries),
		DataQuality:     a.DataQuality(entries, &stats),
	}
}

// CategoryAffinity scores every category in the library.
func (a *Aggregator) CategoryAffinity(entries []LibraryEntry, now time.Time) []CategoryAffinity {
	acc := newAffinityAccumulator()
	for i := range entries {
		e := &entries[i]
		w := CalculateBookWeight(e, now, a.cfg.RecencyDecayDays)
		for _, ref := range uniqueRefs(e.Categories) {
			acc.add(ref, w, e)
		}
	}

	scores := acc.normalized()
	out := make([]CategoryAffinity, 0, len(scores))
	for _, s := range scores {
		out = append(out, CategoryAffinity{AffinityScore: s.AffinityScore})
	}
	return out
}

// AuthorAffinity scores every author in the library.
func (a *Aggregator) AuthorAffinity(entries []LibraryEntry, now time.Time) []AuthorAffinity {
	acc := newAffinityAccumulator()
	for i := range entries {
		e := &entries[i]
		w := CalculateBookWeight(e, now, a.cfg.RecencyDecayDays)
		for _, ref := range uniqueRefs(e.Authors) {
			acc.add(ref, w, e)
		}
	}

	scores := acc.normalized()
	out := make([]AuthorAffinity, 0, len(scores))
	for _, s := range scores {
		out = append(out, AuthorAffinity{AffinityScore: s.AffinityScore, BooksRead: s.booksRead})
	}
	return out
}

// FormatAffinity combines shelf formats and purchases. A purchase counts
// twice as much as a shelved book; formats without any signal are omitted.
func (a *Aggregator) FormatAffinity(entries []LibraryEntry, purchases []PurchaseFormatCount) []FormatAffinity {
	shelf := make(map[BookFormat]int, len(AllFormats))
	for i := range entries {
		seen := make(map[BookFormat]bool, len(entries[i].Formats))
		for _, f := range entries[i].Formats {
			if !f.Valid() || seen[f] {
				continue
			}
			seen[f] = true
			shelf[f]++
		}
	}

	bought := make(map[BookFormat]int, len(AllFormats))
	for _, p := range purchases {
		if p.Format.Valid() && p.Count > 0 {
			bought[p.Format] += p.Count
		}
	}

	out := make([]FormatAffinity, 0, len(AllFormats))
	maxTotal := 0
	for _, f := range AllFormats {
		total := shelf[f] + 2*bought[f]
		if total == 0 {
			continue
		}
		if total > maxTotal {
			maxTotal = total
		}
		out = append(out, FormatAffinity{
			Format:        f,
			FromBookshelf: shelf[f],
			FromPurchases: bought[f],
			Total:         total,
		})
	}
	for i := range out {
		out[i].Score = float64(out[i].Total) / float64(maxTotal)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// affinityAccumulator sums weights per id while keeping first-seen order.
type affinityAccumulator struct {
	order []string
	byID  map[string]*affinityBucket
}

type affinityBucket struct {
	ref        Ref
	weight     float64
	samples    int
	ratingSum  int
	ratedCount int
	booksRead  int
}

type accumulatedScore struct {
	AffinityScore
	booksRead int
}

func newAffinityAccumulator() *affinityAccumulator {
	return &affinityAccumulator{byID: make(map[string]*affinityBucket)}
}

func (acc *affinityAccumulator) add(ref Ref, weight float64, e *LibraryEntry) {
	b, ok := acc.byID[ref.ID]
	if !ok {
		b = &affinityBucket{ref: ref}
		acc.byID[ref.ID] = b
		acc.order = append(acc.order, ref.ID)
	}
	b.weight += weight
	b.samples++
	if e.IsRated() {
		b.ratingSum += e.Rating
		b.ratedCount++
	}
	if e.Status == StatusRead {
		b.booksRead++
	}
}

// normalized divides every weight by the maximum, drops zero scores and
// sorts descending. Ties keep first-seen order.
func (acc *affinityAccumulator) normalized() []accumulatedScore {
	maxWeight := 0.0
	for _, id := range acc.order {
		if w := acc.byID[id].weight; w > maxWeight {
			maxWeight = w
		}
	}
	if maxWeight <= 0 {
		return nil
	}

	out := make([]accumulatedScore, 0, len(acc.order))
	for _, id := range acc.order {
		b := acc.byID[id]
		score := b.weight / maxWeight
		if score <= 0 {
			continue
		}
		s := accumulatedScore{
			AffinityScore: AffinityScore{
				ID:          b.ref.ID,
				Name:        b.ref.Name,
				Score:       score,
				SampleCount: b.samples,
			},
			booksRead: b.booksRead,
		}
		if b.ratedCount > 0 {
			avg := float64(b.ratingSum) / float64(b.ratedCount)
			s.AverageRating = &avg
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// uniqueRefs drops empty and repeated ids, keeping order.
func uniqueRefs(refs []Ref) []Ref {
	if len(refs) < 2 {
		if len(refs) == 1 && refs[0].ID == "" {
			return nil
		}
		return refs
	}
	seen := make(map[string]bool, len(refs))
	out := make([]Ref, 0, len(refs))
	for _, r := range refs {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
