// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"math"
	"sort"
	"time"
)

// Confidence saturation points and term weights.
const (
	confidenceRatedTarget  = 20.0
	confidenceBooksTarget  = 50.0
	confidenceRecentTarget = 5.0

	confidenceRatedWeight  = 0.5
	confidenceBooksWeight  = 0.3
	confidenceRecentWeight = 0.2
)

// ReadingStats counts statuses, ratings and recent activity.
func (a *Aggregator) ReadingStats(entries []LibraryEntry, now time.Time) ReadingStats {
	var stats ReadingStats
	since := now.Add(-a.cfg.RecentActivityWindow)
	ratingSum := 0

	for i := range entries {
		e := &entries[i]
		stats.TotalBooks++

		switch e.Status {
		case StatusRead:
			stats.Read++
		case StatusReading:
			stats.Reading++
		case StatusWantToRead:
			stats.WantToRead++
		}

		if e.IsRated() {
			stats.Ratings.Count++
			stats.Ratings.Distribution[e.Rating-1]++
			ratingSum += e.Rating
		}

		if within(e.AddedAt, since, now) {
			stats.Recent.Added++
		}
		if e.IsRated() && e.RatedAt != nil && within(*e.RatedAt, since, now) {
			stats.Recent.Rated++
		}
		if e.Status == StatusRead && within(finishedAt(e), since, now) {
			stats.Recent.Finished++
		}
	}

	if stats.Ratings.Count > 0 {
		stats.Ratings.Average = round2(float64(ratingSum) / float64(stats.Ratings.Count))
	}
	return stats
}

// NegativeSignals finds categories and authors that recur among low-rated
// books. An id needs MinNegativeOccurrences low-rated records; its score is
// its share of all low-rated records.
func (a *Aggregator) NegativeSignals(entries []LibraryEntry) NegativeSignals {
	categories := newSignalCounter()
	authors := newSignalCounter()
	lowRated := 0

	for i := range entries {
		e := &entries[i]
		if !e.IsRated() || e.Rating > a.cfg.NegativeRatingThreshold {
			continue
		}
		lowRated++
		for _, ref := range uniqueRefs(e.Categories) {
			categories.add(ref)
		}
		for _, ref := range uniqueRefs(e.Authors) {
			authors.add(ref)
		}
	}

	return NegativeSignals{
		Categories: categories.signals(lowRated, a.cfg.MinNegativeOccurrences),
		Authors:    authors.signals(lowRated, a.cfg.MinNegativeOccurrences),
	}
}

// DataQuality computes the confidence score and data sufficiency flag.
func (a *Aggregator) DataQuality(entries []LibraryEntry, stats *ReadingStats) DataQuality {
	rated := float64(stats.Ratings.Count)
	total := float64(stats.TotalBooks)
	recent := float64(stats.Recent.Rated + stats.Recent.Finished)

	confidence := confidenceRatedWeight*math.Min(rated/confidenceRatedTarget, 1) +
		confidenceBooksWeight*math.Min(total/confidenceBooksTarget, 1) +
		confidenceRecentWeight*math.Min(recent/confidenceRecentTarget, 1)

	dq := DataQuality{
		HasEnoughData: stats.Ratings.Count >= a.cfg.MinSamplesForReliability,
		Confidence:    round2(confidence),
	}

	for i := range entries {
		e := &entries[i]
		if e.IsRated() && e.RatedAt != nil && (dq.LastRatingAt == nil || e.RatedAt.After(*dq.LastRatingAt)) {
			t := *e.RatedAt
			dq.LastRatingAt = &t
		}
		if !e.UpdatedAt.IsZero() && (dq.LastActivityAt == nil || e.UpdatedAt.After(*dq.LastActivityAt)) {
			t := e.UpdatedAt
			dq.LastActivityAt = &t
		}
	}
	return dq
}

type signalCounter struct {
	order  []string
	refs   map[string]Ref
	counts map[string]int
}

func newSignalCounter() *signalCounter {
	return &signalCounter{refs: make(map[string]Ref), counts: make(map[string]int)}
}

func (c *signalCounter) add(ref Ref) {
	if _, ok := c.refs[ref.ID]; !ok {
		c.refs[ref.ID] = ref
		c.order = append(c.order, ref.ID)
	}
	c.counts[ref.ID]++
}

func (c *signalCounter) signals(total, minCount int) []NegativeSignal {
	if total == 0 {
		return []NegativeSignal{}
	}
	out := make([]NegativeSignal, 0)
	for _, id := range c.order {
		n := c.counts[id]
		if n < minCount {
			continue
		}
		out = append(out, NegativeSignal{
			ID:    id,
			Name:  c.refs[id].Name,
			Count: n,
			Score: float64(n) / float64(total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// finishedAt falls back to UpdatedAt for read records without a finish date.
func finishedAt(e *LibraryEntry) time.Time {
	if e.FinishedAt != nil {
		return *e.FinishedAt
	}
	return e.UpdatedAt
}

func within(t, since, now time.Time) bool {
	return !t.IsZero() && !t.Before(since) && !t.After(now)
}
