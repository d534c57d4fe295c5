package pipeline

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"social-sentiment/src/posts"
)

// LabelCount pairs a label with its number of occurrences.
type LabelCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// GroupedCount counts records per (key, sentiment) cell. Every combination of
// a known key and a known sentiment has a cell; unseen combinations hold zero.
type GroupedCount[K comparable] struct {
	Keys       []K
	Sentiments []string

	cells   [][]int
	keyIdx  map[K]int
	sentIdx map[string]int
}

// Get returns the count for a cell, or zero for an unknown key or sentiment.
func (g GroupedCount[K]) Get(key K, sentiment string) int {
	k, ok := g.keyIdx[key]
	if !ok {
		return 0
	}
	s, ok := g.sentIdx[sentiment]
	if !ok {
		return 0
	}
	return g.cells[k][s]
}

// Series returns the counts of one sentiment across all keys, in key order.
func (g GroupedCount[K]) Series(sentiment string) []int {
	out := make([]int, len(g.Keys))
	s, ok := g.sentIdx[sentiment]
	if !ok {
		return out
	}
	for k := range g.Keys {
		out[k] = g.cells[k][s]
	}
	return out
}

// Total is the sum over every cell.
func (g GroupedCount[K]) Total() int {
	total := 0
	for _, row := range g.cells {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// groupBy scans t once. domain seeds the key axis with keys that must appear
// even when no record maps to them; it may be nil.
func groupBy[K comparable](t posts.Table, key func(posts.Record) K, compare func(a, b K) int, domain []K) GroupedCount[K] {
	keySet := make(map[K]struct{}, len(domain))
	for _, k := range domain {
		keySet[k] = struct{}{}
	}
	sentSet := make(map[string]struct{})
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		keySet[key(r)] = struct{}{}
		sentSet[r.Sentiment] = struct{}{}
	}

	g := GroupedCount[K]{
		Keys:       make([]K, 0, len(keySet)),
		Sentiments: make([]string, 0, len(sentSet)),
		keyIdx:     make(map[K]int, len(keySet)),
		sentIdx:    make(map[string]int, len(sentSet)),
	}
	for k := range keySet {
		g.Keys = append(g.Keys, k)
	}
	for s := range sentSet {
		g.Sentiments = append(g.Sentiments, s)
	}
	slices.SortFunc(g.Keys, compare)
	slices.Sort(g.Sentiments)
	for i, k := range g.Keys {
		g.keyIdx[k] = i
	}
	for i, s := range g.Sentiments {
		g.sentIdx[s] = i
	}

	g.cells = make([][]int, len(g.Keys))
	for i := range g.cells {
		g.cells[i] = make([]int, len(g.Sentiments))
	}
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		g.cells[g.keyIdx[key(r)]][g.sentIdx[r.Sentiment]]++
	}
	return g
}

// hoursOfDay is the full hour axis, so the hourly chart never skips an hour.
var hoursOfDay = func() []int {
	h := make([]int, 24)
	for i := range h {
		h[i] = i
	}
	return h
}()

// HourlyCounts groups by hour of day (0-23, all hours present) and sentiment.
func HourlyCounts(t posts.Table) GroupedCount[int] {
	return groupBy(t, posts.Record.Hour, cmp.Compare[int], hoursOfDay)
}

// DailyCounts groups by calendar date and sentiment, dates ascending.
func DailyCounts(t posts.Table) GroupedCount[time.Time] {
	return groupBy(t, posts.Record.Date, time.Time.Compare, nil)
}

// PlatformCounts groups by platform and sentiment, platforms ascending.
func PlatformCounts(t posts.Table) GroupedCount[string] {
	return groupBy(t, func(r posts.Record) string { return r.Platform }, strings.Compare, nil)
}

// SentimentCounts tallies sentiment labels, most frequent first with ties
// broken by label.
func SentimentCounts(t posts.Table) []LabelCount {
	counts := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		counts[t.At(i).Sentiment]++
	}
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b LabelCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	return out
}
