package pipeline

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// TokenCount holds a token and its count.
type TokenCount struct {
	Token string `json:"token" yaml:"token"`
	Count int    `json:"count" yaml:"count"`
}

// TokenCounter keeps track of how many times each token appears.
// It is safe for concurrent use.
type TokenCounter struct {
	counts     map[string]int
	totalCount int64 // Running total of all token counts
	mu         sync.RWMutex
}

// NewTokenCounter creates a new TokenCounter with an empty map.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{counts: make(map[string]int)}
}

// IncrementTokens increases the count for each token in the list.
func (tc *TokenCounter) IncrementTokens(tokens []string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for _, token := range tokens {
		tc.counts[token]++
		atomic.AddInt64(&tc.totalCount, 1)
	}
}

// GetCount returns the count for a specific token.
func (tc *TokenCounter) GetCount(token string) int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.counts[token]
}

// Counts returns a snapshot of all token counts.
func (tc *TokenCounter) Counts() map[string]int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	snapshot := make(map[string]int, len(tc.counts))
	for token, count := range tc.counts {
		snapshot[token] = count
	}
	return snapshot
}

// Distinct returns the number of distinct tokens.
func (tc *TokenCounter) Distinct() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.counts)
}

// GetTotalTokens returns the total number of token occurrences (sum of all counts)
func (tc *TokenCounter) GetTotalTokens() int {
	return int(atomic.LoadInt64(&tc.totalCount))
}

// TopN returns the n most frequent tokens, ties broken alphabetically.
// n <= 0 returns every token.
func (tc *TokenCounter) TopN(n int) []TokenCount {
	return SortedCounts(tc.Counts(), n)
}

// SortedCounts orders a count map by count descending then token ascending,
// keeping at most n entries (all when n <= 0).
func SortedCounts(counts map[string]int, n int) []TokenCount {
	out := make([]TokenCount, 0, len(counts))
	for token, count := range counts {
		out = append(out, TokenCount{Token: token, Count: count})
	}
	slices.SortFunc(out, func(a, b TokenCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Token, b.Token)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
