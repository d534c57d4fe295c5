package pipeline

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// bloomThreshold is the band size at which membership switches from a hash
// set to a Bloom filter.
const bloomThreshold = 1000

// FreqClassFilter interface for both set and Bloom filter implementations
type FreqClassFilter interface {
	Contains(token string) bool
}

// SetFilter implements FreqClassFilter using a simple hash set
type SetFilter struct {
	tokens map[string]bool
}

func (sf *SetFilter) Contains(token string) bool {
	return sf.tokens[token]
}

// BloomFilterWrapper implements FreqClassFilter using a Bloom filter
type BloomFilterWrapper struct {
	filter *bloom.BloomFilter
}

func (bf *BloomFilterWrapper) Contains(token string) bool {
	return bf.filter.TestString(token)
}

// FrequencyBand is one slice of the token distribution.
type FrequencyBand struct {
	Tokens      []string // most frequent first
	Occurrences int
	filter      FreqClassFilter
}

// Contains reports whether token belongs to the band. Large bands answer
// through a Bloom filter and may report rare false positives.
func (b FrequencyBand) Contains(token string) bool {
	if b.filter == nil {
		return false
	}
	return b.filter.Contains(token)
}

// FrequencyBands partitions a vocabulary into bands of roughly equal
// occurrence mass, band 0 holding the most frequent tokens.
type FrequencyBands []FrequencyBand

// BandOf returns the first band containing token, or -1.
func (fb FrequencyBands) BandOf(token string) int {
	for i, b := range fb {
		if b.Contains(token) {
			return i
		}
	}
	return -1
}

// BuildFrequencyBands divides tokens into F bands. Each band accounts for
// roughly the same number of token occurrences (not unique tokens), so the
// first band is a handful of very common tokens and the last a long tail.
func BuildFrequencyBands(tokenCounts map[string]int, F int) FrequencyBands {
	if F <= 0 {
		F = 1
	}
	sorted := SortedCounts(tokenCounts, 0)

	total := 0
	for _, tc := range sorted {
		total += tc.Count
	}
	C := total / F

	bands := make(FrequencyBands, F)
	classIdx := 0
	runningTotal := 0
	for _, pair := range sorted {
		if classIdx < F-1 && runningTotal >= (classIdx+1)*C && len(bands[classIdx].Tokens) > 0 {
			classIdx++
		}
		bands[classIdx].Tokens = append(bands[classIdx].Tokens, pair.Token)
		bands[classIdx].Occurrences += pair.Count
		runningTotal += pair.Count
	}

	for i := range bands {
		tokens := bands[i].Tokens
		if len(tokens) < bloomThreshold {
			setFilter := &SetFilter{tokens: make(map[string]bool, len(tokens))}
			for _, token := range tokens {
				setFilter.tokens[token] = true
			}
			bands[i].filter = setFilter
			continue
		}
		bf := bloom.NewWithEstimates(uint(len(tokens)), 0.001)
		for _, token := range tokens {
			bf.AddString(token)
		}
		bands[i].filter = &BloomFilterWrapper{filter: bf}
	}
	return bands
}
