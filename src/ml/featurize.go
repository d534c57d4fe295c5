package ml

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"social-sentiment/src/pipeline"
	"social-sentiment/src/posts"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 1000

// SparseVector is one row of a feature matrix; Indices are ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Matrix is a row-major sparse matrix with a fixed column count.
type Matrix struct {
	Rows []SparseVector
	Cols int
}

// Subset returns the rows at idx, in that order.
func (m Matrix) Subset(idx []int) Matrix {
	out := Matrix{Rows: make([]SparseVector, len(idx)), Cols: m.Cols}
	for i, j := range idx {
		out.Rows[i] = m.Rows[j]
	}
	return out
}

// Dense expands row i into a full-width slice.
func (m Matrix) Dense(i int) []float64 {
	out := make([]float64, m.Cols)
	r := m.Rows[i]
	for k, j := range r.Indices {
		out[j] = r.Values[k]
	}
	return out
}

// Featurizer is a TF-IDF vectorizer over hashtag tokens. The vocabulary is
// fixed by Fit and reused unchanged by Transform.
type Featurizer struct {
	MaxFeatures int

	vocab map[string]int
	terms []string
	idf   []float64
}

// NewFeaturizer returns a Featurizer keeping at most maxFeatures terms.
func NewFeaturizer(maxFeatures int) *Featurizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Featurizer{MaxFeatures: maxFeatures}
}

// Fit learns the vocabulary and inverse document frequencies. Terms are ranked
// by total count across the corpus, ties broken alphabetically; the kept terms
// are then laid out in alphabetical column order.
func (f *Featurizer) Fit(docs []string) error {
	termCount := make(map[string]int)
	docFreq := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]bool)
		for _, tok := range pipeline.HashtagTokens(d) {
			termCount[tok]++
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
	}
	if len(termCount) == 0 {
		return &posts.InsufficientDataError{Reason: "empty vocabulary: no hashtag tokens in corpus"}
	}

	ranked := pipeline.SortedCounts(termCount, f.MaxFeatures)
	terms := make([]string, len(ranked))
	for i, tc := range ranked {
		terms[i] = tc.Token
	}
	slices.Sort(terms)

	n := float64(len(docs))
	f.terms = terms
	f.vocab = make(map[string]int, len(terms))
	f.idf = make([]float64, len(terms))
	for i, t := range terms {
		f.vocab[t] = i
		f.idf[i] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}
	return nil
}

// Transform encodes docs with the fitted vocabulary. Unseen terms get no
// weight; each non-empty row is L2-normalized.
func (f *Featurizer) Transform(docs []string) Matrix {
	m := Matrix{Rows: make([]SparseVector, len(docs)), Cols: len(f.terms)}
	for i, d := range docs {
		counts := make(map[int]int)
		for _, tok := range pipeline.HashtagTokens(d) {
			if j, ok := f.vocab[tok]; ok {
				counts[j]++
			}
		}
		row := SparseVector{
			Indices: make([]int, 0, len(counts)),
			Values:  make([]float64, 0, len(counts)),
		}
		for j := range counts {
			row.Indices = append(row.Indices, j)
		}
		slices.Sort(row.Indices)
		norm := 0.0
		for _, j := range row.Indices {
			w := float64(counts[j]) * f.idf[j]
			row.Values = append(row.Values, w)
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for k := range row.Values {
				row.Values[k] /= norm
			}
		}
		m.Rows[i] = row
	}
	return m
}

// FitTransform fits on docs and encodes them.
func (f *Featurizer) FitTransform(docs []string) (Matrix, error) {
	if err := f.Fit(docs); err != nil {
		return Matrix{}, err
	}
	return f.Transform(docs), nil
}

// Vocabulary returns the fitted terms in column order.
func (f *Featurizer) Vocabulary() []string {
	return slices.Clone(f.terms)
}

// IDF returns the inverse document frequency of a term, and whether it is in
// the vocabulary.
func (f *Featurizer) IDF(term string) (float64, bool) {
	j, ok := f.vocab[strings.ToLower(term)]
	if !ok {
		return 0, false
	}
	return f.idf[j], true
}

// TermWeights sums each column over all rows, giving a corpus-level weight per
// term ordered by weight descending then term.
func (f *Featurizer) TermWeights(m Matrix) []TermWeight {
	sums := make([]float64, len(f.terms))
	for _, r := range m.Rows {
		for k, j := range r.Indices {
			sums[j] += r.Values[k]
		}
	}
	out := make([]TermWeight, len(f.terms))
	for j, t := range f.terms {
		out[j] = TermWeight{Term: t, Weight: sums[j]}
	}
	slices.SortFunc(out, func(a, b TermWeight) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return strings.Compare(a.Term, b.Term)
	})
	return out
}

// TermWeight is a vocabulary term and its summed TF-IDF weight.
type TermWeight struct {
	Term   string  `json:"term" yaml:"term"`
	Weight float64 `json:"weight" yaml:"weight"`
}
