package ml

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-sentiment/src/posts"
)

func TestFeaturizerVocabularyCap(t *testing.T) {
	f := NewFeaturizer(2)
	m, err := f.FitTransform([]string{"#a #b", "#a #c"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, f.Vocabulary())
	assert.Equal(t, 2, m.Cols)
	require.Len(t, m.Rows, 2)

	idfA, ok := f.IDF("a")
	require.True(t, ok)
	assert.InDelta(t, 1.0, idfA, 1e-12)
	idfB, _ := f.IDF("B")
	assert.InDelta(t, math.Log(3.0/2.0)+1, idfB, 1e-12)

	// row 1 only holds "a" once the unseen "c" is dropped
	assert.Equal(t, []int{0}, m.Rows[1].Indices)
	assert.InDelta(t, 1.0, m.Rows[1].Values[0], 1e-12)
}

func TestFeaturizerRowsAreUnitLength(t *testing.T) {
	f := NewFeaturizer(0)
	m, err := f.FitTransform([]string{"#Sun #beach #sun", "#rain", "#beach #rain #cold"})
	require.NoError(t, err)

	for i, r := range m.Rows {
		norm := 0.0
		for _, v := range r.Values {
			norm += v * v
		}
		assert.InDelta(t, 1.0, norm, 1e-9, "row %d", i)
	}
	dense := m.Dense(0)
	assert.Len(t, dense, m.Cols)
	assert.Greater(t, dense[indexOf(f.Vocabulary(), "sun")], dense[indexOf(f.Vocabulary(), "beach")])
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestFeaturizerDeterministic(t *testing.T) {
	docs := []string{"#x #y", "#y #z #z", "#x", "#w #x #y #z"}
	a, err := NewFeaturizer(3).FitTransform(docs)
	require.NoError(t, err)
	b, err := NewFeaturizer(3).FitTransform(docs)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFeaturizerUnseenTerms(t *testing.T) {
	f := NewFeaturizer(10)
	require.NoError(t, f.Fit([]string{"#a", "#b"}))

	m := f.Transform([]string{"#nothing #known"})
	assert.Empty(t, m.Rows[0].Indices)
	_, ok := f.IDF("nothing")
	assert.False(t, ok)
}

func TestFeaturizerEmptyVocabulary(t *testing.T) {
	_, err := NewFeaturizer(10).FitTransform([]string{"", "  #  "})

	var insufficient *posts.InsufficientDataError
	assert.True(t, errors.As(err, &insufficient), "got %v", err)
}

func TestTermWeights(t *testing.T) {
	f := NewFeaturizer(10)
	m, err := f.FitTransform([]string{"#a", "#a", "#b"})
	require.NoError(t, err)

	w := f.TermWeights(m)
	require.Len(t, w, 2)
	assert.Equal(t, "a", w[0].Term)
	assert.InDelta(t, 2.0, w[0].Weight, 1e-12)
	assert.InDelta(t, 1.0, w[1].Weight, 1e-12)
}

func TestMatrixSubset(t *testing.T) {
	m := Matrix{Cols: 2, Rows: []SparseVector{
		{Indices: []int{0}, Values: []float64{1}},
		{Indices: []int{1}, Values: []float64{2}},
		{Indices: []int{0, 1}, Values: []float64{3, 4}},
	}}
	sub := m.Subset([]int{2, 0})

	assert.Equal(t, 2, sub.Cols)
	assert.Equal(t, []float64{3, 4}, sub.Dense(0))
	assert.Equal(t, []float64{1, 0}, sub.Dense(1))
}
