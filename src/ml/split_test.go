package ml

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-sentiment/src/posts"
)

func labelsOf(counts map[string]int) []string {
	var out []string
	for _, l := range []string{"a", "b", "c"} {
		for i := 0; i < counts[l]; i++ {
			out = append(out, l)
		}
	}
	return out
}

func TestStratifiedSplitProportions(t *testing.T) {
	labels := labelsOf(map[string]int{"a": 10, "b": 4})
	s, err := StratifiedSplit(labels, 0.3, 42)
	require.NoError(t, err)

	assert.Len(t, s.Test, 4)
	assert.Len(t, s.Train, 10)
	assert.True(t, slices.IsSorted(s.Train))
	assert.True(t, slices.IsSorted(s.Test))

	count := func(idx []int, label string) int {
		n := 0
		for _, i := range idx {
			if labels[i] == label {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 3, count(s.Test, "a"))
	assert.Equal(t, 1, count(s.Test, "b"))

	all := append(slices.Clone(s.Train), s.Test...)
	slices.Sort(all)
	for i, v := range all {
		require.Equal(t, i, v, "every row must land in exactly one partition")
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	labels := labelsOf(map[string]int{"a": 20, "b": 15, "c": 9})

	first, err := StratifiedSplit(labels, 0.3, 7)
	require.NoError(t, err)
	second, err := StratifiedSplit(labels, 0.3, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := StratifiedSplit(labels, 0.3, 8)
	require.NoError(t, err)
	assert.NotEqual(t, first.Test, other.Test)
}

func TestStratifiedSplitSmallClasses(t *testing.T) {
	s, err := StratifiedSplit([]string{"a", "a", "b", "b"}, 0.3, 1)
	require.NoError(t, err)
	assert.Len(t, s.Test, 2)
	assert.Len(t, s.Train, 2)

	_, err = StratifiedSplit([]string{"a", "a", "a", "b"}, 0.3, 1)
	var insufficient *posts.InsufficientDataError
	require.True(t, errors.As(err, &insufficient), "got %v", err)
	assert.Equal(t, "b", insufficient.Class)
	assert.Equal(t, 1, insufficient.Count)
}

func TestRareClasses(t *testing.T) {
	got := RareClasses([]string{"x", "y", "y", "z", "w", "w"}, 2)
	assert.Equal(t, []string{"x", "z"}, got)
	assert.Empty(t, RareClasses([]string{"x", "x"}, 2))
}

func TestPick(t *testing.T) {
	assert.Equal(t, []string{"c", "a"}, Pick([]string{"a", "b", "c"}, []int{2, 0}))
}
