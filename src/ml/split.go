package ml

import (
	"math"
	"math/rand/v2"
	"slices"

	"social-sentiment/src/posts"
)

// DefaultTestSize is the fraction of rows held out for evaluation.
const DefaultTestSize = 0.3

// Split holds row indices of the training and evaluation partitions, each ascending.
type Split struct {
	Train []int
	Test  []int
}

// StratifiedSplit partitions rows per class so every class appears in both
// partitions. The same labels, testSize and seed always give the same split.
// A class with fewer than two rows cannot be split and yields an
// InsufficientDataError.
func StratifiedSplit(labels []string, testSize float64, seed uint64) (Split, error) {
	if testSize <= 0 || testSize >= 1 {
		testSize = DefaultTestSize
	}
	byClass := groupIndices(labels)
	classes := sortedKeys(byClass)
	for _, c := range classes {
		if n := len(byClass[c]); n < 2 {
			return Split{}, &posts.InsufficientDataError{Class: c, Count: n, Reason: "needs at least 2 rows to appear in both partitions"}
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var s Split
	for _, c := range classes {
		idx := slices.Clone(byClass[c])
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(math.Round(testSize * float64(len(idx))))
		nTest = max(1, min(nTest, len(idx)-1))
		s.Test = append(s.Test, idx[:nTest]...)
		s.Train = append(s.Train, idx[nTest:]...)
	}
	slices.Sort(s.Train)
	slices.Sort(s.Test)
	return s, nil
}

// RareClasses returns the classes with fewer than minCount rows, sorted.
func RareClasses(labels []string, minCount int) []string {
	byClass := groupIndices(labels)
	var out []string
	for _, c := range sortedKeys(byClass) {
		if len(byClass[c]) < minCount {
			out = append(out, c)
		}
	}
	return out
}

func groupIndices(labels []string) map[string][]int {
	out := make(map[string][]int)
	for i, l := range labels {
		out[l] = append(out[l], i)
	}
	return out
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Pick returns the elements of values at idx, in order.
func Pick[T any](values []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
