package ml

import (
	"fmt"
	"slices"
	"strings"

	"social-sentiment/src/posts"
)

// ClassMetrics is precision, recall and F1 for one label.
type ClassMetrics struct {
	Label     string  `json:"label" yaml:"label"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
	Support   int     `json:"support" yaml:"support"`
}

// ConfusionMatrix counts (true label, predicted label) pairs. Labels index
// both axes; Counts[i][j] is true Labels[i] predicted as Labels[j].
type ConfusionMatrix struct {
	Labels []string `json:"labels" yaml:"labels"`
	Counts [][]int  `json:"counts" yaml:"counts"`
}

// Get returns the count of truth predicted as pred, zero for unknown labels.
func (cm ConfusionMatrix) Get(truth, pred string) int {
	i, j := slices.Index(cm.Labels, truth), slices.Index(cm.Labels, pred)
	if i < 0 || j < 0 {
		return 0
	}
	return cm.Counts[i][j]
}

// RowSum is the number of rows whose true label is truth.
func (cm ConfusionMatrix) RowSum(truth string) int {
	i := slices.Index(cm.Labels, truth)
	if i < 0 {
		return 0
	}
	sum := 0
	for _, c := range cm.Counts[i] {
		sum += c
	}
	return sum
}

// Report is the evaluation of predictions against ground truth.
type Report struct {
	Accuracy    float64         `json:"accuracy" yaml:"accuracy"`
	Classes     []ClassMetrics  `json:"classes" yaml:"classes"`
	MacroAvg    ClassMetrics    `json:"macro_avg" yaml:"macro_avg"`
	WeightedAvg ClassMetrics    `json:"weighted_avg" yaml:"weighted_avg"`
	Support     int             `json:"support" yaml:"support"`
	Confusion   ConfusionMatrix `json:"confusion" yaml:"confusion"`
}

// Evaluate scores predictions. Labels are the sorted union of both inputs.
// Precision or recall with an empty denominator is reported as zero.
func Evaluate(truth, pred []string) (Report, error) {
	if len(truth) != len(pred) {
		return Report{}, fmt.Errorf("evaluate: %d true labels but %d predictions", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return Report{}, &posts.InsufficientDataError{Reason: "nothing to evaluate"}
	}

	labels := append(slices.Clone(truth), pred...)
	slices.Sort(labels)
	labels = slices.Compact(labels)
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}

	cm := ConfusionMatrix{Labels: labels, Counts: make([][]int, len(labels))}
	for i := range cm.Counts {
		cm.Counts[i] = make([]int, len(labels))
	}
	correct := 0
	for i := range truth {
		cm.Counts[idx[truth[i]]][idx[pred[i]]]++
		if truth[i] == pred[i] {
			correct++
		}
	}

	r := Report{
		Accuracy:    float64(correct) / float64(len(truth)),
		Support:     len(truth),
		Confusion:   cm,
		MacroAvg:    ClassMetrics{Label: "macro avg", Support: len(truth)},
		WeightedAvg: ClassMetrics{Label: "weighted avg", Support: len(truth)},
	}
	for i, l := range labels {
		tp := cm.Counts[i][i]
		support, predicted := 0, 0
		for j := range labels {
			support += cm.Counts[i][j]
			predicted += cm.Counts[j][i]
		}
		c := ClassMetrics{
			Label:     l,
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, support),
			Support:   support,
		}
		if c.Precision+c.Recall > 0 {
			c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
		}
		r.Classes = append(r.Classes, c)

		n := float64(len(labels))
		r.MacroAvg.Precision += c.Precision / n
		r.MacroAvg.Recall += c.Recall / n
		r.MacroAvg.F1 += c.F1 / n

		w := float64(support) / float64(len(truth))
		r.WeightedAvg.Precision += c.Precision * w
		r.WeightedAvg.Recall += c.Recall * w
		r.WeightedAvg.F1 += c.F1 * w
	}
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as a plain-text classification table.
func (r Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Support)
	for _, c := range []ClassMetrics{r.MacroAvg, r.WeightedAvg} {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	return b.String()
}
