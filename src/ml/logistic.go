package ml

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"social-sentiment/src/posts"
)

// ErrNotFitted is returned when predicting with a model Fit has not trained.
var ErrNotFitted = errors.New("logistic: model is not fitted")

// LogisticRegression is a multinomial (softmax) linear classifier with an L2
// penalty on the coefficients. The intercepts are not penalized.
type LogisticRegression struct {
	// C is the inverse regularization strength.
	C float64
	// MaxIter bounds the L-BFGS iterations.
	MaxIter int

	classes []string
	dims    int
	// weights holds one block of dims coefficients plus an intercept per class.
	weights []float64
}

// NewLogisticRegression returns a classifier with C=1 and 100 iterations.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{C: 1.0, MaxIter: 100}
}

// Classes returns the class labels in model order.
func (m *LogisticRegression) Classes() []string {
	return slices.Clone(m.classes)
}

// Fit trains the model from scratch on X and labels y.
func (m *LogisticRegression) Fit(X Matrix, y []string) error {
	if len(X.Rows) != len(y) {
		return fmt.Errorf("logistic: %d rows but %d labels", len(X.Rows), len(y))
	}
	if len(y) == 0 {
		return &posts.InsufficientDataError{Reason: "no training rows"}
	}
	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	if len(classes) < 2 {
		return &posts.InsufficientDataError{Class: classes[0], Count: len(y), Reason: "training needs at least 2 classes"}
	}
	if m.C <= 0 {
		m.C = 1.0
	}
	if m.MaxIter <= 0 {
		m.MaxIter = 100
	}

	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}
	target := make([]int, len(y))
	for i, l := range y {
		target[i] = classIdx[l]
	}

	m.classes = classes
	m.dims = X.Cols
	k, stride := len(classes), X.Cols+1
	n := float64(len(y))
	alpha := 1 / (m.C * n)

	objective := func(grad, w []float64) float64 {
		if grad != nil {
			for i := range grad {
				grad[i] = 0
			}
		}
		scores := make([]float64, k)
		loss := 0.0
		for i, row := range X.Rows {
			m.scores(w, row, scores)
			lse := logSumExp(scores)
			loss += lse - scores[target[i]]
			if grad == nil {
				continue
			}
			for c := 0; c < k; c++ {
				d := math.Exp(scores[c] - lse)
				if c == target[i] {
					d--
				}
				d /= n
				base := c * stride
				for e, j := range row.Indices {
					grad[base+j] += d * row.Values[e]
				}
				grad[base+X.Cols] += d
			}
		}
		loss /= n

		reg := 0.0
		for c := 0; c < k; c++ {
			base := c * stride
			coef := w[base : base+X.Cols]
			reg += floats.Dot(coef, coef)
			if grad != nil {
				floats.AddScaled(grad[base:base+X.Cols], alpha, coef)
			}
		}
		return loss + 0.5*alpha*reg
	}

	problem := optimize.Problem{
		Func: func(w []float64) float64 { return objective(nil, w) },
		Grad: func(grad, w []float64) { objective(grad, w) },
	}
	settings := &optimize.Settings{
		MajorIterations:   m.MaxIter,
		GradientThreshold: 1e-5,
	}
	init := make([]float64, k*stride)
	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if result == nil {
		if err == nil {
			err = errors.New("optimizer returned no result")
		}
		return fmt.Errorf("logistic: %w", err)
	}
	if err != nil {
		slog.Warn("Logistic regression did not fully converge", "status", result.Status.String(), "error", err)
	}
	m.weights = slices.Clone(result.X)
	slog.Debug("Logistic regression fitted",
		"classes", k, "features", X.Cols, "rows", len(y),
		"iterations", result.MajorIterations, "loss", result.F)
	return nil
}

// scores fills out with the linear score of each class for one row.
func (m *LogisticRegression) scores(w []float64, row SparseVector, out []float64) {
	stride := m.dims + 1
	for c := range out {
		base := c * stride
		s := w[base+m.dims]
		for e, j := range row.Indices {
			if j < m.dims {
				s += w[base+j] * row.Values[e]
			}
		}
		out[c] = s
	}
}

// PredictProba returns class probabilities per row, columns in Classes order.
func (m *LogisticRegression) PredictProba(X Matrix) ([][]float64, error) {
	if m.weights == nil {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(X.Rows))
	for i, row := range X.Rows {
		p := make([]float64, len(m.classes))
		m.scores(m.weights, row, p)
		lse := logSumExp(p)
		for c := range p {
			p[c] = math.Exp(p[c] - lse)
		}
		out[i] = p
	}
	return out, nil
}

// Predict returns the most probable label per row.
func (m *LogisticRegression) Predict(X Matrix) ([]string, error) {
	if m.weights == nil {
		return nil, ErrNotFitted
	}
	out := make([]string, len(X.Rows))
	scores := make([]float64, len(m.classes))
	for i, row := range X.Rows {
		m.scores(m.weights, row, scores)
		out[i] = m.classes[floats.MaxIdx(scores)]
	}
	return out, nil
}

func logSumExp(x []float64) float64 {
	mx := floats.Max(x)
	sum := 0.0
	for _, v := range x {
		sum += math.Exp(v - mx)
	}
	return mx + math.Log(sum)
}
