package analysis

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"social-sentiment/src/ml"
	"social-sentiment/src/pipeline"
	"social-sentiment/src/posts"
)

// Rare class policies.
const (
	RareClassesFail = "fail"
	RareClassesDrop = "drop"
)

// StageObserver receives the duration of each pipeline stage.
type StageObserver interface {
	ObserveStage(stage string, d time.Duration)
}

// Options configures one analysis run.
type Options struct {
	MaxFeatures int
	TestSize    float64
	Seed        uint64
	// RareClasses is RareClassesFail (default) or RareClassesDrop.
	RareClasses string
	Bands       int
	Keywords    int
	Location    *time.Location
	Stopwords   pipeline.Stopwords
	Observer    StageObserver
	Logger      *slog.Logger
}

// Result is everything the presentation layer renders. Nothing in it is
// modified after Run returns.
type Result struct {
	RunID string

	Table      posts.Table
	Sentiments []pipeline.LabelCount
	Hourly     pipeline.GroupedCount[int]
	Daily      pipeline.GroupedCount[time.Time]
	Platforms  pipeline.GroupedCount[string]

	Hashtags []pipeline.TokenCount
	Bands    pipeline.FrequencyBands
	Keywords []pipeline.SentimentKeywords

	Vocabulary []string
	TopTerms   []ml.TermWeight
	Dropped    []string
	Split      ml.Split
	Report     ml.Report
}

// stageRunner times one step, reports it to the observer and prefixes any
// error with the step name.
type stageRunner struct {
	observer StageObserver
	logger   *slog.Logger
}

func (s stageRunner) run(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveStage(name, d)
	}
	if err != nil {
		s.logger.Error("Stage failed", "stage", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	s.logger.Debug("Stage done", "stage", name, "duration", d)
	return nil
}

// Run cleans raw, aggregates it, trains the hashtag classifier and evaluates
// it on the held-out partition. Any stage error aborts the run.
func Run(raw posts.RawTable, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	res := &Result{RunID: uuid.NewString()}
	logger = logger.With("run_id", res.RunID)

	stage := stageRunner{observer: opts.Observer, logger: logger}.run

	err := stage("clean", func() error {
		var err error
		res.Table, err = pipeline.Cleaner{Location: opts.Location}.Clean(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Cleaned dataset", "rows", res.Table.Len())

	err = stage("aggregate", func() error {
		res.Sentiments = pipeline.SentimentCounts(res.Table)
		res.Hourly = pipeline.HourlyCounts(res.Table)
		res.Daily = pipeline.DailyCounts(res.Table)
		res.Platforms = pipeline.PlatformCounts(res.Table)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage("tokens", func() error {
		counter := pipeline.HashtagFrequencies(res.Table)
		res.Hashtags = counter.TopN(0)
		res.Bands = pipeline.BuildFrequencyBands(counter.Counts(), opts.Bands)
		res.Keywords = pipeline.Keywords(res.Table, opts.Stopwords, opts.Keywords)
		return nil
	})
	if err != nil {
		return nil, err
	}

	train := res.Table
	if opts.RareClasses == RareClassesDrop {
		res.Dropped = ml.RareClasses(train.Sentiments(), 2)
		if len(res.Dropped) > 0 {
			train = train.Filter(func(r posts.Record) bool {
				return !slices.Contains(res.Dropped, r.Sentiment)
			})
			logger.Warn("Dropped classes too small to split", "classes", len(res.Dropped), "rows_left", train.Len())
		}
	}

	feat := ml.NewFeaturizer(opts.MaxFeatures)
	labels := train.Sentiments()
	var matrix ml.Matrix
	err = stage("featurize", func() error {
		var err error
		matrix, err = feat.FitTransform(train.Hashtags())
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Vocabulary = feat.Vocabulary()
	res.TopTerms = feat.TermWeights(matrix)

	err = stage("split", func() error {
		var err error
		res.Split, err = ml.StratifiedSplit(labels, opts.TestSize, opts.Seed)
		return err
	})
	if err != nil {
		return nil, err
	}

	model := ml.NewLogisticRegression()
	err = stage("fit", func() error {
		return model.Fit(matrix.Subset(res.Split.Train), ml.Pick(labels, res.Split.Train))
	})
	if err != nil {
		return nil, err
	}

	err = stage("evaluate", func() error {
		pred, err := model.Predict(matrix.Subset(res.Split.Test))
		if err != nil {
			return err
		}
		res.Report, err = ml.Evaluate(ml.Pick(labels, res.Split.Test), pred)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Classifier evaluated",
		"train_rows", len(res.Split.Train),
		"test_rows", len(res.Split.Test),
		"vocabulary", len(res.Vocabulary),
		"accuracy", res.Report.Accuracy)
	return res, nil
}
