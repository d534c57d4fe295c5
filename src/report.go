package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"social-sentiment/src/analysis"
	"social-sentiment/src/ml"
	"social-sentiment/src/pipeline"
)

const reportFile = "report.yaml"

// RunReport is the machine readable summary written after a batch run.
type RunReport struct {
	RunID       string                       `yaml:"run_id"`
	GeneratedAt time.Time                    `yaml:"generated_at"`
	Source      string                       `yaml:"source"`
	Rows        int                          `yaml:"rows"`
	Sentiments  []pipeline.LabelCount        `yaml:"sentiments"`
	Platforms   []string                     `yaml:"platforms"`
	Dropped     []string                     `yaml:"dropped_classes,omitempty"`
	Vocabulary  int                          `yaml:"vocabulary"`
	TopTerms    []ml.TermWeight              `yaml:"top_terms"`
	Keywords    []pipeline.SentimentKeywords `yaml:"keywords,omitempty"`
	TrainRows   int                          `yaml:"train_rows"`
	TestRows    int                          `yaml:"test_rows"`
	Evaluation  ml.Report                    `yaml:"evaluation"`
}

func newRunReport(source string, res *analysis.Result) RunReport {
	top := res.TopTerms
	if len(top) > 20 {
		top = top[:20]
	}
	return RunReport{
		RunID:       res.RunID,
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Rows:        res.Table.Len(),
		Sentiments:  res.Sentiments,
		Platforms:   res.Platforms.Keys,
		Dropped:     res.Dropped,
		Vocabulary:  len(res.Vocabulary),
		TopTerms:    top,
		Keywords:    res.Keywords,
		TrainRows:   len(res.Split.Train),
		TestRows:    len(res.Split.Test),
		Evaluation:  res.Report,
	}
}

func writeReport(path, source string, res *analysis.Result) error {
	data, err := yaml.Marshal(newRunReport(source, res))
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
