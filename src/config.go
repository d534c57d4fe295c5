package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"social-sentiment/src/analysis"
	"social-sentiment/src/mq"
)

// Config struct for YAML config file
type Config struct {
	Input         string  `yaml:"input"`
	Delimiter     string  `yaml:"delimiter"`
	Source        string  `yaml:"source"`
	OutputDir     string  `yaml:"output_dir"`
	LogDir        string  `yaml:"log_dir"`
	LogLevel      string  `yaml:"log_level"`
	Timezone      string  `yaml:"timezone"`
	Seed          uint64  `yaml:"seed"`
	TestSize      float64 `yaml:"test_size"`
	MaxFeatures   int     `yaml:"max_features"`
	RareClasses   string  `yaml:"rare_classes"`
	FreqClasses   int     `yaml:"freq_classes"`
	Keywords      int     `yaml:"keywords"`
	MaxSentiments int     `yaml:"max_sentiments"`
	Stopwords     string  `yaml:"stopwords"`
	PreviewRows   int     `yaml:"preview_rows"`

	RabbitMQ  mq.RabbitMQConfig `yaml:"rabbitmq"`
	Dashboard DashboardConfig   `yaml:"dashboard"`
}

// DashboardConfig is the dashboard section of the config file.
type DashboardConfig struct {
	Addr     string `yaml:"addr"`
	Title    string `yaml:"title"`
	Source   string `yaml:"source"`
	MockRows int    `yaml:"mock_rows"`
	// MockSeed fixes the generated posts. Zero draws new posts per request.
	MockSeed uint64 `yaml:"mock_seed"`
}

// Loader sources.
const (
	SourceFile  = "file"
	SourceQueue = "queue"
)

// Dashboard sources.
const (
	DashboardMock    = "mock"
	DashboardDataset = "dataset"
)

func defaultConfig() Config {
	return Config{
		Input:         "data/sentimentdataset.csv",
		Delimiter:     ",",
		Source:        SourceFile,
		OutputDir:     "output",
		LogLevel:      "info",
		Timezone:      "UTC",
		Seed:          42,
		TestSize:      0.3,
		MaxFeatures:   1000,
		RareClasses:   analysis.RareClassesFail,
		FreqClasses:   5,
		Keywords:      10,
		MaxSentiments: 10,
		PreviewRows:   5,
		RabbitMQ: mq.RabbitMQConfig{
			Host:        "localhost",
			Port:        5672,
			Username:    "guest",
			Password:    "guest",
			Queue:       "posts_in",
			DialRetries: 3,
			DialBackoff: 500 * time.Millisecond,
		},
		Dashboard: DashboardConfig{
			Addr:     ":8050",
			Title:    "Social media sentiment",
			Source:   DashboardMock,
			MockRows: 200,
		},
	}
}

// loadConfig reads the YAML file over the defaults, so absent keys keep
// their default value.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Input == "" && c.Source == SourceFile {
		return fmt.Errorf("config: input must be set for source %q", SourceFile)
	}
	if len([]rune(c.Delimiter)) != 1 {
		return fmt.Errorf("config: delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.Source != SourceFile && c.Source != SourceQueue {
		return fmt.Errorf("config: source must be %q or %q, got %q", SourceFile, SourceQueue, c.Source)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return fmt.Errorf("config: test_size must be in (0,1), got %v", c.TestSize)
	}
	if c.MaxFeatures <= 0 {
		return fmt.Errorf("config: max_features must be positive, got %d", c.MaxFeatures)
	}
	if c.FreqClasses <= 0 {
		return fmt.Errorf("config: freq_classes must be positive, got %d", c.FreqClasses)
	}
	if c.RareClasses != analysis.RareClassesFail && c.RareClasses != analysis.RareClassesDrop {
		return fmt.Errorf("config: rare_classes must be %q or %q, got %q",
			analysis.RareClassesFail, analysis.RareClassesDrop, c.RareClasses)
	}
	if c.Dashboard.Source != DashboardMock && c.Dashboard.Source != DashboardDataset {
		return fmt.Errorf("config: dashboard.source must be %q or %q, got %q",
			DashboardMock, DashboardDataset, c.Dashboard.Source)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone: %w", err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) delimiter() rune {
	return []rune(c.Delimiter)[0]
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return level, nil
}

// setupLogger returns a slog.Logger writing to <logDir>/pipeline.log, or to
// stderr when logDir is empty. The returned closer must be closed on exit.
func setupLogger(logDir, levelName string) (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(levelName)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if logDir == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, err
	}
	logPath := filepath.Join(logDir, "pipeline.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(logFile, opts))
	return logger, logFile, nil
}
