package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"social-sentiment/src/analysis"
	"social-sentiment/src/dashboard"
	"social-sentiment/src/filter"
	"social-sentiment/src/loader"
	"social-sentiment/src/metrics"
	"social-sentiment/src/mq"
	"social-sentiment/src/posts"
	"social-sentiment/src/viz"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	defer a.close()
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return 1
	}
	return 0
}

// app carries what every command needs once flags and config are resolved.
type app struct {
	configPath string
	source     string
	cfg        *Config
	logger     *slog.Logger
	logCloser  io.Closer
}

// close releases the log file. It is safe to call more than once.
func (a *app) close() error {
	if a.logCloser == nil {
		return nil
	}
	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "social-sentiment",
		Short: "Exploratory sentiment analysis of social media posts",
		Long: `Loads a dataset of social media posts, cleans and aggregates it, trains a
hashtag based sentiment classifier and writes charts plus a report.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), a.cfg, cmd.OutOrStdout(), a.logger)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "Path to YAML config file")
	root.PersistentFlags().StringVar(&a.source, "source", "", "Loader source: file or queue (overrides config)")

	root.AddCommand(newDashboardCmd(a), newPublishCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
		d := defaultConfig()
		cfg = &d
	case err != nil:
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.source != "" {
		cfg.Source = a.source
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	logger, closer, err := setupLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	a.logger, a.logCloser = logger, closer
	slog.SetDefault(logger)
	return nil
}

func newDashboardCmd(a *app) *cobra.Command {
	var addr, source string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Dashboard.Addr = addr
			}
			if source != "" {
				cfg.Dashboard.Source = source
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			opts, err := analysisOptions(cfg, a.logger)
			if err != nil {
				return err
			}

			var src dashboard.Source = dashboard.MockSource{Rows: cfg.Dashboard.MockRows, Seed: cfg.Dashboard.MockSeed}
			if cfg.Dashboard.Source == DashboardDataset {
				src = dashboard.DatasetSource{Path: cfg.Input, Options: loader.Options{Comma: cfg.delimiter()}}
			}
			srv := dashboard.New(dashboard.Config{
				Addr:          cfg.Dashboard.Addr,
				Title:         cfg.Dashboard.Title,
				MaxSentiments: cfg.MaxSentiments,
				ReadTimeout:   30 * time.Second,
				WriteTimeout:  60 * time.Second,
			}, src, opts, a.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Dashboard on %s (source %s)\n", cfg.Dashboard.Addr, src.Name())
			return srv.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&source, "data", "", "Dashboard data: mock or dataset (overrides config)")
	return cmd
}

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <csv>",
		Short: "Publish every row of a CSV file to the RabbitMQ queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return publish(cmd.Context(), a.cfg, args[0], cmd.OutOrStdout(), a.logger)
		},
	}
}

// publisher is the sending half of the queue.
type publisher interface {
	Publish(ctx context.Context, row []byte) (string, error)
}

func publish(ctx context.Context, cfg *Config, path string, out io.Writer, logger *slog.Logger) error {
	opts := loader.Options{Comma: cfg.delimiter()}
	raw, err := loader.Load(path, opts)
	if err != nil {
		return err
	}
	q, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer q.Close()

	n, err := publishTable(ctx, q, raw, opts)
	if err != nil {
		return err
	}
	logger.Info("Published rows", "queue", cfg.RabbitMQ.Queue, "rows", n)
	fmt.Fprintln(out, publishSummary(n, cfg.RabbitMQ.Queue, q, logger))
	return nil
}

// queueInspector reports the depth of the queue.
type queueInspector interface {
	QueueInfo() (mq.QueueInfo, error)
}

// publishSummary describes a finished publish, including the queue depth when
// the broker can report it.
func publishSummary(rows int, queue string, q queueInspector, logger *slog.Logger) string {
	msg := fmt.Sprintf("Published %d rows to %s", rows, queue)
	info, err := q.QueueInfo()
	if err != nil {
		logger.Warn("Failed to inspect queue", "queue", queue, "error", err)
		return msg
	}
	return fmt.Sprintf("%s (%d messages waiting, %d consumers)", msg, info.Messages, info.Consumers)
}

// publishTable sends the header line and then every row. Consumers skip
// repeated header lines, so a queue may hold several published files.
func publishTable(ctx context.Context, p publisher, raw posts.RawTable, opts loader.Options) (int, error) {
	head, err := loader.EncodeRow(raw.Columns, opts)
	if err != nil {
		return 0, err
	}
	if _, err := p.Publish(ctx, head); err != nil {
		return 0, err
	}
	for i, row := range raw.Rows {
		line, err := loader.EncodeRow(row, opts)
		if err != nil {
			return i, fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, err := p.Publish(ctx, line); err != nil {
			return i, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return len(raw.Rows), nil
}

func analysisOptions(cfg *Config, logger *slog.Logger) (analysis.Options, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return analysis.Options{}, err
	}
	stop := filter.NewStopwordFilter()
	if cfg.Stopwords != "" {
		if err := stop.LoadFromFile(cfg.Stopwords); err != nil {
			return analysis.Options{}, fmt.Errorf("stopwords: %w", err)
		}
	}
	return analysis.Options{
		MaxFeatures: cfg.MaxFeatures,
		TestSize:    cfg.TestSize,
		Seed:        cfg.Seed,
		RareClasses: cfg.RareClasses,
		Bands:       cfg.FreqClasses,
		Keywords:    cfg.Keywords,
		Location:    loc,
		Stopwords:   stop,
		Logger:      logger,
	}, nil
}

func loadRaw(ctx context.Context, cfg *Config, logger *slog.Logger) (posts.RawTable, error) {
	opts := loader.Options{Comma: cfg.delimiter()}
	if cfg.Source == SourceFile {
		return loader.Load(cfg.Input, opts)
	}
	q, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ)
	if err != nil {
		return posts.RawTable{}, &posts.DataAccessError{Path: "queue", Err: err}
	}
	defer q.Close()
	if info, err := q.QueueInfo(); err != nil {
		logger.Warn("Failed to inspect queue", "queue", cfg.RabbitMQ.Queue, "error", err)
	} else {
		logger.Info("Draining queue", "queue", info.Name, "messages", info.Messages, "consumers", info.Consumers)
	}
	return loader.FromQueue(ctx, q, q.Header(), opts)
}

// runPipeline is the batch run: load, describe, analyse, print and write
// every output file.
func runPipeline(ctx context.Context, cfg *Config, out io.Writer, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	raw, err := loadRaw(ctx, cfg, logger)
	if err != nil {
		collector.RunFinished(cfg.Source, err)
		return err
	}
	logger.Info("Loaded dataset", "source", cfg.Source, "rows", raw.Len(), "columns", len(raw.Columns))
	printPreview(out, raw, cfg.PreviewRows)
	printDescribe(out, loader.Describe(raw))

	opts, err := analysisOptions(cfg, logger)
	if err != nil {
		return err
	}
	opts.Observer = collector
	res, err := analysis.Run(raw, opts)
	collector.RunFinished(cfg.Source, err)
	if err != nil {
		return err
	}
	collector.RunSucceeded(res.Table.Len(), len(res.Vocabulary), res.Report.Accuracy)
	printResult(out, res, cfg.MaxSentiments)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	written, err := viz.WriteStatic(res, cfg.OutputDir, viz.StaticOptions{MaxSentiments: cfg.MaxSentiments})
	if err != nil {
		return err
	}

	htmlPath := filepath.Join(cfg.OutputDir, viz.FileReport)
	if err := writeHTML(htmlPath, res, cfg.MaxSentiments); err != nil {
		return err
	}
	reportPath := filepath.Join(cfg.OutputDir, reportFile)
	if err := writeReport(reportPath, cfg.Source, res); err != nil {
		return err
	}
	metricsPath := filepath.Join(cfg.OutputDir, "metrics.prom")
	if err := prometheus.WriteToTextfile(metricsPath, reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	written = append(written, htmlPath, reportPath, metricsPath)

	if cfg.LogDir != "" {
		if err := appendStats(filepath.Join(cfg.LogDir, "stats.csv"), cfg.Source, res); err != nil {
			logger.Warn("Failed to append stats", "error", err)
		}
	}
	printOutputs(out, written)
	return nil
}

func writeHTML(path string, res *analysis.Result, maxSentiments int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = viz.RenderPage(f, res, viz.PageOptions{
		Title:         "Social media sentiment report",
		Detailed:      true,
		MaxSentiments: maxSentiments,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
