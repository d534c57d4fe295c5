package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"social-sentiment/src/analysis"
	"social-sentiment/src/metrics"
	"social-sentiment/src/viz"
)

// Config configures the dashboard HTTP server.
type Config struct {
	Addr  string
	Title string
	// MaxSentiments caps the sentiments drawn in charts. Zero draws all.
	MaxSentiments int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// Server renders the dashboard. Every page and summary request runs the
// whole analysis against a fresh load of the source; nothing is shared
// between requests apart from the metrics.
type Server struct {
	cfg      Config
	source   Source
	options  analysis.Options
	registry *prometheus.Registry
	metrics  *metrics.Collector
	logger   *slog.Logger
	router   *gin.Engine
}

// New builds the server and its routes. opts is applied to every run; its
// Observer is replaced by the server's metrics collector.
func New(cfg Config, source Source, opts analysis.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Title == "" {
		cfg.Title = "Social media sentiment"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s := &Server{
		cfg:      cfg,
		source:   source,
		registry: reg,
		metrics:  metrics.NewCollector(reg),
		logger:   logger.With("component", "dashboard", "source", source.Name()),
	}
	opts.Observer = s.metrics
	opts.Logger = s.logger
	s.options = opts
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())
	r.GET("/", s.handleIndex)
	r.GET("/api/summary", s.handleSummary)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "source": s.source.Name()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return r
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		s.metrics.DashboardRequest(path, c.Writer.Status())
		s.logger.Debug("Request served", "path", path, "status", c.Writer.Status(), "duration", time.Since(start))
	}
}

func (s *Server) run(ctx context.Context) (*analysis.Result, error) {
	raw, err := s.source.Load(ctx)
	if err != nil {
		s.metrics.RunFinished(s.source.Name(), err)
		return nil, fmt.Errorf("load: %w", err)
	}
	res, err := analysis.Run(raw, s.options)
	s.metrics.RunFinished(s.source.Name(), err)
	if err != nil {
		return nil, err
	}
	s.metrics.RunSucceeded(res.Table.Len(), len(res.Vocabulary), res.Report.Accuracy)
	return res, nil
}

func (s *Server) handleIndex(c *gin.Context) {
	res, err := s.run(c.Request.Context())
	if err != nil {
		s.logger.Error("Dashboard run failed", "error", err)
		c.String(http.StatusInternalServerError, "analysis failed: %v", err)
		return
	}
	var buf bytes.Buffer
	err = viz.RenderPage(&buf, res, viz.PageOptions{Title: s.cfg.Title, MaxSentiments: s.cfg.MaxSentiments})
	if err != nil {
		s.logger.Error("Dashboard render failed", "error", err)
		c.String(http.StatusInternalServerError, "render failed: %v", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Summary is the JSON body of /api/summary.
type Summary struct {
	RunID       string         `json:"run_id"`
	Source      string         `json:"source"`
	Rows        int            `json:"rows"`
	Sentiments  map[string]int `json:"sentiments"`
	Vocabulary  int            `json:"vocabulary"`
	TrainRows   int            `json:"train_rows"`
	TestRows    int            `json:"test_rows"`
	Accuracy    float64        `json:"accuracy"`
	MacroF1     float64        `json:"macro_f1"`
	WeightedF1  float64        `json:"weighted_f1"`
	DroppedRare []string       `json:"dropped_classes,omitempty"`
}

func (s *Server) handleSummary(c *gin.Context) {
	res, err := s.run(c.Request.Context())
	if err != nil {
		s.logger.Error("Summary run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, NewSummary(s.source.Name(), res))
}

// NewSummary condenses a result into its headline figures.
func NewSummary(source string, res *analysis.Result) Summary {
	counts := make(map[string]int, len(res.Sentiments))
	for _, lc := range res.Sentiments {
		counts[lc.Label] = lc.Count
	}
	return Summary{
		RunID:       res.RunID,
		Source:      source,
		Rows:        res.Table.Len(),
		Sentiments:  counts,
		Vocabulary:  len(res.Vocabulary),
		TrainRows:   len(res.Split.Train),
		TestRows:    len(res.Split.Test),
		Accuracy:    res.Report.Accuracy,
		MacroF1:     res.Report.MacroAvg.F1,
		WeightedF1:  res.Report.WeightedAvg.F1,
		DroppedRare: res.Dropped,
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting dashboard", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	return nil
}
