package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus metrics of pipeline runs and dashboard requests.
type Collector struct {
	runsTotal         *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	rowsProcessed     prometheus.Counter
	accuracy          prometheus.Gauge
	vocabularySize    prometheus.Gauge
	dashboardRequests *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_pipeline_runs_total",
				Help: "Pipeline runs by outcome",
			},
			[]string{"source", "status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentiment_pipeline_stage_duration_seconds",
				Help:    "Duration of each pipeline stage",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		rowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_pipeline_rows_total",
			Help: "Rows that went through the cleaner",
		}),
		accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentiment_classifier_accuracy",
			Help: "Accuracy of the most recent evaluation",
		}),
		vocabularySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentiment_featurizer_vocabulary_size",
			Help: "Vocabulary size of the most recent featurizer fit",
		}),
		dashboardRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_dashboard_requests_total",
				Help: "Dashboard HTTP requests",
			},
			[]string{"path", "status"},
		),
	}
	reg.MustRegister(c.runsTotal, c.stageDuration, c.rowsProcessed, c.accuracy, c.vocabularySize, c.dashboardRequests)
	return c
}

// ObserveStage records how long a stage took.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RunFinished records the outcome of one pipeline run.
func (c *Collector) RunFinished(source string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.runsTotal.WithLabelValues(source, status).Inc()
}

// RunSucceeded records the size and quality figures of a successful run.
func (c *Collector) RunSucceeded(rows, vocabulary int, accuracy float64) {
	c.rowsProcessed.Add(float64(rows))
	c.vocabularySize.Set(float64(vocabulary))
	c.accuracy.Set(accuracy)
}

// DashboardRequest counts one served request.
func (c *Collector) DashboardRequest(path string, status int) {
	c.dashboardRequests.WithLabelValues(path, statusClass(status)).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
