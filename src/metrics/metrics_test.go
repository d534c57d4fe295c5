package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RunFinished("file", nil)
	c.RunFinished("file", errors.New("boom"))
	c.RunFinished("mock", nil)
	c.RunSucceeded(120, 45, 0.75)
	c.RunSucceeded(30, 50, 0.5)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("file", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("file", "error")))
	assert.Equal(t, 150.0, testutil.ToFloat64(c.rowsProcessed))
	assert.Equal(t, 50.0, testutil.ToFloat64(c.vocabularySize))
	assert.Equal(t, 0.5, testutil.ToFloat64(c.accuracy))
}

func TestCollectorStagesAndRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveStage("clean", 20*time.Millisecond)
	c.ObserveStage("fit", time.Second)
	c.DashboardRequest("/", 200)
	c.DashboardRequest("/", 500)
	c.DashboardRequest("/health", 204)

	assert.Equal(t, 2, testutil.CollectAndCount(c.stageDuration))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.dashboardRequests.WithLabelValues("/", "2xx"))+
		testutil.ToFloat64(c.dashboardRequests.WithLabelValues("/", "5xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dashboardRequests.WithLabelValues("/health", "2xx")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(200))
	assert.Equal(t, "3xx", statusClass(302))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
}

func TestNewCollectorPanicsOnDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}
