package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMetrics(t *testing.T) {
	c, err := New(&Config{Namespace: "test"})
	require.NoError(t, err)

	counter, err := c.NewCounter("requests_total", "requests", []string{"action"})
	require.NoError(t, err)
	counter.WithLabelValues("open").Inc()
	counter.WithLabelValues("open").Inc()
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("open")))

	_, err = c.NewCounter("requests_total", "dup", nil)
	assert.ErrorIs(t, err, ErrMetricExists)

	hist, err := c.NewHistogram("duration_seconds", "duration", []string{"effect"}, nil)
	require.NoError(t, err)
	hist.WithLabelValues("spawn").Observe(0.01)

	require.NoError(t, c.NewGaugeFunc("workers_running", "running", func() float64 { return 3 }))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `test_requests_total{action="open"} 2`)
	assert.Contains(t, body, "test_workers_running 3")
	assert.Contains(t, body, "go_goroutines")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.ErrorIs(t, (&Config{}).Validate(), ErrInvalidConfig)

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrInvalidConfig)
}

func TestCollectorsDisabled(t *testing.T) {
	c, err := New(&Config{
		Namespace:              "test",
		EnableGoCollector:      config.Bool(false),
		EnableProcessCollector: config.Bool(false),
	})
	require.NoError(t, err)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
