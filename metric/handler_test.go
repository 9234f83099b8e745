package metric

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringcast/health"
)

func TestServer_MetricsEndpoint(t *testing.T) {
	registry := NewMetricsRegistry()
	registry.CoreMetrics().RecordValueProduced()

	ts := httptest.NewServer(NewServer(0, "", registry, nil).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	require.NoError(t, err)

	produced, ok := families["ringcast_producer_values_produced_total"]
	require.True(t, ok, "produced counter should be exposed")
	require.Len(t, produced.GetMetric(), 1)
	assert.Equal(t, 1.0, produced.GetMetric()[0].GetCounter().GetValue())
	assert.Contains(t, families, "go_goroutines")
}

func TestServer_HealthWithoutMonitor(t *testing.T) {
	ts := httptest.NewServer(NewServer(0, "", NewMetricsRegistry(), nil).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_HealthReflectsMonitor(t *testing.T) {
	monitor := health.NewMonitor()
	monitor.UpdateHealthy("producer", "running")

	ts := httptest.NewServer(NewServer(0, "", NewMetricsRegistry(), monitor).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	var status health.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", status.Status)

	monitor.UpdateUnhealthy("consumer-0", "stalled")

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_Defaults(t *testing.T) {
	s := NewServer(0, "", NewMetricsRegistry(), nil)
	assert.Equal(t, "http://localhost:9090/metrics", s.Address())
	assert.NoError(t, s.Stop(), "stopping a server that never started is a no-op")
}

func TestServer_StartWithoutRegistry(t *testing.T) {
	s := NewServer(0, "", nil, nil)
	assert.Error(t, s.Start())
}
