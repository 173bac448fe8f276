package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelsOf(m *dto.Metric) map[string]string {
	out := map[string]string{}
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestHTTPMetrics_RecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "catalog")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for range 2 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/abc", nil))
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	var counter *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			counter = f
		}
	}
	require.NotNil(t, counter)
	require.Len(t, counter.GetMetric(), 1)

	metric := counter.GetMetric()[0]
	assert.Equal(t, map[string]string{
		"service": "catalog",
		"method":  "GET",
		"route":   "/api/v1/products/{id}",
		"status":  "404",
	}, labelsOf(metric))
	assert.Equal(t, float64(2), metric.GetCounter().GetValue())
}

func TestHTTPMetrics_InFlightReturnsToZero(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "catalog")

	h := m.Middleware(noContent)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var g dto.Metric
	require.NoError(t, m.inFlight.Write(&g))
	assert.Equal(t, float64(0), g.GetGauge().GetValue())
}
