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

// collectMetric extracts the first metric from a collector whose labels match.
func collectMetric(c prometheus.Collector, labels map[string]string) *dto.Metric {
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}

		match := true
		for k, v := range labels {
			found := false
			for _, lp := range d.GetLabel() {
				if lp.GetName() == k && lp.GetValue() == v {
					found = true
					break
				}
			}
			if !found {
				match = false
				break
			}
		}
		if match {
			return d
		}
	}
	return nil
}

// serveWithChi mounts the handler on a chi router so RouteContext carries a
// route pattern for the path label.
func serveWithChi(mw func(http.Handler) http.Handler, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/orders/{orderID}", handler)
	return r
}

func TestPrometheusMetrics_RequestCounting(t *testing.T) {
	handler := serveWithChi(PrometheusMetrics("count-svc"), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/orders/o1", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	labels := map[string]string{"service": "count-svc", "method": "GET", "path": "/orders/{orderID}", "status": "200"}
	m := collectMetric(httpRequestsTotal, labels)
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(3))
}

func TestPrometheusMetrics_DurationHistogram(t *testing.T) {
	handler := serveWithChi(PrometheusMetrics("hist-svc"), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/orders/missing", nil))

	labels := map[string]string{"service": "hist-svc", "method": "GET", "path": "/orders/{orderID}", "status": "404"}
	m := collectMetric(httpRequestDuration, labels)
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}

func TestPrometheusMetrics_InFlightGauge(t *testing.T) {
	inFlightSeen := float64(-1)
	handler := serveWithChi(PrometheusMetrics("inflight-svc"), func(w http.ResponseWriter, r *http.Request) {
		if m := collectMetric(httpRequestsInFlight, map[string]string{"service": "inflight-svc"}); m != nil {
			inFlightSeen = m.GetGauge().GetValue()
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/orders/o1", nil))

	assert.GreaterOrEqual(t, inFlightSeen, float64(1))
}

func TestPrometheusMetrics_DefaultStatusCode(t *testing.T) {
	handler := serveWithChi(PrometheusMetrics("default-svc"), func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/orders/o1", nil))

	m := collectMetric(httpRequestsTotal, map[string]string{"service": "default-svc", "status": "200"})
	require.NotNil(t, m)
}
