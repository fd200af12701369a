package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ledger", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	body := scrape(t, metrics)
	require.Contains(t, body, `bodega_http_requests_total{code="418",route="unknown"} 1`)
	require.Contains(t, body, "bodega_http_request_duration_seconds_count")
}

func TestRecordMovement(t *testing.T) {
	metrics := NewMetrics()
	metrics.RecordMovement("ENTRY")
	metrics.RecordMovement("ENTRY")
	metrics.RecordMovement("EXIT")

	body := scrape(t, metrics)
	require.Contains(t, body, `bodega_stock_movements_total{type="ENTRY"} 2`)
	require.Contains(t, body, `bodega_stock_movements_total{type="EXIT"} 1`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.RecordMovement("ENTRY")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	require.NotNil(t, metrics.Middleware(next))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return strings.TrimSpace(string(body))
}
