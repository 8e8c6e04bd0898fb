package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacementCounter(t *testing.T) {
	m := NewServerMetrics("test")
	m.RecordPlacement(OutcomeCreated)
	m.RecordPlacement(OutcomeCreated)
	m.RecordPlacement(OutcomeStockChanged)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrderPlacements.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderPlacements.WithLabelValues(OutcomeStockChanged)))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewServerMetrics("ecoshop")
	m.ObserveRequest("POST /api/v1/user/orders", "201", 12)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ecoshop_http_requests_total{handler="POST /api/v1/user/orders",status="201"} 1`)
	assert.Contains(t, string(body), "ecoshop_http_request_duration_ms_bucket")
}

func TestSeparateInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewServerMetrics("ecoshop")
		NewServerMetrics("ecoshop")
	})
}
