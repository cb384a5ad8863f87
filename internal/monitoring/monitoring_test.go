package monitoring

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEvaluation(t *testing.T) {
	RecordEvaluation("rsi_test", "rsi", -1, 0.75, 2*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(evaluationsTotal.WithLabelValues("rsi_test", "ok")))
	assert.Equal(t, -1.0, testutil.ToFloat64(currentDirection.WithLabelValues("rsi_test")))
	assert.Equal(t, 0.75, testutil.ToFloat64(currentIntensity.WithLabelValues("rsi_test")))

	RecordEvaluationFailure("rsi_test", "MISSING_COLUMN")
	assert.Equal(t, 1.0, testutil.ToFloat64(evaluationsTotal.WithLabelValues("rsi_test", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(errorsTotal.WithLabelValues("MISSING_COLUMN")))
}

func TestRecordSignalAndDelivery(t *testing.T) {
	RecordSignal("rsi_14_test", -0.8)
	RecordSignal("rsi_14_test", 0.9)
	RecordSignal("rsi_14_test", 0.7)
	assert.Equal(t, 1.0, testutil.ToFloat64(signalsTotal.WithLabelValues("rsi_14_test", "short")))
	assert.Equal(t, 2.0, testutil.ToFloat64(signalsTotal.WithLabelValues("rsi_14_test", "long")))

	RecordDelivery("redis_test", nil)
	RecordDelivery("redis_test", fmt.Errorf("down"))
	assert.Equal(t, 1.0, testutil.ToFloat64(deliveriesTotal.WithLabelValues("redis_test", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(deliveriesTotal.WithLabelValues("redis_test", "error")))
}

func TestMetricsHandler(t *testing.T) {
	RecordError("SOURCE")
	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signals_errors_total")
}

func TestHealthChecker(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHealthChecker(10 * time.Minute)
	h.now = func() time.Time { return now }

	h.Register("a")
	assert.Equal(t, "degraded", h.Status().Status, "never ran")

	h.RecordCycle("a", nil)
	assert.Equal(t, "healthy", h.Status().Status)

	now = now.Add(11 * time.Minute)
	assert.Equal(t, "degraded", h.Status().Status)

	h.RecordCycle("b", fmt.Errorf("missing input column"))
	status := h.Status()
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "missing input column", status.Controllers["b"].Error)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Controllers, 2)
}
