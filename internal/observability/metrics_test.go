package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetrics_Usable verifies label dimensions match their use in the http and service packages.
func TestMetrics_Usable(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("POST", "/predict", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("POST", "/predict").Observe(0.01)
	RecordPrediction("success", time.Millisecond)
	RecordPrediction("error", time.Millisecond)
	RecordPrediction("unavailable", 0)
	CSVExportsTotal.Inc()
	RateLimitDeniedTotal.Inc()
}

func TestSetModelLoaded(t *testing.T) {
	SetModelLoaded(true)
	if got := testutil.ToFloat64(ModelLoaded); got != 1 {
		t.Errorf("modelLoaded = %v, want 1", got)
	}
	SetModelLoaded(false)
	if got := testutil.ToFloat64(ModelLoaded); got != 0 {
		t.Errorf("modelLoaded = %v, want 0", got)
	}
}

func TestRecordPrediction_CountsByStatus(t *testing.T) {
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("success"))
	RecordPrediction("success", 2*time.Millisecond)
	if got := testutil.ToFloat64(PredictionsTotal.WithLabelValues("success")); got != before+1 {
		t.Errorf("predictionsTotal{success} = %v, want %v", got, before+1)
	}
}

// TestMetricsHandler_ServesPrometheusFormat verifies the handler serves text exposition format.
func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	RegisterWindowGauges(time.Minute)
	HTTPRequestsTotal.WithLabelValues("GET", "/", "2xx").Inc()

	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{"httpRequestsTotal", "modelLoaded", "predictionRequestsInWindow"} {
		if !strings.Contains(body, name) {
			t.Errorf("MetricsHandler response missing %s", name)
		}
	}
}
