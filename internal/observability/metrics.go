package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kjstillabower/solar-power-service/internal/traffic"
)

var (
	registry *prometheus.Registry

	// HTTP request rate by route template and status class.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Model calls by outcome (success, error, unavailable). Watch for: error ratio.
	PredictionsTotal *prometheus.CounterVec

	// Model call latency. A linear model should stay well under a millisecond.
	PredictionDuration prometheus.Histogram

	// 1 when a model is loaded, 0 when running in the no-model degraded state.
	ModelLoaded prometheus.Gauge

	// CSV downloads served.
	CSVExportsTotal prometheus.Counter

	// Rate limit denials.
	RateLimitDeniedTotal prometheus.Counter

	windowGaugesOnce sync.Once
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictionsTotal",
			Help: "Total number of model predictions by outcome",
		},
		[]string{"status"},
	)
	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "predictionDurationSeconds",
			Help:    "Model predict call latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
	ModelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "modelLoaded",
			Help: "1 if a model artifact is loaded, 0 if running without a model",
		},
	)
	CSVExportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "csvExportsTotal",
			Help: "Total number of CSV prediction downloads",
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		PredictionsTotal, PredictionDuration, ModelLoaded,
		CSVExportsTotal, RateLimitDeniedTotal,
	)
}

// RecordPrediction records one model call with its outcome and latency.
func RecordPrediction(status string, d time.Duration) {
	PredictionsTotal.WithLabelValues(status).Inc()
	if status != "unavailable" {
		PredictionDuration.Observe(d.Seconds())
	}
}

// SetModelLoaded flips the modelLoaded gauge.
func SetModelLoaded(loaded bool) {
	if loaded {
		ModelLoaded.Set(1)
		return
	}
	ModelLoaded.Set(0)
}

// RegisterWindowGauges registers sliding-window gauges backed by the traffic tracker.
// Call from main after config load; uses the same window as the health checks.
func RegisterWindowGauges(window time.Duration) {
	windowGaugesOnce.Do(func() {
		registry.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "predictionRequestsInWindow",
					Help: "Prediction requests in the sliding window, including rate-limited ones",
				},
				func() float64 { return float64(traffic.RequestCount(window)) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "predictionErrorsInWindow",
					Help: "Failed model calls in the sliding window",
				},
				func() float64 {
					errs, _ := traffic.ErrorRate(window)
					return float64(errs)
				},
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "rateLimitRejectsInWindow",
					Help: "429 responses in the sliding window",
				},
				func() float64 { return float64(traffic.DenialCount(window)) },
			),
		)
	})
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
