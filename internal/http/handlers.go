package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/solar-power-service/internal/chart"
	"github.com/kjstillabower/solar-power-service/internal/degraded"
	"github.com/kjstillabower/solar-power-service/internal/lifecycle"
	"github.com/kjstillabower/solar-power-service/internal/models"
	"github.com/kjstillabower/solar-power-service/internal/observability"
	"github.com/kjstillabower/solar-power-service/internal/report"
	"github.com/kjstillabower/solar-power-service/internal/service"
	"github.com/kjstillabower/solar-power-service/internal/traffic"
	"github.com/kjstillabower/solar-power-service/internal/validation"
)

// HealthConfig holds lifecycle thresholds for the health handler.
type HealthConfig struct {
	OverloadWindow       time.Duration
	OverloadThresholdPct int
	RateLimitRPS         int
	RateLimitBurst       int // 0 when rate limiter disabled
	DegradedWindow       time.Duration
	DegradedErrorPct     int
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	predictions      *service.PredictionService
	healthConfig     *HealthConfig
	logger           *zap.Logger
	rateLimiter      *rate.Limiter
	tmpl             *template.Template
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(
	predictions *service.PredictionService,
	healthConfig *HealthConfig,
	logger *zap.Logger,
	rateLimiter *rate.Limiter,
) *Handler {
	return &Handler{
		predictions:  predictions,
		healthConfig: healthConfig,
		logger:       logger,
		rateLimiter:  rateLimiter,
		tmpl:         newTemplates(),
	}
}

// GetIndex handles GET /. Query-string values preset the sliders; anything invalid falls
// back to defaults with a notice.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	obs, err := validation.ParseObservation(r.URL.Query())
	page := h.newPage(obs)
	if err != nil {
		page = h.newPage(models.DefaultObservation())
		page.InputError = err.Error()
	}
	h.render(w, r, http.StatusOK, page)
}

// PostPredict handles POST /predict from the form.
func (h *Handler) PostPredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		page := h.newPage(models.DefaultObservation())
		page.InputError = "could not read form: " + err.Error()
		h.render(w, r, http.StatusBadRequest, page)
		return
	}
	obs, err := validation.ParseObservation(r.PostForm)
	if err != nil {
		page := h.newPage(models.DefaultObservation())
		page.InputError = err.Error()
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	page := h.newPage(obs)
	result, err := h.predictions.Predict(r.Context(), obs)
	if err != nil {
		// The form stays usable: same inputs, only the error shown.
		page.PredictError = predictionErrorMessage(err)
		h.render(w, r, http.StatusOK, page)
		return
	}
	page.Result = newResultView(result)
	h.render(w, r, http.StatusOK, page)
}

// PostExportCSV handles POST /predict.csv. The prediction is recomputed from the
// submitted values; nothing is kept between requests. Exports are counted in
// csvExportsTotal, not as predictions.
func (h *Handler) PostExportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", "could not read form")
		return
	}
	obs, err := validation.ParseObservation(r.PostForm)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	pred, err := h.predictions.Evaluate(r.Context(), obs)
	if err != nil {
		writePredictionError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w, obs, pred.Value); err != nil {
		loggerFrom(r, h.logger).Warn("csv export", zap.Error(err))
		return
	}
	observability.CSVExportsTotal.Inc()
}

// GetChart handles GET /chart.png: a bar chart of the raw inputs in the query string.
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	obs, err := validation.ParseObservation(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, report.Bars(obs), chart.Options{}); err != nil {
		loggerFrom(r, h.logger).Error("render chart", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "CHART_FAILED", "could not render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := buf.WriteTo(w); err != nil {
		loggerFrom(r, h.logger).Warn("write chart", zap.Error(err))
	}
}

type apiPredictRequest struct {
	Features map[string]*float64 `json:"features"`
}

type apiPredictResponse struct {
	report.Prediction
	Unit     string             `json:"unit"`
	Text     string             `json:"text"`
	Band     string             `json:"band"`
	Fact     string             `json:"fact"`
	Features map[string]float64 `json:"features"`
}

// PostAPIPredict handles POST /api/predict.
func (h *Handler) PostAPIPredict(w http.ResponseWriter, r *http.Request) {
	var body apiPredictRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", "request body must be {\"features\": {name: number}}")
			return
		}
	}
	obs, err := validation.ObservationFromMap(body.Features)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	result, err := h.predictions.Predict(r.Context(), obs)
	if err != nil {
		writePredictionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apiPredictResponse{
		Prediction: result.Prediction,
		Unit:       report.Unit,
		Text:       result.Prediction.Text(),
		Band:       result.Prediction.BandText(),
		Fact:       result.Fact,
		Features:   result.Observation.Map(),
	})
}

// GetFields handles GET /api/fields.
func (h *Handler) GetFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields": models.Fields,
	})
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"model": "healthy"}
	if !h.modelAvailable() {
		checks["model"] = "unavailable"
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   observability.ServiceName,
		"version":   "dev",
		"checks":    checks,
		"uptime":    lifecycle.Uptime(time.Now()).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if result.reason != "" {
		resp["reason"] = result.reason
	}
	writeJSON(w, result.statusCode, resp)
}

// computeHealthStatus evaluates conditions in priority order:
// shutting-down > no model > overloaded > error-rate degraded > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if !h.modelAvailable() {
		return healthResult{"degraded", http.StatusServiceUnavailable, "model_unavailable"}
	}
	if h.healthConfig == nil {
		return healthResult{"healthy", http.StatusOK, ""}
	}
	if h.healthConfig.RateLimitRPS > 0 && h.healthConfig.OverloadWindow > 0 {
		threshold := float64(h.healthConfig.RateLimitRPS) * h.healthConfig.OverloadWindow.Seconds() * float64(h.healthConfig.OverloadThresholdPct) / 100
		if float64(traffic.RequestCount(h.healthConfig.OverloadWindow)) > threshold {
			return healthResult{"overloaded", http.StatusServiceUnavailable, "overload_threshold"}
		}
	}
	if degraded.Breached(h.healthConfig.DegradedWindow, h.healthConfig.DegradedErrorPct) {
		return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// modelAvailable is false when the process started without a model or the service has none.
func (h *Handler) modelAvailable() bool {
	return h.predictions.Available() && !degraded.ModelUnavailable()
}

// predictionErrorMessage is the text shown to the user for a failed prediction.
func predictionErrorMessage(err error) string {
	if errors.Is(err, service.ErrModelUnavailable) {
		return "An error occurred: the prediction model is not loaded. Check the server configuration."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "An error occurred: the prediction took too long. Please try again."
	}
	return "An error occurred: " + err.Error()
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v, ok := r.Context().Value("correlation_id").(string); ok {
		corrID = v
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writePredictionError maps service errors to 503 responses.
func writePredictionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrModelUnavailable) {
		writeError(w, r, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", predictionErrorMessage(err))
		return
	}
	writeError(w, r, http.StatusServiceUnavailable, "PREDICTION_FAILED", predictionErrorMessage(err))
}

// loggerFrom returns the request-scoped logger set by CorrelationIDMiddleware, or fallback.
func loggerFrom(r *http.Request, fallback *zap.Logger) *zap.Logger {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
