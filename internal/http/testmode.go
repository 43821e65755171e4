package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/kjstillabower/solar-power-service/internal/degraded"
	"github.com/kjstillabower/solar-power-service/internal/lifecycle"
	"github.com/kjstillabower/solar-power-service/internal/observability"
	"github.com/kjstillabower/solar-power-service/internal/traffic"
)

// GetTestStatus handles GET /test. Only routed when testing_mode is on.
func (h *Handler) GetTestStatus(w http.ResponseWriter, r *http.Request) {
	window := h.degradedWindow()
	errors, total := degraded.ErrorRate(window)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests_in_window":        traffic.RequestCount(window),
		"denied_requests_in_window": traffic.DenialCount(window),
		"errors_in_window":          errors,
		"predictions_in_window":     total,
		"window_length":             window.String(),
		"model_available":           h.modelAvailable(),
		"state":                     h.computeHealthStatus().status,
	})
}

// PostTestAction handles POST /test/{action} for load, error, reset and shutdown.
func (h *Handler) PostTestAction(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	switch action {
	case "load":
		h.postTestLoad(w, r)
	case "error":
		h.postTestError(w, r)
	case "reset":
		traffic.Reset()
		lifecycle.SetShuttingDown(false)
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "action": "reset", "message": "All simulated state cleared"})
	case "shutdown":
		lifecycle.SetShuttingDown(true)
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "action": "shutdown", "message": "Shutting-down flag set"})
	default:
		writeError(w, r, http.StatusNotFound, "UNKNOWN_ACTION", "unknown test action: "+action)
	}
}

// maxTestCount bounds the synthetic events one /test call may record.
const maxTestCount = 10000

// readCount reads {"count": n} from the body, falling back to def and clamping to maxTestCount.
func readCount(r *http.Request, def int) int {
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Count <= 0 {
		return def
	}
	return min(body.Count, maxTestCount)
}

// postTestLoad records synthetic successful predictions, honouring the rate limiter.
func (h *Handler) postTestLoad(w http.ResponseWriter, r *http.Request) {
	count := readCount(r, 10)
	accepted, denied := count, 0
	if h.rateLimiter != nil {
		accepted = 0
		for i := 0; i < count; i++ {
			if h.rateLimiter.Allow() {
				accepted++
			} else {
				denied++
			}
		}
		observability.RateLimitDeniedTotal.Add(float64(denied))
		traffic.RecordN(traffic.Denied, denied)
	}
	traffic.RecordN(traffic.Success, accepted)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"action":   "load",
		"message":  "Recorded " + strconv.Itoa(accepted) + " accepted, " + strconv.Itoa(denied) + " denied",
		"state":    h.computeHealthStatus().status,
		"accepted": accepted,
		"denied":   denied,
	})
}

// postTestError records synthetic failed predictions.
func (h *Handler) postTestError(w http.ResponseWriter, r *http.Request) {
	count := readCount(r, 1)
	traffic.RecordN(traffic.Error, count)
	errors, total := degraded.ErrorRate(h.degradedWindow())
	pct := 0
	if total > 0 {
		pct = errors * 100 / total
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":             true,
		"action":         "error",
		"message":        "Recorded " + strconv.Itoa(count) + " errors",
		"state":          h.computeHealthStatus().status,
		"error_rate_pct": pct,
	})
}

func (h *Handler) degradedWindow() time.Duration {
	if h.healthConfig != nil && h.healthConfig.DegradedWindow > 0 {
		return h.healthConfig.DegradedWindow
	}
	return 60 * time.Second
}
