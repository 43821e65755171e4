package degraded

import (
	"sync/atomic"
	"time"

	"github.com/kjstillabower/solar-power-service/internal/traffic"
)

var modelUnavailable atomic.Bool

// SetModelUnavailable marks the process as running without a model. Set once at startup.
func SetModelUnavailable(v bool) {
	modelUnavailable.Store(v)
}

// ModelUnavailable reports whether the process started without a usable model.
func ModelUnavailable() bool {
	return modelUnavailable.Load()
}

// RecordSuccess records a successful model call.
func RecordSuccess() {
	traffic.Record(traffic.Success)
}

// RecordError records a failed model call.
func RecordError() {
	traffic.Record(traffic.Error)
}

// ErrorRate returns (errorCount, totalCount) within the window. totalCount = successes + errors.
func ErrorRate(window time.Duration) (errors, total int) {
	return traffic.ErrorRate(window)
}

// Breached reports whether the error percentage within window is at or above pct.
// An empty window never breaches.
func Breached(window time.Duration, pct int) bool {
	if window <= 0 || pct <= 0 {
		return false
	}
	errors, total := ErrorRate(window)
	if total == 0 {
		return false
	}
	return float64(errors)*100/float64(total) >= float64(pct)
}

// Reset clears recorded outcomes and the model flag. For tests only.
func Reset() {
	traffic.Reset()
	modelUnavailable.Store(false)
}
