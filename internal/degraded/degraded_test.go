package degraded

import (
	"testing"
	"time"
)

// TestErrorRate_Empty verifies that ErrorRate returns (0, 0) when nothing was recorded.
func TestErrorRate_Empty(t *testing.T) {
	Reset()
	errors, total := ErrorRate(1 * time.Minute)
	if errors != 0 || total != 0 {
		t.Errorf("ErrorRate() = (%d, %d), want (0, 0)", errors, total)
	}
}

func TestRecordSuccess_AndError_ErrorRate(t *testing.T) {
	Reset()
	RecordSuccess()
	RecordSuccess()
	RecordError()
	errors, total := ErrorRate(1 * time.Minute)
	if errors != 1 || total != 3 {
		t.Errorf("ErrorRate() = (%d, %d), want (1, 3)", errors, total)
	}
}

func TestBreached(t *testing.T) {
	Reset()
	if Breached(time.Minute, 5) {
		t.Error("Breached() on empty window = true, want false")
	}
	for i := 0; i < 19; i++ {
		RecordSuccess()
	}
	RecordError()
	if !Breached(time.Minute, 5) {
		t.Error("Breached(5%) with 1/20 errors = false, want true")
	}
	if Breached(time.Minute, 6) {
		t.Error("Breached(6%) with 1/20 errors = true, want false")
	}
	if Breached(0, 5) {
		t.Error("Breached(window 0) = true, want false")
	}
}

func TestModelUnavailable(t *testing.T) {
	Reset()
	if ModelUnavailable() {
		t.Fatal("ModelUnavailable() = true by default")
	}
	SetModelUnavailable(true)
	if !ModelUnavailable() {
		t.Error("ModelUnavailable() = false after SetModelUnavailable(true)")
	}
	Reset()
	if ModelUnavailable() {
		t.Error("Reset did not clear model flag")
	}
}
