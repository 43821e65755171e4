package traffic

import (
	"sync"
	"time"
)

// Outcome classifies one prediction request.
type Outcome uint8

const (
	Success Outcome = iota
	Error
	Denied
)

// retention bounds how far back any window query can look.
const retention = 5 * time.Minute

var defaultTracker Tracker

// Record records an outcome on the process-wide tracker.
func Record(o Outcome) {
	defaultTracker.Record(o)
}

// RecordN records n identical outcomes. Used by testing mode to inject synthetic load.
func RecordN(o Outcome, n int) {
	defaultTracker.RecordN(o, n)
}

// RequestCount returns the number of outcomes of any kind within the window.
func RequestCount(window time.Duration) int {
	return defaultTracker.RequestCount(window)
}

// DenialCount returns the number of rate-limit denials within the window.
func DenialCount(window time.Duration) int {
	return defaultTracker.DenialCount(window)
}

// ErrorRate returns (errors, successes+errors) within the window. Denials are excluded.
func ErrorRate(window time.Duration) (errors, total int) {
	return defaultTracker.ErrorRate(window)
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.Reset()
}

type event struct {
	at      time.Time
	outcome Outcome
}

// Tracker keeps a time-ordered log of outcomes for sliding-window queries.
// Single source of truth for overload (RequestCount, DenialCount) and degraded (ErrorRate).
type Tracker struct {
	mu     sync.Mutex
	events []event
	now    func() time.Time
}

func (t *Tracker) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// Record appends one outcome at the current time.
func (t *Tracker) Record(o Outcome) {
	t.RecordN(o, 1)
}

// RecordN appends n outcomes at the current time.
func (t *Tracker) RecordN(o Outcome, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	for i := 0; i < n; i++ {
		t.events = append(t.events, event{at: now, outcome: o})
	}
	t.pruneLocked(now)
}

// RequestCount returns the number of outcomes of any kind within the window.
func (t *Tracker) RequestCount(window time.Duration) int {
	counts := t.count(window)
	return counts[Success] + counts[Error] + counts[Denied]
}

// DenialCount returns the number of denials within the window.
func (t *Tracker) DenialCount(window time.Duration) int {
	return t.count(window)[Denied]
}

// ErrorRate returns (errors, successes+errors) within the window.
func (t *Tracker) ErrorRate(window time.Duration) (errors, total int) {
	counts := t.count(window)
	return counts[Error], counts[Error] + counts[Success]
}

// Reset clears all recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

// count tallies outcomes newer than now-window. Events are appended in time order, so
// the scan runs backwards and stops at the first event outside the window.
func (t *Tracker) count(window time.Duration) [3]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var counts [3]int
	cutoff := t.clock().Add(-window)
	for i := len(t.events) - 1; i >= 0; i-- {
		if t.events[i].at.Before(cutoff) {
			break
		}
		counts[t.events[i].outcome]++
	}
	return counts
}

// pruneLocked drops events older than retention. Must be called with mu held.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-retention)
	i := 0
	for ; i < len(t.events) && t.events[i].at.Before(cutoff); i++ {
	}
	if i > 0 {
		t.events = append(t.events[:0], t.events[i:]...)
	}
}
