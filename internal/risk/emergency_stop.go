package risk

import (
	"sync"
	"time"
)

// EmergencyStop is the shared halt flag. The performance tracker sets it
// when drawdown crosses the halt threshold, an operator may set it by
// command, and the risk manager rejects every decision while it is
// engaged. It stays engaged until explicitly cleared.
type EmergencyStop struct {
	mu      sync.RWMutex
	engaged bool
	reason  string
	setAt   time.Time
}

// NewEmergencyStop creates a cleared emergency stop.
func NewEmergencyStop() *EmergencyStop {
	return &EmergencyStop{}
}

// Engage sets the flag with a reason. Re-engaging keeps the original
// reason and timestamp.
func (e *EmergencyStop) Engage(reason string, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.engaged {
		return
	}

	e.engaged = true
	e.reason = reason
	e.setAt = at
}

// Clear releases the flag. Trading resumes on the next evaluation.
func (e *EmergencyStop) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.engaged = false
	e.reason = ""
	e.setAt = time.Time{}
}

// IsEngaged reports whether the stop is active.
func (e *EmergencyStop) IsEngaged() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.engaged
}

// Status returns the flag state with its reason and engagement time.
func (e *EmergencyStop) Status() (engaged bool, reason string, at time.Time) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.engaged, e.reason, e.setAt
}
