package testutil

import "time"

// ManualScheduler implements scheduler.Scheduler without real timers: the
// armed callback runs only when the test calls Fire. Call counts and the
// last requested delay are recorded for assertions.
type ManualScheduler struct {
	ScheduleCalls int
	CancelCalls   int
	LastDelay     time.Duration

	fn func()
}

// Schedule arms fn unless a callback is already armed; every call is
// counted either way.
func (m *ManualScheduler) Schedule(d time.Duration, fn func()) {
	m.ScheduleCalls++
	if m.fn != nil {
		return
	}
	m.LastDelay = d
	m.fn = fn
}

// Cancel disarms the pending callback.
func (m *ManualScheduler) Cancel() {
	m.CancelCalls++
	m.fn = nil
}

// Armed reports whether a callback is waiting.
func (m *ManualScheduler) Armed() bool {
	return m.fn != nil
}

// Fire disarms and runs the pending callback, the way a real timer fires.
func (m *ManualScheduler) Fire() {
	fn := m.fn
	m.fn = nil
	if fn != nil {
		fn()
	}
}
