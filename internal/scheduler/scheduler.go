// Package scheduler abstracts the one-shot debounce timer so components
// that defer work can be driven deterministically in tests.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler arms a single deferred callback. A Schedule call while already
// armed is ignored, so the first deadline of a burst sticks; Cancel disarms
// without firing.
type Scheduler interface {
	Schedule(d time.Duration, fn func())
	Cancel()
	Armed() bool
}

// Timer is the production Scheduler backed by time.AfterFunc.
type Timer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// NewTimer returns an idle Timer.
func NewTimer() *Timer {
	return &Timer{}
}

// Schedule arms fn to run once after d. Ignored while a callback is armed.
func (t *Timer) Schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
}

// Cancel disarms the pending callback, if any.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Armed reports whether a callback is waiting to fire.
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}
