// Package eventloop provides the single cooperative event loop that the viewer
// state machines run on, plus a manually driven scheduler for tests.
package eventloop

import "time"

// DefaultFrameInterval approximates one animation frame.
const DefaultFrameInterval = 16 * time.Millisecond

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped it, false if it already ran or was stopped.
	Stop() bool
}

// Scheduler is the time and callback source for loop-confined components.
// Every callback runs on the scheduler's loop, never concurrently with another.
type Scheduler interface {
	Now() time.Time
	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// RequestFrame runs fn on the loop at the next frame boundary.
	RequestFrame(fn func()) Timer
	// Post queues fn to run on the loop after the current callback.
	Post(fn func())
}

type timerEntry struct {
	fn      func()
	stopped bool
	fired   bool
}

// stop and fire are only called on the loop goroutine, or under the owning
// scheduler's lock for ManualScheduler.
func (e *timerEntry) stop() bool {
	if e.stopped || e.fired {
		return false
	}
	e.stopped = true
	return true
}

func (e *timerEntry) fire() {
	if e.stopped || e.fired {
		return
	}
	e.fired = true
	e.fn()
}
