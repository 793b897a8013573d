package viewer

import "sync"

// renderTracker counts page renders in flight. idle is closed whenever the
// count is zero and replaced when it rises from zero, so a waiter holding an
// old channel is released exactly when the renders it saw have finished.
type renderTracker struct {
	mu       sync.Mutex
	inFlight int
	idle     chan struct{}
}

func newRenderTracker() *renderTracker {
	idle := make(chan struct{})
	close(idle)
	return &renderTracker{idle: idle}
}

func (t *renderTracker) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inFlight == 0 {
		t.idle = make(chan struct{})
	}
	t.inFlight++
}

func (t *renderTracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight--
	if t.inFlight == 0 {
		close(t.idle)
	}
}

// idleCh is closed once every render started before the call has finished.
func (t *renderTracker) idleCh() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idle
}
