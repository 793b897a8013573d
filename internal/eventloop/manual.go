package eventloop

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a deterministic Scheduler whose clock only moves on Advance.
// Posted tasks run before any timer or frame that is due at the same instant.
type ManualScheduler struct {
	mu            sync.Mutex
	now           time.Time
	seq           int
	posted        []func()
	timers        []*manualTimer
	frameInterval time.Duration
}

type manualTimer struct {
	entry *timerEntry
	due   time.Time
	seq   int
	owner *ManualScheduler
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.entry.stop()
}

// NewManualScheduler starts the clock at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start, frameInterval: DefaultFrameInterval}
}

// SetFrameInterval changes the delay used by RequestFrame.
func (m *ManualScheduler) SetFrameInterval(d time.Duration) {
	m.mu.Lock()
	m.frameInterval = d
	m.mu.Unlock()
}

func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualScheduler) Post(fn func()) {
	m.mu.Lock()
	m.posted = append(m.posted, fn)
	m.mu.Unlock()
}

func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{entry: &timerEntry{fn: fn}, due: m.now.Add(d), seq: m.seq, owner: m}
	m.timers = append(m.timers, t)
	return t
}

func (m *ManualScheduler) RequestFrame(fn func()) Timer {
	m.mu.Lock()
	d := m.frameInterval
	m.mu.Unlock()
	return m.AfterFunc(d, fn)
}

// Flush runs posted tasks, including ones they post, without moving the clock.
func (m *ManualScheduler) Flush() {
	for {
		m.mu.Lock()
		if len(m.posted) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.posted[0]
		m.posted = m.posted[1:]
		m.mu.Unlock()
		fn()
	}
}

// Advance moves the clock forward by d, firing due timers in time order.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.Flush()
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		next := m.popDue(target)
		if next == nil {
			break
		}
		m.mu.Lock()
		m.now = next.due
		stopped := next.entry.stopped
		m.mu.Unlock()
		if !stopped {
			next.entry.fire()
		}
		m.Flush()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
	m.Flush()
}

func (m *ManualScheduler) popDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.entry.stopped && !t.entry.fired {
			live = append(live, t)
		}
	}
	m.timers = live
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	first := m.timers[0]
	if first.due.After(target) {
		return nil
	}
	m.timers = m.timers[1:]
	return first
}

// PendingTimers counts timers that have neither fired nor been stopped.
func (m *ManualScheduler) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.entry.stopped && !t.entry.fired {
			n++
		}
	}
	return n
}
