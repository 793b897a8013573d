package eventloop

import (
	"context"
	"sync"
	"time"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/rs/zerolog"
)

// Loop runs posted tasks, timers and frame callbacks serially on one goroutine.
type Loop struct {
	mu            sync.Mutex
	queue         []func()
	wake          chan struct{}
	frameInterval time.Duration
	logger        zerolog.Logger
	closed        bool
	done          chan struct{}
}

// NewLoop creates a loop. Callbacks only run once Run is called.
func NewLoop(frameInterval time.Duration, logger zerolog.Logger) *Loop {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Loop{
		wake:          make(chan struct{}, 1),
		frameInterval: frameInterval,
		logger:        logger.With().Str("component", "EventLoop").Logger(),
		done:          make(chan struct{}),
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post queues fn. Posting after Close is a no-op.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

type loopTimer struct {
	loop  *Loop
	entry *timerEntry
	timer *time.Timer
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	// the entry flags are loop-confined; Stop is expected to be called from loop callbacks
	return t.entry.stop()
}

// AfterFunc runs fn on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	entry := &timerEntry{fn: fn}
	t := &loopTimer{loop: l, entry: entry}
	t.timer = time.AfterFunc(d, func() {
		l.Post(entry.fire)
	})
	return t
}

// RequestFrame runs fn on the loop after one frame interval.
func (l *Loop) RequestFrame(fn func()) Timer {
	return l.AfterFunc(l.frameInterval, fn)
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return common.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes callbacks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()
	for {
		for _, fn := range l.drain() {
			l.invoke(fn)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Msg("Recovered panic in loop callback")
		}
	}()
	fn()
}

// Close stops the loop and drops pending callbacks.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queue = nil
	close(l.done)
}

// Done is closed once the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
