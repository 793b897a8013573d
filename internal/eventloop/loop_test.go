package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	loop := NewLoop(time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		loop.Close()
	})
	return loop
}

func TestLoop_Do(t *testing.T) {
	loop := startLoop(t)

	value := 0
	require.NoError(t, loop.Do(context.Background(), func() { value = 42 }))
	assert.Equal(t, 42, value)
}

func TestLoop_CallbacksAreSerial(t *testing.T) {
	loop := startLoop(t)

	var active, overlaps int32
	done := make(chan struct{})
	const n = 50
	var finished int32
	for i := 0; i < n; i++ {
		loop.AfterFunc(time.Duration(i%5)*time.Millisecond, func() {
			if atomic.AddInt32(&active, 1) > 1 {
				atomic.AddInt32(&overlaps, 1)
			}
			atomic.AddInt32(&active, -1)
			if atomic.AddInt32(&finished, 1) == n {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callbacks did not finish")
	}
	assert.Zero(t, atomic.LoadInt32(&overlaps))
}

func TestLoop_StoppedTimerDoesNotFire(t *testing.T) {
	loop := startLoop(t)

	var fired int32
	require.NoError(t, loop.Do(context.Background(), func() {
		timer := loop.AfterFunc(5*time.Millisecond, func() { atomic.StoreInt32(&fired, 1) })
		timer.Stop()
	}))

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&fired))
}

func TestLoop_RecoversPanics(t *testing.T) {
	loop := startLoop(t)

	loop.Post(func() { panic("boom") })
	value := 0
	require.NoError(t, loop.Do(context.Background(), func() { value = 1 }))
	assert.Equal(t, 1, value)
}

func TestLoop_DoAfterClose(t *testing.T) {
	loop := NewLoop(0, zerolog.Nop())
	loop.Close()

	err := loop.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, common.ErrClosed)
}
