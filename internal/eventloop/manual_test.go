package eventloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestManualScheduler_TimersFireInOrder(t *testing.T) {
	s := NewManualScheduler(epoch)
	var got []string

	s.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	s.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	s.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	s.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, epoch.Add(20*time.Millisecond), s.Now())

	s.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestManualScheduler_ClockAtFireTime(t *testing.T) {
	s := NewManualScheduler(epoch)
	var seen time.Time
	s.AfterFunc(40*time.Millisecond, func() { seen = s.Now() })

	s.Advance(time.Second)
	assert.Equal(t, epoch.Add(40*time.Millisecond), seen)
}

func TestManualScheduler_Stop(t *testing.T) {
	s := NewManualScheduler(epoch)
	fired := false
	timer := s.AfterFunc(time.Millisecond, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	s.Advance(time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, s.PendingTimers())
}

func TestManualScheduler_PostedRunBeforeTimers(t *testing.T) {
	s := NewManualScheduler(epoch)
	var got []string

	s.AfterFunc(0, func() { got = append(got, "timer") })
	s.Post(func() {
		got = append(got, "post")
		s.Post(func() { got = append(got, "nested") })
	})

	s.Advance(0)
	assert.Equal(t, []string{"post", "nested", "timer"}, got)
}

func TestManualScheduler_TimersScheduledDuringAdvance(t *testing.T) {
	s := NewManualScheduler(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		s.RequestFrame(tick)
	}
	s.RequestFrame(tick)

	s.Advance(5 * DefaultFrameInterval)
	assert.Equal(t, 5, count)
}
