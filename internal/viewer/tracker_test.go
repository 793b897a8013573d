package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestRenderTracker_RestartsFromZero(t *testing.T) {
	tr := newRenderTracker()
	assert.True(t, closed(tr.idleCh()), "idle before any render")

	tr.start()
	first := tr.idleCh()
	tr.start()
	tr.done()
	assert.False(t, closed(first))
	tr.done()
	assert.True(t, closed(first))

	// a render started after reaching zero gets a fresh channel
	tr.start()
	second := tr.idleCh()
	assert.False(t, closed(second))
	assert.True(t, closed(first), "earlier waiters stay released")
	tr.done()
	assert.True(t, closed(second))
}
