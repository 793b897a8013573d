package syncscroll

import (
	"time"

	"github.com/aleister1102/ocrdiff/internal/models"
)

// EventType is how a scroll event is interpreted.
type EventType int

const (
	// EventProgrammatic covers everything that is neither wheel nor drag,
	// e.g. jumps. It is synced like a wheel event.
	EventProgrammatic EventType = iota
	// EventWheel is a scroll caused by the wheel on that pane. It is synced.
	EventWheel
	// EventDrag is a scroll while the pane's scrollbar is held. It is not
	// synced; the release re-baselines instead.
	EventDrag
)

func (t EventType) String() string {
	switch t {
	case EventWheel:
		return "wheel"
	case EventDrag:
		return "drag"
	default:
		return "programmatic"
	}
}

// Classifier decides what caused a scroll event. Hosts with native gesture
// information can replace the timing heuristics.
type Classifier interface {
	// ObserveWheel records a wheel gesture on side.
	ObserveWheel(side models.PaneSide, at time.Time)
	// Classify labels a scroll event on side given that pane's state.
	Classify(side models.PaneSide, state models.ScrollState, at time.Time) EventType
}

// TimingClassifier attributes a scroll to the wheel when a wheel event hit the
// same pane within Window, otherwise to a drag while the pane is held.
type TimingClassifier struct {
	Window    time.Duration
	lastWheel time.Time
	active    models.PaneSide
}

// NewTimingClassifier creates a classifier with the given wheel window.
func NewTimingClassifier(window time.Duration) *TimingClassifier {
	return &TimingClassifier{Window: window}
}

func (c *TimingClassifier) ObserveWheel(side models.PaneSide, at time.Time) {
	c.lastWheel = at
	c.active = side
}

func (c *TimingClassifier) Classify(side models.PaneSide, state models.ScrollState, at time.Time) EventType {
	if !c.lastWheel.IsZero() && at.Sub(c.lastWheel) < c.Window && c.active == side {
		return EventWheel
	}
	if state.IsDragging {
		return EventDrag
	}
	return EventProgrammatic
}
