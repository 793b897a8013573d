// Package syncscroll couples the scroll positions of the two document panes.
//
// The manager keeps the offset between the panes that was captured at the
// last baseline. Wheel and programmatic scrolls on one pane move the other by
// the same amount; a scrollbar drag moves only the dragged pane and its release
// captures a new baseline. All methods must be called from the scheduler's loop.
package syncscroll

import (
	"math"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/eventloop"
	"github.com/aleister1102/ocrdiff/internal/layout"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/rs/zerolog"
)

// Pane is a scroll container.
type Pane interface {
	ScrollTop() float64
	SetScrollTop(v float64)
	ScrollHeight() float64
	ClientHeight() float64
}

// Options configures a Manager.
type Options struct {
	Config config.ScrollConfig
	// Classifier defaults to a TimingClassifier using Config's wheel window.
	Classifier Classifier
	// OnScroll runs after every handled scroll event.
	OnScroll func(side models.PaneSide)
	// IsJumping suppresses sync while the host moves both panes itself.
	IsJumping func() bool
}

type syncEvent struct {
	side models.PaneSide
	from float64
}

// Manager implements baseline-preserving synchronized scrolling.
type Manager struct {
	sched      eventloop.Scheduler
	cfg        config.ScrollConfig
	classifier Classifier
	onScroll   func(models.PaneSide)
	isJumping  func() bool
	logger     zerolog.Logger

	panes  map[models.PaneSide]Pane
	states map[models.PaneSide]*models.ScrollState

	enabled   bool
	destroyed bool
	baseline  *models.SyncBaseline

	pending      *syncEvent
	frame        eventloop.Timer
	internalSync bool
	guardTimer   eventloop.Timer

	scrollEndTimer eventloop.Timer
	dragTimer      eventloop.Timer
	wheelTimer     eventloop.Timer
}

// New creates an enabled manager for the two panes and captures the initial
// baseline from their current positions.
func New(sched eventloop.Scheduler, left, right Pane, opts Options, logger zerolog.Logger) *Manager {
	cfg := opts.Config
	if cfg == (config.ScrollConfig{}) {
		cfg = config.NewDefaultScrollConfig()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = NewTimingClassifier(cfg.WheelDetectWindow())
	}
	m := &Manager{
		sched:      sched,
		cfg:        cfg,
		classifier: classifier,
		onScroll:   opts.OnScroll,
		isJumping:  opts.IsJumping,
		logger:     logger.With().Str("component", "SyncScroll").Logger(),
		panes:      map[models.PaneSide]Pane{models.PaneLeft: left, models.PaneRight: right},
		states: map[models.PaneSide]*models.ScrollState{
			models.PaneLeft:  {},
			models.PaneRight: {},
		},
		enabled: true,
	}
	m.SyncInitialPositions()
	return m
}

// HandleWheel records a wheel gesture on side.
func (m *Manager) HandleWheel(side models.PaneSide) {
	if m.destroyed {
		return
	}
	m.classifier.ObserveWheel(side, m.sched.Now())
	m.states[side].IsWheelScroll = true

	stopTimer(m.wheelTimer)
	m.wheelTimer = m.sched.AfterFunc(m.cfg.WheelDetectWindow(), func() {
		m.states[models.PaneLeft].IsWheelScroll = false
		m.states[models.PaneRight].IsWheelScroll = false
	})
}

// HandleMouseDown marks side as being dragged.
func (m *Manager) HandleMouseDown(side models.PaneSide) {
	if m.destroyed {
		return
	}
	m.states[side].IsDragging = true
}

// HandleMouseUp ends any drag after the settle delay and re-baselines when a
// pane had been dragged.
func (m *Manager) HandleMouseUp() {
	if m.destroyed {
		return
	}
	wasLeft := m.states[models.PaneLeft].IsDragging
	wasRight := m.states[models.PaneRight].IsDragging

	stopTimer(m.dragTimer)
	m.dragTimer = m.sched.AfterFunc(m.cfg.DragDetectDelay(), func() {
		now := m.sched.Now()
		if wasLeft {
			m.states[models.PaneLeft].LastDragEndTime = now
		}
		if wasRight {
			m.states[models.PaneRight].LastDragEndTime = now
		}
		m.states[models.PaneLeft].IsDragging = false
		m.states[models.PaneRight].IsDragging = false
		if wasLeft || wasRight {
			m.syncAfterDragEnd()
		}
	})
}

// syncAfterDragEnd adopts the post-drag offset as the baseline and ignores
// trailing scroll events for the protection window.
func (m *Manager) syncAfterDragEnd() {
	m.raiseGuard(m.cfg.DragProtection())
	m.captureBaseline()
	m.dropPending()
	m.logger.Debug().Float64("offset", m.baseline.Offset).Msg("Baseline captured after drag")
}

// HandleScroll processes a native scroll event of side.
func (m *Manager) HandleScroll(side models.PaneSide) {
	if !m.enabled || m.destroyed || m.internalSync {
		return
	}
	if m.isJumping != nil && m.isJumping() {
		return
	}

	state := m.states[side]
	now := m.sched.Now()
	from := state.ScrollTop
	state.ScrollTop = m.panes[side].ScrollTop()
	state.LastUpdate = now

	kind := m.classifier.Classify(side, *state, now)
	m.logger.Trace().Str("side", string(side)).Stringer("type", kind).Float64("scroll_top", state.ScrollTop).Msg("Scroll event")

	if kind != EventDrag {
		m.queueSync(syncEvent{side: side, from: from})
		m.resetScrollEndTimer()
	}

	if m.onScroll != nil {
		m.onScroll(side)
	}
}

// queueSync coalesces events until the next frame; only the latest is
// processed, measured from where its side stood before the first coalesced
// event.
func (m *Manager) queueSync(ev syncEvent) {
	if m.pending != nil && m.pending.side == ev.side {
		ev.from = m.pending.from
	}
	m.pending = &ev
	if m.frame == nil {
		m.frame = m.sched.RequestFrame(m.processQueue)
	}
}

func (m *Manager) processQueue() {
	m.frame = nil
	ev := m.pending
	m.pending = nil
	if ev == nil {
		return
	}
	m.performSync(ev.side, ev.from)
}

func (m *Manager) dropPending() {
	m.pending = nil
	stopTimer(m.frame)
	m.frame = nil
}

// performSync moves the pane opposite source so that the baseline offset
// holds. When the target would leave its scroll range, it is clamped to the
// boundary, unless it already rests on that boundary and the source is not
// moving back, in which case the source scrolls on alone.
func (m *Manager) performSync(source models.PaneSide, from float64) {
	if !m.enabled || m.internalSync {
		return
	}
	if m.baseline == nil {
		m.captureBaseline()
		return
	}

	now := m.sched.Now()
	if m.draggedWithin(now, m.cfg.RecentDragThreshold()) {
		return
	}

	target := source.Other()
	src, dst := m.panes[source], m.panes[target]
	sourceTop := src.ScrollTop()
	targetTop := dst.ScrollTop()
	targetMax := layout.MaxScrollTop(dst.ScrollHeight(), dst.ClientHeight())
	movingUp := sourceTop < from
	movingDown := sourceTop > from

	expected := sourceTop - m.baseline.Offset
	if source == models.PaneRight {
		expected = sourceTop + m.baseline.Offset
	}

	switch {
	case expected < 0:
		if targetTop <= 0 && !movingDown {
			return
		}
		expected = 0
	case expected > targetMax:
		if targetTop >= targetMax-1 && !movingUp {
			return
		}
		expected = targetMax
	}

	if math.Abs(targetTop-expected) < m.cfg.MinDelta {
		return
	}

	m.raiseGuard(0)
	dst.SetScrollTop(expected)
	m.states[target].ScrollTop = expected
	m.states[target].LastUpdate = now
	m.states[source].ScrollTop = sourceTop
	m.states[source].LastUpdate = now
	m.logger.Trace().Str("source", string(source)).Float64("target_top", expected).Msg("Synced pane")
}

func (m *Manager) draggedWithin(now time.Time, window time.Duration) bool {
	for _, st := range m.states {
		if !st.LastDragEndTime.IsZero() && now.Sub(st.LastDragEndTime) < window {
			return true
		}
	}
	return false
}

func (m *Manager) resetScrollEndTimer() {
	stopTimer(m.scrollEndTimer)
	m.scrollEndTimer = m.sched.AfterFunc(m.cfg.ScrollEndDelay(), m.onScrollEnd)
}

// onScrollEnd nudges the panes back to the baseline offset once scrolling
// has settled.
func (m *Manager) onScrollEnd() {
	m.scrollEndTimer = nil
	if m.baseline == nil || m.isDragging() {
		return
	}
	if m.draggedWithin(m.sched.Now(), m.cfg.FinalSyncDragThreshold()) {
		return
	}

	left := m.panes[models.PaneLeft].ScrollTop()
	right := m.panes[models.PaneRight].ScrollTop()
	if math.Abs(left-right-m.baseline.Offset) <= m.cfg.MinDelta {
		return
	}

	source := models.PaneRight
	if m.states[models.PaneLeft].LastUpdate.After(m.states[models.PaneRight].LastUpdate) {
		source = models.PaneLeft
	}
	m.performSync(source, m.panes[source].ScrollTop())
}

func (m *Manager) isDragging() bool {
	return m.states[models.PaneLeft].IsDragging || m.states[models.PaneRight].IsDragging
}

// raiseGuard sets the internal-sync flag and schedules its release after d,
// or at the next frame when d is zero.
func (m *Manager) raiseGuard(d time.Duration) {
	m.internalSync = true
	stopTimer(m.guardTimer)
	release := func() {
		m.internalSync = false
		m.guardTimer = nil
	}
	if d <= 0 {
		m.guardTimer = m.sched.RequestFrame(release)
	} else {
		m.guardTimer = m.sched.AfterFunc(d, release)
	}
}

func (m *Manager) captureBaseline() {
	left := m.panes[models.PaneLeft].ScrollTop()
	right := m.panes[models.PaneRight].ScrollTop()
	now := m.sched.Now()
	m.baseline = &models.SyncBaseline{
		LeftPosition:  left,
		RightPosition: right,
		Offset:        left - right,
		Timestamp:     now,
	}
	m.states[models.PaneLeft].ScrollTop = left
	m.states[models.PaneLeft].LastUpdate = now
	m.states[models.PaneRight].ScrollTop = right
	m.states[models.PaneRight].LastUpdate = now
}

// SyncInitialPositions captures the current offset as the baseline without
// scrolling.
func (m *Manager) SyncInitialPositions() {
	if m.destroyed {
		return
	}
	m.captureBaseline()
}

// ResetScrollPositions scrolls both panes to the top and re-baselines at a
// zero offset.
func (m *Manager) ResetScrollPositions() {
	if m.destroyed {
		return
	}
	m.raiseGuard(0)
	m.dropPending()
	m.panes[models.PaneLeft].SetScrollTop(0)
	m.panes[models.PaneRight].SetScrollTop(0)
	m.captureBaseline()
}

// SetEnabled turns coupling on or off. Enabling re-captures the baseline.
func (m *Manager) SetEnabled(enabled bool) {
	if m.destroyed {
		return
	}
	m.enabled = enabled
	if enabled {
		m.SyncInitialPositions()
		return
	}
	m.dropPending()
	stopTimer(m.scrollEndTimer)
	m.scrollEndTimer = nil
}

// Enabled reports whether coupling is on.
func (m *Manager) Enabled() bool {
	return m.enabled && !m.destroyed
}

// Baseline returns the current baseline, if any.
func (m *Manager) Baseline() (models.SyncBaseline, bool) {
	if m.baseline == nil {
		return models.SyncBaseline{}, false
	}
	return *m.baseline, true
}

// State returns a copy of a pane's bookkeeping.
func (m *Manager) State(side models.PaneSide) models.ScrollState {
	return *m.states[side]
}

// InternalSync reports whether the re-entry guard is raised.
func (m *Manager) InternalSync() bool {
	return m.internalSync
}

// Destroy cancels every timer and frame. The manager ignores all further input.
func (m *Manager) Destroy() {
	m.destroyed = true
	m.enabled = false
	for _, t := range []eventloop.Timer{m.frame, m.guardTimer, m.scrollEndTimer, m.dragTimer, m.wheelTimer} {
		stopTimer(t)
	}
	m.frame, m.guardTimer, m.scrollEndTimer, m.dragTimer, m.wheelTimer = nil, nil, nil, nil, nil
	m.pending = nil
	m.internalSync = false
}

func stopTimer(t eventloop.Timer) {
	if t != nil {
		t.Stop()
	}
}
