package progress

import (
	"fmt"
	"math"
	"sync"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/eventloop"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/rs/zerolog"
)

const (
	loadingTextFormat     = "加载中...%.1f%%"
	etaCalculatingText    = "预计用时计算中，请稍候"
	etaUnderMinuteText    = "预计用时不到1分钟，请稍候"
	etaMinutesFormat      = "预计用时约%d分钟，请稍候"
	millisecondsPerMinute = 60000
)

// Listener receives the state after every tick.
type Listener func(models.ProgressState)

// Estimator eases a displayed percentage toward the calculator's target on a
// fixed tick. The displayed value never decreases until Reset.
type Estimator struct {
	mu       sync.Mutex
	sched    eventloop.Scheduler
	cfg      config.ProgressConfig
	calc     *Calculator
	logger   zerolog.Logger
	listener Listener

	task     *models.TaskSnapshot
	display  float64
	running  bool
	finished bool
	timer    eventloop.Timer
}

// NewEstimator creates an idle estimator. Ticks run on sched.
func NewEstimator(sched eventloop.Scheduler, cfg config.ProgressConfig, logger zerolog.Logger) *Estimator {
	if cfg.TickIntervalMs <= 0 {
		cfg = config.NewDefaultProgressConfig()
	}
	return &Estimator{
		sched:  sched,
		cfg:    cfg,
		calc:   NewCalculator(cfg),
		logger: logger.With().Str("component", "ProgressEstimator").Logger(),
	}
}

// OnTick registers the listener notified after each tick.
func (e *Estimator) OnTick(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

// Start begins ticking. Calling Start on a running estimator is a no-op.
func (e *Estimator) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.finished {
		return
	}
	e.running = true
	e.scheduleLocked()
	e.logger.Debug().Dur("tick", e.cfg.TickInterval()).Msg("Progress ticking started")
}

// Update replaces the task snapshot consumed by the next tick.
func (e *Estimator) Update(snap models.TaskSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.task = &snap
}

// Complete jumps to 100 and stops ticking.
func (e *Estimator) Complete() {
	e.mu.Lock()
	e.stopLocked()
	e.display = 100
	e.finished = true
	state, l := e.stateLocked(), e.listener
	e.mu.Unlock()

	if l != nil {
		l(state)
	}
}

// Stop halts ticking and keeps the displayed value.
func (e *Estimator) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Reset stops ticking and clears all state for a new task.
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.task = nil
	e.display = 0
	e.finished = false
	e.calc.Reset()
}

// Running reports whether ticks are scheduled.
func (e *Estimator) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Phase returns the calculator phase of the last tick.
func (e *Estimator) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calc.Phase()
}

// State returns what the loading indicator shows.
func (e *Estimator) State() models.ProgressState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// EstimatedTimeText describes the total estimated OCR time.
func (e *Estimator) EstimatedTimeText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EstimatedTimeText(e.task)
}

// EstimatedTimeText formats the total estimated OCR time of task in whole
// minutes, rounding up.
func EstimatedTimeText(task *models.TaskSnapshot) string {
	if task == nil {
		return etaCalculatingText
	}
	total := task.EstimatedOcrTimeOld + task.EstimatedOcrTimeNew
	if total <= 0 {
		return etaCalculatingText
	}
	minutes := int(math.Ceil(total / millisecondsPerMinute))
	if minutes <= 1 {
		return etaUnderMinuteText
	}
	return fmt.Sprintf(etaMinutesFormat, minutes)
}

// LoadingText formats a percentage the way the loading indicator shows it.
func LoadingText(pct float64) string {
	return fmt.Sprintf(loadingTextFormat, pct)
}

func (e *Estimator) tick() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	now := e.sched.Now()

	if e.task == nil {
		if e.display < e.cfg.IdleCreepCeiling {
			e.display = math.Min(e.display+e.cfg.IdleCreepStep, e.cfg.IdleCreepCeiling)
		}
	} else {
		target := e.calc.Calculate(*e.task, e.display, now)
		next := e.display
		if diff := target - e.display; math.Abs(diff) < e.cfg.SnapThreshold {
			next = target
		} else {
			next += diff * e.cfg.BlendFactor
		}
		e.display = math.Min(100, math.Max(e.display, next))

		if e.task.Status.IsCompleted() && e.calc.SprintDone(now) {
			e.display = 100
			e.finished = true
			e.stopLocked()
			e.logger.Debug().Msg("Progress reached completion")
		}
	}

	if e.running {
		e.scheduleLocked()
	}
	state, l := e.stateLocked(), e.listener
	e.mu.Unlock()

	if l != nil {
		l(state)
	}
}

func (e *Estimator) scheduleLocked() {
	e.timer = e.sched.AfterFunc(e.cfg.TickInterval(), e.tick)
}

func (e *Estimator) stopLocked() {
	e.running = false
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Estimator) stateLocked() models.ProgressState {
	state := models.ProgressState{
		LoadingText:     LoadingText(e.display),
		DisplayProgress: e.display,
	}
	if e.task != nil {
		snap := *e.task
		state.CurrentTask = &snap
	}
	return state
}
