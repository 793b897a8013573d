package progress

import (
	"math"
	"strings"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/models"
)

// Step description markers sent by the backend while OCR runs.
const (
	oldDocMarker = "原文档"
	newDocMarker = "新文档"
)

// Phase is the calculator's view of where the task is.
type Phase string

const (
	PhaseInit      Phase = "INIT"
	PhaseFirstDoc  Phase = "FIRST_DOC"
	PhaseWaiting   Phase = "WAITING" // old document late or done, new one not started
	PhaseSecondDoc Phase = "SECOND_DOC"
	PhaseOther     Phase = "OTHER"
	PhaseFinal     Phase = "FINAL"
)

// Calculator maps task snapshots to a target percentage using fixed
// milestones: the old document's OCR fills [0, FirstDocComplete], a late old
// document creeps on up to FirstDocMaxWait, the new document's OCR fills the
// rest up to SecondDocComplete, later steps jump there, and completion
// sprints to 100.
type Calculator struct {
	cfg            config.ProgressConfig
	taskStart      time.Time
	secondDocStart time.Time
	sprintStart    time.Time
	phase          Phase
}

// NewCalculator creates a calculator for one task.
func NewCalculator(cfg config.ProgressConfig) *Calculator {
	return &Calculator{cfg: cfg, phase: PhaseInit}
}

// Phase returns the phase of the last calculation.
func (c *Calculator) Phase() Phase {
	return c.phase
}

// Reset forgets all timing so the calculator can serve a new task.
func (c *Calculator) Reset() {
	c.taskStart = time.Time{}
	c.secondDocStart = time.Time{}
	c.sprintStart = time.Time{}
	c.phase = PhaseInit
}

// Calculate returns the target percentage for task given the currently
// displayed value.
func (c *Calculator) Calculate(task models.TaskSnapshot, current float64, now time.Time) float64 {
	if c.taskStart.IsZero() {
		c.taskStart = now
		if !task.StartTime.IsZero() {
			c.taskStart = task.StartTime
		}
	}

	if task.Status.IsCompleted() {
		c.phase = PhaseFinal
		return c.finalSprint(current, now)
	}

	switch stepPhase(task.CurrentStepDesc) {
	case PhaseFirstDoc:
		if task.OldDocPages > 0 && task.CompletedPagesOld > 0 && task.CompletedPagesOld >= task.OldDocPages {
			c.phase = PhaseWaiting
			return math.Max(current, c.cfg.FirstDocComplete)
		}
		c.phase = PhaseFirstDoc
		return c.firstDoc(task, now.Sub(c.taskStart), current)
	case PhaseSecondDoc:
		c.phase = PhaseSecondDoc
		if c.secondDocStart.IsZero() {
			c.secondDocStart = now
		}
		return c.secondDoc(task, current, now)
	}

	c.phase = PhaseOther
	if current < c.cfg.SecondDocComplete {
		return c.cfg.SecondDocComplete
	}
	return current
}

// SprintDone reports whether the completion sprint has run its full length.
func (c *Calculator) SprintDone(now time.Time) bool {
	return !c.sprintStart.IsZero() && now.Sub(c.sprintStart) >= c.cfg.FinalSprint()
}

func stepPhase(desc string) Phase {
	switch {
	case strings.Contains(desc, oldDocMarker):
		return PhaseFirstDoc
	case strings.Contains(desc, newDocMarker):
		return PhaseSecondDoc
	default:
		return PhaseOther
	}
}

func (c *Calculator) firstDoc(task models.TaskSnapshot, elapsed time.Duration, current float64) float64 {
	band := c.cfg.FirstDocComplete
	timeRatio := ratio(elapsed, task.EstimatedOld())

	if task.OldDocPages <= 0 {
		return timeRatio * band
	}

	pageRatio := float64(task.CompletedPagesOld) / float64(task.OldDocPages)
	progress := math.Max(pageRatio, timeRatio) * band
	if progress >= band && task.CompletedPagesOld < task.OldDocPages {
		c.phase = PhaseWaiting
		return math.Min(current+c.cfg.SlowGrowthFactor*0.1, c.cfg.FirstDocMaxWait)
	}
	return math.Min(progress, band)
}

func (c *Calculator) secondDoc(task models.TaskSnapshot, current float64, now time.Time) float64 {
	start := math.Max(current, c.cfg.FirstDocComplete)
	span := c.cfg.SecondDocComplete - start
	progress := ratio(now.Sub(c.secondDocStart), task.EstimatedNew())
	if task.NewDocPages > 0 {
		progress = math.Max(float64(task.CompletedPagesNew)/float64(task.NewDocPages), progress)
	}
	if progress >= 1 {
		return math.Max(start, c.cfg.SecondDocComplete)
	}
	return start + progress*span
}

func (c *Calculator) finalSprint(current float64, now time.Time) float64 {
	if c.sprintStart.IsZero() {
		c.sprintStart = now
	}
	sprint := 1.0
	if d := c.cfg.FinalSprint(); d > 0 {
		sprint = math.Min(1, float64(now.Sub(c.sprintStart))/float64(d))
	}
	if sprint >= 1 {
		return 100
	}
	start := math.Max(current, c.cfg.SecondDocComplete)
	return start + sprint*(100-start)
}

// ratio is elapsed/estimate capped at 1; zero without an estimate.
func ratio(elapsed, estimate time.Duration) float64 {
	if estimate <= 0 || elapsed <= 0 {
		return 0
	}
	return math.Min(1, float64(elapsed)/float64(estimate))
}
