package progress

import (
	"time"

	"github.com/aleister1102/ocrdiff/internal/models"
)

// ProgressStatus is the lifecycle of a watched task as shown by the display.
type ProgressStatus string

const (
	ProgressStatusIdle      ProgressStatus = "IDLE"
	ProgressStatusRunning   ProgressStatus = "RUNNING"
	ProgressStatusComplete  ProgressStatus = "COMPLETE"
	ProgressStatusError     ProgressStatus = "ERROR"
	ProgressStatusCancelled ProgressStatus = "CANCELLED"
)

// StatusFromTask maps a backend task state onto a display status.
func StatusFromTask(state models.TaskState) ProgressStatus {
	switch {
	case state.IsCompleted():
		return ProgressStatusComplete
	case state == models.TaskCancelled:
		return ProgressStatusCancelled
	case state.IsTerminalFailure():
		return ProgressStatusError
	case state == "":
		return ProgressStatusIdle
	default:
		return ProgressStatusRunning
	}
}

// ProgressInfo is one display line's worth of state.
type ProgressInfo struct {
	TaskID         string         `json:"task_id"`
	Status         ProgressStatus `json:"status"`
	Percentage     float64        `json:"percentage"`
	Stage          string         `json:"stage"`
	Message        string         `json:"message"`
	ETAText        string         `json:"eta_text,omitempty"`
	StartTime      time.Time      `json:"start_time"`
	LastUpdateTime time.Time      `json:"last_update_time"`
}

// Elapsed returns how long the task has been watched.
func (pi *ProgressInfo) Elapsed(now time.Time) time.Duration {
	if pi.StartTime.IsZero() || now.Before(pi.StartTime) {
		return 0
	}
	return now.Sub(pi.StartTime)
}

// GetPercentage returns the percentage clamped to [0, 100].
func (pi *ProgressInfo) GetPercentage() float64 {
	switch {
	case pi.Percentage < 0:
		return 0
	case pi.Percentage > 100:
		return 100
	default:
		return pi.Percentage
	}
}
