package models

import (
	"strings"
	"time"
)

// TaskState is the backend lifecycle status of a comparison task.
type TaskState string

const (
	TaskPending       TaskState = "PENDING"
	TaskOCRProcessing TaskState = "OCR_PROCESSING"
	TaskComparing     TaskState = "COMPARING"
	TaskAnnotating    TaskState = "ANNOTATING"
	TaskCompleted     TaskState = "COMPLETED"
	TaskFailed        TaskState = "FAILED"
	TaskTimeout       TaskState = "TIMEOUT"
	TaskCancelled     TaskState = "CANCELLED"
)

// IsTerminalFailure reports whether polling must stop with an error.
func (s TaskState) IsTerminalFailure() bool {
	switch TaskState(strings.ToUpper(string(s))) {
	case TaskFailed, TaskTimeout, TaskCancelled:
		return true
	default:
		return false
	}
}

// IsCompleted reports whether the task finished successfully.
func (s TaskState) IsCompleted() bool {
	return TaskState(strings.ToUpper(string(s))) == TaskCompleted
}

// TaskStatus is the poll endpoint payload.
type TaskStatus struct {
	TaskID              string    `json:"taskId"`
	Status              TaskState `json:"status"`
	StatusDescription   string    `json:"statusDescription,omitempty"`
	Progress            float64   `json:"progress,omitempty"`
	CurrentStep         int       `json:"currentStep,omitempty"`
	CurrentStepDesc     string    `json:"currentStepDesc,omitempty"`
	OldDocPages         int       `json:"oldDocPages,omitempty"`
	NewDocPages         int       `json:"newDocPages,omitempty"`
	CompletedPagesOld   int       `json:"completedPagesOld,omitempty"`
	CompletedPagesNew   int       `json:"completedPagesNew,omitempty"`
	EstimatedOcrTimeOld float64   `json:"estimatedOcrTimeOld,omitempty"`
	EstimatedOcrTimeNew float64   `json:"estimatedOcrTimeNew,omitempty"`
	StartTime           string    `json:"startTime,omitempty"`
	ErrorMessage        string    `json:"errorMessage,omitempty"`
	OldFileName         string    `json:"oldFileName,omitempty"`
	NewFileName         string    `json:"newFileName,omitempty"`
}

// Snapshot extracts the fields the progress estimator consumes.
func (t *TaskStatus) Snapshot() TaskSnapshot {
	snap := TaskSnapshot{
		Status:              t.Status,
		CurrentStepDesc:     t.CurrentStepDesc,
		OldDocPages:         t.OldDocPages,
		NewDocPages:         t.NewDocPages,
		CompletedPagesOld:   t.CompletedPagesOld,
		CompletedPagesNew:   t.CompletedPagesNew,
		EstimatedOcrTimeOld: t.EstimatedOcrTimeOld,
		EstimatedOcrTimeNew: t.EstimatedOcrTimeNew,
	}
	if t.StartTime != "" {
		snap.StartTime = ParseStartTime(t.StartTime)
	}
	return snap
}

// ParseStartTime accepts RFC3339 and the backend's zone-less ISO local format.
// Unparseable input yields the zero time.
func ParseStartTime(s string) time.Time {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// TaskSnapshot is the progress estimator's view of a polled task.
// Estimated OCR times are in milliseconds.
type TaskSnapshot struct {
	Status              TaskState
	CurrentStepDesc     string
	OldDocPages         int
	NewDocPages         int
	CompletedPagesOld   int
	CompletedPagesNew   int
	EstimatedOcrTimeOld float64
	EstimatedOcrTimeNew float64
	StartTime           time.Time
}

// EstimatedOld returns the old document's estimated OCR time.
func (s TaskSnapshot) EstimatedOld() time.Duration {
	return msDuration(s.EstimatedOcrTimeOld)
}

// EstimatedNew returns the new document's estimated OCR time.
func (s TaskSnapshot) EstimatedNew() time.Duration {
	return msDuration(s.EstimatedOcrTimeNew)
}

func msDuration(ms float64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// ProgressState is what a loading indicator shows.
type ProgressState struct {
	LoadingText     string
	DisplayProgress float64
	CurrentTask     *TaskSnapshot
}

// CompareResult is the result endpoint payload.
type CompareResult struct {
	TaskID          string            `json:"taskId,omitempty"`
	OldFileName     string            `json:"oldFileName"`
	NewFileName     string            `json:"newFileName"`
	OldImageInfo    DocumentImageInfo `json:"oldImageInfo"`
	NewImageInfo    DocumentImageInfo `json:"newImageInfo"`
	OldImageBaseURL string            `json:"oldImageBaseUrl,omitempty"`
	NewImageBaseURL string            `json:"newImageBaseUrl,omitempty"`
	Differences     []DifferenceItem  `json:"differences"`
	TotalDiffCount  int               `json:"totalDiffCount,omitempty"`
	DeleteCount     int               `json:"deleteCount,omitempty"`
	InsertCount     int               `json:"insertCount,omitempty"`
}

// ImageBaseURL returns the page image base URL for a document side.
func (r *CompareResult) ImageBaseURL(side Side) string {
	if side == SideNew {
		return r.NewImageBaseURL
	}
	return r.OldImageBaseURL
}

// ImageInfo returns the page list for a document side.
func (r *CompareResult) ImageInfo(side Side) *DocumentImageInfo {
	if side == SideNew {
		return &r.NewImageInfo
	}
	return &r.OldImageInfo
}
