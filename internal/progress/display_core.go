package progress

import (
	"context"
	"sync"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/rs/zerolog"
)

// DisplayConfig controls the progress log line.
type DisplayConfig struct {
	DisplayInterval   time.Duration
	EnableProgress    bool
	ShowETAEstimation bool
}

// DisplayConfigFromConfig builds the display settings from the progress config.
func DisplayConfigFromConfig(cfg config.ProgressConfig) *DisplayConfig {
	interval := cfg.GetDisplayIntervalDuration()
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &DisplayConfig{
		DisplayInterval:   interval,
		EnableProgress:    cfg.EnableProgress,
		ShowETAEstimation: cfg.ShowETAEstimation,
	}
}

// DisplayManager periodically logs the watched task's progress as one line.
type DisplayManager struct {
	info           ProgressInfo
	mutex          sync.RWMutex
	logger         zerolog.Logger
	displayTicker  *time.Ticker
	isRunning      bool
	stopChan       chan struct{}
	ctx            context.Context
	cancel         context.CancelFunc
	lastDisplayed  string
	config         *DisplayConfig
	triggerDisplay chan struct{}
	now            func() time.Time
}

// NewDisplayManager creates a display manager for one task.
func NewDisplayManager(taskID string, logger zerolog.Logger, config *DisplayConfig) *DisplayManager {
	ctx, cancel := context.WithCancel(context.Background())

	if config == nil {
		config = &DisplayConfig{
			DisplayInterval:   3 * time.Second,
			EnableProgress:    true,
			ShowETAEstimation: true,
		}
	}

	return &DisplayManager{
		info:           ProgressInfo{TaskID: taskID, Status: ProgressStatusIdle},
		logger:         logger.With().Str("component", "ProgressDisplay").Str("task_id", taskID).Logger(),
		stopChan:       make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
		config:         config,
		triggerDisplay: make(chan struct{}, 1),
		now:            time.Now,
	}
}

// Start begins logging on the display interval.
func (dm *DisplayManager) Start() {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	if dm.isRunning {
		return
	}
	if !dm.config.EnableProgress {
		dm.logger.Debug().Msg("Progress display disabled in configuration")
		return
	}

	dm.isRunning = true
	dm.displayTicker = time.NewTicker(dm.config.DisplayInterval)

	go dm.displayLoop()
}

// Stop halts logging and prints the final line.
func (dm *DisplayManager) Stop() {
	dm.mutex.Lock()
	if !dm.isRunning {
		dm.mutex.Unlock()
		return
	}
	dm.isRunning = false
	dm.cancel()
	if dm.displayTicker != nil {
		dm.displayTicker.Stop()
	}
	close(dm.stopChan)
	dm.mutex.Unlock()

	dm.displayProgress()
}

// Info returns a copy of the current display state.
func (dm *DisplayManager) Info() ProgressInfo {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()
	return dm.info
}

// UpdateTask records a polled task status.
func (dm *DisplayManager) UpdateTask(status *models.TaskStatus) {
	if status == nil {
		return
	}
	dm.mutex.Lock()
	now := dm.now()
	if dm.info.StartTime.IsZero() {
		dm.info.StartTime = now
	}
	dm.info.Status = StatusFromTask(status.Status)
	dm.info.Stage = status.CurrentStepDesc
	if dm.info.Stage == "" {
		dm.info.Stage = status.StatusDescription
	}
	if status.ErrorMessage != "" {
		dm.info.Message = status.ErrorMessage
	}
	snap := status.Snapshot()
	dm.info.ETAText = EstimatedTimeText(&snap)
	dm.info.LastUpdateTime = now
	dm.mutex.Unlock()

	dm.triggerImmediateDisplay()
}

// UpdateProgress records the estimator's displayed value.
func (dm *DisplayManager) UpdateProgress(state models.ProgressState) {
	dm.mutex.Lock()
	dm.info.Percentage = state.DisplayProgress
	dm.info.LastUpdateTime = dm.now()
	dm.mutex.Unlock()
}

// SetStatus sets the status and message, e.g. on failure or cancellation.
func (dm *DisplayManager) SetStatus(status ProgressStatus, message string) {
	dm.mutex.Lock()
	dm.info.Status = status
	dm.info.Message = message
	dm.info.LastUpdateTime = dm.now()
	dm.mutex.Unlock()

	dm.triggerImmediateDisplay()
}

func (dm *DisplayManager) triggerImmediateDisplay() {
	select {
	case dm.triggerDisplay <- struct{}{}:
	default:
	}
}
