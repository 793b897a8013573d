package config

import "time"

// ScrollConfig holds the timing constants of the synchronized scroll heuristics.
type ScrollConfig struct {
	// MinDelta is the smallest pixel correction worth applying
	MinDelta float64 `json:"min_delta,omitempty" yaml:"min_delta,omitempty" validate:"omitempty,min=0"`
	// ScrollEndDelayMs is the quiet period after which a scroll burst counts as finished
	ScrollEndDelayMs int `json:"scroll_end_delay_ms,omitempty" yaml:"scroll_end_delay_ms,omitempty" validate:"omitempty,min=1"`
	// WheelDetectWindowMs attributes scroll events to the wheel for this long after a wheel event
	WheelDetectWindowMs int `json:"wheel_detect_window_ms,omitempty" yaml:"wheel_detect_window_ms,omitempty" validate:"omitempty,min=1"`
	// DragDetectDelayMs delays drag-end handling after mouseup
	DragDetectDelayMs int `json:"drag_detect_delay_ms,omitempty" yaml:"drag_detect_delay_ms,omitempty" validate:"omitempty,min=0"`
	// DragProtectionMs keeps the internal-sync guard raised after re-baselining
	DragProtectionMs int `json:"drag_protection_ms,omitempty" yaml:"drag_protection_ms,omitempty" validate:"omitempty,min=0"`
	// RecentDragThresholdMs suppresses live sync this long after a drag ended
	RecentDragThresholdMs int `json:"recent_drag_threshold_ms,omitempty" yaml:"recent_drag_threshold_ms,omitempty" validate:"omitempty,min=0"`
	// FinalSyncDragThresholdMs suppresses the scroll-end correction this long after a drag ended
	FinalSyncDragThresholdMs int `json:"final_sync_drag_threshold_ms,omitempty" yaml:"final_sync_drag_threshold_ms,omitempty" validate:"omitempty,min=0"`
	// FrameIntervalMs is the period of the frame scheduler
	FrameIntervalMs int `json:"frame_interval_ms,omitempty" yaml:"frame_interval_ms,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultScrollConfig creates default scroll configuration
func NewDefaultScrollConfig() ScrollConfig {
	return ScrollConfig{
		MinDelta:                 2,
		ScrollEndDelayMs:         300,
		WheelDetectWindowMs:      150,
		DragDetectDelayMs:        50,
		DragProtectionMs:         500,
		RecentDragThresholdMs:    1000,
		FinalSyncDragThresholdMs: 500,
		FrameIntervalMs:          16,
	}
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func (sc ScrollConfig) ScrollEndDelay() time.Duration    { return ms(sc.ScrollEndDelayMs) }
func (sc ScrollConfig) WheelDetectWindow() time.Duration { return ms(sc.WheelDetectWindowMs) }
func (sc ScrollConfig) DragDetectDelay() time.Duration   { return ms(sc.DragDetectDelayMs) }
func (sc ScrollConfig) DragProtection() time.Duration    { return ms(sc.DragProtectionMs) }
func (sc ScrollConfig) RecentDragThreshold() time.Duration {
	return ms(sc.RecentDragThresholdMs)
}
func (sc ScrollConfig) FinalSyncDragThreshold() time.Duration {
	return ms(sc.FinalSyncDragThresholdMs)
}
func (sc ScrollConfig) FrameInterval() time.Duration { return ms(sc.FrameIntervalMs) }
