package config

import "time"

// ProgressConfig contains the estimator's milestones and the display settings.
type ProgressConfig struct {
	// FirstDocComplete is the displayed percentage once the old document's OCR is done
	FirstDocComplete float64 `json:"first_doc_complete,omitempty" yaml:"first_doc_complete,omitempty" validate:"omitempty,min=1,max=100"`
	// FirstDocMaxWait caps slow growth while the first document is still running late
	FirstDocMaxWait float64 `json:"first_doc_max_wait,omitempty" yaml:"first_doc_max_wait,omitempty" validate:"omitempty,gtefield=FirstDocComplete,max=100"`
	// SecondDocComplete is the displayed percentage once both documents are done
	SecondDocComplete float64 `json:"second_doc_complete,omitempty" yaml:"second_doc_complete,omitempty" validate:"omitempty,gtefield=FirstDocMaxWait,max=100"`
	// SlowGrowthFactor scales the per-tick creep past FirstDocComplete
	SlowGrowthFactor float64 `json:"slow_growth_factor,omitempty" yaml:"slow_growth_factor,omitempty" validate:"omitempty,min=0,max=1"`
	FinalSprintMs    int     `json:"final_sprint_ms,omitempty" yaml:"final_sprint_ms,omitempty" validate:"omitempty,min=1"`
	TickIntervalMs   int     `json:"tick_interval_ms,omitempty" yaml:"tick_interval_ms,omitempty" validate:"omitempty,min=10"`
	BlendFactor      float64 `json:"blend_factor,omitempty" yaml:"blend_factor,omitempty" validate:"omitempty,gt=0,max=1"`
	SnapThreshold    float64 `json:"snap_threshold,omitempty" yaml:"snap_threshold,omitempty" validate:"omitempty,min=0"`
	IdleCreepStep    float64 `json:"idle_creep_step,omitempty" yaml:"idle_creep_step,omitempty" validate:"omitempty,min=0"`
	IdleCreepCeiling float64 `json:"idle_creep_ceiling,omitempty" yaml:"idle_creep_ceiling,omitempty" validate:"omitempty,min=0,max=100"`

	// DisplayInterval is how often to log progress updates (in seconds)
	DisplayInterval int  `json:"display_interval,omitempty" yaml:"display_interval,omitempty" validate:"omitempty,min=1,max=60"`
	EnableProgress  bool `json:"enable_progress" yaml:"enable_progress"`
	// ShowETAEstimation appends the estimated OCR time text to the display line
	ShowETAEstimation bool `json:"show_eta_estimation" yaml:"show_eta_estimation"`
}

// NewDefaultProgressConfig creates a new ProgressConfig with default values
func NewDefaultProgressConfig() ProgressConfig {
	return ProgressConfig{
		FirstDocComplete:  46,
		FirstDocMaxWait:   60,
		SecondDocComplete: 96,
		SlowGrowthFactor:  0.05,
		FinalSprintMs:     100,
		TickIntervalMs:    300,
		BlendFactor:       0.15,
		SnapThreshold:     0.1,
		IdleCreepStep:     0.01,
		IdleCreepCeiling:  5,
		DisplayInterval:   3,
		EnableProgress:    true,
		ShowETAEstimation: true,
	}
}

// GetDisplayIntervalDuration returns the display interval as time.Duration
func (pc ProgressConfig) GetDisplayIntervalDuration() time.Duration {
	return time.Duration(pc.DisplayInterval) * time.Second
}

// TickInterval returns the smoothing tick period as time.Duration
func (pc ProgressConfig) TickInterval() time.Duration {
	return time.Duration(pc.TickIntervalMs) * time.Millisecond
}

// FinalSprint returns the completion sprint duration as time.Duration
func (pc ProgressConfig) FinalSprint() time.Duration {
	return time.Duration(pc.FinalSprintMs) * time.Millisecond
}
