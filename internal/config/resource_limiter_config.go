package config

import "time"

// ResourceLimiterConfig holds configuration for the memory guard around the image cache
type ResourceLimiterConfig struct {
	MaxMemoryMB        int64   `json:"max_memory_mb,omitempty" yaml:"max_memory_mb,omitempty" validate:"omitempty,min=16"`
	CheckIntervalSecs  int     `json:"check_interval_secs,omitempty" yaml:"check_interval_secs,omitempty" validate:"omitempty,min=1"`
	MemoryThreshold    float64 `json:"memory_threshold,omitempty" yaml:"memory_threshold,omitempty" validate:"omitempty,min=0.1,max=1.0"`
	SystemMemThreshold float64 `json:"system_mem_threshold,omitempty" yaml:"system_mem_threshold,omitempty" validate:"omitempty,min=0.1,max=1.0"`
	// EnableCachePurge clears the page image cache when a threshold is crossed
	EnableCachePurge bool `json:"enable_cache_purge" yaml:"enable_cache_purge"`
}

// NewDefaultResourceLimiterConfig creates default resource limiter configuration
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		MaxMemoryMB:        1024,
		CheckIntervalSecs:  15,
		MemoryThreshold:    0.8,
		SystemMemThreshold: 0.9,
		EnableCachePurge:   true,
	}
}

// CheckInterval returns the check period as time.Duration
func (rc ResourceLimiterConfig) CheckInterval() time.Duration {
	return time.Duration(rc.CheckIntervalSecs) * time.Second
}
