package config

import "time"

// RetryConfig defines configuration for HTTP request retries
type RetryConfig struct {
	// Maximum number of retry attempts for retryable status codes
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
	// Base delay in milliseconds for exponential backoff
	BaseDelayMs int `json:"base_delay_ms,omitempty" yaml:"base_delay_ms,omitempty" validate:"omitempty,min=1"`
	// Maximum delay in milliseconds for exponential backoff
	MaxDelayMs int `json:"max_delay_ms,omitempty" yaml:"max_delay_ms,omitempty" validate:"omitempty,min=1"`
	// Enable jitter to randomize delays slightly
	EnableJitter bool `json:"enable_jitter" yaml:"enable_jitter"`
	// HTTP status codes that should trigger retries
	RetryStatusCodes []int `json:"retry_status_codes,omitempty" yaml:"retry_status_codes,omitempty" validate:"omitempty,dive,min=400,max=599"`
}

// NewDefaultRetryConfig creates default retry configuration
func NewDefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:       2,
		BaseDelayMs:      250,
		MaxDelayMs:       4000,
		EnableJitter:     true,
		RetryStatusCodes: []int{429, 502, 503, 504},
	}
}

// BaseDelay returns the base backoff delay as time.Duration
func (rc RetryConfig) BaseDelay() time.Duration {
	return time.Duration(rc.BaseDelayMs) * time.Millisecond
}

// MaxDelay returns the backoff ceiling as time.Duration
func (rc RetryConfig) MaxDelay() time.Duration {
	return time.Duration(rc.MaxDelayMs) * time.Millisecond
}
