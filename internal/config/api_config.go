package config

import "time"

// APIConfig describes how to reach the comparison backend and how to poll it.
type APIConfig struct {
	// BaseURL is the API root, e.g. https://host/api/gpu-ocr-compare
	BaseURL     string            `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	AuthToken   string            `json:"auth_token,omitempty" yaml:"auth_token,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	UserAgent   string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	TimeoutSecs int               `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
	// PollIntervalMs is the delay between two status requests
	PollIntervalMs int `json:"poll_interval_ms,omitempty" yaml:"poll_interval_ms,omitempty" validate:"omitempty,min=10"`
	// MaxPollAttempts bounds the number of status requests before giving up
	MaxPollAttempts    int         `json:"max_poll_attempts,omitempty" yaml:"max_poll_attempts,omitempty" validate:"omitempty,min=1"`
	InsecureSkipVerify bool        `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	EnableHTTP2        bool        `json:"enable_http2" yaml:"enable_http2"`
	Retry              RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// NewDefaultAPIConfig creates default API configuration
func NewDefaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:         "http://localhost:8080/api/gpu-ocr-compare",
		Headers:         map[string]string{},
		UserAgent:       "ocrdiff/1.0",
		TimeoutSecs:     30,
		PollIntervalMs:  2000,
		MaxPollAttempts: 180,
		EnableHTTP2:     true,
		Retry:           NewDefaultRetryConfig(),
	}
}

// Timeout returns the per-request timeout as time.Duration
func (ac APIConfig) Timeout() time.Duration {
	return time.Duration(ac.TimeoutSecs) * time.Second
}

// PollInterval returns the poll interval as time.Duration
func (ac APIConfig) PollInterval() time.Duration {
	return time.Duration(ac.PollIntervalMs) * time.Millisecond
}
