package httpclient

import (
	"net/http"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout             time.Duration     // Request timeout
	InsecureSkipVerify  bool              // Skip TLS verification
	FollowRedirects     bool              // Whether to follow redirects
	MaxRedirects        int               // Maximum number of redirects to follow
	CustomHeaders       map[string]string // Headers added to all requests
	UserAgent           string            // User-Agent header
	MaxIdleConns        int               // Maximum idle connections
	MaxIdleConnsPerHost int               // Maximum idle connections per host
	IdleConnTimeout     time.Duration     // Idle connection timeout
	TLSHandshakeTimeout time.Duration     // TLS handshake timeout
	DialTimeout         time.Duration     // Connection dial timeout
	KeepAlive           time.Duration     // Keep-alive duration
	MaxContentSize      int               // Larger bodies are rejected (0 means no limit)
	EnableHTTP2         bool              // Enable HTTP/2 support
	Retry               *RetryHandlerConfig
}

// DefaultHTTPClientConfig returns the default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:             30 * time.Second,
		FollowRedirects:     true,
		MaxRedirects:        10,
		UserAgent:           "ocrdiff/1.0",
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialTimeout:         10 * time.Second,
		KeepAlive:           30 * time.Second,
		EnableHTTP2:         true,
		CustomHeaders: map[string]string{
			"Accept": "application/json, image/*;q=0.9, */*;q=0.8",
		},
	}
}

// ConfigFromAPI maps the backend API section onto a client configuration.
func ConfigFromAPI(api config.APIConfig) HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	if api.TimeoutSecs > 0 {
		cfg.Timeout = api.Timeout()
	}
	if api.UserAgent != "" {
		cfg.UserAgent = api.UserAgent
	}
	cfg.InsecureSkipVerify = api.InsecureSkipVerify
	cfg.EnableHTTP2 = api.EnableHTTP2
	for k, v := range api.Headers {
		cfg.CustomHeaders[k] = v
	}
	if api.Retry.MaxRetries > 0 {
		retry := RetryHandlerConfig{
			MaxRetries:       api.Retry.MaxRetries,
			BaseDelay:        api.Retry.BaseDelay(),
			MaxDelay:         api.Retry.MaxDelay(),
			EnableJitter:     api.Retry.EnableJitter,
			RetryStatusCodes: api.Retry.RetryStatusCodes,
		}
		if len(retry.RetryStatusCodes) == 0 {
			retry.RetryStatusCodes = []int{http.StatusTooManyRequests, http.StatusServiceUnavailable}
		}
		cfg.Retry = &retry
	}
	return cfg
}
