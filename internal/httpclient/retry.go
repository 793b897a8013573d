package httpclient

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/rs/zerolog"
)

// RetryHandler handles HTTP request retries with exponential backoff
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int           `json:"max_retries"`
	BaseDelay        time.Duration `json:"base_delay"`
	MaxDelay         time.Duration `json:"max_delay"`
	EnableJitter     bool          `json:"enable_jitter"`
	RetryStatusCodes []int         `json:"retry_status_codes"`
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(cfg RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	statusCodeMap := make(map[int]bool, len(cfg.RetryStatusCodes))
	for _, code := range cfg.RetryStatusCodes {
		statusCodeMap[code] = true
	}

	return &RetryHandler{
		maxRetries:       cfg.MaxRetries,
		baseDelay:        cfg.BaseDelay,
		maxDelay:         cfg.MaxDelay,
		enableJitter:     cfg.EnableJitter,
		retryStatusCodes: statusCodeMap,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// ShouldRetry determines if a request should be retried based on status code
func (rh *RetryHandler) ShouldRetry(statusCode int, attempt int) bool {
	if attempt >= rh.maxRetries {
		return false
	}
	return rh.retryStatusCodes[statusCode]
}

// CalculateDelay returns baseDelay * 2^attempt capped at maxDelay, plus up to 10% jitter.
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return rh.baseDelay
	}

	delay := rh.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	if rh.maxDelay > 0 && delay > rh.maxDelay {
		delay = rh.maxDelay
	}

	if rh.enableJitter {
		if window := delay.Milliseconds() / 10; window > 0 {
			delay += time.Duration(rand.Int63n(window)) * time.Millisecond
		}
	}

	return delay
}

// WaitForRetry waits for the calculated delay before retrying
func (rh *RetryHandler) WaitForRetry(ctx context.Context, attempt int, reason string, url string) error {
	delay := rh.CalculateDelay(attempt)

	rh.logger.Debug().
		Str("url", url).
		Str("reason", reason).
		Int("attempt", attempt+1).
		Int("max_retries", rh.maxRetries).
		Dur("delay", delay).
		Msg("Waiting before retry")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoWithRetry executes an HTTP request with retry logic. Network errors and
// retryable status codes are both retried with backoff.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, doFunc func(*HTTPRequest) (*HTTPResponse, error), req *HTTPRequest) (*HTTPResponse, error) {
	var lastResp *HTTPResponse
	var lastErr error

	for attempt := 0; attempt <= rh.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := doFunc(req)
		if err != nil {
			lastErr, lastResp = err, nil
			if attempt < rh.maxRetries && ctx.Err() == nil {
				if werr := rh.WaitForRetry(ctx, attempt, "network error", req.URL); werr != nil {
					return nil, werr
				}
				continue
			}
			break
		}

		lastResp, lastErr = resp, nil
		if !rh.ShouldRetry(resp.StatusCode, attempt) {
			break
		}
		if err := rh.WaitForRetry(ctx, attempt, http.StatusText(resp.StatusCode), req.URL); err != nil {
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, common.WrapError(lastErr, "all retry attempts failed")
	}

	if lastResp != nil && rh.retryStatusCodes[lastResp.StatusCode] {
		err := common.NewHTTPErrorWithURL(lastResp.StatusCode, truncateBody(lastResp.Body), req.URL)
		return lastResp, common.WrapError(err, "all retry attempts failed")
	}

	return lastResp, nil
}
