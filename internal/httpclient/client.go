package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// ErrNotModified is returned when content has not been modified (HTTP 304).
var ErrNotModified = errors.New("content not modified")

// ErrContentTooLarge is returned when a body exceeds MaxContentSize.
var ErrContentTooLarge = errors.New("content exceeds maximum size")

// HTTPClient wraps net/http.Client with retries, default headers and pooled read buffers.
type HTTPClient struct {
	client       *http.Client
	config       HTTPClientConfig
	logger       zerolog.Logger
	retryHandler *RetryHandler
	bufferPool   sync.Pool
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(cfg HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	logger = logger.With().Str("component", "HTTPClient").Logger()

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed backends
		},
	}

	if cfg.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		} else {
			logger.Debug().Msg("HTTP/2 support enabled")
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if cfg.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		}
	}

	c := &HTTPClient{
		client: client,
		config: cfg,
		logger: logger,
		bufferPool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 64*1024)
				return &b
			},
		},
	}
	if cfg.Retry != nil {
		c.retryHandler = NewRetryHandler(*cfg.Retry, logger)
	}

	logger.Debug().
		Dur("timeout", cfg.Timeout).
		Bool("insecure_skip_verify", cfg.InsecureSkipVerify).
		Bool("http2_enabled", cfg.EnableHTTP2).
		Bool("retry_enabled", c.retryHandler != nil).
		Msg("HTTP client created")

	return c, nil
}

// Do performs an HTTP request, with retries if a retry handler is configured.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	if c.retryHandler != nil {
		ctx := req.Context
		if ctx == nil {
			ctx = context.Background()
		}
		return c.retryHandler.DoWithRetry(ctx, c.do, req)
	}
	return c.do(req)
}

func (c *HTTPClient) do(req *HTTPRequest) (*HTTPResponse, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		return nil, common.WrapError(err, "failed to create HTTP request")
	}

	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, common.NewNetworkError(req.URL, "request failed", err)
	}
	defer resp.Body.Close()

	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buf := bytes.NewBuffer((*bufPtr)[:0])

	var reader io.Reader = resp.Body
	if c.config.MaxContentSize > 0 {
		reader = io.LimitReader(resp.Body, int64(c.config.MaxContentSize)+1)
	}
	if _, err = io.Copy(buf, reader); err != nil {
		return nil, common.NewNetworkError(req.URL, "failed to read response body", err)
	}
	if c.config.MaxContentSize > 0 && buf.Len() > c.config.MaxContentSize {
		return nil, common.WrapErrorf(ErrContentTooLarge, "%s (limit %d bytes)", req.URL, c.config.MaxContentSize)
	}

	// copy out so the pooled buffer can be reused
	bodyBytes := make([]byte, buf.Len())
	copy(bodyBytes, buf.Bytes())

	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string, len(resp.Header)),
		Body:       bodyBytes,
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			httpResp.Headers[key] = values[0]
		}
	}

	return httpResp, nil
}

// FetchContentInput holds parameters for FetchContent.
type FetchContentInput struct {
	URL                  string
	Headers              map[string]string
	PreviousETag         string
	PreviousLastModified string
	Context              context.Context
	BypassCache          bool
}

// FetchContentResult holds results from FetchContent.
type FetchContentResult struct {
	Content        []byte
	ContentType    string
	ETag           string
	LastModified   string
	HTTPStatusCode int
}

// FetchContent fetches a resource with support for conditional GETs.
func (c *HTTPClient) FetchContent(input FetchContentInput) (*FetchContentResult, error) {
	headers := make(map[string]string, len(input.Headers)+3)
	for k, v := range input.Headers {
		headers[k] = v
	}

	if input.BypassCache {
		headers["Cache-Control"] = "no-cache, no-store, must-revalidate"
		headers["Pragma"] = "no-cache"
	} else {
		if input.PreviousETag != "" {
			headers["If-None-Match"] = input.PreviousETag
		}
		if input.PreviousLastModified != "" {
			headers["If-Modified-Since"] = input.PreviousLastModified
		}
	}

	resp, err := c.Do(&HTTPRequest{
		URL:     input.URL,
		Method:  http.MethodGet,
		Headers: headers,
		Context: input.Context,
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("url", input.URL).Msg("Failed to execute HTTP request")
		return nil, err
	}

	result := &FetchContentResult{
		ETag:           resp.Headers["Etag"],
		LastModified:   resp.Headers["Last-Modified"],
		ContentType:    resp.Headers["Content-Type"],
		HTTPStatusCode: resp.StatusCode,
	}

	if resp.StatusCode == http.StatusNotModified {
		return result, ErrNotModified
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("url", input.URL).Int("status_code", resp.StatusCode).Msg("Received non-OK HTTP status")
		return result, common.NewHTTPErrorWithURL(resp.StatusCode, truncateBody(resp.Body), input.URL)
	}

	result.Content = resp.Body
	c.logger.Debug().
		Str("url", input.URL).
		Int("content_size", len(result.Content)).
		Str("content_type", result.ContentType).
		Msg("Successfully fetched content")

	return result, nil
}

func truncateBody(body []byte) string {
	if len(body) > 1024 {
		body = body[:1024]
	}
	return string(body)
}
