// Package taskapi talks to the comparison backend's task endpoints and polls
// a task until it finishes.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/httpclient"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/rs/zerolog"
)

// ErrNotReady is returned when the backend has no result for the task yet.
var ErrNotReady = errors.New("task result not ready")

// Backend envelope codes.
const (
	codeSuccess  = 200
	codeNotReady = 202
	codeNotFound = 404
)

// APIError is a non-success code inside the backend envelope.
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error %d: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("backend error %d: %s", e.Code, e.Message)
}

// Is maps envelope codes onto sentinel errors.
func (e *APIError) Is(target error) bool {
	switch e.Code {
	case codeNotReady:
		return target == ErrNotReady
	case codeNotFound:
		return target == common.ErrNotFound
	}
	return false
}

type envelope struct {
	Code        *int            `json:"code"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	ErrorDetail string          `json:"errorDetail"`
}

// Client reads task status and comparison results.
type Client struct {
	http    *httpclient.HTTPClient
	baseURL string
	headers map[string]string
	logger  zerolog.Logger
}

// NewClient creates a client for the configured backend. A nil hc builds a
// transport from the API config.
func NewClient(api config.APIConfig, hc *httpclient.HTTPClient, logger zerolog.Logger) (*Client, error) {
	if api.BaseURL == "" {
		return nil, common.NewValidationError("base_url", api.BaseURL, "backend base URL is required")
	}
	if hc == nil {
		var err error
		hc, err = httpclient.NewHTTPClientBuilder(logger).FromAPI(api).Build()
		if err != nil {
			return nil, common.WrapError(err, "failed to create backend HTTP client")
		}
	}
	headers := map[string]string{}
	if api.AuthToken != "" {
		headers["Authorization"] = "Bearer " + api.AuthToken
	}
	return NewClientWithHTTP(api.BaseURL, hc, headers, logger), nil
}

// NewClientWithHTTP creates a client over an existing HTTP client.
func NewClientWithHTTP(baseURL string, hc *httpclient.HTTPClient, headers map[string]string, logger zerolog.Logger) *Client {
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
		logger:  logger.With().Str("component", "TaskAPI").Logger(),
	}
}

// GetTaskStatus fetches GET {base}/task/{id}.
func (c *Client) GetTaskStatus(ctx context.Context, taskID string) (*models.TaskStatus, error) {
	var status models.TaskStatus
	if err := c.get(ctx, c.endpoint("task", taskID), &status); err != nil {
		return nil, err
	}
	if status.TaskID == "" {
		status.TaskID = taskID
	}
	return &status, nil
}

// GetCompareResult fetches GET {base}/canvas-result/{id}. A task that is still
// running yields ErrNotReady.
func (c *Client) GetCompareResult(ctx context.Context, taskID string) (*models.CompareResult, error) {
	var result models.CompareResult
	if err := c.get(ctx, c.endpoint("canvas-result", taskID), &result); err != nil {
		return nil, err
	}
	if result.TaskID == "" {
		result.TaskID = taskID
	}
	return &result, nil
}

// DecodeCompareResult parses a saved canvas-result payload, enveloped or bare.
func DecodeCompareResult(data []byte) (*models.CompareResult, error) {
	var result models.CompareResult
	if err := decodeBody(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteTask removes a task and its files on the backend.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	target := c.endpoint("task", taskID)
	resp, err := c.http.Do(&httpclient.HTTPRequest{URL: target, Method: http.MethodDelete, Headers: c.headers, Context: ctx})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return common.NewHTTPErrorWithURL(resp.StatusCode, string(resp.Body), target)
	}
	return decodeBody(resp.Body, nil)
}

func (c *Client) endpoint(resource, taskID string) string {
	return c.baseURL + "/" + resource + "/" + url.PathEscape(taskID)
}

func (c *Client) get(ctx context.Context, target string, out interface{}) error {
	resp, err := c.http.Do(&httpclient.HTTPRequest{URL: target, Method: http.MethodGet, Headers: c.headers, Context: ctx})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		// error bodies are usually enveloped too
		if apiErr := decodeBody(resp.Body, nil); apiErr != nil && !errors.Is(apiErr, errNotEnvelope) {
			return common.WrapErrorf(apiErr, "GET %s returned HTTP %d", target, resp.StatusCode)
		}
		httpErr := common.NewHTTPErrorWithURL(resp.StatusCode, http.StatusText(resp.StatusCode), target)
		if resp.StatusCode == http.StatusNotFound {
			return common.WrapError(common.ErrNotFound, httpErr.Error())
		}
		return httpErr
	}
	if err := decodeBody(resp.Body, out); err != nil {
		if errors.Is(err, errNotEnvelope) {
			return common.WrapErrorf(err, "failed to decode response from %s", target)
		}
		return err
	}
	c.logger.Debug().Str("url", target).Int("bytes", len(resp.Body)).Msg("Backend response decoded")
	return nil
}

var errNotEnvelope = errors.New("response is not a backend envelope")

// decodeBody accepts both the {code, message, data} envelope and a bare
// payload. A nil out only checks the envelope code.
func decodeBody(body []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		if out == nil {
			return nil
		}
		return errNotEnvelope
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return common.WrapError(errNotEnvelope, err.Error())
	}
	if env.Code == nil {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(trimmed, out); err != nil {
			return common.WrapError(errNotEnvelope, err.Error())
		}
		return nil
	}

	if *env.Code != codeSuccess && *env.Code != 0 {
		return &APIError{Code: *env.Code, Message: env.Message, Detail: env.ErrorDetail}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return common.WrapError(err, "failed to decode envelope data")
	}
	return nil
}
