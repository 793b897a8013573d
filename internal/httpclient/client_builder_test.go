package httpclient

import (
	"testing"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientBuilder(t *testing.T) {
	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithUserAgent("test-agent").
		WithFollowRedirects(false).
		WithHeader("Authorization", "Bearer abc").
		WithMaxContentSize(2048).
		WithRetry(RetryHandlerConfig{MaxRetries: 1}).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "test-agent", client.config.UserAgent)
	assert.False(t, client.config.FollowRedirects)
	assert.Equal(t, "Bearer abc", client.config.CustomHeaders["Authorization"])
	assert.Equal(t, 2048, client.config.MaxContentSize)
	assert.NotNil(t, client.retryHandler)
}

func TestHTTPClientBuilder_DefaultValues(t *testing.T) {
	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	defaults := DefaultHTTPClientConfig()
	assert.Equal(t, defaults.Timeout, client.config.Timeout)
	assert.Equal(t, defaults.UserAgent, client.config.UserAgent)
	assert.Equal(t, defaults.FollowRedirects, client.config.FollowRedirects)
	assert.Nil(t, client.retryHandler)
}

func TestHTTPClientBuilder_FromAPI(t *testing.T) {
	api := config.NewDefaultAPIConfig()
	api.TimeoutSecs = 7
	api.InsecureSkipVerify = true
	api.UserAgent = "ocrdiff-test"

	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		FromAPI(api).
		WithMaxContentSize(0).
		Build()

	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, client.config.Timeout)
	assert.True(t, client.config.InsecureSkipVerify)
	assert.Equal(t, "ocrdiff-test", client.config.UserAgent)
	assert.Zero(t, client.config.MaxContentSize, "zero leaves the limit unset")
	assert.NotNil(t, client.retryHandler)
}

func TestConfigFromAPI(t *testing.T) {
	api := config.NewDefaultAPIConfig()
	api.TimeoutSecs = 5
	api.Headers = map[string]string{"X-Tenant": "acme"}

	cfg := ConfigFromAPI(api)

	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "acme", cfg.CustomHeaders["X-Tenant"])
	require.NotNil(t, cfg.Retry)
	assert.Equal(t, api.Retry.MaxRetries, cfg.Retry.MaxRetries)
	assert.Equal(t, api.Retry.BaseDelay(), cfg.Retry.BaseDelay)
}
