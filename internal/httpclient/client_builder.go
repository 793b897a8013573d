package httpclient

import (
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/rs/zerolog"
)

// HTTPClientBuilder assembles a client from the backend API section plus
// per-use overrides, e.g. the image size limit.
type HTTPClientBuilder struct {
	config HTTPClientConfig
	logger zerolog.Logger
}

func NewHTTPClientBuilder(logger zerolog.Logger) *HTTPClientBuilder {
	return &HTTPClientBuilder{
		config: DefaultHTTPClientConfig(),
		logger: logger,
	}
}

// FromAPI replaces the configuration with the one derived from api.
func (b *HTTPClientBuilder) FromAPI(api config.APIConfig) *HTTPClientBuilder {
	b.config = ConfigFromAPI(api)
	return b
}

func (b *HTTPClientBuilder) WithUserAgent(userAgent string) *HTTPClientBuilder {
	b.config.UserAgent = userAgent
	return b
}

func (b *HTTPClientBuilder) WithFollowRedirects(follow bool) *HTTPClientBuilder {
	b.config.FollowRedirects = follow
	return b
}

// WithHeader adds a header sent with every request.
func (b *HTTPClientBuilder) WithHeader(key, value string) *HTTPClientBuilder {
	if b.config.CustomHeaders == nil {
		b.config.CustomHeaders = make(map[string]string)
	}
	b.config.CustomHeaders[key] = value
	return b
}

// WithMaxContentSize rejects larger bodies; 0 keeps the current limit.
func (b *HTTPClientBuilder) WithMaxContentSize(size int) *HTTPClientBuilder {
	if size > 0 {
		b.config.MaxContentSize = size
	}
	return b
}

// WithRetry enables retries with exponential backoff.
func (b *HTTPClientBuilder) WithRetry(cfg RetryHandlerConfig) *HTTPClientBuilder {
	b.config.Retry = &cfg
	return b
}

func (b *HTTPClientBuilder) Build() (*HTTPClient, error) {
	return NewHTTPClient(b.config, b.logger)
}
