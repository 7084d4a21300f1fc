package customhttp

import (
	"net/http"

	"golang.org/x/time/rate"
)

type HTTPCommand interface {
	Do(req *http.Request) (resp *http.Response, err error)
}

type httpCommandFunc func(req *http.Request) (resp *http.Response, err error)

func (h httpCommandFunc) Do(req *http.Request) (resp *http.Response, err error) {
	return h(req)
}

type HTTPCommandBuilder struct {
	client      HTTPCommand
	middlewares []middleware
}

func New(options ...func(*HTTPCommandBuilder)) *HTTPCommandBuilder {
	builder := &HTTPCommandBuilder{
		client: http.DefaultClient,
	}

	for _, option := range options {
		option(builder)
	}
	return builder
}

// Build wraps the client with the configured middlewares, outermost first
func (b *HTTPCommandBuilder) Build() HTTPCommand {
	if len(b.middlewares) == 0 {
		b.middlewares = append(b.middlewares, noOpsMiddleware())
	}
	mw := chainMiddleware(b.middlewares...)
	return mw(b.client.Do)
}

// WithHTTPClient allows the user to supply their own http.Client
func WithHTTPClient(client HTTPCommand) func(*HTTPCommandBuilder) {
	return func(builder *HTTPCommandBuilder) {
		builder.client = client
	}
}

// WithRequestID tags every outgoing request with an X-Request-ID header
func WithRequestID() func(*HTTPCommandBuilder) {
	return func(builder *HTTPCommandBuilder) {
		builder.middlewares = append(builder.middlewares, requestIDMiddleware())
	}
}

// WithRateLimit caps outgoing requests per second. A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) func(*HTTPCommandBuilder) {
	return func(builder *HTTPCommandBuilder) {
		if rps <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		builder.middlewares = append(builder.middlewares, rateLimitMiddleware(rate.NewLimiter(rate.Limit(rps), burst)))
	}
}

// WithLogging logs each request and its outcome at debug level
func WithLogging() func(*HTTPCommandBuilder) {
	return func(builder *HTTPCommandBuilder) {
		builder.middlewares = append(builder.middlewares, loggingMiddleware())
	}
}
