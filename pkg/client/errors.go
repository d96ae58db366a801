package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/hojin-kr/kto-tour-client/pkg/envelope"
	"github.com/hojin-kr/kto-tour-client/pkg/transport"
)

// RateLimitError is an HTTP 429 from the upstream. RetryAfter carries the
// server-hinted wait when the response included a Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by upstream (retry after %s)", e.RetryAfter)
	}
	return "rate limited by upstream"
}

// StatusError is a non-2xx, non-429 HTTP status with no decodable envelope.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d", e.StatusCode)
}

// ErrorClass labels an error for metrics and logging.
type ErrorClass string

const (
	// ErrorClassNetwork covers transport-level failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode covers unparseable response bodies.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassUpstream covers well-formed responses with a failure
	// resultCode.
	ErrorClassUpstream ErrorClass = "upstream"

	// ErrorClassRateLimit covers HTTP 429.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassHTTP covers other non-2xx statuses.
	ErrorClassHTTP ErrorClass = "http"
)

// classify labels an error for observability. Every class the client can
// observe here is retryable; the upstream is known to fail transiently even
// for logically valid requests.
func classify(err error) ErrorClass {
	var (
		netErr    *transport.NetworkError
		decodeErr *envelope.DecodeError
		upErr     *envelope.UpstreamError
		rlErr     *RateLimitError
	)

	switch {
	case errors.As(err, &rlErr):
		return ErrorClassRateLimit
	case errors.As(err, &netErr):
		return ErrorClassNetwork
	case errors.As(err, &decodeErr):
		return ErrorClassDecode
	case errors.As(err, &upErr):
		return ErrorClassUpstream
	default:
		return ErrorClassHTTP
	}
}
