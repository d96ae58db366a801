// Package transport performs single outbound HTTP GETs against the TourAPI
// and decodes their JSON bodies. It has no retry logic and no knowledge of
// payload semantics; resilience lives one layer up.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hojin-kr/kto-tour-client/pkg/envelope"
)

// NetworkError is a transport-level failure: timeout, DNS, connection reset.
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Reply is the outcome of one GET. For 2xx responses Envelope holds the
// decoded body. For other statuses the status code is surfaced here so the
// caller can special-case rate limiting; no decode is attempted.
type Reply struct {
	StatusCode int
	Envelope   *envelope.Raw

	// RetryAfter is the parsed Retry-After header on 429 responses,
	// zero when absent or unparseable.
	RetryAfter time.Duration
}

// HTTPDoer is the subset of http.Client the transport needs. Tests inject
// fakes through it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport issues single GET requests.
type Transport struct {
	httpClient HTTPDoer
}

// New creates a transport backed by the given HTTP client. A nil client
// falls back to a 30s-timeout default.
func New(httpClient HTTPDoer) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Transport{httpClient: httpClient}
}

// Get performs one GET against a fully-built URL and returns the reply.
// Fails with NetworkError on connection-level problems and DecodeError
// (from pkg/envelope) on non-JSON 2xx bodies.
func (t *Transport) Get(ctx context.Context, url string) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	reply := &Reply{StatusCode: resp.StatusCode}

	if resp.StatusCode == http.StatusTooManyRequests {
		reply.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return reply, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	raw, err := envelope.Decode(data)
	if err != nil {
		return nil, err
	}

	reply.Envelope = raw
	return reply, nil
}

// parseRetryAfter interprets a Retry-After header value in seconds.
// HTTP-date values are not produced by the upstream and are ignored.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
