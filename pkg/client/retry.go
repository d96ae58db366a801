package client

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hojin-kr/kto-tour-client/pkg/envelope"
)

// Prometheus metrics for retry operations.
var (
	tourRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	tourRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tour_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	tourRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// callWithRetry drives the per-call retry state machine: up to
// MaxRetries+1 attempts, exponential backoff for plain failures, and the
// longer 429 schedule. Every wait selects on ctx.Done.
func (c *Client) callWithRetry(ctx context.Context, endpoint, callURL string) (*envelope.Body, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		body, err := c.attempt(ctx, callURL)
		if err == nil {
			if attempt > 0 {
				c.logger.Info().
					Str("endpoint", endpoint).
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			tourRequestsTotal.WithLabelValues(endpoint, "success").Inc()
			return body, nil
		}

		// Context errors are not upstream flakiness; stop immediately.
		if ctx.Err() != nil {
			return nil, err
		}

		lastErr = err
		errClass := classify(err)
		tourErrorsTotal.WithLabelValues(string(errClass)).Inc()

		if attempt >= c.config.MaxRetries {
			break
		}

		wait := c.backoffDelay(err, attempt)
		tourRetriesTotal.WithLabelValues(string(errClass)).Inc()
		tourRetryBackoffSeconds.WithLabelValues(string(errClass)).Observe(wait.Seconds())

		c.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Str("error_class", string(errClass)).
			Int("attempt", attempt+1).
			Dur("backoff", wait).
			Msg("Retrying request after backoff")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	errClass := classify(lastErr)
	tourRetryExhaustedTotal.WithLabelValues(string(errClass)).Inc()
	tourRequestsTotal.WithLabelValues(endpoint, "failure").Inc()
	c.logger.Warn().
		Err(lastErr).
		Str("endpoint", endpoint).
		Int("max_retries", c.config.MaxRetries).
		Msg("Retry attempts exhausted")

	// The last observed error, verbatim. Callers distinguish rate-limit
	// exhaustion from genuine upstream errors by type.
	return nil, lastErr
}

// backoffDelay selects the wait before the next attempt.
//
// 429s wait the server-hinted Retry-After when present; otherwise an
// aggressive exponential (baseDelay << attempt+2) floored at the configured
// fallback. Everything else gets plain exponential backoff.
func (c *Client) backoffDelay(err error, attempt int) time.Duration {
	var rateLimited *RateLimitError
	if errors.As(err, &rateLimited) {
		if rateLimited.RetryAfter > 0 {
			return rateLimited.RetryAfter
		}
		wait := c.config.BaseDelay << (attempt + 2)
		if wait < c.config.RetryAfterFallback {
			wait = c.config.RetryAfterFallback
		}
		return wait
	}

	return c.config.BaseDelay << attempt
}
