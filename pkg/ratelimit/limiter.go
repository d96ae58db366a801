package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var tourThrottleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "tour_throttle_wait_seconds",
	Help:    "Time spent waiting on the outbound request limiter",
	Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
})

// Limiter gates outbound requests with a token bucket. A nil *Limiter is
// valid and performs no waiting, so callers never need to branch.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter allows requestsPerSecond sustained with the given burst.
// Burst values below 1 are raised to 1.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until a request may be sent or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.bucket == nil {
		return nil
	}

	reservation := l.bucket.Reserve()
	if !reservation.OK() {
		// Burst smaller than one request; fall back to Wait semantics.
		return l.bucket.Wait(ctx)
	}

	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}
	tourThrottleWaitSeconds.Observe(delay.Seconds())

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
