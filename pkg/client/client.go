// Package client provides the retrying TourAPI client: bounded retry with
// exponential backoff, rate-limit special-casing, service-key resolution,
// and optional response caching.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hojin-kr/kto-tour-client/pkg/cache"
	"github.com/hojin-kr/kto-tour-client/pkg/envelope"
	"github.com/hojin-kr/kto-tour-client/pkg/logging"
	"github.com/hojin-kr/kto-tour-client/pkg/ratelimit"
	"github.com/hojin-kr/kto-tour-client/pkg/transport"
)

// DefaultBaseURL is the public TourAPI base.
const DefaultBaseURL = "https://apis.data.go.kr/B551011/KorService2"

// Prometheus metrics for client operations.
var (
	tourRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_requests_total",
		Help: "Total TourAPI requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	tourRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tour_request_duration_seconds",
		Help:    "TourAPI call duration in seconds by endpoint, retries included",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	tourErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_errors_total",
		Help: "Total TourAPI errors by class",
	}, []string{"class"})
)

// RequestSpec describes one upstream call: the endpoint operation and its
// query parameters. Parameters with empty values are dropped before
// encoding. Immutable per call.
type RequestSpec struct {
	Endpoint string
	Query    map[string]string
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the upstream API.
	BaseURL string

	// ServiceKey is the server-side API key, preferred at call time.
	ServiceKey string

	// PublicServiceKey is the fallback key for environments without the
	// server-side key. At least one key is required.
	PublicServiceKey string

	// AppName fills the MobileApp parameter required by the upstream.
	AppName string

	// MaxRetries bounds retry attempts after the initial one.
	MaxRetries int

	// BaseDelay seeds the exponential backoff.
	BaseDelay time.Duration

	// RetryAfterFallback floors the wait after a 429 without a usable
	// Retry-After header.
	RetryAfterFallback time.Duration

	// Redis enables response caching when set.
	Redis *redis.Client

	// CacheTTL is the response cache lifetime; zero disables caching even
	// with Redis configured.
	CacheTTL time.Duration

	// Limiter optionally gates each outbound attempt. Nil disables gating.
	Limiter *ratelimit.Limiter

	// HTTPClient overrides the default HTTP client (for testing).
	HTTPClient transport.HTTPDoer
}

// DefaultConfig returns a safe default configuration for the given key.
func DefaultConfig(serviceKey, appName string) Config {
	return Config{
		BaseURL:            DefaultBaseURL,
		ServiceKey:         serviceKey,
		AppName:            appName,
		MaxRetries:         3,
		BaseDelay:          1 * time.Second,
		RetryAfterFallback: 5 * time.Second,
	}
}

// Client calls the upstream with bounded retry. Each call owns its own retry
// state; Client itself holds no mutable per-call state and is safe for
// concurrent use.
type Client struct {
	transport *transport.Transport
	cache     *cache.Manager
	config    Config
	logger    zerolog.Logger
}

// New creates a new TourAPI client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ServiceKey == "" && cfg.PublicServiceKey == "" {
		return nil, fmt.Errorf("a service key is required")
	}
	if cfg.AppName == "" {
		return nil, fmt.Errorf("app name is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 1 * time.Second
	}
	if cfg.RetryAfterFallback <= 0 {
		cfg.RetryAfterFallback = 5 * time.Second
	}

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		transport: transport.New(cfg.HTTPClient),
		cache:     cacheManager,
		config:    cfg,
		logger:    logging.NewLogger("tour-client"),
	}, nil
}

// Call performs one upstream operation with retry. On success it returns the
// normalized body. On exhaustion it returns the last observed error
// verbatim, never a wrapper, so callers can branch on the error kind.
func (c *Client) Call(ctx context.Context, spec RequestSpec) (*envelope.Body, error) {
	startTime := time.Now()
	defer func() {
		tourRequestDuration.WithLabelValues(spec.Endpoint).Observe(time.Since(startTime).Seconds())
	}()

	cacheKey := cache.Key{Endpoint: spec.Endpoint, Query: spec.Query}
	if c.cache != nil && c.config.CacheTTL > 0 {
		var cached envelope.Body
		err := c.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			tourRequestsTotal.WithLabelValues(spec.Endpoint, "cache_hit").Inc()
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", spec.Endpoint).Msg("Cache get error")
		}
	}

	callURL, err := c.buildURL(spec)
	if err != nil {
		return nil, err
	}

	body, err := c.callWithRetry(ctx, spec.Endpoint, callURL)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && c.config.CacheTTL > 0 {
		if err := c.cache.Set(ctx, cacheKey, body, c.config.CacheTTL); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", spec.Endpoint).Msg("Failed to cache response")
		}
	}

	return body, nil
}

// attempt performs exactly one transport round-trip and normalization.
func (c *Client) attempt(ctx context.Context, callURL string) (*envelope.Body, error) {
	if err := c.config.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reply, err := c.transport.Get(ctx, callURL)
	if err != nil {
		return nil, err
	}

	if reply.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: reply.RetryAfter}
	}
	if reply.Envelope == nil {
		return nil, &StatusError{StatusCode: reply.StatusCode}
	}

	return envelope.Normalize(reply.Envelope)
}

// buildURL encodes the request. Empty parameter values are dropped; the
// service key is resolved at call time, server key preferred.
func (c *Client) buildURL(spec RequestSpec) (string, error) {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	base = base.JoinPath(spec.Endpoint)

	values := url.Values{}
	values.Set("serviceKey", c.resolveKey())
	values.Set("MobileOS", "ETC")
	values.Set("MobileApp", c.config.AppName)
	values.Set("_type", "json")
	for name, value := range spec.Query {
		if value == "" {
			continue
		}
		values.Set(name, value)
	}

	base.RawQuery = values.Encode()
	return base.String(), nil
}

// resolveKey prefers the server-side key over the public fallback.
func (c *Client) resolveKey() string {
	if c.config.ServiceKey != "" {
		return c.config.ServiceKey
	}
	return c.config.PublicServiceKey
}
