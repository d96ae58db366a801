// Package stats computes ranked per-region and per-category listing counts
// by issuing many minimal upstream calls in small concurrent groups with a
// cooldown between groups. One key's failure never sinks a batch; the key
// is silently omitted from the ranking.
package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hojin-kr/kto-tour-client/pkg/cache"
	"github.com/hojin-kr/kto-tour-client/pkg/logging"
	"github.com/hojin-kr/kto-tour-client/pkg/ratelimit"
)

// Prometheus metrics for aggregation runs.
var (
	tourStatsRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_stats_runs_total",
		Help: "Total aggregation runs by kind",
	}, []string{"kind"})

	tourStatsKeyFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_stats_key_failures_total",
		Help: "Per-key count failures by kind",
	}, []string{"kind"})

	tourStatsRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tour_stats_run_duration_seconds",
		Help:    "Aggregation run duration in seconds by kind",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"kind"})
)

// StatEntry is one ranked (key, displayName, count) tuple.
type StatEntry struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Count       int    `json:"count"`
}

// Summary is the dashboard headline: grand total plus the top regions and
// categories.
type Summary struct {
	TotalCount    int         `json:"totalCount"`
	TopRegions    []StatEntry `json:"topRegions"`
	TopCategories []StatEntry `json:"topCategories"`
	GeneratedAt   time.Time   `json:"generatedAt"`
}

// Counter supplies the per-key totals. *tourapi.Service implements it.
type Counter interface {
	TotalByArea(ctx context.Context, areaCode string) (int, error)
	TotalByCategory(ctx context.Context, contentTypeID string) (int, error)
	GrandTotal(ctx context.Context) (int, error)
}

// Config holds aggregator configuration.
type Config struct {
	// Policy throttles batch runs. Zero value falls back to the default
	// group size with no cooldown, so tests run without sleeping.
	Policy ratelimit.Policy

	// TopN bounds the summary's ranked views (default 5).
	TopN int

	// Redis enables caching of computed aggregates when set.
	Redis *redis.Client

	// CacheTTL is the computed-aggregate cache lifetime; zero disables
	// caching even with Redis configured.
	CacheTTL time.Duration
}

// Aggregator runs batched count aggregations.
type Aggregator struct {
	counter Counter
	config  Config
	cache   *cache.Manager
	logger  zerolog.Logger
}

// New creates an aggregator over the given counter.
func New(counter Counter, cfg Config) *Aggregator {
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Aggregator{
		counter: counter,
		config:  cfg,
		cache:   cacheManager,
		logger:  logging.NewLogger("stats"),
	}
}

// ComputeRegionStats returns per-region listing counts, sorted descending.
func (a *Aggregator) ComputeRegionStats(ctx context.Context) ([]StatEntry, error) {
	return a.computeCached(ctx, "regions", Regions, a.counter.TotalByArea)
}

// ComputeCategoryStats returns per-category listing counts, sorted
// descending.
func (a *Aggregator) ComputeCategoryStats(ctx context.Context) ([]StatEntry, error) {
	return a.computeCached(ctx, "categories", Categories, a.counter.TotalByCategory)
}

// ComputeSummary assembles the dashboard summary. The region batch, the
// category batch, and the grand-total call run concurrently with each
// other; each batch still self-limits through the policy.
func (a *Aggregator) ComputeSummary(ctx context.Context) (*Summary, error) {
	cacheKey := cache.Key{Endpoint: "stats:summary"}
	if a.cache != nil && a.config.CacheTTL > 0 {
		var cached Summary
		if err := a.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	start := time.Now()
	defer func() {
		tourStatsRunDuration.WithLabelValues("summary").Observe(time.Since(start).Seconds())
	}()
	tourStatsRunsTotal.WithLabelValues("summary").Inc()

	var (
		wg         sync.WaitGroup
		regions    []StatEntry
		categories []StatEntry
		total      int
		totalErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		regions, _ = a.ComputeRegionStats(ctx)
	}()
	go func() {
		defer wg.Done()
		categories, _ = a.ComputeCategoryStats(ctx)
	}()
	go func() {
		defer wg.Done()
		total, totalErr = a.counter.GrandTotal(ctx)
	}()
	wg.Wait()

	// Missing batches degrade to empty rankings, but a summary without its
	// grand total is not worth serving.
	if totalErr != nil {
		return nil, totalErr
	}

	summary := &Summary{
		TotalCount:    total,
		TopRegions:    truncate(regions, a.config.TopN),
		TopCategories: truncate(categories, a.config.TopN),
		GeneratedAt:   time.Now().UTC(),
	}

	if a.cache != nil && a.config.CacheTTL > 0 {
		if err := a.cache.Set(ctx, cacheKey, summary, a.config.CacheTTL); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to cache summary")
		}
	}

	return summary, nil
}

// computeCached wraps a batch run with the aggregate cache.
func (a *Aggregator) computeCached(ctx context.Context, kind string, keys []Key, count func(context.Context, string) (int, error)) ([]StatEntry, error) {
	cacheKey := cache.Key{Endpoint: "stats:" + kind}
	if a.cache != nil && a.config.CacheTTL > 0 {
		var cached []StatEntry
		if err := a.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	entries, err := a.runBatch(ctx, kind, keys, count)
	if err != nil {
		return nil, err
	}

	if a.cache != nil && a.config.CacheTTL > 0 {
		if err := a.cache.Set(ctx, cacheKey, entries, a.config.CacheTTL); err != nil {
			a.logger.Warn().Err(err).Str("kind", kind).Msg("Failed to cache stats")
		}
	}

	return entries, nil
}

// runBatch executes one aggregation run: the key set is partitioned into
// fixed-size groups, each group runs fully concurrently, and a cooldown
// separates successive groups. Group N+1 never starts before group N has
// completely resolved.
func (a *Aggregator) runBatch(ctx context.Context, kind string, keys []Key, count func(context.Context, string) (int, error)) ([]StatEntry, error) {
	runID := uuid.NewString()
	start := time.Now()
	logger := a.logger.With().Str("run_id", runID).Str("kind", kind).Logger()

	tourStatsRunsTotal.WithLabelValues(kind).Inc()
	defer func() {
		tourStatsRunDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	logger.Info().Int("keys", len(keys)).Msg("Starting aggregation run")

	// Keyed, not positional: a slot stays nil when its key failed.
	results := make([]*StatEntry, len(keys))
	groups := a.config.Policy.Partition(len(keys))

	for groupIdx, group := range groups {
		var wg sync.WaitGroup
		for i := group[0]; i < group[1]; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := keys[i]

				n, err := count(ctx, key.Code)
				if err != nil {
					tourStatsKeyFailuresTotal.WithLabelValues(kind).Inc()
					logger.Warn().
						Err(err).
						Str("key", key.Code).
						Str("name", key.Name).
						Msg("Count failed, key omitted from ranking")
					return
				}
				results[i] = &StatEntry{Key: key.Code, DisplayName: key.Name, Count: n}
			}(i)
		}
		wg.Wait()

		if groupIdx < len(groups)-1 && a.config.Policy.Cooldown > 0 {
			timer := time.NewTimer(a.config.Policy.Cooldown)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	entries := make([]StatEntry, 0, len(results))
	for _, entry := range results {
		if entry != nil {
			entries = append(entries, *entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	logger.Info().
		Int("ranked", len(entries)).
		Int("omitted", len(keys)-len(entries)).
		Dur("duration", time.Since(start)).
		Msg("Aggregation run complete")

	return entries, nil
}

func truncate(entries []StatEntry, n int) []StatEntry {
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}
