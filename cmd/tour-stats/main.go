package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hojin-kr/kto-tour-client/pkg/client"
	"github.com/hojin-kr/kto-tour-client/pkg/logging"
	"github.com/hojin-kr/kto-tour-client/pkg/ratelimit"
	"github.com/hojin-kr/kto-tour-client/pkg/stats"
	"github.com/hojin-kr/kto-tour-client/pkg/tourapi"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "false") == "true",
		Output: os.Stderr,
	})

	port := getEnv("PORT", "8080")

	cfg := client.DefaultConfig(os.Getenv("TOUR_API_KEY"), getEnv("TOUR_APP_NAME", "kto-tour-client"))
	cfg.PublicServiceKey = os.Getenv("TOUR_API_PUBLIC_KEY")
	cfg.BaseURL = getEnv("TOUR_API_BASE_URL", client.DefaultBaseURL)
	cfg.MaxRetries = getEnvInt("TOUR_MAX_RETRIES", cfg.MaxRetries)
	cfg.BaseDelay = getEnvDuration("TOUR_BASE_DELAY", cfg.BaseDelay)
	cfg.RetryAfterFallback = getEnvDuration("TOUR_RETRY_AFTER_FALLBACK", cfg.RetryAfterFallback)

	if rps := getEnvFloat("TOUR_RATE_LIMIT_RPS", 0); rps > 0 {
		cfg.Limiter = ratelimit.NewLimiter(rps, getEnvInt("TOUR_RATE_LIMIT_BURST", 1))
	}

	// Redis is optional: without it the service still works, it just
	// recomputes responses and aggregates on every request.
	var redisClient *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("redis_url", redisURL).Msg("Connected to Redis")

		cfg.Redis = redisClient
		cfg.CacheTTL = getEnvDuration("TOUR_CACHE_TTL", 10*time.Minute)
	}

	tourClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create TourAPI client")
	}

	api := tourapi.NewService(tourClient)

	aggregator := stats.New(api, stats.Config{
		Policy: ratelimit.Policy{
			GroupSize: getEnvInt("TOUR_STATS_GROUP_SIZE", ratelimit.DefaultGroupSize),
			Cooldown:  getEnvDuration("TOUR_STATS_COOLDOWN", ratelimit.DefaultCooldown),
		},
		TopN:     getEnvInt("TOUR_STATS_TOP_N", 5),
		Redis:    redisClient,
		CacheTTL: getEnvDuration("TOUR_STATS_CACHE_TTL", 30*time.Minute),
	})

	srv := newServer(api, aggregator, logger)

	addr := ":" + port
	logger.Info().Str("addr", addr).Msg("Starting tour-stats server")
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
