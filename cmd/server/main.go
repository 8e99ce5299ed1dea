package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dharmasatrya/flightdeals/internal/airports"
	"github.com/dharmasatrya/flightdeals/internal/cache"
	"github.com/dharmasatrya/flightdeals/internal/config"
	"github.com/dharmasatrya/flightdeals/internal/dealscore"
	"github.com/dharmasatrya/flightdeals/internal/handler"
	"github.com/dharmasatrya/flightdeals/internal/metrics"
	"github.com/dharmasatrya/flightdeals/internal/providers"
	"github.com/dharmasatrya/flightdeals/internal/ratelimit"
	"github.com/dharmasatrya/flightdeals/internal/scheduler"
	"github.com/dharmasatrya/flightdeals/internal/store"
	"github.com/dharmasatrya/flightdeals/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	dateRangePause  = 100 * time.Millisecond
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir, err := airports.Default()
	if err != nil {
		log.Fatal("failed to load airport directory", "error", err)
	}
	origin := dir.Origin()
	log.Info("airport directory loaded", "origin", origin.Code, "timezone", origin.Timezone, "destinations", len(dir.Destinations()))

	m := metrics.NewMetrics(prometheus.NewRegistry())

	rateLimiter := ratelimit.NewUpstreamLimiter(ratelimit.Config{
		Limit: ratelimit.Limit{
			RequestsPerSecond: cfg.UpstreamRPS,
			BurstSize:         cfg.UpstreamBurst,
		},
		Overrides: map[string]ratelimit.Limit{
			providers.FlightsSkyName: {
				RequestsPerSecond: cfg.FlightsSkyRPS,
				BurstSize:         cfg.FlightsSkyBurst,
			},
		},
	})

	payloadCache := initializeCache(cfg, log)
	defer payloadCache.Close()

	history := initializePriceHistory(ctx, cfg, log)
	defer history.Close()

	google, sky, err := initializeProviders(cfg, providers.Deps{
		Limiter: rateLimiter,
		Cache:   payloadCache,
		Metrics: m,
		Logger:  log,
	})
	if err != nil {
		log.Fatal("failed to initialize providers", "error", err)
	}
	log.Info("upstream providers initialized", "apiKeyConfigured", cfg.RapidAPIKey != "")

	clock := func() time.Time { return time.Now().In(dir.Location()) }

	h := handler.New(handler.Deps{
		Directory: dir,
		Flights:   google,
		Quotes:    sky,
		Scheduler: scheduler.New(scheduler.Config{
			BatchSize:  cfg.BatchSize,
			BatchDelay: cfg.BatchDelay,
		}, log, m),
		Scores:          dealscore.NewService(history, origin.Code, clock, log),
		Metrics:         m,
		Logger:          log,
		Clock:           clock,
		RoundTripWindow: cfg.RoundTripWindow,
		MixMatchWindow:  cfg.MixMatchWindow,
		DateRangePause:  dateRangePause,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(handler.RequestLogger(log))
	e.Use(handler.RequestMetrics(m))

	h.Register(e)

	go func() {
		log.Info("starting flight deals server", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}

func initializeCache(cfg *config.Config, log logger.Logger) cache.Cache {
	if !cfg.CacheEnabled {
		log.Info("payload cache disabled")
		return cache.NewNoOpCache()
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		URL:      cfg.RedisURL,
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.RedisTTL,
	})
	if err != nil {
		log.Fatal("failed to connect to Redis", "error", err)
	}
	log.Info("redis payload cache enabled", "ttl", cfg.RedisTTL)
	return redisCache
}

// initializePriceHistory never fails startup; deal scores turn neutral instead.
func initializePriceHistory(ctx context.Context, cfg *config.Config, log logger.Logger) *store.PriceHistory {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL not set, deal scores will be neutral")
		return store.NewPriceHistory(nil)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := store.NewPostgresPool(connectCtx, cfg.DatabaseURL)
	if err != nil {
		log.Warn("price history unavailable, deal scores will be neutral", "error", err)
		return store.NewPriceHistory(nil)
	}
	log.Info("price history connected")
	return store.NewPriceHistory(pool)
}

func initializeProviders(cfg *config.Config, deps providers.Deps) (*providers.GoogleFlights, *providers.FlightsSky, error) {
	google, err := providers.NewGoogleFlights(providers.Config{
		BaseURL: cfg.GoogleFlightsBaseURL,
		APIKey:  cfg.RapidAPIKey,
		Timeout: cfg.UpstreamTimeout,
	}, deps)
	if err != nil {
		return nil, nil, err
	}

	sky, err := providers.NewFlightsSky(providers.Config{
		BaseURL: cfg.FlightsSkyBaseURL,
		APIKey:  cfg.RapidAPIKey,
		Timeout: cfg.UpstreamTimeout,
	}, deps)
	if err != nil {
		return nil, nil, err
	}

	return google, sky, nil
}
