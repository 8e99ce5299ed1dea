package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dharmasatrya/flightdeals/internal/dates"
	"github.com/dharmasatrya/flightdeals/internal/providers"
)

type Config struct {
	Port     string
	LogLevel string

	// Upstream
	RapidAPIKey          string
	GoogleFlightsBaseURL string
	FlightsSkyBaseURL    string
	UpstreamTimeout      time.Duration
	UpstreamRPS          float64
	UpstreamBurst        int
	FlightsSkyRPS        float64
	FlightsSkyBurst      int

	// Search
	BatchSize       int
	BatchDelay      time.Duration
	RoundTripWindow dates.Window
	MixMatchWindow  dates.Window

	// Cache
	CacheEnabled  bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// Price history
	DatabaseURL string
}

// Load reads the environment, after loading .env when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RapidAPIKey:          strings.TrimSpace(os.Getenv("RAPIDAPI_KEY")),
		GoogleFlightsBaseURL: getEnv("GOOGLE_FLIGHTS_BASE_URL", providers.DefaultGoogleFlightsURL),
		FlightsSkyBaseURL:    getEnv("FLIGHTS_SKY_BASE_URL", providers.DefaultFlightsSkyURL),
		UpstreamTimeout:      getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		UpstreamRPS:          getEnvFloat("UPSTREAM_RPS", 10),
		UpstreamBurst:        getEnvInt("UPSTREAM_BURST", 20),
		FlightsSkyRPS:        getEnvFloat("FLIGHTS_SKY_RPS", 0),
		FlightsSkyBurst:      getEnvInt("FLIGHTS_SKY_BURST", 0),

		BatchSize:  getEnvInt("SEARCH_BATCH_SIZE", 10),
		BatchDelay: getEnvDuration("SEARCH_BATCH_DELAY", 50*time.Millisecond),
		RoundTripWindow: dates.Window{
			MinDaysAhead:  getEnvInt("ROUNDTRIP_MIN_DAYS_AHEAD", 0),
			LookaheadDays: getEnvInt("ROUNDTRIP_LOOKAHEAD_DAYS", 60),
		},
		MixMatchWindow: dates.Window{
			MinDaysAhead:  getEnvInt("MIXMATCH_MIN_DAYS_AHEAD", 3),
			LookaheadDays: getEnvInt("MIXMATCH_LOOKAHEAD_DAYS", 30),
		},

		CacheEnabled:  getEnvBool("CACHE_ENABLED", false),
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisTTL:      getEnvDuration("REDIS_TTL", 5*time.Minute),

		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
