package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	ServerPort  string
	LogLevel    string

	// Rate limiting (requests per trailing window)
	RateLimitRequests     int
	RateLimitAuthRequests int
	RateLimitWindowSec    int

	// External market data
	AlphaVantageKey string
	AlphaVantageURL string

	// External news feed
	NewsAPIKey       string
	NewsAPIURL       string
	NewsLookbackDays int

	// Worker schedules (cron expressions)
	QuoteSyncSchedule    string
	NewsSyncSchedule     string
	AlertEvalSchedule    string
	AlertCleanupSchedule string
	AlertRetentionDays   int
}

func Load() (*Config, error) {
	godotenv.Load()

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me-please-32-chars-min"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		RateLimitRequests:     getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitAuthRequests: getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 10),
		RateLimitWindowSec:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),

		AlphaVantageKey: getEnv("ALPHAVANTAGE_KEY", ""),
		AlphaVantageURL: getEnv("ALPHAVANTAGE_URL", "https://www.alphavantage.co"),

		NewsAPIKey:       getEnv("NEWS_API_KEY", ""),
		NewsAPIURL:       getEnv("NEWS_API_URL", "https://newsapi.org"),
		NewsLookbackDays: getEnvInt("NEWS_LOOKBACK_DAYS", 7),

		QuoteSyncSchedule:    getEnv("QUOTE_SYNC_SCHEDULE", "@every 5m"),
		NewsSyncSchedule:     getEnv("NEWS_SYNC_SCHEDULE", "@every 30m"),
		AlertEvalSchedule:    getEnv("ALERT_EVAL_SCHEDULE", "@every 10m"),
		AlertCleanupSchedule: getEnv("ALERT_CLEANUP_SCHEDULE", "@daily"),
		AlertRetentionDays:   getEnvInt("ALERT_RETENTION_DAYS", 30),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}
