package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Environment variable name for controlling statistics visibility
const EnvDevMode = "DEV_MODE"

// Config is the runtime configuration of the service and the batch tool.
type Config struct {
	Port          string
	GinMode       string
	SiteURL       string
	DataDir       string
	LogLevel      string
	LogFormat     string
	RateLimit     float64 // requests per second per client
	RateBurst     float64
	FetchTimeout  time.Duration
	FetchCacheTTL time.Duration
	DevMode       bool
}

// LoadEnv loads .env.development first (for local development) and falls back
// to .env. Missing files are not an error.
func LoadEnv() {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using environment variables")
		}
	}
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:          getEnv("PORT", "8082"),
		GinMode:       getEnv("GIN_MODE", gin.ReleaseMode),
		SiteURL:       getEnv("SITE_URL", ""),
		DataDir:       getEnv("DATA_DIR", "data"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		RateLimit:     getEnvFloat("RATE_LIMIT", 2),
		RateBurst:     getEnvFloat("RATE_BURST", 5),
		FetchTimeout:  getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchCacheTTL: getEnvDuration("FETCH_CACHE_TTL", 30*time.Minute),
		DevMode:       getEnvBool(EnvDevMode, false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		slog.Warn("invalid number in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return f
}

// getEnvDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
	return defaultValue
}
