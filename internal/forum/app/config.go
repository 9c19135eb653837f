package app

import (
	"os"
	"strconv"
	"time"

	"github.com/parleyhq/parley/pkg/jwtx"
)

type Config struct {
	SecretKey string // Required: HMAC secret for token signing

	Algorithm           string        // Optional: JWT signing algorithm (default: HS256)
	AccessTokenTTL      time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL     time.Duration // Optional: refresh token lifetime (default: 168h)
	GuestSentinel       string        // Optional: cookie value marking an anonymous session (default: guest)
	DatabaseFile        string        // Optional: path to SQLite database file (default: ./forum.db)
	PepperFile          string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		SecretKey:           os.Getenv("SECRET_KEY"),
		Algorithm:           getEnvOrDefault("AUTH_ALGORITHM", "HS256"),
		AccessTokenTTL:      getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL:     getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		GuestSentinel:       getEnvOrDefault("GUEST_SENTINEL", "guest"),
		DatabaseFile:        getEnvOrDefault("FORUM_DATABASE_FILE", "forum.db"),
		PepperFile:          getEnvOrDefault("FORUM_PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
