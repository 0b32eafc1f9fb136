package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/quollify/gatekey/pkg/jwtx"
)

type Config struct {
	Issuer    string // Issuer claim for tokens (default: gatekey-auth)
	JWTSecret string // Required: HS256 signing secret, at least 32 bytes

	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: ./pepper)

	AMQPURL         string // Optional: RabbitMQ URL for the recovery-mail queue
	RedisAddr       string // Optional: Redis address for the blacklist cache
	RedisPassword   string // Optional: Redis password
	RedisDB         int    // Optional: Redis database number
	RecoveryBaseURL string // Recovery link prefix mailed to users

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// ErrMissingSecret reports that no signing secret was configured.
var ErrMissingSecret = errors.New("app: AUTH_JWT_SECRET is required")

func LoadConfig() (Config, error) {
	cfg := Config{
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "gatekey-auth"),
		JWTSecret:            os.Getenv("AUTH_JWT_SECRET"),
		AccessTTL:            getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:           getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:           getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		AMQPURL:              os.Getenv("AMQP_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvIntOrDefault("REDIS_DB", 0),
		RecoveryBaseURL:      getEnvOrDefault("AUTH_RECOVERY_BASE_URL", "http://localhost:8080/recover?token="),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingSecret
	}

	return cfg, nil
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer minutes also accepted
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
