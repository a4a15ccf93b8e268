package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"ovation/internal/cache"
	"ovation/internal/database"
	"ovation/internal/external"
	"ovation/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Pending bookings older than BookingExpiration are reaped back to
	// cancelled with their inventory released.
	BookingExpiration       time.Duration
	ExpirationCheckInterval time.Duration

	Database database.Config
	Redis    cache.Config
	NATS     messaging.Config
	Payment  external.PaymentConfig
}

// Load reads configuration from environment variables, with an optional
// .env file for local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		BookingExpiration:       time.Duration(getEnvInt("BOOKING_EXPIRATION_MIN", 15)) * time.Minute,
		ExpirationCheckInterval: time.Duration(getEnvInt("EXPIRATION_CHECK_INTERVAL_SEC", 30)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "ovation"),
			Password:           getEnv("DB_PASSWORD", "ovation"),
			DBName:             getEnv("DB_NAME", "ovation"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		Redis: cache.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "ovation"),
			ClientID:  getEnv("NATS_CLIENT_ID", "ovation-api"),
		},

		Payment: external.PaymentConfig{
			BaseURL:          getEnv("PAYMENT_PROVIDER_URL", "https://payments.example.com"),
			APIKey:           getEnv("PAYMENT_API_KEY", ""),
			WebhookSecret:    getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			WebhookTolerance: time.Duration(getEnvInt("PAYMENT_WEBHOOK_TOLERANCE_SEC", 300)) * time.Second,
			Timeout:          time.Duration(getEnvInt("PAYMENT_TIMEOUT_SEC", 30)) * time.Second,
		},
	}
}

// getEnv reads an environment variable with a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable with a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
