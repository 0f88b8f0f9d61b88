package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Walid274gh/SkyBooking-sub001/internal/cache"
	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/executor"
	"github.com/Walid274gh/SkyBooking-sub001/internal/external"
	"github.com/Walid274gh/SkyBooking-sub001/internal/messaging"
	"github.com/Walid274gh/SkyBooking-sub001/internal/search"
)

// Config holds the application configuration
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	// Pending reservations older than HoldTTL are expired by the worker
	HoldTTL time.Duration

	Database      database.Config
	NATS          messaging.Config
	Cache         cache.Config
	Elasticsearch search.Config
	Bank          external.BankConfig
	Renderer      external.RendererConfig
	Budgets       executor.Budgets
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		HoldTTL:   time.Duration(getEnvInt("RESERVATION_HOLD_TTL_MIN", 15)) * time.Minute,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "skybooking"),
			Password:           getEnv("DB_PASSWORD", "skybooking123"),
			DBName:             getEnv("DB_NAME", "skybooking"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "skybooking"),
			ClientID:  getEnv("NATS_CLIENT_ID", "skybooking-api"),
		},

		Cache: cache.Config{
			Addr:         getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:     getEnv("VALKEY_PASSWORD", ""),
			SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_MIN", 720)) * time.Minute,
			FlightListTTL: time.Duration(getEnvInt("FLIGHT_LIST_TTL_SEC", 30)) * time.Second,
		},

		Elasticsearch: search.Config{
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:      getEnv("ELASTICSEARCH_FLIGHTS_INDEX", "flights"),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
		},

		Bank: external.BankConfig{
			BaseURL:    getEnv("BANK_GATEWAY_URL", "https://gateway.satim.dz/common"),
			MerchantID: getEnv("BANK_MERCHANT_ID", ""),
			Secret:     getEnv("BANK_SECRET", ""),
			Timeout:    time.Duration(getEnvInt("BANK_TIMEOUT_SEC", 10)) * time.Second,
		},

		Renderer: external.RendererConfig{
			BaseURL: getEnv("RENDERER_URL", "http://localhost:8090"),
			Timeout: time.Duration(getEnvInt("RENDERER_TIMEOUT_SEC", 10)) * time.Second,
		},

		Budgets: executor.Budgets{
			Search:       time.Duration(getEnvInt("BUDGET_SEARCH_SEC", 15)) * time.Second,
			Reservation:  time.Duration(getEnvInt("BUDGET_RESERVATION_SEC", 20)) * time.Second,
			Payment:      time.Duration(getEnvInt("BUDGET_PAYMENT_SEC", 15)) * time.Second,
			Cancellation: time.Duration(getEnvInt("BUDGET_CANCELLATION_SEC", 20)) * time.Second,
			Seats:        time.Duration(getEnvInt("BUDGET_SEATS_SEC", 15)) * time.Second,
			Default:      time.Duration(getEnvInt("BUDGET_DEFAULT_SEC", 10)) * time.Second,
		},
	}
}

// getEnv returns the environment variable value or the default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer environment variable value or the default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
