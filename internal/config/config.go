package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Booking hold configuration
	Booking BookingConfig

	// Redis configuration (rate limiting)
	Redis RedisConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Event publishing configuration
	Events EventsConfig

	// Metrics configuration
	Metrics MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	Driver             string // "pgx" (default) or "postgres" (lib/pq)
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	SimpleProtocol     bool // needed behind transaction-mode poolers
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret string
	Issuer string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// BookingConfig holds the seat hold workflow settings
type BookingConfig struct {
	HoldTTL          time.Duration
	ExpirySweepCron  string // robfig/cron spec with seconds field
	ExpiryBatchSize  int
	BoardingOpensIn  time.Duration // how long before departure check-in opens
	BoardingClosesIn time.Duration // how long after departure check-in stays open
	CodeRetries      int
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool
	WindowSeconds   int
	BookingRequests int
	LookupRequests  int
}

// EventsConfig holds RabbitMQ settings for booking lifecycle events
type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Driver:             getEnv("DATABASE_DRIVER", "pgx"),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			SimpleProtocol:     getEnvAsBool("DATABASE_SIMPLE_PROTOCOL", true),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "fastrail"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Request-ID"}),
		},
		Booking: BookingConfig{
			HoldTTL:          time.Duration(getEnvAsInt("BOOKING_HOLD_TTL_SECONDS", 300)) * time.Second,
			ExpirySweepCron:  getEnv("BOOKING_EXPIRY_SWEEP_CRON", "*/30 * * * * *"),
			ExpiryBatchSize:  getEnvAsInt("BOOKING_EXPIRY_BATCH_SIZE", 100),
			BoardingOpensIn:  time.Duration(getEnvAsInt("BOARDING_OPENS_MINUTES", 120)) * time.Minute,
			BoardingClosesIn: time.Duration(getEnvAsInt("BOARDING_CLOSES_MINUTES", 30)) * time.Minute,
			CodeRetries:      getEnvAsInt("BOOKING_CODE_RETRIES", 1),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getEnvAsBool("RATE_LIMIT_ENABLED", true),
			WindowSeconds:   getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			BookingRequests: getEnvAsInt("RATE_LIMIT_BOOKING_REQUESTS", 10),
			LookupRequests:  getEnvAsInt("RATE_LIMIT_LOOKUP_REQUESTS", 30),
		},
		Events: EventsConfig{
			RabbitMQURL: getEnv("RABBITMQ_URL", ""),
			Exchange:    getEnv("EVENTS_EXCHANGE", "booking.events"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Database.Driver != "pgx" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be 'pgx' or 'postgres')", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Booking.HoldTTL <= 0 {
		return fmt.Errorf("BOOKING_HOLD_TTL_SECONDS must be positive")
	}

	if c.Booking.ExpiryBatchSize <= 0 {
		return fmt.Errorf("BOOKING_EXPIRY_BATCH_SIZE must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
