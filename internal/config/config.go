package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Booking  BookingConfig
	CORS     CORSConfig
	WhatsApp WhatsAppConfig
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
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	MigrateOnStart     bool
}

// BookingConfig holds booking lifecycle configuration
type BookingConfig struct {
	// DefaultHoldMinutes is used when seeding activities that do not
	// specify their own pending-hold policy.
	DefaultHoldMinutes int
	// MaxParticipants caps a single booking regardless of slot capacity.
	MaxParticipants int
	SweepInterval   time.Duration
	SweepBatchSize  int
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// WhatsAppConfig holds the WhatsApp gateway configuration
type WhatsAppConfig struct {
	Mode       string // "dev" logs messages instead of sending them
	AccountSID string
	AuthToken  string
	FromNumber string
	APIBaseURL string
	WebAppURL  string // base URL for booking confirmation links in messages
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrateOnStart:     getEnvBool("DB_MIGRATE_ON_START", true),
		},
		Booking: BookingConfig{
			DefaultHoldMinutes: getEnvInt("BOOKING_DEFAULT_HOLD_MINUTES", 30),
			MaxParticipants:    getEnvInt("BOOKING_MAX_PARTICIPANTS", 10),
			SweepInterval:      getEnvDuration("BOOKING_SWEEP_INTERVAL", 5*time.Minute),
			SweepBatchSize:     getEnvInt("BOOKING_SWEEP_BATCH_SIZE", 100),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization"}),
		},
		WhatsApp: WhatsAppConfig{
			Mode:       getEnv("WHATSAPP_MODE", "dev"),
			AccountSID: getEnv("WHATSAPP_ACCOUNT_SID", ""),
			AuthToken:  getEnv("WHATSAPP_AUTH_TOKEN", ""),
			FromNumber: getEnv("WHATSAPP_FROM_NUMBER", ""),
			APIBaseURL: getEnv("WHATSAPP_API_BASE_URL", "https://api.twilio.com"),
			WebAppURL:  getEnv("BOOKING_WEB_APP_URL", "https://bookings.coralbay.example"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Booking.DefaultHoldMinutes < 1 {
		return fmt.Errorf("BOOKING_DEFAULT_HOLD_MINUTES must be at least 1")
	}

	if c.Booking.MaxParticipants < 1 {
		return fmt.Errorf("BOOKING_MAX_PARTICIPANTS must be at least 1")
	}

	if c.Booking.SweepInterval < time.Second {
		return fmt.Errorf("BOOKING_SWEEP_INTERVAL must be at least 1s")
	}

	if c.WhatsApp.Mode == "production" {
		if c.WhatsApp.AccountSID == "" || c.WhatsApp.AuthToken == "" || c.WhatsApp.FromNumber == "" {
			return fmt.Errorf("WHATSAPP_ACCOUNT_SID, WHATSAPP_AUTH_TOKEN and WHATSAPP_FROM_NUMBER are required in production mode")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
