package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret string

	// Storage
	StoragePath string

	// Background Workers
	WorkerCount     int
	AgingDigestCron string

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string

	// Term recommendation service; empty URL disables lookups
	AdvisorURL     string
	AdvisorTimeout time.Duration

	// Organization settings handed to the engine
	OrgSettingsFile string
	Org             OrgSettings
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		StoragePath:     getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:     getEnvAsInt("WORKER_COUNT", 5),
		AgingDigestCron: getEnv("AGING_DIGEST_CRON", "0 7 * * *"),
		AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		AdvisorURL:      getEnv("ADVISOR_URL", ""),
		AdvisorTimeout:  time.Duration(getEnvAsInt("ADVISOR_TIMEOUT_MS", 1500)) * time.Millisecond,
		OrgSettingsFile: getEnv("ORG_SETTINGS_FILE", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	org, err := LoadOrgSettings(cfg.OrgSettingsFile)
	if err != nil {
		return nil, err
	}
	cfg.Org = org

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
