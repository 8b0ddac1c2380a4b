package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress  string
	Environment    string
	AllowedOrigins []string

	// AWS configuration
	AWSRegion    string
	UsersTable   string
	StoreBackend string
	EventBusName string

	// Analysis endpoint
	AnalysisBaseURL string
	AnalysisTimeout time.Duration

	// Pagination defaults
	AppsPageSize    int
	ReviewsPageSize int

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics    bool
	EnableTracing    bool
	MetricsNamespace string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:  getEnv("SERVER_ADDRESS", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		UsersTable:   getEnv("TABLE_NAME", "users-dev"),
		StoreBackend: getEnv("STORE_BACKEND", StoreDynamoDB),
		EventBusName: getEnv("EVENT_BUS_NAME", ""),

		AnalysisBaseURL: getEnv("ANALYSIS_BASE_URL", "http://localhost:3000"),
		AnalysisTimeout: getEnvDuration("ANALYSIS_TIMEOUT", 30*time.Second),

		AppsPageSize:    getEnvInt("APPS_PAGE_SIZE", 4),
		ReviewsPageSize: getEnvInt("REVIEWS_PAGE_SIZE", 8),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		EnableMetrics:    getEnvBool("ENABLE_METRICS", false),
		EnableTracing:    getEnvBool("ENABLE_TRACING", false),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "ReMiner"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.StoreBackend != StoreDynamoDB && c.StoreBackend != StoreMemory {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreDynamoDB, StoreMemory, c.StoreBackend)
	}
	if c.StoreBackend == StoreDynamoDB && c.UsersTable == "" {
		return fmt.Errorf("TABLE_NAME is required")
	}
	if c.AnalysisBaseURL == "" {
		return fmt.Errorf("ANALYSIS_BASE_URL is required")
	}
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT must be positive")
	}
	if c.AppsPageSize < 1 || c.ReviewsPageSize < 1 {
		return fmt.Errorf("page sizes must be at least 1")
	}
	if c.IsProduction() && c.StoreBackend == StoreMemory {
		return fmt.Errorf("memory store is not allowed in production")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList reads a comma separated list.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
