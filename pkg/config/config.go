// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config represents the application configuration
type Config struct {
	// Storage backends
	StoreBackend string // "postgres" or "memory"
	Postgres     *PostgresConfig
	Snowflake    *SnowflakeConfig

	// Pipeline settings
	Sources                 []string
	RecordsPerSource        int
	WorkerPoolSize          int // 0 means one worker per source
	MaskingSalt             string
	NormalizeBeforeValidate bool

	// Source connector settings
	CSVPath    string
	APIBaseURL string

	// Run history (optional; empty path disables tracking)
	TrackingDBPath string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		StoreBackend:            getEnv("STORE_BACKEND", "postgres"),
		Sources:                 getEnvAsList("PIPELINE_SOURCES", []string{"faker", "api", "csv"}),
		RecordsPerSource:        getEnvAsInt("RECORDS_PER_SOURCE", 50),
		WorkerPoolSize:          getEnvAsInt("WORKER_POOL_SIZE", 0),
		MaskingSalt:             getEnv("MASKING_SALT", ""),
		NormalizeBeforeValidate: getEnvAsBool("NORMALIZE_BEFORE_VALIDATE", false),
		CSVPath:                 getEnv("CSV_SOURCE_PATH", "data/sample_employees.csv"),
		APIBaseURL:              getEnv("API_BASE_URL", "https://jsonplaceholder.typicode.com"),
		TrackingDBPath:          getEnv("TRACKING_DB_PATH", ""),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
	}

	// Load database configurations
	if cfg.StoreBackend == "postgres" {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	snowConfig, err := LoadSnowflakeConfig()
	if err != nil {
		return nil, errors.New("failed to load Snowflake configuration: " + err.Error())
	}
	cfg.Snowflake = snowConfig

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "postgres":
		if c.Postgres == nil {
			return errors.New("postgreSQL configuration is required for the postgres store backend")
		}
	case "memory":
		// No backing service required.
	default:
		return errors.New("store backend must be either postgres or memory")
	}

	if c.Snowflake == nil {
		return errors.New("snowflake configuration is required")
	}

	if len(c.Sources) == 0 {
		return errors.New("at least one pipeline source is required")
	}

	if c.RecordsPerSource <= 0 {
		return errors.New("records per source must be positive")
	}

	if c.WorkerPoolSize < 0 {
		return errors.New("worker pool size cannot be negative")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
