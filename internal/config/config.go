// Package config provides configuration management for the valuation service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Valuation ValuationConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Host           string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// ClickHouseConfig holds ClickHouse configuration. Market data reads are
// bounded by QueryTimeout on the server side.
type ClickHouseConfig struct {
	Host            string
	Port            string
	Database        string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	DialTimeout     time.Duration
	QueryTimeout    time.Duration
	ConnMaxLifetime time.Duration
	Compress        bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// CacheConfig holds dimension cache configuration
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// RateLimitConfig holds per-client API rate limiting
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// ValuationConfig holds engine policy settings
type ValuationConfig struct {
	PreferredPriceSource string
	PivotCurrency        string
	DefaultPageSize      int
	MaxPageSize          int
	MaxParallel          int
	DefaultCashHorizon   int
	MaxPriceRangeDays    int
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env is optional; the environment can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			AllowedOrigins: getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "ibor"),
				User:           getEnv("POSTGRES_USER", "ibor"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 50),
			},
			ClickHouse: ClickHouseConfig{
				Host:            getEnv("CLICKHOUSE_HOST", "localhost"),
				Port:            getEnv("CLICKHOUSE_PORT", "9000"),
				Database:        getEnv("CLICKHOUSE_DB", "ibor"),
				User:            getEnv("CLICKHOUSE_USER", "default"),
				Password:        getEnv("CLICKHOUSE_PASSWORD", ""),
				MaxOpenConns:    getEnvAsInt("CLICKHOUSE_MAX_OPEN_CONNS", 16),
				MaxIdleConns:    getEnvAsInt("CLICKHOUSE_MAX_IDLE_CONNS", 4),
				DialTimeout:     getEnvAsDuration("CLICKHOUSE_DIAL_TIMEOUT", 10*time.Second),
				QueryTimeout:    getEnvAsDuration("CLICKHOUSE_QUERY_TIMEOUT", 30*time.Second),
				ConnMaxLifetime: getEnvAsDuration("CLICKHOUSE_CONN_MAX_LIFETIME", time.Hour),
				Compress:        getEnvAsBool("CLICKHOUSE_COMPRESS", true),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
			},
		},
		Cache: CacheConfig{
			Enabled: getEnvAsBool("CACHE_ENABLED", true),
			TTL:     getEnvAsDuration("CACHE_TTL", 20*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 50),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Valuation: ValuationConfig{
			PreferredPriceSource: strings.ToUpper(getEnv("VALUATION_PREFERRED_SOURCE", "BBG")),
			PivotCurrency:        strings.ToUpper(getEnv("FX_PIVOT_CURRENCY", "USD")),
			DefaultPageSize:      getEnvAsInt("VALUATION_DEFAULT_PAGE_SIZE", 100),
			MaxPageSize:          getEnvAsInt("VALUATION_MAX_PAGE_SIZE", 500),
			MaxParallel:          getEnvAsInt("VALUATION_MAX_PARALLEL", 8),
			DefaultCashHorizon:   getEnvAsInt("CASH_PROJECTION_DEFAULT_DAYS", 7),
			MaxPriceRangeDays:    getEnvAsInt("PRICE_MAX_RANGE_DAYS", 3660),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks settings that would otherwise fail at request time
func (c *Config) Validate() error {
	v := c.Valuation
	if v.DefaultPageSize <= 0 || v.MaxPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive (default=%d, max=%d)", v.DefaultPageSize, v.MaxPageSize)
	}
	if v.DefaultPageSize > v.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", v.DefaultPageSize, v.MaxPageSize)
	}
	if v.MaxParallel <= 0 {
		return fmt.Errorf("VALUATION_MAX_PARALLEL must be positive, got %d", v.MaxParallel)
	}
	if len(v.PivotCurrency) != 3 {
		return fmt.Errorf("FX_PIVOT_CURRENCY must be a 3-letter code, got %q", v.PivotCurrency)
	}
	if v.DefaultCashHorizon < 0 {
		return fmt.Errorf("CASH_PROJECTION_DEFAULT_DAYS must not be negative, got %d", v.DefaultCashHorizon)
	}
	if ch := c.Database.ClickHouse; ch.MaxIdleConns > ch.MaxOpenConns {
		return fmt.Errorf("CLICKHOUSE_MAX_IDLE_CONNS %d exceeds CLICKHOUSE_MAX_OPEN_CONNS %d", ch.MaxIdleConns, ch.MaxOpenConns)
	}
	if v.MaxPriceRangeDays <= 0 {
		return fmt.Errorf("PRICE_MAX_RANGE_DAYS must be positive, got %d", v.MaxPriceRangeDays)
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
