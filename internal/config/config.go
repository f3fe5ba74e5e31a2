// Package config loads runtime settings from the environment, reading a .env
// file first when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"souk-inventory/internal/core"

	"github.com/joho/godotenv"
)

const (
	ServiceName    = "souk-inventory"
	ServiceVersion = "0.1.0"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the settings that change between environments.
type Config struct {
	DatabaseURL    string
	StoreDriver    string
	ServerPort     string
	AllowedOrigins []string
	AppEnv         string
	LogLevel       string

	ReorderLeadTime         time.Duration
	ReorderTargetMultiplier int
	FallbackSupplierID      int
	AutoReorderOnRead       bool

	KafkaBrokers []string
	KafkaTopic   string
	OtelEndpoint string
	OtelInsecure bool
}

// Load reads configuration from the environment. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	defaults := core.DefaultReorderPolicy()
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StoreDriver:    getEnvOrDefault("STORE_DRIVER", DriverPostgres),
		ServerPort:     getEnvOrDefault("SERVER_PORT", "8080"),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "*")),
		AppEnv:         getEnvOrDefault("APP_ENV", "development"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getEnvOrDefault("KAFKA_TOPIC", "inventory.purchase-orders"),
		OtelEndpoint:   os.Getenv("OTEL_ENDPOINT"),
	}

	var err error
	if cfg.ReorderLeadTime, err = getDuration("REORDER_LEAD_TIME", defaults.LeadTime); err != nil {
		return nil, err
	}
	if cfg.ReorderTargetMultiplier, err = getInt("REORDER_TARGET_MULTIPLIER", defaults.TargetMultiplier); err != nil {
		return nil, err
	}
	if cfg.FallbackSupplierID, err = getInt("FALLBACK_SUPPLIER_ID", defaults.FallbackSupplierID); err != nil {
		return nil, err
	}
	if cfg.AutoReorderOnRead, err = getBool("AUTO_REORDER_ON_READ", true); err != nil {
		return nil, err
	}
	if cfg.OtelInsecure, err = getBool("OTEL_INSECURE", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.StoreDriver)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC cannot be empty when KAFKA_BROKERS is set")
	}
	if err := c.ReorderPolicy().Validate(); err != nil {
		return fmt.Errorf("reorder policy: %w", err)
	}
	return nil
}

// ReorderPolicy builds the engine policy from the reorder settings.
func (c *Config) ReorderPolicy() core.ReorderPolicy {
	return core.ReorderPolicy{
		LeadTime:           c.ReorderLeadTime,
		TargetMultiplier:   c.ReorderTargetMultiplier,
		FallbackSupplierID: c.FallbackSupplierID,
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 72h: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
