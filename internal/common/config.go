package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all tunables of the text core.
type Config struct {
	Resolver ResolverConfig
	Receipt  ReceiptConfig
	Cache    CacheConfig
}

// ResolverConfig holds order-resolution knobs.
type ResolverConfig struct {
	AllowFuzzy     bool
	FuzzyThreshold float64 // [0,1], minimum blended similarity for a fuzzy hit
	MaxQuantity    int     // clamp for extracted quantities
	Debug          bool
}

// ReceiptConfig holds reconciliation knobs.
type ReceiptConfig struct {
	ToleranceRatio float64 // max relative difference for a "close" verdict
	RequireExact   bool
}

// CacheConfig bounds the optional per-resolver result cache.
type CacheConfig struct {
	TTL     time.Duration
	Enabled bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Resolver: ResolverConfig{
			AllowFuzzy:     getEnvAsBool("ORDERCORE_ALLOW_FUZZY", true),
			FuzzyThreshold: getEnvAsFloat("ORDERCORE_FUZZY_THRESHOLD", 0.5),
			MaxQuantity:    getEnvAsInt("ORDERCORE_MAX_QUANTITY", 100),
			Debug:          getEnvAsBool("ORDERCORE_DEBUG", false),
		},
		Receipt: ReceiptConfig{
			ToleranceRatio: getEnvAsFloat("ORDERCORE_TOLERANCE", 0.06),
			RequireExact:   getEnvAsBool("ORDERCORE_REQUIRE_EXACT", false),
		},
		Cache: CacheConfig{
			TTL:     getEnvAsDuration("ORDERCORE_CACHE_TTL", 90*time.Second),
			Enabled: getEnvAsBool("ORDERCORE_CACHE_ENABLED", true),
		},
	}
}

// Helper functions for environment variable parsing
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Resolver.FuzzyThreshold < 0 || c.Resolver.FuzzyThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "ORDERCORE_FUZZY_THRESHOLD must be in [0,1]", ErrInvalidOption)
	}
	if c.Receipt.ToleranceRatio < 0 || c.Receipt.ToleranceRatio >= 1 {
		return NewAppError("CONFIG_ERROR", "ORDERCORE_TOLERANCE must be in [0,1)", ErrInvalidOption)
	}
	if c.Resolver.MaxQuantity < 1 {
		return NewAppError("CONFIG_ERROR", "ORDERCORE_MAX_QUANTITY must be >= 1", ErrInvalidOption)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return NewAppError("CONFIG_ERROR", "ORDERCORE_CACHE_TTL must be positive", ErrInvalidOption)
	}
	return nil
}
