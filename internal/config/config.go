package config

import (
	"os"
	"strconv"

	"gopanel/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Pricing  PricingConfig
	Analysis AnalysisConfig
}

// DataConfig holds response data source settings
type DataConfig struct {
	ResponsesFile string // xlsx, csv or json file with survey responses
	SheetName     string // worksheet name for xlsx sources
}

// PricingConfig holds price optimizer settings
type PricingConfig struct {
	TrainedModelPath   string  // empty means the closed-form fallback is used
	BaseConversionRate float64 // baseline conversion probability for the fallback model
}

// AnalysisConfig holds analyzer tuning parameters
type AnalysisConfig struct {
	MinClusterSize int // minimum respondents per persona cluster
	MaxPersonas    int // clusters returned by the persona clusterer
	MinFeatures    int // minimum features for a MaxDiff analysis
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			ResponsesFile: getEnvOrDefault("RESPONSES_FILE", ""),
			SheetName:     getEnvOrDefault("RESPONSES_SHEET", "Sheet1"),
		},
		Pricing: PricingConfig{
			TrainedModelPath:   getEnvOrDefault("PRICE_MODEL_PATH", ""),
			BaseConversionRate: getEnvFloatOrDefault("BASE_CONVERSION_RATE", 0.15),
		},
		Analysis: AnalysisConfig{
			MinClusterSize: getEnvIntOrDefault("MIN_CLUSTER_SIZE", 5),
			MaxPersonas:    getEnvIntOrDefault("MAX_PERSONAS", 5),
			MinFeatures:    getEnvIntOrDefault("MIN_MAXDIFF_FEATURES", 4),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Pricing.BaseConversionRate <= 0 || config.Pricing.BaseConversionRate >= 1 {
		return errors.ConfigInvalid("BASE_CONVERSION_RATE must be in (0, 1)")
	}
	if config.Analysis.MinClusterSize < 1 {
		return errors.ConfigInvalid("MIN_CLUSTER_SIZE must be positive")
	}
	if config.Analysis.MaxPersonas < 1 {
		return errors.ConfigInvalid("MAX_PERSONAS must be positive")
	}
	if config.Analysis.MinFeatures < 2 {
		return errors.ConfigInvalid("MIN_MAXDIFF_FEATURES must be at least 2")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
