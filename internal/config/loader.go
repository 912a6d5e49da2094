// Package config provides configuration management for the oddsedge scanner.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("ODDSEDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("ODDSEDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults mirror the hosted deployment
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9100)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("pipeline.min_value", 0.05)
	v.SetDefault("pipeline.drift_threshold", 0.05)
	v.SetDefault("pipeline.look_ahead_hours", 48)
	v.SetDefault("pipeline.refresh_window_hours", 6)
	v.SetDefault("pipeline.max_sports", 10)
	v.SetDefault("pipeline.max_events_per_sport", 30)
	v.SetDefault("pipeline.batch_size", 20)
	v.SetDefault("pipeline.batch_concurrency", 3)
	v.SetDefault("pipeline.batch_pause_millis", 500)
	v.SetDefault("pipeline.jitter_enabled", false)
	v.SetDefault("scheduler.recompute_spec", "*/10 * * * *")
	v.SetDefault("scheduler.refresh_spec", "*/5 * * * *")
	v.SetDefault("scheduler.event_sync_spec", "0 * * * *")
	v.SetDefault("scheduler.value_scan_spec", "*/15 * * * *")
	v.SetDefault("scheduler.alert_expiry_spec", "30 * * * *")
	v.SetDefault("cache.team_form_ttl_seconds", 3600)
	v.SetDefault("cache.head_to_head_ttl_seconds", 86400)
	v.SetDefault("cache.market_ttl_seconds", 300)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads the configuration when an override path is set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("ODDSEDGE_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}
