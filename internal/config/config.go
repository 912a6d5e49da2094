// Package config provides configuration management for the oddsedge scanner.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Redis        RedisConfig        `mapstructure:"redis" validate:"required"`
	OddsProvider OddsProviderConfig `mapstructure:"odds_provider" validate:"required"`
	StatsProvider StatsProviderConfig `mapstructure:"stats_provider" validate:"required"`
	Pipeline     PipelineConfig     `mapstructure:"pipeline" validate:"required"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler" validate:"required"`
	Cache        CacheConfig        `mapstructure:"cache" validate:"required"`
	Metrics      MetricsConfig      `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// RedisConfig represents the feature cache connection configuration
type RedisConfig struct {
	Address  string `mapstructure:"address" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Enabled  bool   `mapstructure:"enabled"`
}

// OddsProviderConfig represents the external odds API configuration
type OddsProviderConfig struct {
	BaseURL         string   `mapstructure:"base_url" validate:"required,url"`
	APIKey          string   `mapstructure:"api_key" validate:"required"`
	Regions         []string `mapstructure:"regions" validate:"required,min=1"`
	Markets         []string `mapstructure:"markets" validate:"required,min=1,markets"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts   int      `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSec float64  `mapstructure:"rate_limit_per_sec" validate:"required,gt=0"`
}

// StatsProviderConfig represents the team-statistics API configuration
type StatsProviderConfig struct {
	BaseURL         string  `mapstructure:"base_url" validate:"required,url"`
	APIKey          string  `mapstructure:"api_key"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts   int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSec float64 `mapstructure:"rate_limit_per_sec" validate:"required,gt=0"`
	Enabled         bool    `mapstructure:"enabled"`
}

// PipelineConfig represents prediction pipeline tuning
type PipelineConfig struct {
	MinValue           float64 `mapstructure:"min_value" validate:"gte=0,lte=1"`
	DriftThreshold     float64 `mapstructure:"drift_threshold" validate:"required,gt=0,lt=1"`
	LookAheadHours     int     `mapstructure:"look_ahead_hours" validate:"required,gt=0"`
	RefreshWindowHours int     `mapstructure:"refresh_window_hours" validate:"required,gt=0"`
	MaxSports          int     `mapstructure:"max_sports" validate:"required,gt=0"`
	MaxEventsPerSport  int     `mapstructure:"max_events_per_sport" validate:"required,gt=0"`
	BatchSize          int     `mapstructure:"batch_size" validate:"required,gt=0"`
	BatchConcurrency   int     `mapstructure:"batch_concurrency" validate:"required,gt=0"`
	BatchPauseMillis   int     `mapstructure:"batch_pause_millis" validate:"gte=0"`
	JitterEnabled      bool    `mapstructure:"jitter_enabled"`
}

// SchedulerConfig represents the cron schedule for background tasks
type SchedulerConfig struct {
	RecomputeSpec   string `mapstructure:"recompute_spec" validate:"required"`
	RefreshSpec     string `mapstructure:"refresh_spec" validate:"required"`
	EventSyncSpec   string `mapstructure:"event_sync_spec" validate:"required"`
	ValueScanSpec   string `mapstructure:"value_scan_spec" validate:"required"`
	AlertExpirySpec string `mapstructure:"alert_expiry_spec" validate:"required"`
}

// CacheConfig represents feature cache TTLs, in seconds
type CacheConfig struct {
	TeamFormTTLSeconds   int `mapstructure:"team_form_ttl_seconds" validate:"required,gt=0"`
	HeadToHeadTTLSeconds int `mapstructure:"head_to_head_ttl_seconds" validate:"required,gt=0"`
	MarketTTLSeconds     int `mapstructure:"market_ttl_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// LookAheadWindow returns the recompute look-ahead as a duration
func (c *PipelineConfig) LookAheadWindow() time.Duration {
	return time.Duration(c.LookAheadHours) * time.Hour
}

// RefreshWindow returns the drift-refresh look-ahead as a duration
func (c *PipelineConfig) RefreshWindow() time.Duration {
	return time.Duration(c.RefreshWindowHours) * time.Hour
}

// BatchPause returns the pause between batch groups as a duration
func (c *PipelineConfig) BatchPause() time.Duration {
	return time.Duration(c.BatchPauseMillis) * time.Millisecond
}

// TeamFormTTL returns the team form cache TTL as a duration
func (c *CacheConfig) TeamFormTTL() time.Duration {
	return time.Duration(c.TeamFormTTLSeconds) * time.Second
}

// HeadToHeadTTL returns the head-to-head cache TTL as a duration
func (c *CacheConfig) HeadToHeadTTL() time.Duration {
	return time.Duration(c.HeadToHeadTTLSeconds) * time.Second
}

// MarketTTL returns the market intelligence cache TTL as a duration
func (c *CacheConfig) MarketTTL() time.Duration {
	return time.Duration(c.MarketTTLSeconds) * time.Second
}
