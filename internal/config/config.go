// Package config provides configuration management for the kyotei-edge pipeline.
package config

import (
	"fmt"

	"github.com/yourusername/kyotei-edge/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	DataSource DataSourceConfig `mapstructure:"datasource" validate:"required"`
	Features   FeaturesConfig   `mapstructure:"features"`
	Safety     SafetyConfig     `mapstructure:"safety" validate:"required"`
	EV         EVConfig         `mapstructure:"ev" validate:"required"`
	Filter     FilterConfig     `mapstructure:"filter" validate:"required"`
	Kelly      KellyConfig      `mapstructure:"kelly" validate:"required"`
	Allocation AllocationConfig `mapstructure:"allocation" validate:"required"`
	Stake      StakeConfig      `mapstructure:"stake" validate:"required"`
	Records    RecordsConfig    `mapstructure:"records" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents the optional Postgres record store.
// Persistence is skipped entirely when Host is empty.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// DataSourceConfig represents the upstream race-card/odds/prediction providers
type DataSourceConfig struct {
	BaseURL               string  `mapstructure:"base_url" validate:"required,url"`
	StreamURL             string  `mapstructure:"stream_url"`
	APIKey                string  `mapstructure:"api_key"`
	TimeoutSeconds        int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts         int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSecond    float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	OddsCacheTTLSeconds   int     `mapstructure:"odds_cache_ttl_seconds" validate:"required,gt=0"`
	SecretsRegion         string  `mapstructure:"secrets_region"`
	SecretsName           string  `mapstructure:"secrets_name"`
	StreamEnabled         bool    `mapstructure:"stream_enabled"`
	StreamReconnectMaxSec int     `mapstructure:"stream_reconnect_max_sec" validate:"gte=0"`
}

// FeaturesConfig carries the pipeline feature flags
type FeaturesConfig struct {
	UseEdgeFilter     bool `mapstructure:"use_edge_filter"`
	UseVenueOdds      bool `mapstructure:"use_venue_odds"`
	UseKelly          bool `mapstructure:"use_kelly"`
	UseDynamicAlloc   bool `mapstructure:"use_dynamic_alloc"`
	UseExclusionRules bool `mapstructure:"use_exclusion_rules"`
}

// SafetyConfig carries the process-wide safety constants
type SafetyConfig struct {
	MaxLossStreak   int     `mapstructure:"max_loss_streak" validate:"required,gt=0"`
	MinBankroll     float64 `mapstructure:"min_bankroll" validate:"required,gt=0"`
	MaxDailyBets    int     `mapstructure:"max_daily_bets" validate:"required,gt=0"`
	InitialBankroll float64 `mapstructure:"initial_bankroll" validate:"required,gt=0"`
}

// EVConfig carries expected-value calculation constants
type EVConfig struct {
	TakeoutRate float64 `mapstructure:"takeout_rate" validate:"required,gt=0,lt=1"`
	EVThreshold float64 `mapstructure:"ev_threshold" validate:"required,gt=0"`
	MaxEV       float64 `mapstructure:"max_ev" validate:"required,gt=1"`
}

// FilterConfig carries the exclusion-rule thresholds
type FilterConfig struct {
	ExcludedGrades     []string                     `mapstructure:"excluded_grades" validate:"required,min=1,grades"`
	AllowedClasses     []string                     `mapstructure:"allowed_classes" validate:"required,min=1,classes"`
	MaxWindGap         float64                      `mapstructure:"max_wind_gap" validate:"required,gt=0"`
	MinEntryConfidence float64                      `mapstructure:"min_entry_confidence" validate:"gte=0,lte=1"`
	StaticOddsWindow   models.OddsWindow            `mapstructure:"static_odds_window"`
	VenueOddsWindows   map[string]models.OddsWindow `mapstructure:"venue_odds_windows"`
}

// KellyConfig carries the fractional-Kelly sizing constants
type KellyConfig struct {
	Fraction    float64 `mapstructure:"fraction" validate:"required,gt=0,lte=1"`
	MaxBetRatio float64 `mapstructure:"max_bet_ratio" validate:"required,gt=0,lte=1"`
	MinEdge     float64 `mapstructure:"min_edge" validate:"gte=0"`
}

// AllocationConfig carries the dynamic fund-split ratios.
// Each ratio is the trifecta share of the combined stake.
type AllocationConfig struct {
	BaseRatio     float64 `mapstructure:"base_ratio" validate:"required,gt=0,lt=1"`
	HighEdgeRatio float64 `mapstructure:"high_edge_ratio" validate:"required,gt=0,lt=1"`
	UpsetRatio    float64 `mapstructure:"upset_ratio" validate:"required,gt=0,lt=1"`
	HighEdgeMin   float64 `mapstructure:"high_edge_min" validate:"required,gt=0"`
}

// StakeConfig carries stake granularity constants
type StakeConfig struct {
	Unit int `mapstructure:"unit" validate:"required,gt=0"`
}

// RecordsConfig represents the day-file bet-record store
type RecordsConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// MetricsConfig represents metrics and health endpoints
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// DatabaseEnabled reports whether a record-store DSN is configured
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != ""
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

// ExcludedGradeSet returns the excluded grades as typed values
func (c *FilterConfig) ExcludedGradeSet() []models.ConfidenceGrade {
	grades := make([]models.ConfidenceGrade, 0, len(c.ExcludedGrades))
	for _, g := range c.ExcludedGrades {
		grades = append(grades, models.ConfidenceGrade(g))
	}
	return grades
}

// AllowedClassSet returns the allowed racer classes as typed values
func (c *FilterConfig) AllowedClassSet() []models.RacerClass {
	classes := make([]models.RacerClass, 0, len(c.AllowedClasses))
	for _, cl := range c.AllowedClasses {
		classes = append(classes, models.RacerClass(cl))
	}
	return classes
}

// VenueWindow resolves the odds window for a venue type, falling back to the
// static window when no venue-specific entry exists
func (c *FilterConfig) VenueWindow(vt models.VenueType) models.OddsWindow {
	if w, ok := c.VenueOddsWindows[string(vt)]; ok {
		return w
	}
	return c.StaticOddsWindow
}
