// Package config provides configuration management for the kyotei-edge pipeline.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with defaults for optional fields.
// The config file may be absent; defaults and environment variables then apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("KYOTEI_EDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "kyotei-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("datasource.base_url", "http://localhost:8100")
	v.SetDefault("datasource.timeout_seconds", 30)
	v.SetDefault("datasource.retry_attempts", 3)
	v.SetDefault("datasource.rate_limit_per_second", 5.0)
	v.SetDefault("datasource.odds_cache_ttl_seconds", 60)

	v.SetDefault("features.use_edge_filter", true)
	v.SetDefault("features.use_exclusion_rules", true)
	v.SetDefault("features.use_dynamic_alloc", true)
	v.SetDefault("features.use_venue_odds", false)
	v.SetDefault("features.use_kelly", false)

	v.SetDefault("safety.max_loss_streak", 5)
	v.SetDefault("safety.min_bankroll", 10000.0)
	v.SetDefault("safety.max_daily_bets", 10)
	v.SetDefault("safety.initial_bankroll", 100000.0)

	v.SetDefault("ev.takeout_rate", 0.25)
	v.SetDefault("ev.ev_threshold", 1.0)
	v.SetDefault("ev.max_ev", 10.0)

	v.SetDefault("filter.excluded_grades", []string{"A", "B"})
	v.SetDefault("filter.allowed_classes", []string{"A1", "A2"})
	v.SetDefault("filter.max_wind_gap", 3.0)
	v.SetDefault("filter.min_entry_confidence", 0.6)
	v.SetDefault("filter.static_odds_window.min", 10.0)
	v.SetDefault("filter.static_odds_window.max", 100.0)

	v.SetDefault("kelly.fraction", 0.25)
	v.SetDefault("kelly.max_bet_ratio", 0.05)
	v.SetDefault("kelly.min_edge", 0.05)

	v.SetDefault("allocation.base_ratio", 0.7)
	v.SetDefault("allocation.high_edge_ratio", 0.85)
	v.SetDefault("allocation.upset_ratio", 0.5)
	v.SetDefault("allocation.high_edge_min", 0.20)

	v.SetDefault("stake.unit", 100)
	v.SetDefault("records.dir", "records")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
