package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-edge/internal/models"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "kyotei-edge", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.InDelta(t, 0.25, cfg.EV.TakeoutRate, 1e-9)
	assert.InDelta(t, 1.0, cfg.EV.EVThreshold, 1e-9)
	assert.InDelta(t, 10.0, cfg.EV.MaxEV, 1e-9)
	assert.Equal(t, []string{"A", "B"}, cfg.Filter.ExcludedGrades)
	assert.Equal(t, []string{"A1", "A2"}, cfg.Filter.AllowedClasses)
	assert.InDelta(t, 10.0, cfg.Filter.StaticOddsWindow.Min, 1e-9)
	assert.InDelta(t, 100.0, cfg.Filter.StaticOddsWindow.Max, 1e-9)
	assert.Equal(t, 5, cfg.Safety.MaxLossStreak)
	assert.InDelta(t, 100000.0, cfg.Safety.InitialBankroll, 1e-9)
	assert.Equal(t, 10, cfg.Safety.MaxDailyBets)
	assert.InDelta(t, 0.25, cfg.Kelly.Fraction, 1e-9)
	assert.InDelta(t, 0.05, cfg.Kelly.MaxBetRatio, 1e-9)
	assert.Equal(t, 100, cfg.Stake.Unit)
	assert.True(t, cfg.Features.UseEdgeFilter)
	assert.False(t, cfg.Features.UseKelly)
	assert.False(t, cfg.DatabaseEnabled())

	// Defaults must satisfy the validator as shipped
	require.NoError(t, Validate(cfg))
}

func TestLoadExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_DS_KEY", "secret-key-123")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  name: kyotei-edge
  environment: development
  log_level: debug
datasource:
  base_url: http://localhost:8100
  api_key: ${TEST_DS_KEY}
  timeout_seconds: 10
  rate_limit_per_second: 2.0
  odds_cache_ttl_seconds: 30
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-key-123", cfg.DataSource.APIKey)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	// Unset sections still pick up defaults
	assert.Equal(t, 5, cfg.Safety.MaxLossStreak)
}

func TestValidateRejectsBadWindow(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Filter.StaticOddsWindow = models.OddsWindow{Min: 50, Max: 10}
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "static_odds_window")
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.App.Environment = "staging2"
	assert.Error(t, Validate(cfg))
}

func TestValidateDatabaseCrossFields(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Database.Host = "localhost"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database user and name")

	cfg.Database.User = "kyotei"
	cfg.Database.Name = "kyotei_edge"
	require.NoError(t, Validate(cfg))

	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"
	assert.Error(t, Validate(cfg))
}

func TestVenueWindowFallback(t *testing.T) {
	cfg := &FilterConfig{
		StaticOddsWindow: models.OddsWindow{Min: 10, Max: 100},
		VenueOddsWindows: map[string]models.OddsWindow{
			"rough": {Min: 20, Max: 60},
		},
	}

	assert.Equal(t, models.OddsWindow{Min: 20, Max: 60}, cfg.VenueWindow(models.VenueTypeRough))
	assert.Equal(t, models.OddsWindow{Min: 10, Max: 100}, cfg.VenueWindow(models.VenueTypeStable))
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Database = DatabaseConfig{
		Host:    "db.internal",
		Port:    5432,
		Name:    "kyotei_edge",
		User:    "kyotei",
		SSLMode: "require",
	}

	dsn := cfg.GetDatabaseDSN()
	assert.Contains(t, dsn, "db.internal")
	assert.Contains(t, dsn, "kyotei_edge")
	assert.Contains(t, dsn, "require")
}
