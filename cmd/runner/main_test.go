package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreRunRejectsMalformedConfig(t *testing.T) {
	// Values that parse fine but fail validation: an unknown environment
	// and an inverted odds window must stop the command before any
	// component is built.
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
app:
  environment: nonsense-env
filter:
  static_odds_window:
    min: 50
    max: 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	prev := configFile
	configFile = path
	defer func() { configFile = prev }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestPreRunAcceptsDefaultConfig(t *testing.T) {
	prev := configFile
	configFile = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { configFile = prev }()

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
}
