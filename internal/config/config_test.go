package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 15.0, cfg.Thresholds.MinorDelayMin)
	assert.Equal(t, 60.0, cfg.Thresholds.MajorDelayMin)
	assert.Equal(t, 0.95, cfg.Validation.MinRetention)
	assert.NotEmpty(t, cfg.ClickHouse.Host)
}

func TestLoadWithFallbackNoFile(t *testing.T) {
	cfg, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, Default().Thresholds, cfg.Thresholds)
}

func TestLoadWithFallbackMissingExplicitPath(t *testing.T) {
	_, err := LoadWithFallback(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	content := `
[inputs]
flights_path = "flights.csv.gz"
weather_path = "weather.csv"

[thresholds]
minor_delay_min = 10
major_delay_min = 45

[validation]
min_retention = 0.9

[clickhouse]
host = "ch:9000"
table = "merged"
`
	path := filepath.Join(t.TempDir(), "flightprep.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadWithFallback(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "flights.csv.gz", cfg.Inputs.FlightsPath)
	assert.Equal(t, 10.0, cfg.Thresholds.MinorDelayMin)
	assert.Equal(t, 45.0, cfg.Thresholds.MajorDelayMin)
	assert.Equal(t, 0.9, cfg.Validation.MinRetention)
	assert.Equal(t, "ch:9000", cfg.ClickHouse.Host)
	assert.Equal(t, "merged", cfg.ClickHouse.Table)

	// Unset keys keep their defaults.
	assert.Equal(t, 0.10, cfg.Thresholds.PrecipIn)
	assert.Equal(t, 0.50, cfg.Validation.MinMatchRate)
}

func TestValidateRejectsBadValues(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative minor delay", func(c *Config) { c.Thresholds.MinorDelayMin = -1 }},
		{"major below minor", func(c *Config) { c.Thresholds.MajorDelayMin = 5 }},
		{"negative precip", func(c *Config) { c.Thresholds.PrecipIn = -0.1 }},
		{"retention above one", func(c *Config) { c.Validation.MinRetention = 1.5 }},
		{"zero retention", func(c *Config) { c.Validation.MinRetention = 0 }},
		{"match rate above one", func(c *Config) { c.Validation.MinMatchRate = 2 }},
		{"empty clickhouse host", func(c *Config) { c.ClickHouse.Host = "" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
