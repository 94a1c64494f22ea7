// Package config loads and validates flightprep configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level flightprep configuration.
type Config struct {
	Inputs     InputsConfig     `toml:"inputs"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Validation ValidationConfig `toml:"validation"`
	Export     ExportConfig     `toml:"export"`
	ClickHouse ClickHouseConfig `toml:"clickhouse"`
	Logging    LoggingConfig    `toml:"logging"`
}

// InputsConfig names the two raw CSV sources. Paths ending in .gz are
// decompressed on the fly.
type InputsConfig struct {
	FlightsPath string `toml:"flights_path"`
	WeatherPath string `toml:"weather_path"`
}

// ThresholdsConfig holds the business cutoffs for derived fields.
type ThresholdsConfig struct {
	// Delay buckets, in minutes of departure delay.
	MinorDelayMin float64 `toml:"minor_delay_min"`
	MajorDelayMin float64 `toml:"major_delay_min"`

	// Weather impact cutoffs: any one condition marks the row impacted.
	PrecipIn     float64 `toml:"precip_in"`
	VisibilityMi float64 `toml:"visibility_mi"`
	WindGustMph  float64 `toml:"wind_gust_mph"`
}

// ValidationConfig bounds acceptable data loss. Violations produce
// warnings, never hard failures.
type ValidationConfig struct {
	MinRetention float64 `toml:"min_retention"`
	MinMatchRate float64 `toml:"min_match_rate"`
}

// ExportConfig names the cleaned-dataset outputs. Empty paths disable the
// corresponding writer.
type ExportConfig struct {
	CSVPath     string `toml:"csv_path"`
	ParquetPath string `toml:"parquet_path"`
	ReportDir   string `toml:"report_dir"`
}

// ClickHouseConfig describes the dashboard warehouse connection.
type ClickHouseConfig struct {
	Host     string `toml:"host"`
	Database string `toml:"database"`
	Table    string `toml:"table"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns a configuration with sensible defaults. ClickHouse
// settings honor the usual environment variables so the loader works in
// containers without a config file.
func Default() *Config {
	return &Config{
		Thresholds: ThresholdsConfig{
			MinorDelayMin: 15,
			MajorDelayMin: 60,
			PrecipIn:      0.10,
			VisibilityMi:  3.0,
			WindGustMph:   35,
		},
		Validation: ValidationConfig{
			MinRetention: 0.95,
			MinMatchRate: 0.50,
		},
		Export: ExportConfig{
			CSVPath:   "cleaned_flights_merged.csv",
			ReportDir: "reports",
		},
		ClickHouse: ClickHouseConfig{
			Host:     getEnv("CLICKHOUSE_HOST", "127.0.0.1:9000"),
			Database: getEnv("CLICKHOUSE_DATABASE", "flightprep"),
			Table:    getEnv("CLICKHOUSE_TABLE", "merged_flights"),
			Username: getEnv("CLICKHOUSE_USER", "default"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		},
		Logging: LoggingConfig{Level: getEnv("LOG_LEVEL", "info")},
	}
}

// LoadWithFallback loads configuration from the given path, or searches
// configs/flightprep.toml and ./flightprep.toml when path is empty. When no
// file exists, defaults are returned.
func LoadWithFallback(path string) (*Config, error) {
	candidates := []string{path}
	if path == "" {
		candidates = []string{
			filepath.Join("configs", "flightprep.toml"),
			"flightprep.toml",
		}
	}

	cfg := Default()
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err != nil {
			if path != "" {
				return nil, fmt.Errorf("config file %s: %w", candidate, err)
			}
			continue
		}
		if _, err := toml.DecodeFile(candidate, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", candidate, err)
		}
		return cfg, nil
	}
	return cfg, nil
}

// Validate checks threshold and tolerance sanity.
func (c *Config) Validate() error {
	t := c.Thresholds
	if t.MinorDelayMin < 0 {
		return fmt.Errorf("minor_delay_min must be >= 0, got %v", t.MinorDelayMin)
	}
	if t.MajorDelayMin <= t.MinorDelayMin {
		return fmt.Errorf("major_delay_min (%v) must be greater than minor_delay_min (%v)",
			t.MajorDelayMin, t.MinorDelayMin)
	}
	if t.PrecipIn < 0 || t.VisibilityMi < 0 || t.WindGustMph < 0 {
		return fmt.Errorf("weather impact thresholds must be >= 0")
	}
	v := c.Validation
	if v.MinRetention <= 0 || v.MinRetention > 1 {
		return fmt.Errorf("min_retention must be in (0, 1], got %v", v.MinRetention)
	}
	if v.MinMatchRate < 0 || v.MinMatchRate > 1 {
		return fmt.Errorf("min_match_rate must be in [0, 1], got %v", v.MinMatchRate)
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse host cannot be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
