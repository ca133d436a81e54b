// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Addr        string `yaml:"addr"`
	LogLevel    string `yaml:"log_level"`
	DatabaseURL string `yaml:"database_url"`

	// Warehouse dataset the tile query runs against.
	Table      string `yaml:"table"`
	GeomColumn string `yaml:"geometry_column"`

	// Tile pipeline knobs.
	FeatureCap    int      `yaml:"feature_cap"`
	LayerName     string   `yaml:"layer_name"`
	Extent        uint32   `yaml:"extent"`
	QueryTimeout  Duration `yaml:"query_timeout"`
	RetryAttempts int      `yaml:"retry_attempts"`
	RetryBackoff  Duration `yaml:"retry_backoff"`

	ProbeInterval Duration `yaml:"probe_interval"`
}

// Default returns the configuration used when neither file nor environment
// say otherwise. The 30000 feature cap matches the warehouse query LIMIT the
// overflow policy is defined against.
func Default() Config {
	return Config{
		Addr:          ":8080",
		LogLevel:      "info",
		Table:         "features",
		GeomColumn:    "geometry",
		FeatureCap:    30000,
		LayerName:     "layer",
		Extent:        4096,
		QueryTimeout:  Duration(10 * time.Second),
		RetryAttempts: 1,
		RetryBackoff:  Duration(200 * time.Millisecond),
		ProbeInterval: Duration(15 * time.Second),
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (if non-empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.FeatureCap <= 0 {
		return Config{}, fmt.Errorf("feature_cap must be positive, got %d", cfg.FeatureCap)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Addr = envOr("HTTP_ADDR", c.Addr)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.DatabaseURL = envOr("DATABASE_URL", c.DatabaseURL)
	c.Table = envOr("TILE_TABLE", c.Table)
	c.GeomColumn = envOr("TILE_GEOMETRY_COLUMN", c.GeomColumn)
	c.LayerName = envOr("TILE_LAYER_NAME", c.LayerName)

	if v := os.Getenv("TILE_FEATURE_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FeatureCap = n
		}
	}
	if v := os.Getenv("TILE_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.QueryTimeout = Duration(d)
		}
	}
	if v := os.Getenv("TILE_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetryAttempts = n
		}
	}
}

func envOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
