package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hospsync/hospsync/internal/catalog"
	"github.com/hospsync/hospsync/internal/report"
)

// Config defines configuration for the hospsync CLI.
type Config struct {
	CatalogURL  string        `yaml:"catalog_url"`
	Theme       string        `yaml:"theme"`
	Output      string        `yaml:"output"`
	Workers     int           `yaml:"workers"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxBodySize int64         `yaml:"max_body_size"`
	Schedule    string        `yaml:"schedule"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		CatalogURL: catalog.DefaultEndpoint,
		Theme:      catalog.DefaultTheme,
		Output:     "cms_hospitals_data",
		Workers:    runtime.NumCPU(),
		Timeout:    5 * time.Minute,
	}
}

// yamlConfig is used for YAML unmarshaling with string duration and
// byte-size fields.
type yamlConfig struct {
	CatalogURL  string `yaml:"catalog_url"`
	Theme       string `yaml:"theme"`
	Output      string `yaml:"output"`
	Workers     int    `yaml:"workers"`
	Timeout     string `yaml:"timeout"`
	MaxBodySize string `yaml:"max_body_size"`
	Schedule    string `yaml:"schedule"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.CatalogURL != "" {
		cfg.CatalogURL = yc.CatalogURL
	}
	if yc.Theme != "" {
		cfg.Theme = yc.Theme
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.MaxBodySize != "" {
		size, err := report.ParseBytes(yc.MaxBodySize)
		if err != nil {
			return Config{}, fmt.Errorf("parse max_body_size: %w", err)
		}
		cfg.MaxBodySize = size
	}
	if yc.Schedule != "" {
		cfg.Schedule = yc.Schedule
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the HOSPSYNC_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("HOSPSYNC_CATALOG_URL"); v != "" {
		c.CatalogURL = v
	}
	if v := os.Getenv("HOSPSYNC_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("HOSPSYNC_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("HOSPSYNC_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HOSPSYNC_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("HOSPSYNC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse HOSPSYNC_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("HOSPSYNC_MAX_BODY_SIZE"); v != "" {
		size, err := report.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse HOSPSYNC_MAX_BODY_SIZE: %w", err)
		}
		c.MaxBodySize = size
	}
	if v := os.Getenv("HOSPSYNC_SCHEDULE"); v != "" {
		c.Schedule = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.CatalogURL == "" {
		return errors.New("config: catalog_url is required")
	}
	if c.Theme == "" {
		return errors.New("config: theme is required")
	}
	if c.Output == "" {
		return errors.New("config: output is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.MaxBodySize < 0 {
		return errors.New("config: max_body_size must not be negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.CatalogURL != "" {
		c.CatalogURL = override.CatalogURL
	}
	if override.Theme != "" {
		c.Theme = override.Theme
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.MaxBodySize != 0 {
		c.MaxBodySize = override.MaxBodySize
	}
	if override.Schedule != "" {
		c.Schedule = override.Schedule
	}
	return c
}
