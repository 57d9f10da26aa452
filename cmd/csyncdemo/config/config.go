// Package config loads the csyncdemo program's scenario configuration,
// mirroring the teaching service's config.Load shape: read a YAML file,
// apply environment overrides, validate, fail loudly.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes which demo scenarios csyncdemo runs and how.
type Config struct {
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Buffered BufferedConfig `yaml:"buffered"`
	Timeout  TimeoutConfig  `yaml:"timeout"`
}

// MetricsConfig controls the optional Prometheus /metrics surface.
type MetricsConfig struct {
	Addr    string `yaml:"addr"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig controls zerolog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// BufferedConfig parameterizes the rate-governed Buffered-channel demo.
type BufferedConfig struct {
	Capacity          int     `yaml:"capacity"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	ProducerCount     int     `yaml:"producer_count"`
}

// TimeoutConfig parameterizes the Timeout-channel race demo.
type TimeoutConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// Load reads config from path, applies environment overrides, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if addr := os.Getenv("CSYNCDEMO_METRICS_ADDR"); addr != "" {
		cfg.Metrics.Addr = addr
	}
	if level := os.Getenv("CSYNCDEMO_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields the demo scenarios depend on to not blow up.
func (c *Config) Validate() error {
	if c.Buffered.Capacity <= 0 {
		return fmt.Errorf("buffered.capacity must be positive")
	}
	if c.Buffered.RequestsPerSecond <= 0 {
		return fmt.Errorf("buffered.requests_per_second must be positive")
	}
	if c.Buffered.ProducerCount <= 0 {
		return fmt.Errorf("buffered.producer_count must be positive")
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout.duration must be positive")
	}
	return nil
}
