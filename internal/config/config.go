// Package config loads the optional YAML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"context-cvss4/cvss"
)

// Config holds defaults shared by every command. Command line flags win
// over values read from the file.
type Config struct {
	LogLevel string              `yaml:"log_level"`
	Metrics  cvss.MetricsOptions `yaml:"metrics"`
	NVD      NVD                 `yaml:"nvd"`
	Server   Server              `yaml:"server"`
	Workers  int                 `yaml:"workers"`
}

// NVD configures the NVD client.
type NVD struct {
	APIKey string `yaml:"api_key"`
}

// Server configures the HTTP scoring API.
type Server struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server:   Server{Addr: ":8080"},
		Workers:  4,
	}
}

// Load reads path on top of the defaults. An empty path returns Default.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config.Load: parse %q: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %q: %w", path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	for _, mv := range c.Metrics.Values() {
		if !mv.Metric.Accepts(mv.Value) {
			return fmt.Errorf("metrics.%s: %w: %q", mv.Metric, cvss.ErrInvalidValue, mv.Value)
		}
	}
	return nil
}
