// Package config loads the tracker's yaml configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"variant-tracker/internal/types"
)

// File is the complete structure of the tracker.yml file. Durations are
// strings in time.Duration notation ("30s", "5m").
type File struct {
	Tracker struct {
		Interval    string `yaml:"interval"`
		Database    string `yaml:"database"`
		MetricsAddr string `yaml:"metrics_addr"`
		Workers     int    `yaml:"workers"`
	} `yaml:"tracker"`
	Fetch struct {
		Timeout   string `yaml:"timeout"`
		UserAgent string `yaml:"user_agent"`
		CacheTTL  string `yaml:"cache_ttl"`
		Headless  bool   `yaml:"headless"`
	} `yaml:"fetch"`
}

// Load reads and parses the config file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &f, nil
}

// Interval returns the configured polling interval, or fallback when the
// file does not set one.
func (f *File) Interval(fallback time.Duration) (time.Duration, error) {
	if f.Tracker.Interval == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(f.Tracker.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid tracker interval %q: %w", f.Tracker.Interval, err)
	}
	return d, nil
}

// Apply overlays the file's fetch settings onto cfg. Unset fields keep
// their defaults.
func (f *File) Apply(cfg *types.Config) error {
	if f.Fetch.Timeout != "" {
		d, err := time.ParseDuration(f.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("invalid fetch timeout %q: %w", f.Fetch.Timeout, err)
		}
		cfg.Timeout = d
	}
	if f.Fetch.CacheTTL != "" {
		d, err := time.ParseDuration(f.Fetch.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache ttl %q: %w", f.Fetch.CacheTTL, err)
		}
		cfg.PageCacheTTL = d
	}
	if f.Fetch.UserAgent != "" {
		cfg.UserAgent = f.Fetch.UserAgent
	}
	if f.Tracker.Workers > 0 {
		cfg.MaxConcurrentOrders = f.Tracker.Workers
	}
	cfg.UseHeadlessBrowser = f.Fetch.Headless
	return nil
}
