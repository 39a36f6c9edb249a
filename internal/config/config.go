// Package config handles configuration loading and defaults.
package config

import (
	"fmt"

	"github.com/planfile/planfile/internal/plan"
	"github.com/planfile/planfile/internal/schedule"
)

// Default values.
const (
	DefaultPlanFile      = "plan.md"
	DefaultDailyWorkload = "8h"
	DefaultTimelineWeeks = 10
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config holds the full configuration for planfile.
type Config struct {
	// Paths
	PlanFile string `toml:"plan_file"`

	// Scheduling
	DefaultDailyWorkload string            `toml:"default_daily_workload"`
	Workloads            map[string]string `toml:"workloads"`
	RandomSeed           int64             `toml:"random_seed"`

	// Duration unit overrides, in minutes per unit letter.
	Durations map[string]int `toml:"durations"`

	// Timeline rendering
	TimelineWeeks int  `toml:"timeline_weeks"`
	ShowQuarters  bool `toml:"show_quarters"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// UnitsTable returns the duration unit table with any configured overrides
// applied on top of the defaults.
func (c *Config) UnitsTable() plan.Units {
	units := plan.DefaultUnits()
	for letter, minutes := range c.Durations {
		units[letter] = minutes
	}
	return units
}

// WorkloadConfig converts the configured workload tokens into minutes.
func (c *Config) WorkloadConfig() (schedule.WorkloadConfig, error) {
	units := c.UnitsTable()

	fallback, err := plan.ToMinutes(c.DefaultDailyWorkload, units)
	if err != nil {
		return schedule.WorkloadConfig{}, fmt.Errorf("invalid default daily workload %q: %w", c.DefaultDailyWorkload, err)
	}

	overrides := make(map[string]int, len(c.Workloads))
	for category, token := range c.Workloads {
		minutes, err := plan.ToMinutes(token, units)
		if err != nil {
			return schedule.WorkloadConfig{}, fmt.Errorf("invalid workload for category %q: %w", category, err)
		}
		overrides[category] = minutes
	}

	return schedule.WorkloadConfig{DefaultMinutes: fallback, Overrides: overrides}, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.PlanFile = DefaultPlanFile
	cfg.DefaultDailyWorkload = DefaultDailyWorkload
	cfg.RandomSeed = schedule.DefaultSeed
	cfg.TimelineWeeks = DefaultTimelineWeeks

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
}
