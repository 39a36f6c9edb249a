package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# Planfile configuration file
# Values can be overridden by environment variables or CLI flags

# Plan file (relative to project root, supports ~ expansion)
plan_file = "plan.md"

# Default daily workload per category (m/h/d/w/M duration token)
default_daily_workload = "8h"

# Per-category daily workload overrides
# [workloads]
# dev = "6h"
# design = "4h"

# Seed for the section prioritizer
random_seed = 4567

# Duration unit overrides, in minutes per unit letter
# [durations]
# d = 360

# Timeline horizon in weeks
timeline_weeks = 10

# Mark quarter boundaries in timelines
show_quarters = false

# Logging
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
