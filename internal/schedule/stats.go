// Package schedule computes when each task of a plan will be worked on:
// per-category day allocations bounded by daily capacity, deadlines, and
// section priorities.
package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/planfile/planfile/internal/plan"
)

// In-document configuration markers.
const (
	configSectionTitle = "## Plan: Configuration"
	configWorkloadTask = "Daily Workload"
)

// WorkloadConfig carries the configured daily capacities, in minutes.
type WorkloadConfig struct {
	DefaultMinutes int
	Overrides      map[string]int
}

// Statistics is the derived, read-only view over a plan's tasks that every
// placement phase shares: the categories in use, per-category mean explicit
// durations, and per-category daily workloads. Collect it once per compile.
type Statistics struct {
	Categories []string
	Tasks      []*plan.Task

	means     map[string]int
	workloads map[string]int
	fallback  int
}

// Collect scans the plan once and derives the statistics. Every valid
// section contributes, zero-weight ones included: their explicit durations
// still inform the category means even though placement skips them.
// Workload overrides from the document's "## Plan: Configuration" section
// take precedence over configured ones.
func Collect(p *plan.Plan, cfg WorkloadConfig) (*Statistics, error) {
	if cfg.DefaultMinutes <= 0 {
		return nil, fmt.Errorf("default daily workload must be positive, got %d", cfg.DefaultMinutes)
	}

	stats := &Statistics{
		Tasks:     p.ValidTasks(),
		means:     make(map[string]int),
		workloads: make(map[string]int),
		fallback:  cfg.DefaultMinutes,
	}

	seen := make(map[string]bool)
	for _, task := range stats.Tasks {
		for name := range task.Categories {
			if !seen[name] {
				seen[name] = true
				stats.Categories = append(stats.Categories, name)
			}
		}
	}
	sort.Strings(stats.Categories)

	stats.computeMeans()

	for name, minutes := range cfg.Overrides {
		if minutes <= 0 {
			return nil, fmt.Errorf("workload for category %q must be positive, got %d", name, minutes)
		}
		stats.workloads[name] = minutes
	}
	if err := stats.applyDocumentWorkloads(p); err != nil {
		return nil, err
	}

	return stats, nil
}

// computeMeans derives each category's mean explicit duration. Categories
// with no explicit durations fall back to the mean over the other
// categories' means; with no explicit durations anywhere, means stay zero.
func (s *Statistics) computeMeans() {
	var withMean []string
	for _, category := range s.Categories {
		sum, count := 0, 0
		for _, task := range s.Tasks {
			if minutes, ok := task.ExplicitDuration(category); ok {
				sum += minutes
				count++
			}
		}
		if count > 0 {
			s.means[category] = sum / count
			withMean = append(withMean, category)
		}
	}

	if len(withMean) == 0 {
		return
	}
	overall := 0
	for _, category := range withMean {
		overall += s.means[category]
	}
	overall /= len(withMean)

	for _, category := range s.Categories {
		if _, ok := s.means[category]; !ok {
			s.means[category] = overall
		}
	}
}

// applyDocumentWorkloads reads capacity overrides from a
// "- Daily Workload: dev 6h, design 4h" line in the configuration section.
func (s *Statistics) applyDocumentWorkloads(p *plan.Plan) error {
	section := p.SectionByTitle(configSectionTitle)
	if section == nil {
		return nil
	}

	for _, line := range section.Lines {
		if !strings.Contains(line, configWorkloadTask) {
			continue
		}
		_, spec, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		for _, entry := range strings.Split(spec, ",") {
			fields := strings.Fields(entry)
			if len(fields) != 2 {
				return fmt.Errorf("invalid workload entry %q", strings.TrimSpace(entry))
			}
			minutes, err := plan.ToMinutes(fields[1], p.Units)
			if err != nil {
				return fmt.Errorf("invalid workload for category %q: %w", fields[0], err)
			}
			if minutes <= 0 {
				return fmt.Errorf("workload for category %q must be positive", fields[0])
			}
			s.workloads[fields[0]] = minutes
		}
		return nil
	}
	return nil
}

// MeanDuration returns the mean explicit duration for category, in minutes.
func (s *Statistics) MeanDuration(category string) int {
	return s.means[category]
}

// Workload returns the daily capacity for category, in minutes.
func (s *Statistics) Workload(category string) int {
	if minutes, ok := s.workloads[category]; ok {
		return minutes
	}
	return s.fallback
}
