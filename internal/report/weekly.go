// Package report folds placed day slots into weekly effort series and
// renders the text blocks written back into the plan document.
package report

import (
	"fmt"
	"time"

	"github.com/planfile/planfile/internal/plan"
)

// FormatWeek renders a date's ISO calendar week as e.g. "2026W05".
func FormatWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04dW%02d", year, week)
}

// WeeklyLoad sums slot minutes per category and ISO week.
func WeeklyLoad(tasks []*plan.Task, categories []string) map[string]map[string]int {
	load := make(map[string]map[string]int, len(categories))
	for _, category := range categories {
		effort := make(map[string]int)
		for _, task := range tasks {
			if !task.HasCategory(category) {
				continue
			}
			for _, slot := range task.SlotsFor(category) {
				effort[FormatWeek(slot.Date)] += slot.Minutes
			}
		}
		load[category] = effort
	}
	return load
}

// WeekEffort is one column of a bounded-horizon weekly series. QuarterBreak
// marks a spacer column between calendar quarters, carrying no effort.
type WeekEffort struct {
	Week         string
	Minutes      int
	QuarterBreak bool
}

// TotalWeeklySeries folds all categories' weekly load over the given tasks
// into a single series of forWeeks entries starting at today's week. With
// quarterBreaks, a spacer entry is inserted at each quarter boundary.
func TotalWeeklySeries(tasks []*plan.Task, categories []string, today time.Time, forWeeks int, quarterBreaks bool) []WeekEffort {
	byCategory := WeeklyLoad(tasks, categories)
	total := make(map[string]int)
	for _, effort := range byCategory {
		for week, minutes := range effort {
			total[week] += minutes
		}
	}

	var series []WeekEffort
	prevQuarter := 0
	for x := 0; x < forWeeks; x++ {
		dt := today.AddDate(0, 0, 7*x)
		quarter := (int(dt.Month())-1)/3 + 1
		if quarterBreaks && prevQuarter != 0 && prevQuarter != quarter {
			series = append(series, WeekEffort{QuarterBreak: true})
		}
		week := FormatWeek(dt)
		series = append(series, WeekEffort{Week: week, Minutes: total[week]})
		prevQuarter = quarter
	}
	return series
}
