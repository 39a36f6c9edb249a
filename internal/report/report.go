package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/planfile/planfile/internal/plan"
)

const (
	chartScaleWidth     = 30
	scheduleMaxWidth    = 76
	baselineWeekMinutes = 40.0 * 60
)

// SectionSummary renders the one-line summary appended after a section
// heading, e.g. "[5 tasks, 3d 2h (dev 2d, design 1d 2h)]".
func SectionSummary(section *plan.Section, units plan.Units) string {
	durations, missing := section.CategoryDurations()

	total := 0
	var efforts []categoryEffort
	for name, minutes := range durations {
		total += minutes
		efforts = append(efforts, categoryEffort{name: name, minutes: minutes})
	}
	sort.Slice(efforts, func(i, j int) bool {
		if efforts[i].minutes != efforts[j].minutes {
			return efforts[i].minutes > efforts[j].minutes
		}
		return efforts[i].name < efforts[j].name
	})

	if total == 0 {
		return fmt.Sprintf("[%d tasks, Missing duration metadata]", len(section.Tasks))
	}

	summary := fmt.Sprintf("[%d tasks, %s", len(section.Tasks), plan.HumanDuration(total, units, 2))
	if len(efforts) > 1 || (len(efforts) == 1 && efforts[0].name != "") {
		var parts []string
		for _, effort := range efforts {
			name := effort.name
			if name == "" {
				name = plan.Uncategorized
			}
			parts = append(parts, fmt.Sprintf("%s %s", name, plan.HumanDuration(effort.minutes, units, 2)))
		}
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	if missing > 0 {
		summary += fmt.Sprintf(" + %d tasks with missing duration", missing)
	}
	return summary + "]"
}

type categoryEffort struct {
	name    string
	minutes int
}

// EffortChart sums the resolved durations of every section per category and
// renders them as a fenced bar chart, busiest category first.
func EffortChart(sections []*plan.Section, units plan.Units) string {
	summed := make(map[string]int)
	for _, section := range sections {
		durations, _ := section.CategoryDurations()
		for category, minutes := range durations {
			summed[category] += minutes
		}
	}

	var rows []categoryEffort
	labelWidth, maxValue := 0, 0
	for category, minutes := range summed {
		name := category
		if name == "" {
			name = plan.Uncategorized
		}
		rows = append(rows, categoryEffort{name: name, minutes: minutes})
		if len(name) > labelWidth {
			labelWidth = len(name)
		}
		if minutes > maxValue {
			maxValue = minutes
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].minutes != rows[j].minutes {
			return rows[i].minutes > rows[j].minutes
		}
		return rows[i].name < rows[j].name
	})

	var b strings.Builder
	b.WriteString("```\n")
	for _, r := range rows {
		bar := ""
		if maxValue > 0 {
			bar = strings.Repeat("#", r.minutes*chartScaleWidth/maxValue)
		}
		fmt.Fprintf(&b, "%*s %6s %s\n", labelWidth, r.name, plan.HumanDuration(r.minutes, units, 2), bar)
	}
	b.WriteString("```")
	return b.String()
}

// WeeklyGrid renders the per-category weekly effort table, one row per ISO
// week with bar columns scaled against the largest weekly load.
func WeeklyGrid(tasks []*plan.Task, categories []string, today time.Time, forWeeks int) string {
	load := WeeklyLoad(tasks, categories)

	maxValue := 0
	for _, effort := range load {
		for _, minutes := range effort {
			if minutes > maxValue {
				maxValue = minutes
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-7s  ", "Week")
	for _, category := range categories {
		name := category
		if name == "" {
			name = plan.Uncategorized
		}
		fmt.Fprintf(&b, "%-5s  ", TruncateMiddle(name, 5))
	}
	b.WriteString("\n")

	for x := 0; x < forWeeks; x++ {
		week := FormatWeek(today.AddDate(0, 0, 7*x))
		fmt.Fprintf(&b, "%-7s  ", week)
		for _, category := range categories {
			bars := 0
			if maxValue > 0 {
				bars = int(float64(load[category][week])/float64(maxValue)*5 + 0.5)
			}
			fmt.Fprintf(&b, "%-5s  ", strings.Repeat("|", bars))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// SectionSchedule renders one sparkline row per scheduled section over the
// coming forWeeks weeks. All rows share one scale: a fixed forty-hour week
// by default, or the busiest week across sections with toScale.
func SectionSchedule(p *plan.Plan, categories []string, today time.Time, forWeeks int, toScale, quarterBreaks bool) string {
	sections := p.ScheduledSections()

	breaks := 0
	if quarterBreaks {
		probe := TotalWeeklySeries(nil, nil, today, forWeeks, true)
		breaks = len(probe) - forWeeks
	}
	titleWidth := scheduleMaxWidth - forWeeks - 1 - breaks

	rows := make([][]WeekEffort, len(sections))
	largest := baselineWeekMinutes
	for i, section := range sections {
		rows[i] = TotalWeeklySeries(section.Tasks, categories, today, forWeeks, quarterBreaks)
		for _, entry := range rows[i] {
			if float64(entry.Minutes) > largest {
				largest = float64(entry.Minutes)
			}
		}
	}
	if !toScale {
		largest = baselineWeekMinutes
	}

	var b strings.Builder
	for i, section := range sections {
		spark := SeriesSparkline(rows[i], 0, largest)
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-*s %s", titleWidth, TruncateMiddle(section.PrettyTitle(), titleWidth), spark)
	}
	return b.String()
}

// UpcomingTasks renders the upcoming-task listing: the soonest tasks over
// all categories, then per category, then the deadline-bound ones.
func UpcomingTasks(p *plan.Plan, categories []string, defaultNum, perCategory int) string {
	tasks := p.MandatoryTasks()

	var b strings.Builder
	b.WriteString(upcomingGroup("", tasks, plan.CategoryAll, defaultNum))

	for _, category := range categories {
		var categoryTasks []*plan.Task
		for _, task := range tasks {
			if task.HasCategory(category) {
				categoryTasks = append(categoryTasks, task)
			}
		}
		title := category
		if title == "" {
			title = plan.Uncategorized
		}
		b.WriteString(upcomingGroup(title, categoryTasks, category, perCategory))
	}

	var deadlined []*plan.Task
	for _, task := range tasks {
		if task.HasDeadline() {
			deadlined = append(deadlined, task)
		}
	}
	b.WriteString(upcomingGroup(plan.CategoryDeadlined, deadlined, plan.CategoryDeadlined, perCategory))

	return b.String()
}

func upcomingGroup(title string, tasks []*plan.Task, category string, limit int) string {
	sorted := make([]*plan.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, oki := sorted[i].ScheduledStart(category)
		sj, okj := sorted[j].ScheduledStart(category)
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return si.Before(sj)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "\n\n### %s upcoming tasks\n\n", title)
	}
	if len(sorted) == 0 {
		b.WriteString("No tasks in this category")
		return b.String()
	}
	lines := make([]string, 0, len(sorted))
	for _, task := range sorted {
		lines = append(lines, task.Raw)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
