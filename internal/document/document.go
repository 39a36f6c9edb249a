// Package document compiles a plan file: it parses the text, runs the
// scheduler, and rewrites the computed blocks (section summaries, upcoming
// tasks, effort charts, timelines, and the information section) in place.
package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/planfile/planfile/internal/plan"
	"github.com/planfile/planfile/internal/report"
	"github.com/planfile/planfile/internal/schedule"
)

// Headings of the computed sections. Their bodies are replaced wholesale on
// every compile; everything else in the document belongs to the author.
var (
	upcomingRe        = regexp.MustCompile(`^## Plan: (\d+\s)?[Uu]pcoming tasks`)
	totalEffortRe     = regexp.MustCompile(`^## Plan: Total estimated effort`)
	weeklyTimelineRe  = regexp.MustCompile(`^## Plan: (\d+w? )?Week(.+) effort timeline`)
	sectionScheduleRe = regexp.MustCompile(`^## Plan: (\d+w )?[Ss]ection schedule`)
	numberRe          = regexp.MustCompile(`\d+`)
	toScaleRe         = regexp.MustCompile(`to scale\s*$`)
)

const (
	informationHeading = "## Plan: Information"
	sparkPrefix        = "⌚"
	completedMarker    = "+ "

	defaultUpcomingTasks  = 10
	upcomingPerCategory   = 5
	defaultTimelineWeeks  = 10
	defaultScheduleWeeks  = 30
	maxScheduleWeeks      = 60
	sectionSparklineWeeks = 40
)

// Compiler holds the settings for one compile pass.
type Compiler struct {
	Units        plan.Units
	Workload     schedule.WorkloadConfig
	Today        time.Time
	Seed         int64
	ShowQuarters bool
}

// Result is a finished compile: the rewritten document plus the parsed and
// scheduled plan it was derived from.
type Result struct {
	Content  string
	Plan     *plan.Plan
	Stats    *schedule.Statistics
	Warnings *schedule.Warnings
}

// Compile parses content, schedules every task, and returns the document
// with all computed blocks rewritten.
func (c *Compiler) Compile(content string) (*Result, error) {
	p := plan.Parse(content, c.Units)

	stats, err := schedule.Collect(p, c.Workload)
	if err != nil {
		return nil, fmt.Errorf("collecting statistics: %w", err)
	}

	schedule.ResolveDurations(p, stats)
	warnings := schedule.Schedule(p, stats, schedule.Options{Today: c.Today, Seed: c.Seed})

	return &Result{
		Content:  c.rewrite(content, p, stats, warnings),
		Plan:     p,
		Stats:    stats,
		Warnings: warnings,
	}, nil
}

func (c *Compiler) rewrite(content string, p *plan.Plan, stats *schedule.Statistics, warnings *schedule.Warnings) string {
	if len(p.Sections) == 0 {
		return content
	}

	var b strings.Builder

	// Preamble before the first heading stays untouched.
	lines := strings.Split(content, "\n")
	for _, line := range lines[:p.Sections[0].RowAt] {
		b.WriteString(line + "\n")
	}

	// The upcoming listing writes "### ..." group headings of its own;
	// those belong to the block and are replaced along with it. Other
	// computed blocks end at any following heading, so an author's
	// sub-heading under them is kept.
	swallow := false

	for _, section := range p.Sections {
		heading := section.Lines[0]
		if swallow && !strings.HasPrefix(heading, "## ") {
			continue
		}
		swallow = false

		switch {
		case section.Valid:
			b.WriteString(c.renderScheduledSection(section, p, stats))
		case strings.HasPrefix(heading, informationHeading):
			b.WriteString(heading + "\n\n" + informationContent(c.Today, warnings) + "\n")
		case upcomingRe.MatchString(heading):
			limit := headingNumber(heading, defaultUpcomingTasks)
			b.WriteString(heading + "\n\n" + report.UpcomingTasks(p, stats.Categories, limit, upcomingPerCategory) + "\n\n")
			swallow = true
		case totalEffortRe.MatchString(heading):
			chart := report.EffortChart(p.ValidSections(), p.Units)
			b.WriteString(heading + "\n\n" + chart + "\n\n")
		case weeklyTimelineRe.MatchString(heading):
			weeks := headingNumber(heading, defaultTimelineWeeks)
			grid := report.WeeklyGrid(p.MandatoryTasks(), stats.Categories, c.Today, weeks)
			b.WriteString(heading + "\n\n```\n" + grid + "\n```\n\n")
		case sectionScheduleRe.MatchString(heading):
			weeks := min(headingNumber(heading, defaultScheduleWeeks), maxScheduleWeeks)
			toScale := toScaleRe.MatchString(heading)
			rows := report.SectionSchedule(p, stats.Categories, c.Today, weeks, toScale, c.ShowQuarters)
			b.WriteString(heading + "\n\n```\n" + rows + "\n```\n\n")
		default:
			b.WriteString(strings.Join(section.Lines, "\n") + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderScheduledSection rewrites the summary line and sparkline under a
// section heading and marks freshly completed tasks.
func (c *Compiler) renderScheduledSection(section *plan.Section, p *plan.Plan, stats *schedule.Statistics) string {
	series := report.TotalWeeklySeries(section.Tasks, stats.Categories, c.Today, sectionSparklineWeeks, c.ShowQuarters)
	spark := report.SeriesSparkline(series, -1, -1)

	var b strings.Builder
	b.WriteString(section.Lines[0] + "\n")

	rest := section.Lines[1:]
	// Some markdown tooling inserts a blank line after the heading; keep it
	// in front of the rewritten summary.
	if len(rest) > 1 && rest[0] == "" && strings.HasPrefix(rest[1], "[") {
		b.WriteString("\n")
		rest = rest[1:]
	}
	if len(rest) > 0 && strings.HasPrefix(rest[0], "[") {
		rest = rest[1:]
		if len(rest) > 0 && strings.HasPrefix(rest[0], sparkPrefix) {
			rest = rest[1:]
		}
	}

	b.WriteString(report.SectionSummary(section, p.Units) + "\n")
	b.WriteString(sparkPrefix + spark + "\n")

	for _, line := range rest {
		b.WriteString(markCompleted(line, c.Today) + "\n")
	}
	return b.String()
}

// markCompleted stamps a completed task line with the completion date and
// strikes it through. Already marked lines pass through unchanged.
func markCompleted(line string, today time.Time) string {
	if !strings.HasPrefix(line, completedMarker) {
		return line
	}
	if !strings.Contains(line, "@done") {
		line += fmt.Sprintf(" @done(%s)", today.Format("2006-01-02"))
	}
	if !strings.Contains(line, "~~") {
		line = completedMarker + "~~" + line[len(completedMarker):] + "~~"
	}
	return line
}

func informationContent(today time.Time, warnings *schedule.Warnings) string {
	content := fmt.Sprintf("Last updated: %s", today.Format("2006-01-02"))
	if warnings.Empty() {
		return content + "\n"
	}

	content += "\n\nThere are errors in your plan:\n\n"
	for _, group := range warnings.Groups() {
		content += fmt.Sprintf("*%s*:\n", group.Label)
		for _, message := range group.Messages {
			content += fmt.Sprintf("- %s\n", message)
		}
		content += "\n"
	}
	return content
}

// headingNumber extracts the first number from a heading, e.g. the horizon
// from "## Plan: 20w Section schedule".
func headingNumber(heading string, fallback int) int {
	match := numberRe.FindString(heading)
	if match == "" {
		return fallback
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return fallback
	}
	return n
}
