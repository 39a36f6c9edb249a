package document

import (
	"strings"
	"testing"
	"time"

	"github.com/planfile/planfile/internal/plan"
	"github.com/planfile/planfile/internal/schedule"
)

// monday is 2026-01-05.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func testCompiler() *Compiler {
	return &Compiler{
		Units:    plan.DefaultUnits(),
		Workload: schedule.WorkloadConfig{DefaultMinutes: 480},
		Today:    monday,
		Seed:     schedule.DefaultSeed,
	}
}

func compile(t *testing.T, doc string) *Result {
	t.Helper()
	result, err := testCompiler().Compile(doc)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return result
}

func TestCompileInsertsSummary(t *testing.T) {
	result := compile(t, "## Work\n\n- A [dev 2h]\n")

	lines := strings.Split(result.Content, "\n")
	if lines[0] != "## Work" {
		t.Errorf("line 0: %q", lines[0])
	}
	if lines[1] != "[1 tasks, 2h (dev 2h)]" {
		t.Errorf("summary: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], sparkPrefix) {
		t.Errorf("sparkline: %q", lines[2])
	}
	// 40 week ticks after the clock glyph.
	if got := len([]rune(lines[2])); got != sectionSparklineWeeks+1 {
		t.Errorf("sparkline width: got %d runes, want %d", got, sectionSparklineWeeks+1)
	}
	if lines[3] != "" || lines[4] != "- A [dev 2h]" {
		t.Errorf("body: %q", lines[3:])
	}
}

func TestCompileReplacesStaleSummary(t *testing.T) {
	doc := "## Work\n[9 tasks, stale]\n⌚▁▁▁\n\n- A [dev 2h]\n"
	result := compile(t, doc)

	if strings.Contains(result.Content, "stale") {
		t.Error("stale summary survived the rewrite")
	}
	if got := strings.Count(result.Content, "[1 tasks, 2h (dev 2h)]"); got != 1 {
		t.Errorf("summary count: got %d, want 1", got)
	}
	if got := strings.Count(result.Content, sparkPrefix); got != 1 {
		t.Errorf("sparkline count: got %d, want 1", got)
	}
}

func TestCompileKeepsBlankLineBeforeSummary(t *testing.T) {
	doc := "## Work\n\n[9 tasks, stale]\n\n- A [dev 2h]\n"
	result := compile(t, doc)

	if !strings.HasPrefix(result.Content, "## Work\n\n[1 tasks, 2h (dev 2h)]\n") {
		t.Errorf("content:\n%s", result.Content)
	}
}

func TestCompileMarksCompleted(t *testing.T) {
	result := compile(t, "## Work\n\n- A [dev 2h]\n+ Shipped login [dev 1h]\n")

	want := "+ ~~Shipped login [dev 1h] @done(2026-01-05)~~"
	if !strings.Contains(result.Content, want) {
		t.Errorf("completed line missing:\n%s", result.Content)
	}
}

func TestMarkCompleted(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "fresh completion",
			line: "+ Ship it [dev 1h]",
			want: "+ ~~Ship it [dev 1h] @done(2026-01-05)~~",
		},
		{
			name: "already marked",
			line: "+ ~~Old [dev 1h] @done(2025-11-03)~~",
			want: "+ ~~Old [dev 1h] @done(2025-11-03)~~",
		},
		{
			name: "pending task untouched",
			line: "- Still open [dev 1h]",
			want: "- Still open [dev 1h]",
		},
		{
			name: "dated but not struck",
			line: "+ Half done @done(2025-11-03)",
			want: "+ ~~Half done @done(2025-11-03)~~",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := markCompleted(tt.line, monday); got != tt.want {
				t.Errorf("markCompleted = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompileInformationSectionClean(t *testing.T) {
	doc := "## Work\n\n- A [dev 2h]\n\n## Plan: Information\n\nLast updated: 2025-01-01\n"
	result := compile(t, doc)

	if !strings.Contains(result.Content, "## Plan: Information\n\nLast updated: 2026-01-05\n") {
		t.Errorf("information section:\n%s", result.Content)
	}
	if strings.Contains(result.Content, "errors in your plan") {
		t.Error("clean plan should not report errors")
	}
}

func TestCompileInformationSectionWithWarnings(t *testing.T) {
	doc := "## Work\n\n- Late [dev 2h 2025-12-30]\n\n## Plan: Information\n\nLast updated: 2025-01-01\n"
	result := compile(t, doc)

	if !strings.Contains(result.Content, "There are errors in your plan:") {
		t.Errorf("missing error block:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "*Past deadline*:\n- ") {
		t.Errorf("missing warning group:\n%s", result.Content)
	}
}

func TestCompileUpcomingSection(t *testing.T) {
	doc := "## Work\n\n- A [dev 2h]\n\n## Plan: Upcoming tasks\n\nold content\n"
	result := compile(t, doc)

	if strings.Contains(result.Content, "old content") {
		t.Error("stale listing survived")
	}
	if !strings.Contains(result.Content, "### dev upcoming tasks") {
		t.Errorf("missing category group:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "### Deadlined upcoming tasks") {
		t.Errorf("missing deadlined group:\n%s", result.Content)
	}
}

func TestCompileEffortChartSection(t *testing.T) {
	doc := "## Work\n\n- A [dev 2h]\n\n## Plan: Total estimated effort\n"
	result := compile(t, doc)

	if !strings.Contains(result.Content, "## Plan: Total estimated effort\n\n```\ndev") {
		t.Errorf("missing chart:\n%s", result.Content)
	}
}

func TestCompileWeeklyTimelineSection(t *testing.T) {
	doc := "## Work\n\n- A [dev 2h]\n\n## Plan: 4w Weekly effort timeline\n"
	result := compile(t, doc)

	idx := strings.Index(result.Content, "## Plan: 4w Weekly effort timeline\n\n```\nWeek")
	if idx < 0 {
		t.Fatalf("missing timeline:\n%s", result.Content)
	}
	// Four week rows requested in the heading.
	block := result.Content[idx:]
	if got := strings.Count(block, "2026W"); got != 4 {
		t.Errorf("week rows: got %d, want 4", got)
	}
}

func TestCompileSectionScheduleSection(t *testing.T) {
	doc := "## Work\n\n- A [dev 2h]\n\n## Plan: 20w Section schedule to scale\n"
	result := compile(t, doc)

	if !strings.Contains(result.Content, "## Plan: 20w Section schedule to scale\n\n```\nWork") {
		t.Errorf("missing schedule:\n%s", result.Content)
	}
}

func TestCompilePreservesPreambleAndForeignSections(t *testing.T) {
	doc := "Free-form intro.\n\n# Big Title\n\nNotes here.\n\n## Trello warnings\n\n- stale card\n\n## Work\n\n- A [dev 2h]\n"
	result := compile(t, doc)

	for _, fragment := range []string{
		"Free-form intro.",
		"# Big Title\n\nNotes here.",
		"## Trello warnings\n\n- stale card",
	} {
		if !strings.Contains(result.Content, fragment) {
			t.Errorf("fragment %q lost:\n%s", fragment, result.Content)
		}
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	doc := "## Work (2x)\n\n- A [dev 2h]\n- B [dev 6h 2026-01-09]\n+ C [dev 1h]\n\n## Plan: Information\n\nLast updated: 2025-01-01\n\n## Plan: Upcoming tasks\n"
	first := compile(t, doc)
	second := compile(t, first.Content)

	if first.Content != second.Content {
		t.Errorf("recompile changed the document:\nfirst:\n%s\nsecond:\n%s", first.Content, second.Content)
	}
}

func TestCompileConsumesStaleListingGroups(t *testing.T) {
	doc := "## Plan: Upcoming tasks\n\n- old line\n\n### dev upcoming tasks\n\n- old line\n\n## Work\n\n- A [dev 2h]\n"
	result := compile(t, doc)

	if strings.Contains(result.Content, "- old line") {
		t.Errorf("stale listing survived:\n%s", result.Content)
	}
	// One freshly written dev group, not the stale one on top.
	if got := strings.Count(result.Content, "### dev upcoming tasks"); got != 1 {
		t.Errorf("dev group count: got %d, want 1", got)
	}
	if !strings.Contains(result.Content, "## Work") {
		t.Error("following section lost")
	}
}

func TestCompileKeepsAuthorSubheadings(t *testing.T) {
	// Only the upcoming listing owns "### " headings; under other computed
	// blocks they are the author's and survive a compile.
	doc := "## Plan: Information\n\nLast updated: 2025-01-01\n\n### Review notes\n\n- check with ops\n\n## Work\n\n- A [dev 2h]\n"
	result := compile(t, doc)

	if !strings.Contains(result.Content, "### Review notes\n\n- check with ops") {
		t.Errorf("author sub-heading lost:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "Last updated: 2026-01-05") {
		t.Errorf("information body not rewritten:\n%s", result.Content)
	}
}

func TestCompileEstimatesZeroWeightSectionSummary(t *testing.T) {
	// Zero-weight sections are never placed but still get their summary:
	// missing durations are estimated from the whole document's means.
	doc := "## Parked (0x)\n\n- A [dev]\n\n## Active\n\n- B [dev 4h]\n"
	result := compile(t, doc)

	if strings.Contains(result.Content, "Missing duration metadata") {
		t.Errorf("parked section not estimated:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "[1 tasks, 4h (dev 4h)]") {
		t.Errorf("active summary:\n%s", result.Content)
	}
}

func TestCompileEndsWithSingleNewline(t *testing.T) {
	result := compile(t, "## Work\n\n- A [dev 2h]")

	if !strings.HasSuffix(result.Content, "\n") || strings.HasSuffix(result.Content, "\n\n") {
		t.Errorf("trailing newlines wrong: %q", result.Content[len(result.Content)-5:])
	}
}

func TestHeadingNumber(t *testing.T) {
	tests := []struct {
		heading  string
		fallback int
		want     int
	}{
		{"## Plan: Upcoming tasks", 10, 10},
		{"## Plan: 15 Upcoming tasks", 10, 15},
		{"## Plan: 20w Section schedule", 30, 20},
		{"## Plan: Weekly effort timeline", 10, 10},
	}
	for _, tt := range tests {
		if got := headingNumber(tt.heading, tt.fallback); got != tt.want {
			t.Errorf("headingNumber(%q) = %d, want %d", tt.heading, got, tt.want)
		}
	}
}

func TestCompileRejectsBadConfiguration(t *testing.T) {
	doc := "## Work\n\n- A [dev 2h]\n\n## Plan: Configuration\n\n- Daily Workload: dev\n"
	if _, err := testCompiler().Compile(doc); err == nil {
		t.Error("Compile() expected error for malformed workload entry")
	}
}
