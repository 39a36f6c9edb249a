package plan

import (
	"strings"
	"testing"
	"time"
)

const sampleDoc = `# Project

Intro paragraph.

## Backend (2x)

- Build API [dev 6h]
- Ship release [dev qa 2026-03-06]
+ Bootstrap repo [dev 1h]
- Write docs [M docs 2h]

## Plan: Information

Last updated: 2026-01-05

## Frontend

- Polish UI [design]
`

func parseSample(t *testing.T) *Plan {
	t.Helper()
	return Parse(sampleDoc, DefaultUnits())
}

func TestParseSections(t *testing.T) {
	p := parseSample(t)

	if len(p.Sections) != 4 {
		t.Fatalf("sections: got %d, want 4", len(p.Sections))
	}

	tests := []struct {
		title  string
		valid  bool
		weight float64
	}{
		{"# Project", false, 1},
		{"## Backend", true, 2},
		{"## Plan: Information", false, 1},
		{"## Frontend", true, 1},
	}
	for i, tt := range tests {
		section := p.Sections[i]
		if section.Title != tt.title {
			t.Errorf("section %d title: got %q, want %q", i, section.Title, tt.title)
		}
		if section.Valid != tt.valid {
			t.Errorf("section %d valid: got %v, want %v", i, section.Valid, tt.valid)
		}
		if section.Weight != tt.weight {
			t.Errorf("section %d weight: got %v, want %v", i, section.Weight, tt.weight)
		}
	}

	if got := p.Sections[1].PrettyTitle(); got != "Backend" {
		t.Errorf("PrettyTitle: got %q, want Backend", got)
	}
}

func TestParseTasks(t *testing.T) {
	p := parseSample(t)
	backend := p.SectionByTitle("## Backend")
	if backend == nil {
		t.Fatal("Backend section not found")
	}

	if len(backend.AllTasks) != 4 {
		t.Fatalf("all tasks: got %d, want 4", len(backend.AllTasks))
	}
	// Completed and optional tasks are excluded from scheduling.
	if len(backend.Tasks) != 2 {
		t.Fatalf("pending tasks: got %d, want 2", len(backend.Tasks))
	}

	api := backend.Tasks[0]
	if api.Description != "Build API" {
		t.Errorf("description: got %q, want Build API", api.Description)
	}
	minutes, ok := api.ExplicitDuration("dev")
	if !ok || minutes != 360 {
		t.Errorf("dev duration: got %d (ok=%v), want 360", minutes, ok)
	}

	release := backend.Tasks[1]
	if !release.HasDeadline() {
		t.Fatal("release task should have a deadline")
	}
	want := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !release.Deadline.Equal(want) {
		t.Errorf("deadline: got %v, want %v", release.Deadline, want)
	}
	if !release.HasCategory("dev") || !release.HasCategory("qa") {
		t.Errorf("categories: got %v, want dev and qa", release.CategoryNames())
	}
	if _, ok := release.ExplicitDuration("qa"); ok {
		t.Error("qa duration should not be explicit")
	}
}

func TestParseCompletedAndOptional(t *testing.T) {
	p := parseSample(t)
	backend := p.SectionByTitle("## Backend")

	var completed, optional *Task
	for _, task := range backend.AllTasks {
		if task.Completed {
			completed = task
		}
		if task.Optional {
			optional = task
		}
	}
	if completed == nil || completed.Description != "Bootstrap repo" {
		t.Fatalf("completed task: got %+v", completed)
	}
	if optional == nil || optional.Description != "Write docs" {
		t.Fatalf("optional task: got %+v", optional)
	}
	if optional.IsMandatory() {
		t.Error("optional task should not be mandatory")
	}

	got := backend.CompletedTasks()
	if len(got) != 1 || !strings.HasPrefix(got[0], "+ Bootstrap repo") {
		t.Errorf("CompletedTasks: got %v", got)
	}
}

func TestParseBareDuration(t *testing.T) {
	p := Parse("## Work\n\n- Quick fix [30m]\n", DefaultUnits())
	task := p.MandatoryTasks()[0]

	minutes, ok := task.ExplicitDuration("")
	if !ok || minutes != 30 {
		t.Errorf("unnamed category duration: got %d (ok=%v), want 30", minutes, ok)
	}
}

func TestParseNoMeta(t *testing.T) {
	p := Parse("## Work\n\n- Just a task\n", DefaultUnits())
	task := p.MandatoryTasks()[0]

	if task.Description != "Just a task" {
		t.Errorf("description: got %q", task.Description)
	}
	if len(task.Categories) != 0 {
		t.Errorf("categories: got %v, want none", task.Categories)
	}
}

func TestTaskName(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"plain", "- Build API [dev 1h]", "Build API"},
		{"link", "- [Fix login](https://issues.example.com/42) [dev 1h]", "Fix login"},
		{"not a link", "- [half [dev 1h]", "[half"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse("## Work\n\n"+tt.line+"\n", DefaultUnits())
			task := p.MandatoryTasks()[0]
			if got := task.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScheduledSectionsSkipsZeroWeight(t *testing.T) {
	p := Parse("## Icebox (0x)\n\n- Someday [dev 1h]\n\n## Now\n\n- Today [dev 1h]\n", DefaultUnits())

	sections := p.ScheduledSections()
	if len(sections) != 1 || sections[0].Title != "## Now" {
		t.Fatalf("ScheduledSections: got %d sections", len(sections))
	}
	if len(p.MandatoryTasks()) != 1 {
		t.Errorf("MandatoryTasks: got %d, want 1", len(p.MandatoryTasks()))
	}
}

func TestNeedsUpdate(t *testing.T) {
	withSummary := "## Work\n[2 tasks, 3h dev]\n\n- A [dev 1h]\n"
	p := Parse(withSummary, DefaultUnits())
	if !p.Sections[0].NeedsUpdate() {
		t.Error("section with summary line should need update")
	}

	blankThenSummary := "## Work\n\n[2 tasks, 3h dev]\n\n- A [dev 1h]\n"
	p = Parse(blankThenSummary, DefaultUnits())
	if !p.Sections[0].NeedsUpdate() {
		t.Error("blank line before summary should still need update")
	}

	noSummary := "## Work\n\n- A [dev 1h]\n"
	p = Parse(noSummary, DefaultUnits())
	if p.Sections[0].NeedsUpdate() {
		t.Error("section without summary should not need update")
	}
}

func TestCategoryDurations(t *testing.T) {
	p := Parse("## Work\n\n- A [dev 2h]\n- B [dev 1h qa]\n- C [ops]\n", DefaultUnits())
	section := p.Sections[0]

	durations, missing := section.CategoryDurations()
	if durations["dev"] != 180 {
		t.Errorf("dev: got %d, want 180", durations["dev"])
	}
	// qa and ops have no explicit or estimated duration yet.
	if missing != 2 {
		t.Errorf("missing: got %d, want 2", missing)
	}
}

func TestFindTaskByLine(t *testing.T) {
	p := parseSample(t)

	task := p.FindTaskByLine("- Build API [dev 6h]")
	if task == nil || task.Description != "Build API" {
		t.Fatalf("FindTaskByLine: got %+v", task)
	}
	if p.FindTaskByLine("- Missing") != nil {
		t.Error("FindTaskByLine should return nil for unknown line")
	}
}

func TestSetFakeDuration(t *testing.T) {
	p := Parse("## Work\n\n- A [dev 2h qa]\n", DefaultUnits())
	task := p.MandatoryTasks()[0]

	task.SetFakeDuration("qa", 90)
	if minutes, ok := task.CategoryDuration("qa"); !ok || minutes != 90 {
		t.Errorf("qa duration: got %d (ok=%v), want 90", minutes, ok)
	}

	// Explicit durations never get overwritten.
	task.SetFakeDuration("dev", 999)
	if minutes, _ := task.CategoryDuration("dev"); minutes != 120 {
		t.Errorf("dev duration: got %d, want 120", minutes)
	}

	if task.TotalDuration() != 210 {
		t.Errorf("TotalDuration: got %d, want 210", task.TotalDuration())
	}
}

func TestScheduledStartEnd(t *testing.T) {
	p := Parse("## Work\n\n- A [dev qa]\n", DefaultUnits())
	task := p.MandatoryTasks()[0]

	day := func(d int) time.Time {
		return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
	}
	task.SetSlots("dev", []DaySlot{{Date: day(7), Minutes: 60}, {Date: day(5), Minutes: 60}})
	task.SetSlots("qa", []DaySlot{{Date: day(9), Minutes: 30}})

	if start, ok := task.ScheduledStart("dev"); !ok || !start.Equal(day(5)) {
		t.Errorf("dev start: got %v (ok=%v)", start, ok)
	}
	if end, ok := task.ScheduledEnd(CategoryAll); !ok || !end.Equal(day(9)) {
		t.Errorf("All end: got %v (ok=%v)", end, ok)
	}
	if _, ok := task.ScheduledStart("ops"); ok {
		t.Error("unknown category should have no start")
	}
}
