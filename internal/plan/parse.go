package plan

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	headingMarker   = "#"
	sectionMarker   = "## "
	taskMarker      = "- "
	completedMarker = "+ "
)

// Headings that never contribute tasks to scheduling. "## Plan:" sections
// hold computed output and configuration; the Trello warnings section is
// written by the card-sync integration.
var invalidSectionPrefixes = []string{
	"## Plan:",
	"## Trello warnings",
}

var (
	metaRe     = regexp.MustCompile(`\[([^\[\]]*)\]\s*$`)
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	weightRe   = regexp.MustCompile(`\((\d+(\.\d+)?)x\)`)
	trailingRe = regexp.MustCompile(`^(.*?)\s*\([^()]*\)\s*$`)
	linkNameRe = regexp.MustCompile(`^\[([^\]]+)\]\(`)
)

// Parse splits a plan document into sections and tasks.
func Parse(content string, units Units) *Plan {
	lines := strings.Split(content, "\n")
	indices := sectionIndices(lines)

	p := &Plan{Units: units}
	for i := 0; i+1 < len(indices); i++ {
		start, end := indices[i].row, indices[i+1].row
		p.Sections = append(p.Sections, parseSection(lines[start:end], indices[i].valid, start, units))
	}
	return p
}

type sectionIndex struct {
	row   int
	valid bool
}

func sectionIndices(lines []string) []sectionIndex {
	var indices []sectionIndex
	for row, line := range lines {
		if strings.HasPrefix(line, headingMarker) {
			indices = append(indices, sectionIndex{row: row, valid: isValidSection(line)})
		}
	}
	indices = append(indices, sectionIndex{row: len(lines), valid: false})
	return indices
}

func isValidSection(line string) bool {
	if !strings.HasPrefix(line, sectionMarker) {
		return false
	}
	for _, prefix := range invalidSectionPrefixes {
		if strings.HasPrefix(line, prefix) {
			return false
		}
	}
	return true
}

func parseSection(lines []string, valid bool, rowAt int, units Units) *Section {
	section := &Section{
		Lines:  lines,
		Valid:  valid,
		Weight: 1,
		RowAt:  rowAt,
	}

	heading := lines[0]
	if match := weightRe.FindStringSubmatch(heading); match != nil {
		if weight, err := strconv.ParseFloat(match[1], 64); err == nil {
			section.Weight = weight
		}
	}
	section.Title = sectionTitle(heading)

	if !valid {
		return section
	}

	pos := 0
	for _, line := range lines {
		completed := strings.HasPrefix(line, completedMarker)
		if !completed && !strings.HasPrefix(line, taskMarker) {
			continue
		}
		task := parseTask(line, section, pos, units)
		task.Completed = completed
		pos++

		section.AllTasks = append(section.AllTasks, task)
		if task.IsMandatory() && !task.Completed {
			section.Tasks = append(section.Tasks, task)
		}
	}
	return section
}

func sectionTitle(heading string) string {
	if match := trailingRe.FindStringSubmatch(heading); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(heading)
}

func parseTask(raw string, section *Section, pos int, units Units) *Task {
	task := &Task{
		Raw:        raw,
		Pos:        pos,
		Section:    section,
		Categories: make(map[string]CategoryEffort),
		Slots:      make(map[string][]DaySlot),
	}

	body := raw[len(taskMarker):]
	if match := metaRe.FindStringSubmatchIndex(raw); match != nil {
		body = raw[len(taskMarker):match[0]]
		parseTaskMeta(raw[match[2]:match[3]], task, units)
	}
	task.Description = strings.TrimSpace(body)
	return task
}

// parseTaskMeta interprets the bracketed metadata block: an optional "M"
// flag, category/duration tokens, and an optional trailing deadline date.
// A bare duration token belongs to the unnamed category "".
func parseTaskMeta(meta string, task *Task, units Units) {
	pending := ""
	hasPending := false

	flush := func() {
		if hasPending {
			task.Categories[pending] = CategoryEffort{}
			hasPending = false
		}
	}

	for i, token := range strings.Fields(meta) {
		if i == 0 && token == "M" {
			task.Optional = true
			continue
		}
		if dateRe.MatchString(token) {
			if deadline, err := time.ParseInLocation("2006-01-02", token, time.UTC); err == nil {
				task.Deadline = &deadline
			}
			flush()
			continue
		}
		if minutes, err := ToMinutes(token, units); err == nil {
			if hasPending {
				task.Categories[pending] = CategoryEffort{Minutes: minutes, Explicit: true}
				hasPending = false
			} else {
				task.Categories[""] = CategoryEffort{Minutes: minutes, Explicit: true}
			}
			continue
		}
		flush()
		pending = token
		hasPending = true
	}
	flush()
}

// Name returns the task description with a leading markdown link unwrapped.
func (t *Task) Name() string {
	name := strings.TrimSpace(t.Description)
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, ")") {
		if match := linkNameRe.FindStringSubmatch(name); match != nil {
			return match[1]
		}
	}
	return name
}
