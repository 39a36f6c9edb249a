package plan

// Section is a titled group of tasks corresponding to a document heading.
type Section struct {
	// Lines holds the section's raw document lines, heading first.
	Lines []string
	// Title is the heading line without its weight suffix.
	Title string
	// Weight is the priority multiplier from a "(Nx)" heading suffix.
	Weight float64
	// Valid marks sections whose tasks take part in scheduling. Meta
	// sections ("## Plan: ...") and non-"## " headings are invalid.
	Valid bool
	// RowAt is the zero-based line index of the heading in the document.
	RowAt int

	// AllTasks holds every task line in document order; Tasks only the
	// mandatory pending ones.
	AllTasks []*Task
	Tasks    []*Task
}

// PrettyTitle returns the heading text without the "## " marker.
func (s *Section) PrettyTitle() string {
	if len(s.Title) > 3 {
		return s.Title[3:]
	}
	return s.Title
}

// NeedsUpdate reports whether the line below the heading is a previously
// written summary block.
func (s *Section) NeedsUpdate() bool {
	line := s.summaryLine()
	return line != "" && line[0] == '['
}

func (s *Section) summaryLine() string {
	// Some markdown tooling inserts a blank line after the heading.
	if len(s.Lines) > 2 && s.Lines[1] == "" {
		return s.Lines[2]
	}
	if len(s.Lines) > 1 {
		return s.Lines[1]
	}
	return ""
}

// CompletedTasks returns the raw lines of completed ("+ ") tasks.
func (s *Section) CompletedTasks() []string {
	var lines []string
	for _, task := range s.AllTasks {
		if task.Completed {
			lines = append(lines, task.Raw)
		}
	}
	return lines
}

// CategoryDurations sums resolved durations of mandatory tasks per category.
// The second result counts task-category pairs with no duration at all.
func (s *Section) CategoryDurations() (map[string]int, int) {
	durations := make(map[string]int)
	missing := 0
	for _, task := range s.Tasks {
		for _, category := range task.CategoryNames() {
			minutes, ok := task.CategoryDuration(category)
			if !ok {
				missing++
				continue
			}
			durations[category] += minutes
		}
	}
	return durations, missing
}

// Plan is the parsed document: sections in document order.
type Plan struct {
	Sections []*Section
	Units    Units
}

// ValidSections returns every valid section, zero-weight ones included.
// Statistics and summaries cover these; only placement narrows further.
func (p *Plan) ValidSections() []*Section {
	var sections []*Section
	for _, section := range p.Sections {
		if section.Valid {
			sections = append(sections, section)
		}
	}
	return sections
}

// ScheduledSections returns valid sections with positive weight, the ones
// whose tasks the scheduler places.
func (p *Plan) ScheduledSections() []*Section {
	var sections []*Section
	for _, section := range p.Sections {
		if section.Valid && section.Weight > 0 {
			sections = append(sections, section)
		}
	}
	return sections
}

// MandatoryTasks returns the mandatory tasks of all scheduled sections in
// document order.
func (p *Plan) MandatoryTasks() []*Task {
	var tasks []*Task
	for _, section := range p.ScheduledSections() {
		tasks = append(tasks, section.Tasks...)
	}
	return tasks
}

// ValidTasks returns the mandatory tasks of all valid sections in document
// order, zero-weight ones included.
func (p *Plan) ValidTasks() []*Task {
	var tasks []*Task
	for _, section := range p.ValidSections() {
		tasks = append(tasks, section.Tasks...)
	}
	return tasks
}

// SectionByTitle returns the first section whose title matches, nil if none.
func (p *Plan) SectionByTitle(title string) *Section {
	for _, section := range p.Sections {
		if section.Title == title {
			return section
		}
	}
	return nil
}

// FindTaskByLine returns the task whose raw line matches, nil if none.
func (p *Plan) FindTaskByLine(line string) *Task {
	for _, section := range p.Sections {
		for _, task := range section.AllTasks {
			if task.Raw == line {
				return task
			}
		}
	}
	return nil
}
