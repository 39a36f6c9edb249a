// Package plan models and parses the plan document: sections, tasks, and
// the day-level work allocations the scheduler assigns to them.
package plan

import (
	"sort"
	"time"
)

// Pseudo-categories accepted by ScheduledStart and ScheduledEnd. They span
// every category the task belongs to.
const (
	CategoryAll       = "All"
	CategoryDeadlined = "Deadlined"
)

// Uncategorized is the display label for the unnamed category "".
const Uncategorized = "Uncategorized"

// DaySlot is an allocation of effort to a single calendar day for one
// task-category pair. Date is midnight UTC.
type DaySlot struct {
	Date    time.Time
	Minutes int
}

// CategoryEffort holds the explicit duration a task declares for a category.
// Explicit is false when the document only names the category.
type CategoryEffort struct {
	Minutes  int
	Explicit bool
}

// Task is a single task line of the plan document.
type Task struct {
	Raw         string
	Description string
	Pos         int
	Section     *Section
	Deadline    *time.Time
	Optional    bool
	Completed   bool

	// Categories maps category label to its declared effort. The unnamed
	// category is the empty string.
	Categories map[string]CategoryEffort

	// Slots holds the scheduler's output, keyed by category.
	Slots map[string][]DaySlot

	fake map[string]int
}

// IsMandatory reports whether the task takes part in scheduling.
func (t *Task) IsMandatory() bool {
	return !t.Optional
}

// HasDeadline reports whether the task carries a completion date.
func (t *Task) HasDeadline() bool {
	return t.Deadline != nil
}

// HasCategory reports whether the task belongs to category.
func (t *Task) HasCategory(category string) bool {
	_, ok := t.Categories[category]
	return ok
}

// CategoryNames returns the task's categories in sorted order.
func (t *Task) CategoryNames() []string {
	names := make([]string, 0, len(t.Categories))
	for name := range t.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExplicitDuration returns the document-declared duration for category in
// minutes. ok is false when the document gives none.
func (t *Task) ExplicitDuration(category string) (int, bool) {
	effort, member := t.Categories[category]
	if !member || !effort.Explicit {
		return 0, false
	}
	return effort.Minutes, true
}

// CategoryDuration returns the resolved duration for category in minutes:
// the explicit value when present, otherwise the resolver-filled estimate.
func (t *Task) CategoryDuration(category string) (int, bool) {
	if minutes, ok := t.ExplicitDuration(category); ok {
		return minutes, true
	}
	if !t.HasCategory(category) {
		return 0, false
	}
	minutes, ok := t.fake[category]
	return minutes, ok
}

// SetFakeDuration records a resolver-filled duration estimate for category.
// It never overwrites an explicit duration.
func (t *Task) SetFakeDuration(category string, minutes int) {
	if _, explicit := t.ExplicitDuration(category); explicit {
		return
	}
	if t.fake == nil {
		t.fake = make(map[string]int)
	}
	t.fake[category] = minutes
}

// TotalDuration sums the resolved durations across all categories.
func (t *Task) TotalDuration() int {
	total := 0
	for _, category := range t.CategoryNames() {
		if minutes, ok := t.CategoryDuration(category); ok {
			total += minutes
		}
	}
	return total
}

// SetSlots replaces the task's allocations for category.
func (t *Task) SetSlots(category string, slots []DaySlot) {
	if t.Slots == nil {
		t.Slots = make(map[string][]DaySlot)
	}
	t.Slots[category] = slots
}

// SlotsFor returns the task's allocations for category, nil if unplaced.
func (t *Task) SlotsFor(category string) []DaySlot {
	return t.Slots[category]
}

func (t *Task) slotsSpanning(category string) []DaySlot {
	if category == CategoryAll || category == CategoryDeadlined {
		var all []DaySlot
		for _, name := range t.CategoryNames() {
			all = append(all, t.Slots[name]...)
		}
		return all
	}
	return t.Slots[category]
}

// ScheduledStart returns the earliest slot date for category.
// ok is false when no slots are placed.
func (t *Task) ScheduledStart(category string) (time.Time, bool) {
	slots := t.slotsSpanning(category)
	if len(slots) == 0 {
		return time.Time{}, false
	}
	earliest := slots[0].Date
	for _, slot := range slots[1:] {
		if slot.Date.Before(earliest) {
			earliest = slot.Date
		}
	}
	return earliest, true
}

// ScheduledEnd returns the latest slot date for category.
// ok is false when no slots are placed.
func (t *Task) ScheduledEnd(category string) (time.Time, bool) {
	slots := t.slotsSpanning(category)
	if len(slots) == 0 {
		return time.Time{}, false
	}
	latest := slots[0].Date
	for _, slot := range slots[1:] {
		if slot.Date.After(latest) {
			latest = slot.Date
		}
	}
	return latest, true
}
