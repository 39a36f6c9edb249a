package schedule

import (
	"fmt"
	"time"

	"github.com/planfile/planfile/internal/plan"
)

// placeDeadlined assigns day slots to one deadline-bound task, walking
// backward from its deadline. availableBefore/availableEffort carry the
// cursor state left by the previously placed (later-deadlined) task; the
// updated cursor is returned for the next one. The placement never exceeds
// maxEffort minutes on a single day and never lands on a weekend.
func (s *scheduler) placeDeadlined(task *plan.Task, availableBefore time.Time, availableEffort, maxEffort int, category string) (time.Time, int) {
	if availableEffort <= 0 {
		availableEffort += maxEffort
		availableBefore = availableBefore.AddDate(0, 0, -1)
	}

	var end time.Time
	if task.Deadline != nil && task.Deadline.Before(availableBefore) {
		// The deadline day is still free: start a fresh day there.
		end = *task.Deadline
		availableEffort = maxEffort
	} else {
		// Later-deadlined tasks already claimed the deadline day, so
		// this task has to finish earlier.
		end = availableBefore
	}

	end = clampEndToWorkday(end)

	if end.Before(s.today) {
		s.warnings.Add(WarnPastDeadline, fmt.Sprintf("%q (%s) should have been completed by %s",
			task.Description, category, end.Format(dateFormat)))
	}

	remaining, _ := task.CategoryDuration(category)

	var slots []plan.DaySlot
	cur := end
	for remaining > 0 {
		block := min(availableEffort, remaining)
		slots = append(slots, plan.DaySlot{Date: cur, Minutes: block})
		s.addLoad(category, cur, block)
		availableEffort -= block
		remaining -= block
		if availableEffort == 0 {
			cur = prevWorkday(cur)
			availableEffort = maxEffort
		}
	}

	task.SetSlots(category, slots)
	return cur, availableEffort
}

// checkDeadlineOrdering warns when deadline-bound tasks in one section are
// ordered inconsistently with their deadlines. The placement is not
// corrected; the document author has to reorder.
func (s *scheduler) checkDeadlineOrdering(tasks []*plan.Task) {
	var sections []*plan.Section
	seen := make(map[*plan.Section]bool)
	for _, task := range tasks {
		if !seen[task.Section] {
			seen[task.Section] = true
			sections = append(sections, task.Section)
		}
	}

	for _, section := range sections {
		var sectionTasks []*plan.Task
		for _, task := range tasks {
			if task.Section == section {
				sectionTasks = append(sectionTasks, task)
			}
		}
		for i := 0; i+1 < len(sectionTasks); i++ {
			if sectionTasks[i].Deadline.After(*sectionTasks[i+1].Deadline) {
				s.warnings.Add(WarnTaskOrdering, fmt.Sprintf("%s: Task *%s* with deadline %s should be placed after task *%s* with deadline %s",
					section.PrettyTitle(),
					sectionTasks[i].Description,
					sectionTasks[i].Deadline.Format(dateFormat),
					sectionTasks[i+1].Description,
					sectionTasks[i+1].Deadline.Format(dateFormat)))
			}
		}
	}
}
