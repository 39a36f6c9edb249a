package schedule

import (
	"fmt"
	"time"

	"github.com/planfile/planfile/internal/plan"
)

// placeForward assigns day slots to an undated task, walking forward from
// firstAvailable and consuming whatever effort is still free each day after
// the allocations every other task already holds for the category. When
// completedBefore is set (the task gates a deadline-bound one), finishing
// after it records a prerequirement warning.
func (s *scheduler) placeForward(task *plan.Task, firstAvailable time.Time, maxEffort int, category string, completedBefore *time.Time, gates *plan.Task) time.Time {
	remaining, _ := task.CategoryDuration(category)

	cur := clampStartToWorkday(firstAvailable)

	var slots []plan.DaySlot
	for remaining > 0 {
		free := maxEffort - s.load(category, cur)
		if free <= 0 {
			cur = nextWorkday(cur)
			continue
		}

		block := min(free, remaining)
		slots = append(slots, plan.DaySlot{Date: cur, Minutes: block})
		s.addLoad(category, cur, block)
		remaining -= block

		if remaining > 0 {
			cur = nextWorkday(cur)
		}
	}

	if completedBefore != nil && len(slots) > 0 && completedBefore.Before(cur) {
		s.warnings.Add(WarnPrereqMismatch, fmt.Sprintf("%s: %q should have been completed before %q. Instead it will be done by %s",
			category, task.Description, gates.Description, cur.Format(dateFormat)))
	}

	task.SetSlots(category, slots)
	return firstAvailable
}
