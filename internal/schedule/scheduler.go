package schedule

import (
	"sort"
	"time"

	"github.com/planfile/planfile/internal/plan"
)

// DefaultSeed is the prioritizer seed used when none is configured.
const DefaultSeed = 4567

// Options parameterize one scheduling pass. Today anchors forward placement
// and past-deadline detection; identical input, Today, and Seed always
// produce identical slots and warnings.
type Options struct {
	Today time.Time
	Seed  int64
}

// taskLinks are the scheduler's non-owning references between an undated
// task and the nearest deadline-bound tasks around it in its section.
type taskLinks struct {
	dependsOn *plan.Task
	gates     *plan.Task
}

type scheduler struct {
	stats    *Statistics
	warnings *Warnings
	today    time.Time
	seed     int64

	// dayLoad indexes minutes already committed per category and day, so
	// forward placement sees every earlier allocation without rescanning
	// all tasks' slots.
	dayLoad map[string]map[time.Time]int
}

// Schedule runs a full placement pass over the plan and returns the
// warnings it collected. Task slots are populated in place.
func Schedule(p *plan.Plan, stats *Statistics, opts Options) *Warnings {
	s := &scheduler{
		stats:    stats,
		warnings: &Warnings{},
		today:    Midnight(opts.Today),
		seed:     opts.Seed,
		dayLoad:  make(map[string]map[time.Time]int),
	}

	tasks := p.MandatoryTasks()
	for _, category := range stats.Categories {
		var categoryTasks []*plan.Task
		for _, task := range tasks {
			if task.HasCategory(category) {
				categoryTasks = append(categoryTasks, task)
			}
		}
		s.scheduleCategory(categoryTasks, category)
	}
	return s.warnings
}

// scheduleCategory places one category's tasks in three steps: deadlined
// tasks latest-first, then their prerequisites as early as feasible, then
// everything else in prioritizer order.
func (s *scheduler) scheduleCategory(tasks []*plan.Task, category string) {
	maxLoad := s.stats.Workload(category)

	var deadlined, undated []*plan.Task
	for _, task := range tasks {
		if task.HasDeadline() {
			deadlined = append(deadlined, task)
		} else {
			undated = append(undated, task)
		}
	}

	s.checkDeadlineOrdering(deadlined)

	sort.SliceStable(deadlined, func(i, j int) bool {
		return deadlined[i].Deadline.After(*deadlined[j].Deadline)
	})

	availableBefore := time.Date(2999, time.December, 12, 0, 0, 0, 0, time.UTC)
	availableEffort := maxLoad
	for _, task := range deadlined {
		availableBefore, availableEffort = s.placeDeadlined(task, availableBefore, availableEffort, maxLoad, category)
	}

	undated = prioritize(undated, s.seed)

	// Undated tasks sitting between deadline-bound ones in their section
	// gate the later deadline and are bounded by the earlier one.
	links := make(map[*plan.Task]taskLinks)
	var preconditioned []*plan.Task
	for _, task := range undated {
		gates := nextDeadlined(task, category)
		if gates == nil {
			continue
		}
		links[task] = taskLinks{
			dependsOn: prevDeadlined(task, category),
			gates:     gates,
		}
		preconditioned = append(preconditioned, task)
	}

	preconditioned = prioritize(preconditioned, s.seed)
	firstAvailable := s.today
	for _, task := range preconditioned {
		link := links[task]

		after := firstAvailable
		if link.dependsOn != nil {
			if end, ok := link.dependsOn.ScheduledEnd(category); ok {
				after = end
			}
		}

		var before *time.Time
		if start, ok := link.gates.ScheduledStart(category); ok {
			before = &start
		}

		returned := s.placeForward(task, after, maxLoad, category, before, link.gates)
		if link.dependsOn == nil {
			firstAvailable = returned
		}
	}

	for _, task := range undated {
		if _, isPreconditioned := links[task]; isPreconditioned {
			continue
		}
		firstAvailable = s.placeForward(task, firstAvailable, maxLoad, category, nil, nil)
	}
}

// prevDeadlined returns the nearest earlier-positioned deadline-bound task
// of the same section and category, nil if none.
func prevDeadlined(task *plan.Task, category string) *plan.Task {
	var prev *plan.Task
	for _, candidate := range task.Section.Tasks {
		if candidate.HasDeadline() && candidate.Pos < task.Pos && candidate.HasCategory(category) {
			prev = candidate
		}
	}
	return prev
}

// nextDeadlined returns the nearest later-positioned deadline-bound task of
// the same section and category, nil if none.
func nextDeadlined(task *plan.Task, category string) *plan.Task {
	for _, candidate := range task.Section.Tasks {
		if candidate.HasDeadline() && candidate.Pos > task.Pos && candidate.HasCategory(category) {
			return candidate
		}
	}
	return nil
}

func (s *scheduler) addLoad(category string, day time.Time, minutes int) {
	if s.dayLoad[category] == nil {
		s.dayLoad[category] = make(map[time.Time]int)
	}
	s.dayLoad[category][day] += minutes
}

func (s *scheduler) load(category string, day time.Time) int {
	return s.dayLoad[category][day]
}
