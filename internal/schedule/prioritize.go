package schedule

import (
	"math/rand"
	"sort"

	"github.com/planfile/planfile/internal/plan"
)

type weightedSection struct {
	weight  float64
	section *plan.Section
}

// prioritize orders undated tasks by weighted section sampling: at each step
// one section is drawn with probability proportional to its weight, and that
// section's next task (in document order) is emitted. A section's weight
// drops to zero once its pool is exhausted, so every task is placed.
//
// The generator is reseeded with the same seed before every draw. That makes
// each draw identical and the whole order deterministic run-to-run.
func prioritize(tasks []*plan.Task, seed int64) []*plan.Task {
	if len(tasks) == 0 {
		return nil
	}

	member := make(map[*plan.Task]bool, len(tasks))
	for _, task := range tasks {
		member[task] = true
	}

	var sections []*plan.Section
	seen := make(map[*plan.Section]bool)
	for _, task := range tasks {
		if !seen[task.Section] {
			seen[task.Section] = true
			sections = append(sections, task.Section)
		}
	}
	// Equal-weight ties resolve by title.
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Title < sections[j].Title
	})

	sectionTasks := make(map[*plan.Section][]*plan.Task)
	countdown := make(map[*plan.Section]int)
	for _, section := range sections {
		for _, task := range section.Tasks {
			if member[task] {
				sectionTasks[section] = append(sectionTasks[section], task)
			}
		}
		countdown[section] = len(sectionTasks[section])
	}

	adjusted := func() []weightedSection {
		weighted := make([]weightedSection, 0, len(sections))
		for _, section := range sections {
			weight := 0.0
			if countdown[section] > 0 {
				weight = section.Weight
			}
			weighted = append(weighted, weightedSection{weight: weight, section: section})
		}
		return weighted
	}

	prioritized := make([]*plan.Task, 0, len(tasks))
	for len(prioritized) < len(tasks) {
		rng := rand.New(rand.NewSource(seed))
		section := sampleWithoutReplacement(adjusted(), 1, rng)[0].section
		if countdown[section] == 0 {
			for _, candidate := range sections {
				if countdown[candidate] > 0 {
					section = candidate
					break
				}
			}
		}
		pool := sectionTasks[section]
		prioritized = append(prioritized, pool[len(pool)-countdown[section]])
		countdown[section]--
	}
	return prioritized
}

// sampleWithoutReplacement draws n entries, each with probability
// proportional to its weight among the entries still in the pool.
func sampleWithoutReplacement(pool []weightedSection, n int, rng *rand.Rand) []weightedSection {
	drawn := make([]weightedSection, 0, n)
	remaining := make([]weightedSection, len(pool))
	copy(remaining, pool)

	for len(drawn) < n && len(remaining) > 0 {
		total := 0.0
		for _, entry := range remaining {
			total += entry.weight
		}

		index := 0
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, entry := range remaining {
				acc += entry.weight
				if target < acc {
					index = i
					break
				}
			}
		} else {
			// All weights zero: fall back to the first entry so the
			// draw still terminates deterministically.
			index = 0
		}

		drawn = append(drawn, remaining[index])
		remaining = append(remaining[:index], remaining[index+1:]...)
	}
	return drawn
}
