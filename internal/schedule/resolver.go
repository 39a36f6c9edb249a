package schedule

import "github.com/planfile/planfile/internal/plan"

// ResolveDurations fills every missing task-category duration with the
// category's mean, so that placement and summaries always have a concrete
// value to work with. Zero-weight sections get estimates too; explicit
// durations are never touched.
func ResolveDurations(p *plan.Plan, stats *Statistics) {
	for _, section := range p.ValidSections() {
		for _, task := range section.Tasks {
			for _, category := range task.CategoryNames() {
				if _, ok := task.ExplicitDuration(category); ok {
					continue
				}
				task.SetFakeDuration(category, stats.MeanDuration(category))
			}
		}
	}
}
