package schedule

import (
	"math/rand"
	"testing"

	"github.com/planfile/planfile/internal/plan"
)

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestPrioritizeEmpty(t *testing.T) {
	if got := prioritize(nil, DefaultSeed); got != nil {
		t.Errorf("prioritize(nil): got %v, want nil", got)
	}
}

func TestPrioritizeSingleSectionKeepsOrder(t *testing.T) {
	p := parsePlan(t, "## Work\n\n- A [dev 1h]\n- B [dev 1h]\n- C [dev 1h]\n")
	tasks := p.MandatoryTasks()

	got := prioritize(tasks, DefaultSeed)
	if len(got) != 3 {
		t.Fatalf("prioritize: got %d tasks, want 3", len(got))
	}
	for i, task := range tasks {
		if got[i] != task {
			t.Errorf("task %d: got %q, want %q", i, got[i].Description, task.Description)
		}
	}
}

func TestPrioritizeIsDeterministic(t *testing.T) {
	doc := "## Alpha (3x)\n\n- A1 [dev 1h]\n- A2 [dev 1h]\n\n## Beta\n\n- B1 [dev 1h]\n- B2 [dev 1h]\n"
	first := prioritize(parsePlan(t, doc).MandatoryTasks(), DefaultSeed)
	second := prioritize(parsePlan(t, doc).MandatoryTasks(), DefaultSeed)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Description != second[i].Description {
			t.Errorf("position %d: %q vs %q", i, first[i].Description, second[i].Description)
		}
	}
}

func TestPrioritizeEmitsEveryTaskOnce(t *testing.T) {
	doc := "## Alpha (2x)\n\n- A1 [dev 1h]\n- A2 [dev 1h]\n- A3 [dev 1h]\n\n## Beta\n\n- B1 [dev 1h]\n\n## Gamma (0.5x)\n\n- G1 [dev 1h]\n- G2 [dev 1h]\n"
	tasks := parsePlan(t, doc).MandatoryTasks()

	got := prioritize(tasks, DefaultSeed)
	if len(got) != len(tasks) {
		t.Fatalf("prioritize: got %d tasks, want %d", len(got), len(tasks))
	}

	seen := make(map[*plan.Task]bool)
	for _, task := range got {
		if seen[task] {
			t.Errorf("task %q emitted twice", task.Description)
		}
		seen[task] = true
	}
	for _, task := range tasks {
		if !seen[task] {
			t.Errorf("task %q missing from output", task.Description)
		}
	}
}

func TestPrioritizeKeepsSectionOrderWithinSection(t *testing.T) {
	doc := "## Alpha\n\n- A1 [dev 1h]\n- A2 [dev 1h]\n\n## Beta (4x)\n\n- B1 [dev 1h]\n- B2 [dev 1h]\n"
	got := prioritize(parsePlan(t, doc).MandatoryTasks(), DefaultSeed)

	// Whatever the interleaving, tasks of one section keep document order.
	positions := make(map[string]int)
	for i, task := range got {
		positions[task.Description] = i
	}
	if positions["A1"] > positions["A2"] {
		t.Error("A1 should come before A2")
	}
	if positions["B1"] > positions["B2"] {
		t.Error("B1 should come before B2")
	}
}

func TestPrioritizeZeroWeightSections(t *testing.T) {
	// Weight zero everywhere still terminates with every task emitted.
	p := parsePlan(t, "## Alpha\n\n- A1 [dev 1h]\n\n## Beta\n\n- B1 [dev 1h]\n")
	for _, section := range p.Sections {
		section.Weight = 0
	}

	got := prioritize(p.MandatoryTasks(), DefaultSeed)
	if len(got) != 2 {
		t.Fatalf("prioritize: got %d tasks, want 2", len(got))
	}
}

func TestSampleWithoutReplacement(t *testing.T) {
	alpha := &plan.Section{Title: "## Alpha"}
	beta := &plan.Section{Title: "## Beta"}
	pool := []weightedSection{
		{weight: 1, section: alpha},
		{weight: 0, section: beta},
	}

	// Beta's weight is zero, so the single draw must always hit Alpha.
	for seed := int64(0); seed < 20; seed++ {
		rng := newTestRand(seed)
		drawn := sampleWithoutReplacement(pool, 1, rng)
		if len(drawn) != 1 || drawn[0].section != alpha {
			t.Fatalf("seed %d: drew %v", seed, drawn)
		}
	}

	// Drawing more than the pool holds returns the whole pool.
	rng := newTestRand(1)
	drawn := sampleWithoutReplacement(pool, 5, rng)
	if len(drawn) != 2 {
		t.Errorf("overdraw: got %d entries, want 2", len(drawn))
	}
}
