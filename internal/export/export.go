// Package export renders a computed schedule as JSON, validated against an
// embedded schema before it leaves the process.
package export

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/planfile/planfile/internal/plan"
	"github.com/planfile/planfile/internal/schedule"
)

//go:embed schedule.schema.json
var scheduleSchema string

const dateFormat = "2006-01-02"

// Document is the top-level export payload.
type Document struct {
	GeneratedAt string    `json:"generated_at"`
	Seed        int64     `json:"seed"`
	Sections    []Section `json:"sections"`
	Warnings    []Warning `json:"warnings"`
}

// Section carries one scheduled section and its pending mandatory tasks.
type Section struct {
	Title  string  `json:"title"`
	Weight float64 `json:"weight"`
	Tasks  []Task  `json:"tasks"`
}

// Task is one exported task with its per-category placements.
type Task struct {
	Description string     `json:"description"`
	Deadline    string     `json:"deadline,omitempty"`
	Optional    bool       `json:"optional,omitempty"`
	Categories  []Category `json:"categories"`
}

// Category holds the resolved duration and day slots for one task category.
type Category struct {
	Name      string `json:"name"`
	Minutes   int    `json:"minutes"`
	Estimated bool   `json:"estimated,omitempty"`
	Slots     []Slot `json:"slots"`
}

// Slot is a single day allocation.
type Slot struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// Warning mirrors one scheduler warning group.
type Warning struct {
	Label    string   `json:"label"`
	Messages []string `json:"messages"`
}

// Marshal builds the export document for a scheduled plan, validates it
// against the embedded schema, and returns it as indented JSON.
func Marshal(p *plan.Plan, warnings *schedule.Warnings, today time.Time, seed int64) ([]byte, error) {
	doc := build(p, warnings, today, seed)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schedule: %w", err)
	}

	if err := validate(data); err != nil {
		return nil, fmt.Errorf("validating schedule export: %w", err)
	}
	return data, nil
}

func build(p *plan.Plan, warnings *schedule.Warnings, today time.Time, seed int64) Document {
	doc := Document{
		GeneratedAt: today.Format(dateFormat),
		Seed:        seed,
		Sections:    []Section{},
		Warnings:    []Warning{},
	}

	for _, section := range p.ScheduledSections() {
		exported := Section{
			Title:  section.PrettyTitle(),
			Weight: section.Weight,
			Tasks:  []Task{},
		}
		for _, task := range section.Tasks {
			exported.Tasks = append(exported.Tasks, buildTask(task))
		}
		doc.Sections = append(doc.Sections, exported)
	}

	for _, group := range warnings.Groups() {
		doc.Warnings = append(doc.Warnings, Warning{
			Label:    group.Label,
			Messages: group.Messages,
		})
	}
	return doc
}

func buildTask(task *plan.Task) Task {
	exported := Task{
		Description: task.Description,
		Optional:    task.Optional,
		Categories:  []Category{},
	}
	if task.Deadline != nil {
		exported.Deadline = task.Deadline.Format(dateFormat)
	}

	for _, name := range task.CategoryNames() {
		minutes, _ := task.CategoryDuration(name)
		_, explicit := task.ExplicitDuration(name)

		category := Category{
			Name:      name,
			Minutes:   minutes,
			Estimated: !explicit,
			Slots:     []Slot{},
		}
		for _, slot := range task.SlotsFor(name) {
			category.Slots = append(category.Slots, Slot{
				Date:    slot.Date.Format(dateFormat),
				Minutes: slot.Minutes,
			})
		}
		exported.Categories = append(exported.Categories, category)
	}
	return exported
}

func validate(data []byte) error {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("schedule.schema.json", strings.NewReader(scheduleSchema)); err != nil {
		return fmt.Errorf("loading embedded schema: %w", err)
	}
	schema, err := compiler.Compile("schedule.schema.json")
	if err != nil {
		return fmt.Errorf("compiling embedded schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("reparsing export: %w", err)
	}
	return schema.Validate(doc)
}
