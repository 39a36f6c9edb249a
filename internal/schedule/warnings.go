package schedule

// Warning group labels. The renderer prints them verbatim.
const (
	WarnPastDeadline   = "Past deadline"
	WarnPrereqMismatch = "Prerequirement mismatch"
	WarnTaskOrdering   = "Incorrect ordering of tasks with deadline"
)

// WarningGroup collects the messages recorded under one label.
type WarningGroup struct {
	Label    string
	Messages []string
}

// Warnings accumulates scheduling warnings grouped by label, preserving the
// order in which labels first appear.
type Warnings struct {
	groups []*WarningGroup
}

// Add records a message under label.
func (w *Warnings) Add(label, message string) {
	for _, group := range w.groups {
		if group.Label == label {
			group.Messages = append(group.Messages, message)
			return
		}
	}
	w.groups = append(w.groups, &WarningGroup{Label: label, Messages: []string{message}})
}

// Groups returns the recorded groups in first-appearance order.
func (w *Warnings) Groups() []WarningGroup {
	groups := make([]WarningGroup, 0, len(w.groups))
	for _, group := range w.groups {
		groups = append(groups, *group)
	}
	return groups
}

// Len returns the total number of recorded messages.
func (w *Warnings) Len() int {
	n := 0
	for _, group := range w.groups {
		n += len(group.Messages)
	}
	return n
}

// Empty reports whether no warnings were recorded.
func (w *Warnings) Empty() bool {
	return w.Len() == 0
}
