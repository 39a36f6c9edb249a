// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/planfile/planfile/internal/document"
	"github.com/planfile/planfile/internal/report"
)

// Timeline views.
const (
	viewOverview = iota
	viewWeekly
	viewSections
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// RunTimeline starts the interactive timeline viewer. The plan file is
// recompiled in memory on every refresh; nothing is written back to disk.
func RunTimeline(ctx context.Context, compiler *document.Compiler, planPath string, weeks int) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("timeline requires a TTY")
	}

	model := newTimelineModel(compiler, planPath, weeks)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*timelineModel); ok && m.loadErr != nil {
		return m.loadErr
	}
	return nil
}

type timelineModel struct {
	compiler *document.Compiler
	planPath string
	weeks    int

	view     int
	showHelp bool
	// categories mirrors the compiled plan's category list; filter indexes
	// into it, 0 meaning all categories.
	categories   []string
	filter       int
	loadErr      error
	result       *document.Result
	tickInterval time.Duration
}

type tickMsg time.Time

func newTimelineModel(compiler *document.Compiler, planPath string, weeks int) *timelineModel {
	return &timelineModel{
		compiler:     compiler,
		planPath:     planPath,
		weeks:        weeks,
		tickInterval: 2 * time.Second,
	}
}

func (m *timelineModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "c":
			m.cycleFilter()
			return m, nil
		case "1":
			m.view = viewOverview
			return m, nil
		case "2":
			m.view = viewWeekly
			return m, nil
		case "3":
			m.view = viewSections
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *timelineModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Planfile Timeline") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(warnStyle.Render("Error compiling plan:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if m.result == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	switch m.view {
	case viewWeekly:
		m.writeWeekly(&b)
	case viewSections:
		m.writeSections(&b)
	default:
		m.writeOverview(&b)
	}

	writeFooter(&b, m.tickInterval)
	return b.String()
}

func (m *timelineModel) refresh() {
	content, err := os.ReadFile(m.planPath)
	if err != nil {
		m.loadErr = err
		m.result = nil
		return
	}
	result, err := m.compiler.Compile(string(content))
	if err != nil {
		m.loadErr = err
		m.result = nil
		return
	}
	m.loadErr = nil
	m.result = result
	m.categories = result.Stats.Categories
	if m.filter > len(m.categories) {
		m.filter = 0
	}
}

// cycleFilter advances the category filter: all categories, then each
// category in turn, then back to all.
func (m *timelineModel) cycleFilter() {
	if len(m.categories) == 0 {
		m.filter = 0
		return
	}
	m.filter = (m.filter + 1) % (len(m.categories) + 1)
}

// filteredCategories returns the categories the current filter selects.
func (m *timelineModel) filteredCategories() []string {
	if m.filter == 0 || m.filter > len(m.categories) {
		return m.categories
	}
	return m.categories[m.filter-1 : m.filter]
}

// filterLabel names the current filter for headings.
func (m *timelineModel) filterLabel() string {
	if m.filter == 0 || m.filter > len(m.categories) {
		return "all categories"
	}
	return m.categories[m.filter-1]
}

func (m *timelineModel) writeOverview(b *strings.Builder) {
	b.WriteString(headingStyle.Render("Sections") + "\n\n")
	for _, section := range m.result.Plan.ScheduledSections() {
		summary := report.SectionSummary(section, m.result.Plan.Units)
		b.WriteString(fmt.Sprintf("  %s %s\n", section.PrettyTitle(), dimStyle.Render(summary)))
	}
	b.WriteString("\n")

	if !m.result.Warnings.Empty() {
		b.WriteString(warnStyle.Render("Warnings") + "\n\n")
		for _, group := range m.result.Warnings.Groups() {
			b.WriteString("  " + group.Label + ":\n")
			for _, message := range group.Messages {
				b.WriteString("    - " + message + "\n")
			}
		}
		b.WriteString("\n")
	}
}

func (m *timelineModel) writeWeekly(b *strings.Builder) {
	b.WriteString(headingStyle.Render("Weekly effort") + dimStyle.Render(" ("+m.filterLabel()+")") + "\n\n")
	grid := report.WeeklyGrid(m.result.Plan.MandatoryTasks(), m.filteredCategories(), m.compiler.Today, m.weeks)
	for _, line := range strings.Split(grid, "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")
}

func (m *timelineModel) writeSections(b *strings.Builder) {
	b.WriteString(headingStyle.Render("Section schedule") + dimStyle.Render(" ("+m.filterLabel()+")") + "\n\n")
	rows := report.SectionSchedule(m.result.Plan, m.filteredCategories(), m.compiler.Today, m.weeks, false, m.compiler.ShowQuarters)
	for _, line := range strings.Split(rows, "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString(headingStyle.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Recompile plan\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Section overview\n")
	b.WriteString("  2            Weekly effort grid\n")
	b.WriteString("  3            Section schedule\n")
	b.WriteString("  c            Cycle category filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(dimStyle.Render(fmt.Sprintf("1/2/3 views | c filter | h for help | q to quit | Refreshing every %s", interval)) + "\n")
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// IsTTY returns true if the writer is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
