// File: internal/ui/progress/model.go
package progress

import (
	"context"
	"fmt"
	"storemigrate/internal/migration"
	"storemigrate/pkg/formatter"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Log lines kept on screen below the bar
const tailSize = 8

const maxBarWidth = 60

type progressMsg migration.Progress

type logMsg migration.LogEntry

type doneMsg struct{}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model renders a running migration: a progress bar, counters, and the tail of the run log
type Model struct {
	title     string
	bar       progress.Model
	progress  migration.Progress
	tail      []migration.LogEntry
	format    *formatter.MigrationFormatter
	cancel    context.CancelFunc
	cancelled bool
	done      bool
}

func NewModel(title string, cancel context.CancelFunc) Model {
	return Model{
		title:  title,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		format: formatter.NewMigrationFormatter(),
		cancel: cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			// The run stops at the next object boundary and reports back through doneMsg
			if !m.cancelled && m.cancel != nil {
				m.cancel()
			}
			m.cancelled = true
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		return m, nil

	case progressMsg:
		m.progress = migration.Progress(msg)
		return m, nil

	case logMsg:
		m.tail = append(m.tail, migration.LogEntry(msg))
		if len(m.tail) > tailSize {
			m.tail = m.tail[len(m.tail)-tailSize:]
		}
		return m, nil

	case doneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")

	percent := 0.0
	if m.progress.Total > 0 {
		percent = float64(m.progress.Processed) / float64(m.progress.Total)
	}
	sb.WriteString(m.bar.ViewAs(percent))
	sb.WriteString(fmt.Sprintf("  %d/%d\n\n", m.progress.Processed, m.progress.Total))

	for _, e := range m.tail {
		sb.WriteString(m.format.FormatLogEntry(e))
		sb.WriteString("\n")
	}

	if !m.done {
		sb.WriteString("\n")
		if m.cancelled {
			sb.WriteString(helpStyle.Render("Cancelling after the current object..."))
		} else {
			sb.WriteString(helpStyle.Render("Press q or ctrl+c to cancel"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
