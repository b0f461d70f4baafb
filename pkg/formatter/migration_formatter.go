// File: pkg/formatter/migration_formatter.go
package formatter

import (
	"fmt"
	"storemigrate/internal/migration"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Returns the colour style used for a log severity
func SeverityStyle(s migration.Severity) lipgloss.Style {
	switch s {
	case migration.SeveritySuccess:
		return successStyle
	case migration.SeverityWarning:
		return warningStyle
	case migration.SeverityError:
		return errorStyle
	default:
		return infoStyle
	}
}

type MigrationFormatter struct{}

func NewMigrationFormatter() *MigrationFormatter {
	return &MigrationFormatter{}
}

// Formats one audit log line: time, padded severity tag, message
func (f *MigrationFormatter) FormatLogEntry(e migration.LogEntry) string {
	tag := fmt.Sprintf("%-7s", strings.ToUpper(e.Severity.String()))
	return fmt.Sprintf("%s %s %s", e.Timestamp.Format("15:04:05"), SeverityStyle(e.Severity).Render(tag), e.Message)
}

func (f *MigrationFormatter) FormatReport(report *migration.Report) string {
	var sb strings.Builder

	sb.WriteString(FormatHeaderSection("Migration " + report.RunID))
	sb.WriteString("\n\n")

	table := NewTable([]string{"Parameter", "Value"})
	state := report.State.String()
	if report.State == migration.StateFailed {
		state = errorStyle.Render(state)
	} else {
		state = successStyle.Render(state)
	}
	failed := fmt.Sprint(report.Failed)
	if report.Failed > 0 {
		failed = errorStyle.Render(failed)
	}

	rows := [][]string{
		{"Mode", string(report.Mode)},
		{"State", state},
		{"Processed", fmt.Sprintf("%d/%d (%d%%)", report.Progress.Processed, report.Progress.Total, report.Progress.Percentage())},
		{"Migrated", fmt.Sprint(report.Migrated)},
		{"Skipped", fmt.Sprint(report.Skipped)},
		{"Failed", failed},
	}
	if report.BucketsFailed > 0 {
		rows = append(rows, []string{"Buckets Failed", errorStyle.Render(fmt.Sprint(report.BucketsFailed))})
	}
	rows = append(rows, []string{"Duration", report.Duration().Round(time.Millisecond).String()})
	for _, row := range rows {
		table.AddRow(row)
	}
	sb.WriteString(table.String())
	sb.WriteString("\n\n")

	sb.WriteString(report.Summary())
	sb.WriteString("\n")
	return sb.String()
}

// Formats only the log entries at or above the given severity, e.g. the failures of a run
func (f *MigrationFormatter) FormatLog(entries []migration.LogEntry, threshold migration.Severity) string {
	var sb strings.Builder
	for _, e := range entries {
		if e.Severity < threshold {
			continue
		}
		sb.WriteString(f.FormatLogEntry(e))
		sb.WriteString("\n")
	}
	return sb.String()
}
