// File: internal/ui/progress/display.go
package progress

import (
	"context"
	"fmt"
	"io"
	"storemigrate/internal/migration"
	"storemigrate/pkg/formatter"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Work is a migration that reports to the given observer
type Work func(ctx context.Context, observer migration.Observer) (*migration.Report, error)

// Forwards run events to a bubbletea program
type programObserver struct {
	program *tea.Program
}

func (o programObserver) OnProgress(p migration.Progress) {
	o.program.Send(progressMsg(p))
}

func (o programObserver) OnLog(e migration.LogEntry) {
	o.program.Send(logMsg(e))
}

// Runs work while an interactive progress view is drawn on out. Quitting the view cancels
// the context handed to work; the call still waits for work to return
func RunInteractive(ctx context.Context, title string, in io.Reader, out io.Writer, work Work) (*migration.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(title, cancel), tea.WithInput(in), tea.WithOutput(out))

	type result struct {
		report *migration.Report
		err    error
	}
	results := make(chan result, 1)

	go func() {
		report, err := work(ctx, programObserver{program: program})
		results <- result{report: report, err: err}
		program.Send(doneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		// The view failed to start; the run continues without it
		fmt.Fprintf(out, "progress display unavailable: %v\n", err)
	}

	r := <-results
	return r.report, r.err
}

// PlainObserver prints each log entry as a line. Used when the interactive view is off
type PlainObserver struct {
	mu     sync.Mutex
	out    io.Writer
	format *formatter.MigrationFormatter
}

func NewPlainObserver(out io.Writer) *PlainObserver {
	return &PlainObserver{out: out, format: formatter.NewMigrationFormatter()}
}

func (o *PlainObserver) OnProgress(p migration.Progress) {}

func (o *PlainObserver) OnLog(e migration.LogEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.out, o.format.FormatLogEntry(e))
}
