// File: internal/ui/progress/progress_test.go
package progress

import (
	"bytes"
	"storemigrate/internal/migration"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModelTracksProgressAndLog(t *testing.T) {
	m := NewModel("Migrating", nil)

	m, _ = update(t, m, progressMsg(migration.Progress{Processed: 1, Total: 4}))
	m, _ = update(t, m, logMsg(migration.LogEntry{Message: "Migrated b/a.txt", Severity: migration.SeveritySuccess, Timestamp: time.Now()}))

	view := m.View()
	assert.Contains(t, view, "Migrating")
	assert.Contains(t, view, "1/4")
	assert.Contains(t, view, "Migrated b/a.txt")
	assert.Contains(t, view, "Press q or ctrl+c to cancel")
}

func TestModelKeepsOnlyTheLogTail(t *testing.T) {
	m := NewModel("Migrating", nil)
	for i := 0; i < tailSize+3; i++ {
		m, _ = update(t, m, logMsg(migration.LogEntry{Message: string(rune('a' + i)), Timestamp: time.Now()}))
	}

	require.Len(t, m.tail, tailSize)
	assert.Equal(t, string(rune('a'+3)), m.tail[0].Message)
}

func TestModelCancelsOnce(t *testing.T) {
	calls := 0
	m := NewModel("Migrating", func() { calls++ })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd, "the view stays up until the run reports back")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Equal(t, 1, calls)
	assert.Contains(t, m.View(), "Cancelling")
}

func TestModelQuitsWhenDone(t *testing.T) {
	m := NewModel("Migrating", nil)
	m, cmd := update(t, m, doneMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.NotContains(t, m.View(), "Press q")
}

func TestModelResizesBar(t *testing.T) {
	m := NewModel("Migrating", nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Equal(t, 26, m.bar.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 10})
	assert.Equal(t, maxBarWidth, m.bar.Width)
}

func TestPlainObserverPrintsLogLines(t *testing.T) {
	var buf bytes.Buffer
	obs := NewPlainObserver(&buf)

	obs.OnProgress(migration.Progress{Processed: 1, Total: 2})
	obs.OnLog(migration.LogEntry{Message: "Skipped b/a.txt: already present", Severity: migration.SeverityInfo, Timestamp: time.Now()})
	obs.OnLog(migration.LogEntry{Message: "Failed b/c.txt: boom", Severity: migration.SeverityError, Timestamp: time.Now()})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Skipped b/a.txt: already present")
	assert.Contains(t, lines[1], "ERROR")
}
