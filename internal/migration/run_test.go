// File: internal/migration/run_test.go
package migration

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingObserver keeps every notification it receives
type recordingObserver struct {
	mu       sync.Mutex
	progress []Progress
	logs     []LogEntry
}

func (o *recordingObserver) OnProgress(p Progress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = append(o.progress, p)
}

func (o *recordingObserver) OnLog(e LogEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logs = append(o.logs, e)
}

func TestProgressPercentage(t *testing.T) {
	assert.Equal(t, 0, Progress{}.Percentage())
	assert.Equal(t, 0, Progress{Processed: 0, Total: 3}.Percentage())
	assert.Equal(t, 33, Progress{Processed: 1, Total: 3}.Percentage())
	assert.Equal(t, 67, Progress{Processed: 2, Total: 3}.Percentage())
	assert.Equal(t, 100, Progress{Processed: 3, Total: 3}.Percentage())
}

func TestRunRecordsOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	run := NewRun(testLogger(), obs)
	require.NotEmpty(t, run.ID)

	run.AddTotal(3)
	run.Record(Outcome{Kind: Migrated, Bucket: "photos", Path: "a.png"})
	run.Record(Outcome{Kind: Skipped, Bucket: "photos", Path: "b.png", Reason: ReasonAlreadyPresent})
	run.Record(Outcome{Kind: Failed, Bucket: "photos", Path: "c.png", Err: errors.New("boom")})

	snap := run.Snapshot()
	assert.Equal(t, Progress{Processed: 3, Total: 3}, snap.Progress)
	assert.Equal(t, 1, snap.Migrated)
	assert.Equal(t, 1, snap.Skipped)
	assert.Equal(t, 1, snap.Failed)

	require.Len(t, snap.Log, 3)
	assert.Equal(t, SeveritySuccess, snap.Log[0].Severity)
	assert.Equal(t, "Migrated photos/a.png", snap.Log[0].Message)
	assert.Equal(t, "Skipped photos/b.png: already present", snap.Log[1].Message)
	assert.Equal(t, SeverityError, snap.Log[2].Severity)
	assert.Equal(t, "Failed photos/c.png: boom", snap.Log[2].Message)

	assert.Equal(t, snap.Log, obs.logs)
	assert.Equal(t, []Progress{{0, 3}, {1, 3}, {2, 3}, {3, 3}}, obs.progress)
}

func TestRunSnapshotIsACopy(t *testing.T) {
	run := NewRun(testLogger(), nil)
	run.Log(SeverityInfo, "first")

	snap := run.Snapshot()
	snap.Log[0].Message = "changed"
	run.Log(SeverityWarning, "second")

	again := run.Snapshot()
	assert.Equal(t, "first", again.Log[0].Message)
	assert.Len(t, again.Log, 2)
	assert.Len(t, snap.Log, 1)
}

func TestRunRecordFailedGroup(t *testing.T) {
	run := NewRun(testLogger(), nil)
	run.AddTotal(5)
	run.RecordFailedGroup(2, "Skipping 2 object(s) for bucket docs")

	snap := run.Snapshot()
	assert.Equal(t, Progress{Processed: 2, Total: 5}, snap.Progress)
	assert.Equal(t, 2, snap.Failed)
	require.Len(t, snap.Log, 1)
	assert.Equal(t, SeverityError, snap.Log[0].Severity)
}

func TestRunRecordBucketFailure(t *testing.T) {
	run := NewRun(testLogger(), nil)
	run.RecordBucketFailure(0, "Skipping bucket broken: forbidden")
	run.AddTotal(3)
	run.RecordBucketFailure(3, "Skipping 3 object(s) for bucket docs")

	snap := run.Snapshot()
	assert.Equal(t, 2, snap.BucketsFailed)
	assert.Equal(t, 3, snap.Failed)
	assert.Equal(t, Progress{Processed: 3, Total: 3}, snap.Progress)
	require.Len(t, snap.Log, 2)
	assert.Equal(t, SeverityError, snap.Log[0].Severity)
}

func TestSeverityText(t *testing.T) {
	text, err := SeverityWarning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warning", string(text))
	assert.Equal(t, "info", SeverityInfo.String())
}

func TestParseRootMode(t *testing.T) {
	m, err := ParseRootMode("PRESENT")
	require.NoError(t, err)
	assert.Equal(t, RootPresent, m)

	m, err = ParseRootMode("")
	require.NoError(t, err)
	assert.Equal(t, RootAuto, m)

	_, err = ParseRootMode("maybe")
	assert.Error(t, err)
}
