// File: internal/migration/run.go
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Severity) slogLevel() slog.Level {
	switch s {
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type LogEntry struct {
	Message   string    `yaml:"message"`
	Severity  Severity  `yaml:"severity"`
	Timestamp time.Time `yaml:"timestamp"`
}

type Progress struct {
	Processed int `yaml:"processed"`
	Total     int `yaml:"total"`
}

// Rounded share of processed items, 0 while nothing is known
func (p Progress) Percentage() int {
	if p.Total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(p.Processed) / float64(p.Total)))
}

// Observer receives every progress change and log entry of a run, in order. Callbacks run
// with the run locked and must not call back into it
type Observer interface {
	OnProgress(p Progress)
	OnLog(e LogEntry)
}

type OutcomeKind int

const (
	Migrated OutcomeKind = iota
	Skipped
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Migrated:
		return "migrated"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Reason recorded when the existence probe finds the object at the destination
const ReasonAlreadyPresent = "already present"

// Result of one object transfer
type Outcome struct {
	Kind   OutcomeKind
	Bucket string
	Path   string
	Reason string
	Err    error
}

// Snapshot is a consistent copy of a run's state
type Snapshot struct {
	Progress      Progress
	Migrated      int
	Skipped       int
	Failed        int
	BucketsFailed int
	Log           []LogEntry
}

// Run holds the counters and audit log of one migration. Every component of a run shares the
// same Run and nothing outlives it
type Run struct {
	ID       string
	logger   *slog.Logger
	observer Observer
	now      func() time.Time

	mu            sync.Mutex
	progress      Progress
	migrated      int
	skipped       int
	failed        int
	bucketsFailed int
	log           []LogEntry
}

func NewRun(logger *slog.Logger, observer Observer) *Run {
	id := uuid.NewString()
	return &Run{
		ID:       id,
		logger:   logger.With("run", id),
		observer: observer,
		now:      time.Now,
	}
}

// Grows the total once the size of a scope (a bucket, or a whole archive plan) is known
func (r *Run) AddTotal(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.Total += n
	r.notifyProgress()
}

// Counts one processed object and logs its outcome
func (r *Run) Record(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target := o.Bucket + "/" + o.Path
	switch o.Kind {
	case Migrated:
		r.migrated++
		r.appendLocked(SeveritySuccess, fmt.Sprintf("Migrated %s", target))
	case Skipped:
		r.skipped++
		r.appendLocked(SeverityInfo, fmt.Sprintf("Skipped %s: %s", target, o.Reason))
	default:
		r.failed++
		r.appendLocked(SeverityError, fmt.Sprintf("Failed %s: %s", target, o.reason()))
	}
	r.progress.Processed++
	r.notifyProgress()
}

func (o Outcome) reason() string {
	if o.Reason != "" {
		return o.Reason
	}
	if o.Err != nil {
		return o.Err.Error()
	}
	return "unknown error"
}

// Counts a group of objects that could not be attempted as failed, with a single log entry
func (r *Run) RecordFailedGroup(n int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.appendLocked(SeverityError, message)
	if n <= 0 {
		return
	}
	r.failed += n
	r.progress.Processed += n
	r.notifyProgress()
}

// Counts a destination bucket that could not be ensured. Objects the run already knows about
// for that bucket are passed as n and counted as failed; live runs pass 0 since the bucket is
// never enumerated
func (r *Run) RecordBucketFailure(n int, message string) {
	r.mu.Lock()
	r.bucketsFailed++
	r.mu.Unlock()
	r.RecordFailedGroup(n, message)
}

func (r *Run) Log(severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendLocked(severity, message)
}

func (r *Run) Logf(severity Severity, format string, args ...interface{}) {
	r.Log(severity, fmt.Sprintf(format, args...))
}

func (r *Run) appendLocked(severity Severity, message string) {
	entry := LogEntry{Message: message, Severity: severity, Timestamp: r.now()}
	r.log = append(r.log, entry)
	r.logger.Log(context.Background(), severity.slogLevel(), message, "severity", severity.String())
	if r.observer != nil {
		r.observer.OnLog(entry)
	}
}

func (r *Run) notifyProgress() {
	if r.observer != nil {
		r.observer.OnProgress(r.progress)
	}
}

func (r *Run) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := make([]LogEntry, len(r.log))
	copy(log, r.log)
	return Snapshot{
		Progress:      r.progress,
		Migrated:      r.migrated,
		Skipped:       r.skipped,
		Failed:        r.failed,
		BucketsFailed: r.bucketsFailed,
		Log:           log,
	}
}
