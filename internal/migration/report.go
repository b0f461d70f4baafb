// File: internal/migration/report.go
package migration

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the terminal record of one run
type Report struct {
	RunID         string     `yaml:"run_id"`
	Mode          Mode       `yaml:"mode"`
	State         State      `yaml:"state"`
	Progress      Progress   `yaml:"progress"`
	Migrated      int        `yaml:"migrated"`
	Skipped       int        `yaml:"skipped"`
	Failed        int        `yaml:"failed"`
	BucketsFailed int        `yaml:"buckets_failed"`
	Reason        string     `yaml:"reason,omitempty"`
	Log           []LogEntry `yaml:"log"`
	StartedAt     time.Time  `yaml:"started_at"`
	FinishedAt    time.Time  `yaml:"finished_at"`
}

func (r *Report) fill(s Snapshot, state State, finished time.Time) {
	r.State = state
	r.Progress = s.Progress
	r.Migrated = s.Migrated
	r.Skipped = s.Skipped
	r.Failed = s.Failed
	r.BucketsFailed = s.BucketsFailed
	r.Log = s.Log
	r.FinishedAt = finished
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary is the single terminal message of the run
func (r *Report) Summary() string {
	if r.State == StateFailed {
		return fmt.Sprintf("Migration failed: %s", r.Reason)
	}
	if r.Progress.Total == 0 && r.Progress.Processed == 0 {
		if r.BucketsFailed > 0 {
			return fmt.Sprintf("Migration completed: nothing transferred, %d bucket(s) failed", r.BucketsFailed)
		}
		return "Migration completed: nothing to transfer"
	}
	summary := fmt.Sprintf("Migration completed: %d/%d objects processed (%d migrated, %d skipped, %d failed)",
		r.Progress.Processed, r.Progress.Total, r.Migrated, r.Skipped, r.Failed)
	if r.BucketsFailed > 0 {
		summary += fmt.Sprintf(", %d bucket(s) failed", r.BucketsFailed)
	}
	return summary
}

// Writes the report as YAML
func (r *Report) WriteFile(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}
