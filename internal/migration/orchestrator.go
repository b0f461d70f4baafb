// File: internal/migration/orchestrator.go
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"storemigrate/internal/config"
	"storemigrate/pkg/archive"
	"storemigrate/pkg/storage"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Mode string

const (
	ModeLive    Mode = "live"
	ModeArchive Mode = "archive"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Connector turns endpoint settings into a storage client
type Connector interface {
	Connect(ctx context.Context, endpoint config.EndpointConfig) (storage.Storage, error)
}

// Request describes one migration. Source is used in live mode and Archive in archive mode
type Request struct {
	Mode        Mode
	Source      config.EndpointConfig
	Destination config.EndpointConfig
	Archive     []byte
	Options     Options
	Observer    Observer
}

// Orchestrator runs at most one migration at a time
type Orchestrator struct {
	connector Connector
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	current *Run
}

func NewOrchestrator(connector Connector, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		connector: connector,
		logger:    logger,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Progress of the active or most recent run
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	run := o.current
	o.mu.Unlock()

	if run == nil {
		return Progress{}
	}
	return run.Progress()
}

// Run executes the request to completion. The report is returned for every run that started;
// the error is non-nil when the run ended Failed or could not start
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Mode != ModeLive && req.Mode != ModeArchive {
		return nil, fmt.Errorf("unknown migration mode %q", req.Mode)
	}

	o.mu.Lock()
	if o.state == StateRunning {
		o.mu.Unlock()
		return nil, ErrRunInProgress
	}
	run := NewRun(o.logger, req.Observer)
	o.state = StateRunning
	o.current = run
	o.mu.Unlock()

	report := &Report{RunID: run.ID, Mode: req.Mode, StartedAt: time.Now()}
	opts := req.Options.normalized()
	run.Logf(SeverityInfo, "Starting %s migration", req.Mode)

	var err error
	switch req.Mode {
	case ModeLive:
		err = o.runLive(ctx, run, req, opts)
	case ModeArchive:
		err = o.runArchive(ctx, run, req, opts)
	}

	state := StateCompleted
	if err != nil {
		state = StateFailed
		if ctx.Err() != nil && !errors.Is(err, ErrCancelled) {
			err = fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		report.Reason = err.Error()
		run.Logf(SeverityError, "Migration failed: %s", report.Reason)
	}

	report.fill(run.Snapshot(), state, time.Now())
	if state == StateCompleted {
		run.Log(SeverityInfo, report.Summary())
		report.Log = run.Snapshot().Log
	}

	o.mu.Lock()
	o.state = state
	o.mu.Unlock()

	return report, err
}

func (o *Orchestrator) connect(ctx context.Context, role string, endpoint config.EndpointConfig) (storage.Storage, error) {
	client, err := o.connector.Connect(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrCredential, role, err)
	}
	return client, nil
}

func (o *Orchestrator) runLive(ctx context.Context, run *Run, req Request, opts Options) error {
	src, err := o.connect(ctx, config.EndpointSource, req.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := o.connect(ctx, config.EndpointDestination, req.Destination)
	if err != nil {
		return err
	}
	defer dst.Close()

	buckets, err := src.ListBuckets(ctx)
	if err != nil {
		return fmt.Errorf("%w: source buckets: %w", ErrListing, err)
	}
	if len(buckets) == 0 {
		run.Log(SeverityInfo, "No buckets found at source")
		return nil
	}
	run.Logf(SeverityInfo, "Found %d bucket(s) at source", len(buckets))

	exec := NewExecutor(dst, run, opts)
	enum := NewEnumerator(src, run, opts.PageSize)

	for _, b := range buckets {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if _, err := exec.EnsureBucket(ctx, b.Name, b.Public); err != nil {
			run.RecordBucketFailure(0, fmt.Sprintf("Skipping bucket %s: %v", b.Name, err))
			continue
		}

		entries, err := enum.Enumerate(ctx, b.Name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		run.AddTotal(len(entries))
		run.Logf(SeverityInfo, "Bucket %s: %d object(s) to transfer", b.Name, len(entries))

		fetch := func(ctx context.Context, entry storage.ObjectEntry) (storage.Object, error) {
			return src.DownloadObject(ctx, b.Name, entry.SourceKey)
		}
		if err := transferAll(ctx, exec, b.Name, entries, fetch, opts.Concurrency); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) runArchive(ctx context.Context, run *Run, req Request, opts Options) error {
	arc, err := archive.Open(req.Archive)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveParse, err)
	}
	plan := Infer(arc.Entries(), opts.WrappingRoot)
	if len(plan) == 0 {
		return fmt.Errorf("%w: no bucket folders found", ErrArchiveParse)
	}
	run.Logf(SeverityInfo, "Archive (%s) holds %d object(s) in %d bucket(s)", arc.Format(), plan.Total(), len(plan))

	dst, err := o.connect(ctx, config.EndpointDestination, req.Destination)
	if err != nil {
		return err
	}
	defer dst.Close()

	run.AddTotal(plan.Total())
	exec := NewExecutor(dst, run, opts)
	fetch := func(ctx context.Context, entry storage.ObjectEntry) (storage.Object, error) {
		data, err := arc.Read(entry.SourceKey)
		if err != nil {
			return storage.Object{}, err
		}
		return storage.Object{Data: data}, nil
	}

	for _, b := range plan {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if _, err := exec.EnsureBucket(ctx, b.Name, b.Public); err != nil {
			run.RecordBucketFailure(len(b.Objects), fmt.Sprintf("Skipping %d object(s) for bucket %s: %v", len(b.Objects), b.Name, err))
			continue
		}
		if err := transferAll(ctx, exec, b.Name, b.Objects, fetch, opts.Concurrency); err != nil {
			return err
		}
	}
	return nil
}

// Transfers a bucket's objects, sequentially or through a bounded worker pool. Cancellation is
// checked before each object starts; objects already in flight finish
func transferAll(ctx context.Context, exec *Executor, bucket string, entries []storage.ObjectEntry, fetch ObjectFetcher, concurrency int) error {
	if concurrency <= 1 {
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrCancelled, err)
			}
			exec.TransferOne(ctx, bucket, entry, fetch)
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		g.Go(func() error {
			exec.TransferOne(ctx, bucket, entry, fetch)
			return nil
		})
	}
	return g.Wait()
}
