// File: internal/migration/executor.go
package migration

import (
	"context"
	"errors"
	"fmt"
	"path"
	"storemigrate/pkg/storage"
	"storemigrate/pkg/storage/contenttype"
	"sync"
)

// Supplies an object's bytes: a source download in live mode, an archive read in archive mode
type ObjectFetcher func(ctx context.Context, entry storage.ObjectEntry) (storage.Object, error)

type BucketResult int

const (
	BucketCreated BucketResult = iota
	BucketExisted
)

type bucketState struct {
	result BucketResult
	err    error
}

type listingKey struct {
	bucket string
	dir    string
}

// Executor creates destination buckets and transfers single objects for one run
type Executor struct {
	dest storage.Destination
	run  *Run
	opts Options

	mu       sync.Mutex
	buckets  map[string]bucketState
	listings map[listingKey]map[string]bool
}

func NewExecutor(dest storage.Destination, run *Run, opts Options) *Executor {
	return &Executor{
		dest:     dest,
		run:      run,
		opts:     opts.normalized(),
		buckets:  make(map[string]bucketState),
		listings: make(map[listingKey]map[string]bool),
	}
}

// EnsureBucket creates the bucket unless this run already tried. An existing bucket counts as success
func (e *Executor) EnsureBucket(ctx context.Context, name string, public bool) (BucketResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if st, ok := e.buckets[name]; ok {
		return st.result, st.err
	}

	var st bucketState
	err := e.dest.CreateBucket(ctx, name, public)
	switch {
	case err == nil:
		st.result = BucketCreated
		e.run.Logf(SeverityInfo, "Created bucket %s", name)
	case errors.Is(err, storage.ErrBucketExists):
		st.result = BucketExisted
		e.run.Logf(SeverityInfo, "Bucket %s already exists", name)
	default:
		st.err = fmt.Errorf("%w: %w", ErrBucketCreate, err)
		e.run.Logf(SeverityError, "Failed to create bucket %s: %v", name, err)
	}

	e.buckets[name] = st
	return st.result, st.err
}

// TransferOne moves one object and records its outcome. The processed counter always advances
func (e *Executor) TransferOne(ctx context.Context, bucket string, entry storage.ObjectEntry, fetch ObjectFetcher) Outcome {
	if e.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.RequestTimeout)
		defer cancel()
	}
	outcome := e.transfer(ctx, bucket, entry, fetch)
	e.run.Record(outcome)
	return outcome
}

func (e *Executor) transfer(ctx context.Context, bucket string, entry storage.ObjectEntry, fetch ObjectFetcher) Outcome {
	outcome := Outcome{Bucket: bucket, Path: entry.RelativePath}

	if !e.opts.OverwriteExisting && e.exists(ctx, bucket, entry.RelativePath) {
		outcome.Kind = Skipped
		outcome.Reason = ReasonAlreadyPresent
		return outcome
	}

	obj, err := fetch(ctx, entry)
	if err != nil {
		outcome.Kind = Failed
		outcome.Err = fmt.Errorf("%w: %w", ErrObjectRead, err)
		return outcome
	}

	declared := entry.DeclaredContentType
	if declared == "" {
		declared = obj.ContentType
	}
	contentType := contenttype.Choose(declared, entry.RelativePath)

	err = e.dest.UploadObject(ctx, bucket, entry.RelativePath, obj.Data, contentType, e.opts.OverwriteExisting)
	switch {
	case err == nil:
		outcome.Kind = Migrated
	case !e.opts.OverwriteExisting && errors.Is(err, storage.ErrObjectExists):
		outcome.Kind = Skipped
		outcome.Reason = ReasonAlreadyPresent
	default:
		outcome.Kind = Failed
		outcome.Err = fmt.Errorf("%w: %w", ErrObjectWrite, err)
	}
	return outcome
}

// Probes the destination directory listing for the object's file name. Each directory is listed
// once per run; a failed probe reports absent and leaves the decision to the upload
func (e *Executor) exists(ctx context.Context, bucket, key string) bool {
	dir, name := path.Split(key)
	k := listingKey{bucket: bucket, dir: storage.JoinKey(dir)}

	e.mu.Lock()
	names, ok := e.listings[k]
	e.mu.Unlock()

	if !ok {
		items, err := storage.ListAll(ctx, e.dest, bucket, k.dir, e.opts.PageSize)
		if err != nil {
			e.run.Logf(SeverityWarning, "Could not check destination %s for existing objects: %v", displayPath(bucket, k.dir), err)
			return false
		}
		names = make(map[string]bool, len(items))
		for _, item := range items {
			if !item.IsDir {
				names[item.Name] = true
			}
		}
		e.mu.Lock()
		e.listings[k] = names
		e.mu.Unlock()
	}
	return names[name]
}
