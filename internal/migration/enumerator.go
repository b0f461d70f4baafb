// File: internal/migration/enumerator.go
package migration

import (
	"context"
	"fmt"
	"storemigrate/pkg/storage"
)

// Enumerator walks a live bucket's tree with an explicit stack of directories
type Enumerator struct {
	source   storage.Lister
	run      *Run
	pageSize int
}

// NewEnumerator lists through source in pages of pageSize, falling back to the storage default
func NewEnumerator(source storage.Lister, run *Run, pageSize int) *Enumerator {
	if pageSize <= 0 {
		pageSize = storage.DefaultPageSize
	}
	return &Enumerator{source: source, run: run, pageSize: pageSize}
}

// Enumerate returns every object in bucket in depth-first order. A directory whose listing fails
// is logged and left out along with everything beneath it. Only cancellation is returned
func (e *Enumerator) Enumerate(ctx context.Context, bucket string) ([]storage.ObjectEntry, error) {
	var entries []storage.ObjectEntry
	stack := []string{""}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		items, err := storage.ListAll(ctx, e.source, bucket, dir, e.pageSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.run.Logf(SeverityError, "Failed to list %s: %v", displayPath(bucket, dir), fmt.Errorf("%w: %w", ErrListing, err))
			continue
		}

		var subdirs []string
		for _, item := range items {
			path := storage.JoinKey(dir, item.Name)
			if path == "" {
				continue
			}
			if item.IsDir {
				subdirs = append(subdirs, path)
				continue
			}
			entries = append(entries, storage.ObjectEntry{
				RelativePath:        path,
				SourceKey:           path,
				SizeHint:            item.Size,
				DeclaredContentType: item.ContentType,
			})
		}

		// Pushed in reverse so the first listed subdirectory is walked first
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return entries, nil
}

func displayPath(bucket, dir string) string {
	if dir == "" {
		return bucket + "/"
	}
	return bucket + "/" + dir
}
