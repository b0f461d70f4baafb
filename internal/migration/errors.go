// File: internal/migration/errors.go
package migration

import "errors"

// Run-level failure classes. Object and bucket scoped errors are recorded on the run and never
// returned; these wrap the cause of a run that ends Failed or could not start
var (
	ErrCredential    = errors.New("could not connect to storage endpoint")
	ErrListing       = errors.New("listing failed")
	ErrArchiveParse  = errors.New("archive could not be read")
	ErrBucketCreate  = errors.New("bucket could not be created")
	ErrObjectRead    = errors.New("object could not be read")
	ErrObjectWrite   = errors.New("object could not be written")
	ErrRunInProgress = errors.New("a migration is already running")
	ErrCancelled     = errors.New("migration cancelled")
)
