// File: pkg/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"storemigrate/pkg/common"
)

var (
	// ErrBucketExists is returned by CreateBucket when the bucket is already present
	ErrBucketExists = errors.New("bucket already exists")
	// ErrObjectExists is returned by UploadObject when overwrite is disabled and the key is taken
	ErrObjectExists = errors.New("object already exists")
	ErrNotFound     = errors.New("not found")
)

type Lister interface {
	// Lists the immediate children of path (no leading or trailing slash, "" for the bucket root)
	ListObjects(ctx context.Context, bucket, path string, page Page) ([]ListItem, error)
}

// Read side of an object store
type Source interface {
	Lister
	ListBuckets(ctx context.Context) ([]Bucket, error)
	DownloadObject(ctx context.Context, bucket, key string) (Object, error)
}

// Write side of an object store
type Destination interface {
	Lister
	ListBuckets(ctx context.Context) ([]Bucket, error)
	CreateBucket(ctx context.Context, name string, public bool) error
	UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error
}

// Storage is implemented by every provider client
type Storage interface {
	Source
	Destination
	ProviderName() common.Provider
	Close() error
}

// StoreError records a failed provider call
type StoreError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *StoreError) Error() string {
	target := e.Bucket
	if e.Key != "" {
		target += "/" + e.Key
	}
	if target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op, bucket, key string, err error) error {
	return &StoreError{Op: op, Bucket: bucket, Key: key, Err: err}
}

// DefaultPageSize bounds a single listing call
const DefaultPageSize = 1000

// Lists every child of path by paging with increasing offsets until a short page is returned
func ListAll(ctx context.Context, lister Lister, bucket, path string, pageSize int) ([]ListItem, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var all []ListItem
	for offset := 0; ; offset += pageSize {
		items, err := lister.ListObjects(ctx, bucket, path, Page{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < pageSize {
			return all, nil
		}
	}
}
