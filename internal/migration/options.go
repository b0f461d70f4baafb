// File: internal/migration/options.go
package migration

import (
	"fmt"
	"storemigrate/pkg/storage"
	"strings"
	"time"
)

// RootMode states whether archives carry a wrapping root folder above the bucket folders
type RootMode string

const (
	// Detect a wrapping root from the archive layout
	RootAuto RootMode = "auto"
	// Always strip the first path segment
	RootPresent RootMode = "present"
	// Never strip; the first segment is the bucket
	RootAbsent RootMode = "absent"
)

// ParseRootMode reads a configured or flag value; empty means auto
func ParseRootMode(s string) (RootMode, error) {
	var m RootMode
	err := m.UnmarshalText([]byte(s))
	return m, err
}

func (m *RootMode) UnmarshalText(text []byte) error {
	switch RootMode(strings.ToLower(strings.TrimSpace(string(text)))) {
	case "", RootAuto:
		*m = RootAuto
	case RootPresent:
		*m = RootPresent
	case RootAbsent:
		*m = RootAbsent
	default:
		return fmt.Errorf("invalid wrapping root mode %q (expected auto, present or absent)", string(text))
	}
	return nil
}

func (m RootMode) String() string {
	return string(m)
}

type Options struct {
	// Upload with upsert. When false, objects already present at the destination are skipped
	OverwriteExisting bool
	// Items requested per listing call
	PageSize          int
	// Objects transferred in parallel within one bucket. 1 keeps the run strictly sequential
	Concurrency       int
	WrappingRoot      RootMode
	// Bounds the fetch and upload of a single object. Zero means no limit
	RequestTimeout    time.Duration
}

func DefaultOptions() Options {
	return Options{
		OverwriteExisting: true,
		PageSize:          storage.DefaultPageSize,
		Concurrency:       1,
		WrappingRoot:      RootAuto,
	}
}

// Fills unset fields with defaults
func (o Options) normalized() Options {
	if o.PageSize <= 0 {
		o.PageSize = storage.DefaultPageSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.WrappingRoot == "" {
		o.WrappingRoot = RootAuto
	}
	return o
}
