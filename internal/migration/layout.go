// File: internal/migration/layout.go
package migration

import (
	"regexp"
	"sort"
	"storemigrate/pkg/archive"
	"storemigrate/pkg/storage"
)

// Folder names shaped like generated project identifiers rather than bucket names
var opaqueIDPattern = regexp.MustCompile(`^[a-z0-9]{20,}$`)

// IsOpaqueID reports whether a top-level folder looks like a generated project id
func IsOpaqueID(segment string) bool {
	return opaqueIDPattern.MatchString(segment)
}

// Objects bound for one destination bucket
type BucketPlan struct {
	Name    string
	Public  bool
	Objects []storage.ObjectEntry
}

// Plan lists buckets in the order they first appear in the archive
type Plan []BucketPlan

func (p Plan) Total() int {
	n := 0
	for _, b := range p {
		n += len(b.Objects)
	}
	return n
}

// Infer maps archive paths onto buckets. With a wrapping root the second segment names the bucket
// and entries need at least three segments; otherwise the first segment does and two are enough.
// Directory entries, files without a bucket folder, and repeated paths are skipped
func Infer(entries []archive.Entry, mode RootMode) Plan {
	strip := hasWrappingRoot(entries, mode)
	minSegments := 2
	if strip {
		minSegments = 3
	}

	var plan Plan
	index := make(map[string]int)
	seen := make(map[string]bool)

	for _, e := range entries {
		if e.IsDir {
			continue
		}
		segments := storage.SplitKey(e.Path)
		if len(segments) < minSegments {
			continue
		}
		if strip {
			segments = segments[1:]
		}

		bucket := segments[0]
		rel := storage.JoinKey(segments[1:]...)
		key := bucket + "/" + rel
		if seen[key] {
			continue
		}
		seen[key] = true

		i, ok := index[bucket]
		if !ok {
			i = len(plan)
			index[bucket] = i
			plan = append(plan, BucketPlan{Name: bucket})
		}
		plan[i].Objects = append(plan[i].Objects, storage.ObjectEntry{
			RelativePath: rel,
			SourceKey:    e.Path,
			SizeHint:     e.Size,
		})
	}
	return plan
}

// A wrapping root is one shared, identifier-shaped first segment across all files
func hasWrappingRoot(entries []archive.Entry, mode RootMode) bool {
	switch mode {
	case RootPresent:
		return true
	case RootAbsent:
		return false
	}

	first := ""
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		segments := storage.SplitKey(e.Path)
		if len(segments) == 0 {
			continue
		}
		if first == "" {
			first = segments[0]
		} else if segments[0] != first {
			return false
		}
	}
	return first != "" && IsOpaqueID(first)
}

// DetectBuckets is the advisory preview shown before a migration: first segments plus second
// segments of deeper paths, minus anything identifier-shaped. It can disagree with Infer, which
// alone decides the buckets of a run
func DetectBuckets(entries []archive.Entry) []string {
	candidates := make(map[string]bool)
	for _, e := range entries {
		segments := storage.SplitKey(e.Path)
		if len(segments) == 0 {
			continue
		}
		candidates[segments[0]] = true
		if len(segments) >= 3 {
			candidates[segments[1]] = true
		}
	}

	var buckets []string
	for name := range candidates {
		if !IsOpaqueID(name) {
			buckets = append(buckets, name)
		}
	}
	sort.Strings(buckets)
	return buckets
}
