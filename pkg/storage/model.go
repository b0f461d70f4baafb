// File: pkg/storage/model.go
package storage

import (
	"fmt"
	"storemigrate/pkg/common"
	"strings"
	"time"
)

type Bucket struct {
	Name      string
	Provider  common.Provider
	Public    bool
	Location  string
	CreatedAt time.Time
	// A value of -1 indicates that the usage is unknown or could not be retrieved
	UsageBytes int64
}

// A single child of a listed path. Directories carry no object metadata
type ListItem struct {
	Name        string
	IsDir       bool
	ContentType string
	Size        int64
}

// Controls one page of a ListObjects call
type Page struct {
	Limit  int
	Offset int
}

// Payload and declared type of a downloaded object
type Object struct {
	Data        []byte
	ContentType string
}

// Identifies one object to migrate. RelativePath is the destination key inside the bucket
// and never has leading or trailing slashes. SourceKey locates the bytes at the source: the
// object key in live mode, the full archive path in archive mode
type ObjectEntry struct {
	RelativePath        string
	SourceKey           string
	SizeHint            int64
	DeclaredContentType string
}

// Joins path segments into an object key, dropping empty segments and stray slashes
func JoinKey(parts ...string) string {
	var segments []string
	for _, p := range parts {
		segments = append(segments, SplitKey(p)...)
	}
	return strings.Join(segments, "/")
}

// Splits a slash-delimited key into its non-empty segments
func SplitKey(key string) []string {
	var segments []string
	for _, s := range strings.Split(key, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "N/A"
	}
	if bytes == 0 {
		return "0 B"
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	sizes := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	if exp >= len(sizes) {
		return fmt.Sprintf("%d B", bytes) // Fallback if extremely large
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), sizes[exp])
}
