// File: pkg/common/provider.go
package common

import "strings"

type Provider string

const (
	Supabase Provider = "supabase"
	S3       Provider = "s3"
	MinIO    Provider = "minio"
	GCP      Provider = "gcp"
)

// Normalizes a user supplied provider name (e.g., " S3 " -> "s3")
func ParseProvider(name string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(name)))
}

func (p Provider) String() string {
	return string(p)
}
