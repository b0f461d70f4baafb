// File: internal/flags/flags.go
package flags

// Centralized definitions for CLI flags used across the application

const (
	// Endpoint flags select which configured store a storage command talks to (source or destination)
	Endpoint      = "endpoint"
	EndpointShort = "e"

	// Bucket flags are used to specify the target bucket for object-level operations
	Bucket      = "bucket"
	BucketShort = "b"

	// Prefix flags are used to filter object listings
	Prefix = "prefix"

	// Overwrite flags control whether uploads replace objects already present at the destination
	OverwriteExisting = "overwrite-existing"

	// Concurrency bounds the number of objects transferred in parallel
	Concurrency = "concurrency"

	PageSize = "page-size"

	// WrappingRoot forces or disables stripping of a single project-id folder in archives (auto, present, absent)
	WrappingRoot = "wrapping-root"

	// Report writes a YAML run report to the given path
	Report = "report"

	NoProgress = "no-progress"

	// Yes flags are used to bypass the interactive confirmation prompt before a migration starts
	Yes      = "yes"
	YesShort = "y"

	// Config selects an alternative configuration file
	Config = "config"

	// Debug flags are used to enable verbose logging
	Debug      = "debug"
	DebugShort = "d"
)
