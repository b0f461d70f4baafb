// File: internal/provider/providers.go
package provider

// This file explicitly imports all provider implementation packages.
// The blank identifier (_) ensures that the init() function of each package runs,
// allowing them to register themselves with the central provider registry.
//
// To add a new provider, implement it under pkg/storage/<name> with an init() that
// self-registers, and then add the import here.

import (
	_ "storemigrate/pkg/storage/gcp"
	_ "storemigrate/pkg/storage/minio"
	_ "storemigrate/pkg/storage/s3"
	_ "storemigrate/pkg/storage/supabase"
)
