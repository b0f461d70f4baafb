// File: pkg/storage/gcp/mappers.go
package gcp

import (
	"errors"
	"storemigrate/pkg/storage"
	"strings"

	"cloud.google.com/go/iam"
	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// Maps a delimited listing page onto children of prefix. Entries with Prefix set are directories
func mapListing(prefix string, attrs []*gcpstorage.ObjectAttrs) []storage.ListItem {
	items := make([]storage.ListItem, 0, len(attrs))
	for _, a := range attrs {
		if a == nil {
			continue
		}
		if a.Prefix != "" {
			name := strings.TrimSuffix(strings.TrimPrefix(a.Prefix, prefix), "/")
			if name != "" {
				items = append(items, storage.ListItem{Name: name, IsDir: true})
			}
			continue
		}

		name := strings.TrimPrefix(a.Name, prefix)
		// Folder placeholder objects created by the console end in "/"
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		items = append(items, storage.ListItem{
			Name:        name,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return items
}

func policyGrantsPublicRead(policy *iam.Policy) bool {
	if policy == nil {
		return false
	}
	for _, role := range []iam.RoleName{objectViewerRole, iam.Viewer, "roles/storage.legacyObjectReader"} {
		if policy.HasRole(allUsers, role) {
			return true
		}
	}
	return false
}

// Reports whether err is a Google API error with the given HTTP status
func hasStatus(err error, code int) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == code
}
