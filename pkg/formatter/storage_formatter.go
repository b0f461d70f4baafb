// File: pkg/formatter/storage_formatter.go
package formatter

import (
	"fmt"
	"storemigrate/internal/migration"
	"storemigrate/pkg/storage"
	"strings"
)

type StorageFormatter struct{}

func NewStorageFormatter() *StorageFormatter {
	return &StorageFormatter{}
}

func (f *StorageFormatter) FormatBucketList(buckets []storage.Bucket) string {
	table := NewTable([]string{"BUCKET NAME", "PROVIDER", "ACCESS", "LOCATION", "USAGE", "CREATED"})

	for _, bucket := range buckets {
		created := "-"
		if !bucket.CreatedAt.IsZero() {
			created = bucket.CreatedAt.Format("2006-01-02")
		}
		location := bucket.Location
		if location == "" {
			location = "-"
		}

		table.AddRow([]string{
			bucket.Name,
			string(bucket.Provider),
			accessLabel(bucket.Public),
			location,
			storage.FormatBytes(bucket.UsageBytes),
			created,
		})
	}

	return table.String()
}

func accessLabel(public bool) string {
	if public {
		return "public"
	}
	return "private"
}

// Formats the archive preview: what the quick scan suggests and what a migration would create
func (f *StorageFormatter) FormatArchivePreview(format string, files int, detected []string, plan migration.Plan) string {
	var sb strings.Builder

	sb.WriteString(FormatHeaderSection(fmt.Sprintf("Archive (%s): %d file(s)", format, files)))
	sb.WriteString("\n\n")

	sb.WriteString(FormatSectionTitle("Detected bucket folders"))
	sb.WriteString("\n")
	if len(detected) == 0 {
		sb.WriteString("  (none)\n")
	} else {
		sb.WriteString("  " + strings.Join(detected, ", ") + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString(FormatSectionTitle("Migration plan"))
	sb.WriteString("\n")
	if len(plan) == 0 {
		sb.WriteString("No bucket folders found. Nothing would be migrated.\n")
		return sb.String()
	}

	table := NewTable([]string{"BUCKET", "OBJECTS", "SIZE", "FIRST OBJECT"})
	for _, b := range plan {
		var size int64
		for _, o := range b.Objects {
			size += o.SizeHint
		}
		first := ""
		if len(b.Objects) > 0 {
			first = b.Objects[0].RelativePath
		}
		table.AddRow([]string{b.Name, fmt.Sprint(len(b.Objects)), storage.FormatBytes(size), first})
	}
	sb.WriteString(table.String())
	sb.WriteString(fmt.Sprintf("\n%d object(s) in %d bucket(s)\n", plan.Total(), len(plan)))

	return sb.String()
}
