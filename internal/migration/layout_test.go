// File: internal/migration/layout_test.go
package migration

import (
	"storemigrate/pkg/archive"
	"testing"

	"github.com/stretchr/testify/assert"
)

const projectRoot = "proj123456789012345678"

func files(paths ...string) []archive.Entry {
	entries := make([]archive.Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, archive.Entry{Path: p})
	}
	return entries
}

// Flattens a plan into bucket -> relative paths for comparison
func layout(plan Plan) map[string][]string {
	out := make(map[string][]string)
	for _, b := range plan {
		for _, o := range b.Objects {
			out[b.Name] = append(out[b.Name], o.RelativePath)
		}
	}
	return out
}

func TestInfer(t *testing.T) {
	tests := []struct {
		name    string
		entries []archive.Entry
		mode    RootMode
		want    map[string][]string
	}{
		{
			name:    "wrapping root is stripped",
			entries: files(projectRoot+"/photos/a.png", projectRoot+"/docs/b.pdf"),
			mode:    RootAuto,
			want:    map[string][]string{"photos": {"a.png"}, "docs": {"b.pdf"}},
		},
		{
			name:    "bucket folders at the top",
			entries: files("photos/a.png", "docs/b.pdf"),
			mode:    RootAuto,
			want:    map[string][]string{"photos": {"a.png"}, "docs": {"b.pdf"}},
		},
		{
			name:    "root level files are skipped",
			entries: files("readme.txt", "photos/a.png"),
			mode:    RootAuto,
			want:    map[string][]string{"photos": {"a.png"}},
		},
		{
			name:    "files directly under the wrapping root are skipped",
			entries: files(projectRoot+"/manifest.json", projectRoot+"/photos/2024/a.png"),
			mode:    RootAuto,
			want:    map[string][]string{"photos": {"2024/a.png"}},
		},
		{
			name: "directory entries never become objects",
			entries: []archive.Entry{
				{Path: "photos", IsDir: true},
				{Path: "photos/2024", IsDir: true},
				{Path: "photos/2024/a.png"},
			},
			mode: RootAuto,
			want: map[string][]string{"photos": {"2024/a.png"}},
		},
		{
			name:    "single short root is a bucket",
			entries: files("photos/a.png", "photos/2024/b.png"),
			mode:    RootAuto,
			want:    map[string][]string{"photos": {"a.png", "2024/b.png"}},
		},
		{
			name:    "uppercase identifier is not a wrapping root",
			entries: files("PROJ123456789012345678/photos/a.png"),
			mode:    RootAuto,
			want:    map[string][]string{"PROJ123456789012345678": {"photos/a.png"}},
		},
		{
			name:    "long bucket name next to another bucket stays a bucket",
			entries: files("abcdefghijklmnopqrstuvwxyz/a.png", "docs/b.pdf"),
			mode:    RootAuto,
			want:    map[string][]string{"abcdefghijklmnopqrstuvwxyz": {"a.png"}, "docs": {"b.pdf"}},
		},
		{
			name:    "forced present strips a short root",
			entries: files("export/photos/a.png", "export/readme.txt"),
			mode:    RootPresent,
			want:    map[string][]string{"photos": {"a.png"}},
		},
		{
			name:    "forced absent keeps an identifier root as bucket",
			entries: files(projectRoot + "/photos/a.png"),
			mode:    RootAbsent,
			want:    map[string][]string{projectRoot: {"photos/a.png"}},
		},
		{
			name:    "duplicate paths keep the first occurrence",
			entries: files("photos/a.png", "photos//a.png", "photos/b.png"),
			mode:    RootAuto,
			want:    map[string][]string{"photos": {"a.png", "b.png"}},
		},
		{
			name:    "nothing usable",
			entries: files("readme.txt"),
			mode:    RootAuto,
			want:    map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, layout(Infer(tt.entries, tt.mode)))
		})
	}
}

func TestInferKeepsOrderAndSourceKeys(t *testing.T) {
	plan := Infer(files(projectRoot+"/docs/b.pdf", projectRoot+"/photos/a.png", projectRoot+"/docs/c.pdf"), RootAuto)

	assert.Len(t, plan, 2)
	assert.Equal(t, "docs", plan[0].Name)
	assert.Equal(t, "photos", plan[1].Name)
	assert.Equal(t, projectRoot+"/docs/c.pdf", plan[0].Objects[1].SourceKey)
	assert.Equal(t, 3, plan.Total())
	for _, b := range plan {
		for _, o := range b.Objects {
			assert.NotEmpty(t, o.RelativePath)
		}
	}
}

func TestDetectBuckets(t *testing.T) {
	entries := files(projectRoot+"/photos/a.png", projectRoot+"/docs/b.pdf")
	assert.Equal(t, []string{"docs", "photos"}, DetectBuckets(entries))

	// Second segments of deep paths are candidates too, so the preview can over-report
	entries = files("photos/2024/a.png", "docs/b.pdf")
	assert.Equal(t, []string{"2024", "docs", "photos"}, DetectBuckets(entries))
	assert.Equal(t, map[string][]string{"photos": {"2024/a.png"}, "docs": {"b.pdf"}}, layout(Infer(entries, RootAuto)))
}

func TestIsOpaqueID(t *testing.T) {
	assert.True(t, IsOpaqueID("proj123456789012345678"))
	assert.True(t, IsOpaqueID("abcdefghijklmnopqrst"))
	assert.False(t, IsOpaqueID("abcdefghijklmnopqrs"))
	assert.False(t, IsOpaqueID("my-project-123456789012"))
}
