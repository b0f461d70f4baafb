// File: cmd/storemigrate/cmd_test.go
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"storemigrate/internal/config"
	"storemigrate/internal/migration"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs the CLI with a private config file and returns what it printed
func execute(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, path, "config", "set", "destination.url", "https://abc.supabase.co")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration set: destination.url = https://abc.supabase.co")

	out, err = execute(t, path, "config", "set", "destination.key", "service-role-secret-1234")
	require.NoError(t, err)
	assert.Contains(t, out, "destination.key = ****1234")

	out, err = execute(t, path, "config", "get", "destination.key")
	require.NoError(t, err)
	assert.Contains(t, out, "****1234")
	assert.NotContains(t, out, "service-role")

	out, err = execute(t, path, "config", "get", "destination.key", "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, "service-role-secret-1234")

	out, err = execute(t, path, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "destination.url = https://abc.supabase.co")
	assert.Contains(t, out, "migration.page_size = 1000")

	_, err = execute(t, path, "config", "set", "migration.concurrency", "0")
	assert.Error(t, err)

	out, err = execute(t, path, "config", "delete", "destination.key")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = execute(t, path, "config", "get", "destination.key")
	assert.Error(t, err)
}

func TestStoragePreviewCommand(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range []string{"avatars/u1/me.png", "docs/readme.md", "stray.txt"} {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	archivePath := filepath.Join(dir, "export.zip")
	require.NoError(t, os.WriteFile(archivePath, buf.Bytes(), 0644))

	out, err := execute(t, filepath.Join(dir, "config.yaml"), "storage", "preview", archivePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Archive (zip): 3 file(s)")
	assert.Contains(t, out, "avatars")
	assert.Contains(t, out, "2 object(s) in 2 bucket(s)")

	_, err = execute(t, filepath.Join(dir, "config.yaml"), "storage", "preview", archivePath, "--wrapping-root", "sideways")
	assert.Error(t, err)
}

func TestStorageListWithoutEndpoints(t *testing.T) {
	out, err := execute(t, filepath.Join(t.TempDir(), "config.yaml"), "storage", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No endpoints configured")

	_, err = execute(t, filepath.Join(t.TempDir(), "config.yaml"), "storage", "list", "--endpoint", "elsewhere")
	assert.Error(t, err)
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "abc.supabase.co", endpointLabel(config.EndpointConfig{URL: "https://abc.supabase.co/"}))
	assert.Equal(t, "my-project", endpointLabel(config.EndpointConfig{Provider: "gcp", Project: "my-project"}))
	assert.Equal(t, "s3", endpointLabel(config.EndpointConfig{Provider: "s3"}))
	assert.Equal(t, "supabase", endpointLabel(config.EndpointConfig{}))
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "https://x", displayValue("source.url", "https://x"))
	assert.Equal(t, "****", displayValue("source.key", "short"))
	assert.Equal(t, "****wxyz", displayValue("destination.secret", "abcdefghijwxyz"))
	assert.Equal(t, "", displayValue("source.key", ""))
}

func TestResolveOptionsAppliesOnlyChangedFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := execute(t, path, "config", "set", "migration.concurrency", "3")
	require.NoError(t, err)

	app, err := newApp(path, false, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)

	cmd := newMigrateCmd()
	live, _, err := cmd.Find([]string{"live"})
	require.NoError(t, err)
	f := &migrateFlags{}
	require.NoError(t, live.Flags().Set("page-size", "250"))
	f.pageSize = 250

	opts, err := resolveOptions(live, app, f)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Concurrency)
	assert.Equal(t, 250, opts.PageSize)
	assert.True(t, opts.OverwriteExisting)
	assert.Equal(t, migration.RootAuto, opts.WrappingRoot)
}

func TestRunMigrationPlainOutputAndReport(t *testing.T) {
	dir := t.TempDir()
	app, err := newApp(filepath.Join(dir, "config.yaml"), false, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	reportPath := filepath.Join(dir, "report.yaml")
	f := &migrateFlags{noProgress: true, report: reportPath}
	work := func(ctx context.Context, observer migration.Observer) (*migration.Report, error) {
		entry := migration.LogEntry{Message: "Failed docs/a.txt: boom", Severity: migration.SeverityError, Timestamp: time.Now()}
		observer.OnLog(entry)
		return &migration.Report{
			RunID:    "run-7",
			Mode:     migration.ModeArchive,
			State:    migration.StateCompleted,
			Progress: migration.Progress{Processed: 1, Total: 1},
			Failed:   1,
			Log:      []migration.LogEntry{entry},
		}, nil
	}

	require.NoError(t, runMigration(cmd, app, f, "test", work))
	assert.Contains(t, out.String(), "Failed docs/a.txt: boom")
	assert.Contains(t, out.String(), "Migration run-7")
	assert.Contains(t, out.String(), "Report written to "+reportPath)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id: run-7")
}

func TestRunMigrationPropagatesFailure(t *testing.T) {
	app, err := newApp(filepath.Join(t.TempDir(), "config.yaml"), false, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetContext(context.Background())

	work := func(ctx context.Context, observer migration.Observer) (*migration.Report, error) {
		return &migration.Report{State: migration.StateFailed, Reason: "credential failure"}, migration.ErrCredential
	}
	err = runMigration(cmd, app, &migrateFlags{noProgress: true}, "test", work)
	assert.ErrorIs(t, err, migration.ErrCredential)

	err = runMigration(cmd, app, &migrateFlags{noProgress: true}, "test", func(ctx context.Context, observer migration.Observer) (*migration.Report, error) {
		return nil, migration.ErrRunInProgress
	})
	assert.ErrorIs(t, err, migration.ErrRunInProgress)
}
