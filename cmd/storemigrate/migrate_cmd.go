// File: cmd/storemigrate/migrate_cmd.go
package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"storemigrate/internal/config"
	"storemigrate/internal/flags"
	"storemigrate/internal/migration"
	"storemigrate/internal/ui/progress"
	"storemigrate/internal/ui/prompt"

	"github.com/spf13/cobra"
)

type migrateFlags struct {
	overwrite    bool
	concurrency  int
	pageSize     int
	wrappingRoot string
	report       string
	noProgress   bool
	yes          bool
}

func newMigrateCmd() *cobra.Command {
	cmdFlags := &migrateFlags{}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy buckets and objects to the destination endpoint",
		Long: `The migrate command copies every bucket and object into the configured destination, either live
from the source endpoint or from an exported archive. Buckets that already exist are reused and a failed
object never stops the run.`,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "Migrate from the source endpoint",
		Long:  `Lists every bucket of the source endpoint, walks its folders, and copies each object into the destination endpoint.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			opts, err := resolveOptions(cmd, app, cmdFlags)
			if err != nil {
				return err
			}

			message := fmt.Sprintf("This will copy every bucket from %s into %s.",
				endpointLabel(app.Config.Source), endpointLabel(app.Config.Destination))
			if ok, err := confirm(cmd.OutOrStdout(), app, cmdFlags, message); !ok || err != nil {
				return err
			}

			return runMigration(cmd, app, cmdFlags, "Migrating from "+endpointLabel(app.Config.Source),
				func(ctx context.Context, observer migration.Observer) (*migration.Report, error) {
					return app.MigrationService.MigrateLive(ctx, opts, observer)
				})
		},
	}

	archiveCmd := &cobra.Command{
		Use:   "archive [file]",
		Short: "Migrate from an exported archive",
		Long: `Replays an exported archive (.zip, .tar.gz, .tar.zst) into the destination endpoint. Top-level folders
become buckets; a single project-id folder wrapping them is detected and stripped (see --wrapping-root).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			opts, err := resolveOptions(cmd, app, cmdFlags)
			if err != nil {
				return err
			}

			preview, err := app.StorageService.PreviewArchive(args[0], opts.WrappingRoot)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.StorageFormatter.FormatArchivePreview(string(preview.Format), preview.Files, preview.Detected, preview.Plan))

			message := fmt.Sprintf("This will upload %d object(s) from %s into %s.",
				preview.Plan.Total(), args[0], endpointLabel(app.Config.Destination))
			if ok, err := confirm(cmd.OutOrStdout(), app, cmdFlags, message); !ok || err != nil {
				return err
			}

			return runMigration(cmd, app, cmdFlags, "Migrating "+args[0],
				func(ctx context.Context, observer migration.Observer) (*migration.Report, error) {
					return app.MigrationService.MigrateArchive(ctx, preview.Data, opts, observer)
				})
		},
	}
	archiveCmd.Flags().StringVar(&cmdFlags.wrappingRoot, flags.WrappingRoot, "", "Whether the archive has a project-id root folder: auto, present, or absent")

	for _, c := range []*cobra.Command{liveCmd, archiveCmd} {
		c.Flags().BoolVar(&cmdFlags.overwrite, flags.OverwriteExisting, true, "Replace objects already present at the destination (false skips them)")
		c.Flags().IntVar(&cmdFlags.concurrency, flags.Concurrency, 1, "Objects transferred in parallel within a bucket")
		c.Flags().IntVar(&cmdFlags.pageSize, flags.PageSize, 1000, "Items requested per listing call")
		c.Flags().StringVar(&cmdFlags.report, flags.Report, "", "Write a YAML report of the run to this file")
		c.Flags().BoolVar(&cmdFlags.noProgress, flags.NoProgress, false, "Print log lines instead of the interactive progress view")
		c.Flags().BoolVarP(&cmdFlags.yes, flags.Yes, flags.YesShort, false, "Skip the confirmation prompt")
	}

	migrateCmd.AddCommand(liveCmd, archiveCmd)
	return migrateCmd
}

// Starts from the configured defaults and applies only the flags given on the command line
func resolveOptions(cmd *cobra.Command, app *appContainer, f *migrateFlags) (migration.Options, error) {
	opts, err := app.MigrationService.DefaultOptions()
	if err != nil {
		return migration.Options{}, err
	}

	changed := cmd.Flags().Changed
	if changed(flags.OverwriteExisting) {
		opts.OverwriteExisting = f.overwrite
	}
	if changed(flags.Concurrency) {
		if f.concurrency < 1 {
			return migration.Options{}, fmt.Errorf("--%s must be at least 1", flags.Concurrency)
		}
		opts.Concurrency = f.concurrency
	}
	if changed(flags.PageSize) {
		if f.pageSize < 1 {
			return migration.Options{}, fmt.Errorf("--%s must be at least 1", flags.PageSize)
		}
		opts.PageSize = f.pageSize
	}
	if changed(flags.WrappingRoot) {
		mode, err := migration.ParseRootMode(f.wrappingRoot)
		if err != nil {
			return migration.Options{}, err
		}
		opts.WrappingRoot = mode
	}
	return opts, nil
}

// Asks the operator to type the destination name. Declining prints a note and is not an error
func confirm(out io.Writer, app *appContainer, f *migrateFlags, message string) (bool, error) {
	var p prompt.Prompter = app.Prompter
	if f.yes {
		p = prompt.AutoPrompter{}
	}

	ok, err := p.Confirm(message, endpointLabel(app.Config.Destination))
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(out, "Migration cancelled.")
	}
	return ok, nil
}

// Short name of an endpoint: the URL host, else the project, else the provider
func endpointLabel(ep config.EndpointConfig) string {
	if ep.URL != "" {
		if u, err := url.Parse(ep.URL); err == nil && u.Host != "" {
			return u.Host
		}
		return ep.URL
	}
	if ep.Project != "" {
		return ep.Project
	}
	return ep.ProviderOrDefault().String()
}

func runMigration(cmd *cobra.Command, app *appContainer, f *migrateFlags, title string, work progress.Work) error {
	out := cmd.OutOrStdout()
	interactive := !f.noProgress && !app.Debug

	var report *migration.Report
	var err error
	if interactive {
		restore := app.muteLogging()
		report, err = progress.RunInteractive(cmd.Context(), title, cmd.InOrStdin(), out, work)
		restore()
	} else {
		report, err = work(cmd.Context(), progress.NewPlainObserver(out))
	}

	if report == nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, app.MigrationFormatter.FormatReport(report))
	if interactive && (report.Failed > 0 || report.BucketsFailed > 0 || report.State == migration.StateFailed) {
		fmt.Fprintln(out)
		fmt.Fprint(out, app.MigrationFormatter.FormatLog(report.Log, migration.SeverityWarning))
	}

	if f.report != "" {
		if werr := report.WriteFile(f.report); werr != nil {
			app.Logger.Error("Failed to write report", "path", f.report, "error", werr)
			if err == nil {
				return werr
			}
		} else {
			fmt.Fprintf(out, "Report written to %s\n", f.report)
		}
	}

	// Non-nil only when the run ended Failed
	return err
}
