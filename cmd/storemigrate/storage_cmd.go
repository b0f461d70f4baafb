// File: cmd/storemigrate/storage_cmd.go
package main

import (
	"fmt"
	"storemigrate/internal/config"
	"storemigrate/internal/flags"
	"storemigrate/internal/migration"
	"storemigrate/internal/provider/factory"
	"storemigrate/pkg/storage"
	"strings"

	"github.com/spf13/cobra"
)

type storageFlags struct {
	endpoints    []string
	endpoint     string
	bucket       string
	prefix       string
	wrappingRoot string
}

func newStorageCmd() *cobra.Command {
	cmdFlags := storageFlags{}

	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect the configured endpoints and exported archives",
		Long:  `The storage command lists buckets and objects on the source and destination endpoints, and previews what an archive migration would create.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List buckets",
		Long: `Lists buckets. If no flags are provided, it queries every configured endpoint.
Use the --endpoint flag to pick endpoints (e.g., --endpoint source).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			endpoints, err := resolveEndpointsForList(cmdFlags.endpoints, app.ProviderFactory)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(endpoints) == 0 {
				fmt.Fprintln(out, "No endpoints configured. Use 'storemigrate config set source.url <url>' and 'storemigrate config set source.key <key>'.")
				return nil
			}

			results, err := app.StorageService.ListAllBuckets(cmd.Context(), endpoints)
			if err != nil {
				return err
			}

			for _, name := range endpoints {
				buckets, ok := results[name]
				if !ok {
					fmt.Fprintf(out, "%s: unavailable (run with --debug for details)\n\n", name)
					continue
				}
				fmt.Fprintln(out, sectionTitle(app, name))
				if len(buckets) == 0 {
					fmt.Fprintln(out, "No buckets found.")
				} else {
					fmt.Fprintln(out, app.StorageFormatter.FormatBucketList(buckets))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	listCmd.Flags().StringSliceVarP(&cmdFlags.endpoints, flags.Endpoint, flags.EndpointShort, []string{}, "Endpoints to query (source, destination). Defaults to all configured endpoints.")

	objectsCmd := &cobra.Command{
		Use:   "objects",
		Short: "List the objects of a bucket",
		Long:  `Lists every object below a path of a bucket, descending into folders. You must specify the --endpoint and --bucket flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			objects, err := app.StorageService.ListObjects(cmd.Context(), cmdFlags.endpoint, cmdFlags.bucket, cmdFlags.prefix, app.Config.Migration.PageSize)
			if err != nil {
				return fmt.Errorf("error listing bucket '%s' on %s: %w", cmdFlags.bucket, cmdFlags.endpoint, err)
			}

			out := cmd.OutOrStdout()
			if len(objects) == 0 {
				fmt.Fprintln(out, "No objects found.")
				return nil
			}
			for _, o := range objects {
				fmt.Fprintf(out, "%10s  %-24s  %s\n", storage.FormatBytes(o.SizeHint), o.DeclaredContentType, o.RelativePath)
			}
			fmt.Fprintf(out, "\n%d object(s)\n", len(objects))
			return nil
		},
	}
	objectsCmd.Flags().StringVarP(&cmdFlags.endpoint, flags.Endpoint, flags.EndpointShort, config.EndpointSource, "The endpoint holding the bucket (source or destination)")
	objectsCmd.Flags().StringVarP(&cmdFlags.bucket, flags.Bucket, flags.BucketShort, "", "The bucket to list (required)")
	objectsCmd.MarkFlagRequired(flags.Bucket)
	objectsCmd.Flags().StringVar(&cmdFlags.prefix, flags.Prefix, "", "Only list objects below this folder")

	previewCmd := &cobra.Command{
		Use:   "preview [archive]",
		Short: "Preview the buckets an archive migration would create",
		Long:  `Reads an exported archive (.zip, .tar.gz, .tar.zst) and shows the bucket folders it contains and the plan a migration would follow. Nothing is uploaded.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			modeValue := app.Config.Migration.WrappingRoot
			if cmd.Flags().Changed(flags.WrappingRoot) {
				modeValue = cmdFlags.wrappingRoot
			}
			mode, err := migration.ParseRootMode(modeValue)
			if err != nil {
				return err
			}

			preview, err := app.StorageService.PreviewArchive(args[0], mode)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), app.StorageFormatter.FormatArchivePreview(string(preview.Format), preview.Files, preview.Detected, preview.Plan))
			return nil
		},
	}
	previewCmd.Flags().StringVar(&cmdFlags.wrappingRoot, flags.WrappingRoot, "", "Whether the archive has a project-id root folder: auto, present, or absent")

	storageCmd.AddCommand(listCmd, objectsCmd, previewCmd)
	return storageCmd
}

func sectionTitle(app *appContainer, endpoint string) string {
	ep, err := app.Config.Endpoint(endpoint)
	if err != nil {
		return endpoint
	}
	return fmt.Sprintf("%s (%s)", endpoint, ep.ProviderOrDefault())
}

func resolveEndpointsForList(requested []string, providerFactory *factory.Factory) ([]string, error) {
	if len(requested) == 0 {
		return providerFactory.GetConfiguredEndpoints(), nil
	}

	var validated []string
	seen := make(map[string]bool)

	for _, name := range requested {
		name = strings.ToLower(strings.TrimSpace(name))

		if seen[name] {
			continue
		}
		seen[name] = true

		if name != config.EndpointSource && name != config.EndpointDestination {
			return nil, fmt.Errorf("unknown endpoint '%s'. Endpoints are: %s, %s", name, config.EndpointSource, config.EndpointDestination)
		}
		if !providerFactory.IsConfigured(name) {
			return nil, fmt.Errorf("endpoint '%s' was requested but is not configured. Use 'storemigrate config set %s.<key> <value>'", name, name)
		}
		validated = append(validated, name)
	}

	return validated, nil
}
