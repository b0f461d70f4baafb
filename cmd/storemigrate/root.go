// File: cmd/storemigrate/root.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"storemigrate/internal/flags"
	"syscall"

	"github.com/spf13/cobra"
)

type appContextKey struct{}

// Options shared by every command
type rootFlags struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	cmdFlags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "storemigrate",
		Short: "storemigrate copies buckets and objects between object-storage services.",
		Long: `A CLI to migrate object storage from one service to another, either live from a
source endpoint or by replaying an exported archive. Configure a source and a
destination, preview what will be copied, and run the migration from one place.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmdFlags.configPath, cmdFlags.debug, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appContextKey{}, app))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cmdFlags.configPath, flags.Config, "", "Path to the configuration file (default ~/.config/storemigrate/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&cmdFlags.debug, flags.Debug, flags.DebugShort, false, "Enable debug logging")

	rootCmd.AddCommand(newMigrateCmd(), newStorageCmd(), newConfigCmd(cmdFlags))
	return rootCmd
}

func appFromContext(ctx context.Context) (*appContainer, error) {
	app, ok := ctx.Value(appContextKey{}).(*appContainer)
	if !ok || app == nil {
		return nil, errors.New("application not initialized")
	}
	return app, nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
