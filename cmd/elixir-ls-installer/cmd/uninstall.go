package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/elixir-ls-installer/internal/service/uninstaller"
)

// uninstallCmd removes the artifacts a previous installation left behind.
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the installed release, aliases and PATH block.",
	Long: `Removes everything a previous installation put in place.

Deletes the source checkout and the packaged release, unlinks the
aliases from the binary directory and strips the PATH block from the
shell profile. Missing pieces are skipped, so a partial installation
can be removed too. Root privileges are required.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return uninstaller.Run(ctx, &uninstaller.Options{ConfigPath: configPath})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(uninstallCmd)
}
