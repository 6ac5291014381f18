package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/elixir-ls-installer/internal/service/preflight"
)

// checkCmd reports the state of the host without changing anything.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report required tools and installed artifacts without changing anything.",
	Long: `Inspects the host the way the installer would, without root privileges.

Verifies the required tools resolve, reports the Elixir toolchain version
and lists which installation artifacts are already in place. Only a
missing required tool makes the check fail.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return preflight.Run(ctx, &preflight.Options{ConfigPath: configPath})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(checkCmd)
}
