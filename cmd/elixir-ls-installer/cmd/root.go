package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/elixir-ls-installer/internal/config"
	"github.com/oshokin/elixir-ls-installer/internal/logger"
	"github.com/oshokin/elixir-ls-installer/internal/service/installer"
	"github.com/oshokin/elixir-ls-installer/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel names the lowest severity that is logged.
	logLevel string
	// skipProfile leaves the shell profile untouched.
	skipProfile bool

	// rootCmd represents the base command for installing ElixirLS from source.
	rootCmd = &cobra.Command{
		Use:   "elixir-ls-installer",
		Short: "Install the ElixirLS language server from source.",
		Long: `Installs the ElixirLS language server on a dnf-based Linux host.

Installs the Erlang and Elixir packages, clones the ElixirLS sources,
compiles a release in the production profile and publishes the elixir-ls
alias on the PATH. The run is linear and stops at the first failure;
nothing is retried or rolled back.

Root privileges are required because system packages are installed and
the system binary directory is modified.`,
		Args: cobra.NoArgs,
		// A failed installation already reports itself, the usage text
		// would only bury the error.
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level: %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return installer.Run(ctx, &installer.Options{
				ConfigPath:  configPath,
				SkipProfile: skipProfile,
			})
		},
	}
)

// Execute runs the elixir-ls-installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	// The settings path defaults to empty so a bare host without a
	// settings file runs on the built-in defaults.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "",
			"path to configuration file (defaults to "+config.DefaultConfigFilename+" when present)")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "info", "lowest severity to log (debug, info, warn, error)")

	// Hidden flag to leave the shell profile alone on managed hosts.
	rootCmd.Flags().BoolVar(&skipProfile, "skip-profile", false, "do not update the shell profile")

	err := rootCmd.Flags().MarkHidden("skip-profile")
	if err != nil {
		panic(err)
	}
}
