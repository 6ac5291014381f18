package preflight

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/afero"

	"github.com/oshokin/elixir-ls-installer/internal/config"
	"github.com/oshokin/elixir-ls-installer/internal/executor"
	"github.com/oshokin/elixir-ls-installer/internal/logger"
	"github.com/oshokin/elixir-ls-installer/internal/repository/receipt"
	"github.com/oshokin/elixir-ls-installer/internal/service/common"
	"github.com/oshokin/elixir-ls-installer/internal/shellprofile"
)

// Options are inputs accepted by the preflight entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
}

// Run inspects the machine without mutating it: required tools, the
// toolchain, every installation artifact and the shell profile are reported
// as present or absent. Only a missing required tool makes the check fail;
// everything else is informational.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "elixir-ls-preflight")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	var (
		fs       = afero.NewOsFs()
		run      = executor.NewExecRunner()
		receipts = receipt.NewFileRepository(fs, filepath.Join(cfg.ReleaseDir, receipt.Filename))
	)

	logger.InfoKV(ctx, "Checking required tools", "tools", cfg.RequiredTools())

	if err = common.CheckTools(ctx, run, cfg.RequiredTools()); err != nil {
		logger.ErrorKV(ctx, "Preflight check failed", "error", err)
		return err
	}

	reportToolchain(ctx, run, cfg)
	reportArtifacts(ctx, fs, run, cfg)
	reportProfile(ctx, fs, cfg)
	reportInstallState(ctx, receipts)

	logger.Info(ctx, "Preflight check passed")

	return nil
}

// reportToolchain reports the build tool and the Elixir version gate.
// Both are expected to be absent before the first installation, so nothing
// here is an error.
func reportToolchain(ctx context.Context, run executor.Runner, cfg *config.Config) {
	path, err := run.LookPath(common.BuildToolName)
	if err != nil {
		logger.WarnKV(ctx, "Build tool not found yet", "tool", common.BuildToolName)
		return
	}

	logger.InfoKV(ctx, "Build tool found", "tool", common.BuildToolName, "path", path)

	if cfg.MinElixirVersion == "" {
		return
	}

	output, err := run.Output(ctx, executor.Command{
		Name: common.ElixirExecutable,
		Args: []string{"--version"},
	})
	if err != nil {
		logger.Warnf(ctx, "Unable to query Elixir version: %v", err)
		return
	}

	installed, err := common.ParseElixirVersion(string(output))
	if err != nil {
		logger.Warnf(ctx, "Unable to parse Elixir version: %v", err)
		return
	}

	minimum, err := goversion.NewVersion(cfg.MinElixirVersion)
	if err != nil {
		logger.Warnf(ctx, "Invalid minimum Elixir version %q: %v", cfg.MinElixirVersion, err)
		return
	}

	if installed.LessThan(minimum) {
		logger.WarnKV(ctx, "Elixir is older than the supported minimum",
			"installed", installed.String(), "minimum", minimum.String())

		return
	}

	logger.InfoKV(ctx, "Elixir toolchain is recent enough", "version", installed.String())
}

// reportArtifacts reports the checkout, the release, the launcher and the alias.
func reportArtifacts(ctx context.Context, fs afero.Fs, run executor.Runner, cfg *config.Config) {
	reportPath(ctx, fs, "Checkout", cfg.InstallDir)
	reportPath(ctx, fs, "Release", cfg.ReleaseDir)
	reportPath(ctx, fs, "Launcher script", cfg.LauncherPath(common.LauncherScriptName))
	reportPath(ctx, fs, "Alias symlink", cfg.AliasPath(common.AliasName))

	if path, err := run.LookPath(common.AliasName); err == nil {
		logger.InfoKV(ctx, "Alias resolves", "alias", common.AliasName, "path", path)
	} else {
		logger.WarnKV(ctx, "Alias does not resolve", "alias", common.AliasName)
	}
}

// reportPath logs one artifact's presence at INFO or absence at WARN.
func reportPath(ctx context.Context, fs afero.Fs, what, path string) {
	if _, err := fs.Stat(path); err != nil {
		logger.WarnKV(ctx, what+" not found", "path", path)
		return
	}

	logger.InfoKV(ctx, what+" found", "path", path)
}

// reportProfile reports whether the PATH block is present in the profile.
func reportProfile(ctx context.Context, fs afero.Fs, cfg *config.Config) {
	content, err := afero.ReadFile(fs, cfg.ShellProfile)
	if err != nil {
		logger.WarnKV(ctx, "Shell profile not found", "path", cfg.ShellProfile)
		return
	}

	if shellprofile.ContainsBlock(string(content), cfg.BinDir) {
		logger.InfoKV(ctx, "Shell profile exports the binary directory", "path", cfg.ShellProfile)
		return
	}

	logger.WarnKV(ctx, "Shell profile does not export the binary directory", "path", cfg.ShellProfile)
}

// reportInstallState surfaces a previous installation if a receipt is present.
// Failures here are informational only; preflight never fails on receipt state.
func reportInstallState(ctx context.Context, receipts receipt.Repository) {
	existing, err := receipts.Load(ctx)
	if err != nil {
		if errors.Is(err, receipt.ErrNotFound) {
			logger.Info(ctx, "No previous installation recorded")
			return
		}

		logger.Warnf(ctx, "Unable to read install receipt: %v", err)

		return
	}

	logger.InfoKV(ctx, "Previous installation found",
		"version", existing.Version,
		"installed_at", existing.Timestamp.Format(time.RFC3339),
		"alias", existing.AliasPath)
}
