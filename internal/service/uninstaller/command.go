package uninstaller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/oshokin/elixir-ls-installer/internal/config"
	"github.com/oshokin/elixir-ls-installer/internal/logger"
	"github.com/oshokin/elixir-ls-installer/internal/repository/receipt"
	"github.com/oshokin/elixir-ls-installer/internal/service/common"
	"github.com/oshokin/elixir-ls-installer/internal/shellprofile"
	"github.com/oshokin/elixir-ls-installer/internal/version"
)

var (
	errInstallerRunning = errors.New("the installer is running now")
	errRootRequired     = errors.New("root privileges are required")
)

// Options are inputs accepted by the uninstaller entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
}

// runner holds the state for a single uninstallation.
// It is intentionally unexported—call Run(ctx, *Options) from callers.
type runner struct {
	cfg      *config.Config     // Installation settings loaded from YAML.
	fs       afero.Fs           // Filesystem the artifacts are removed from.
	receipts receipt.Repository // Reads the install receipt for the summary.
	geteuid  func() int         // Reports the effective user id; swappable in tests.
}

// Run removes an installation and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "elixir-ls-uninstaller")

	u, err := newRunner(ctx, opts)
	if err != nil {
		logger.ErrorKV(ctx, "Uninstallation failed", "error", err)
		return err
	}

	defer u.cleanup(ctx)

	if err = u.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Uninstallation failed", "error", err)
		return err
	}

	logger.Info(ctx, "Uninstallation completed")

	return nil
}

// newRunner prepares the run. It refuses to continue without root
// privileges and shares the run marker with the installer, so artifacts
// are never removed underneath a running installation.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	u := &runner{
		fs:      afero.NewOsFs(),
		geteuid: os.Geteuid,
	}

	logger.InfoKV(ctx, "Starting uninstallation", "version", version.Short())

	if err := u.requireRoot(ctx); err != nil {
		return u, err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return u, fmt.Errorf("load configuration: %w", err)
	}

	u.cfg = cfg
	u.receipts = receipt.NewFileRepository(u.fs, filepath.Join(cfg.ReleaseDir, receipt.Filename))

	if common.IsInstallerRunningNow(ctx, u.fs) {
		return u, errInstallerRunning
	}

	if err = common.WriteRunMarker(u.fs); err != nil {
		return u, err
	}

	return u, nil
}

// Run executes the workflow for this runner instance:
// 1) Report what the last installation recorded, when a receipt exists.
// 2) Remove the published aliases from the binary directory.
// 3) Remove the release directory and the source checkout.
// 4) Strip the PATH block from the shell profile.
func (u *runner) Run(ctx context.Context) error {
	u.reportReceipt(ctx)

	if err := u.removeAliases(ctx); err != nil {
		return fmt.Errorf("remove aliases: %w", err)
	}

	if err := u.removeDirectories(ctx); err != nil {
		return fmt.Errorf("remove directories: %w", err)
	}

	if err := u.restoreShellProfile(ctx); err != nil {
		return fmt.Errorf("restore shell profile: %w", err)
	}

	return nil
}

// requireRoot stops the run before any mutation when not elevated.
func (u *runner) requireRoot(ctx context.Context) error {
	logger.Info(ctx, "Checking for root privileges")

	if id := u.geteuid(); id != 0 {
		return fmt.Errorf("%w (effective uid %d)", errRootRequired, id)
	}

	return nil
}

// reportReceipt logs what the last run recorded. A missing or unreadable
// receipt does not stop the uninstallation, it only loses the summary.
func (u *runner) reportReceipt(ctx context.Context) {
	record, err := u.receipts.Load(ctx)
	if err != nil {
		if errors.Is(err, receipt.ErrNotFound) {
			logger.Warn(ctx, "No install receipt found, removing configured paths")
			return
		}

		logger.WarnKV(ctx, "Install receipt is unreadable", "error", err)

		return
	}

	logger.InfoKV(ctx, "Removing installation",
		"version", record.Version, "installed_at", record.Timestamp.Format(time.RFC3339))
}

// removeAliases drops the alias symlinks. An absent alias is reported
// and skipped so a partial installation can still be removed.
func (u *runner) removeAliases(ctx context.Context) error {
	for _, alias := range []string{common.AliasName, common.DebugAdapterAliasName} {
		aliasPath := u.cfg.AliasPath(alias)

		if err := u.fs.Remove(aliasPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.WarnKV(ctx, "Alias not found, skipping", "alias", aliasPath)
				continue
			}

			return err
		}

		logger.InfoKV(ctx, "Alias removed", "alias", aliasPath)
	}

	return nil
}

// removeDirectories removes the release directory and the source checkout.
func (u *runner) removeDirectories(ctx context.Context) error {
	for _, dir := range []string{u.cfg.ReleaseDir, u.cfg.InstallDir} {
		if _, err := u.fs.Stat(dir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.WarnKV(ctx, "Directory not found, skipping", "path", dir)
				continue
			}

			return err
		}

		logger.InfoKV(ctx, "Removing directory", "path", dir)

		if err := u.fs.RemoveAll(dir); err != nil {
			return err
		}
	}

	return nil
}

// restoreShellProfile strips the PATH block the installer appended.
// Profiles without the block are left untouched.
func (u *runner) restoreShellProfile(ctx context.Context) error {
	profilePath := u.cfg.ShellProfile

	content, err := afero.ReadFile(u.fs, profilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Shell profile not found, skipping", "path", profilePath)
			return nil
		}

		return err
	}

	if !shellprofile.ContainsBlock(string(content), u.cfg.BinDir) {
		logger.InfoKV(ctx, "Shell profile does not export the binary directory", "path", profilePath)
		return nil
	}

	logger.InfoKV(ctx, "Restoring shell profile", "path", profilePath)

	restored := shellprofile.Strip(string(content), u.cfg.BinDir)

	return shellprofile.Rewrite(profilePath, []byte(restored), shellprofile.DefaultProfileMode)
}

// cleanup removes the run marker.
func (u *runner) cleanup(ctx context.Context) {
	common.RemoveRunMarker(u.fs)
	logger.Info(ctx, "The uninstaller has been stopped")
}
