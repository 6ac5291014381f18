package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/afero"

	"github.com/oshokin/elixir-ls-installer/internal/config"
	domain "github.com/oshokin/elixir-ls-installer/internal/domain/install"
	"github.com/oshokin/elixir-ls-installer/internal/executor"
	"github.com/oshokin/elixir-ls-installer/internal/logger"
	"github.com/oshokin/elixir-ls-installer/internal/repository/receipt"
	"github.com/oshokin/elixir-ls-installer/internal/service/common"
	"github.com/oshokin/elixir-ls-installer/internal/shellprofile"
	"github.com/oshokin/elixir-ls-installer/internal/version"
)

var (
	errInstallerAlreadyRunning = errors.New("the installer is already running")
	errRootRequired            = errors.New("root privileges are required")
	errLauncherMissing         = errors.New("launcher script is missing from the release")
	errAliasUnresolvable       = errors.New("alias does not resolve on the search path")
	errElixirTooOld            = errors.New("installed Elixir is older than the supported minimum")
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// SkipProfile leaves the shell profile untouched when set.
	SkipProfile bool
}

// runner holds the state and helpers for a single installation.
// It is intentionally unexported—call Run(ctx, *Options) from callers.
type runner struct {
	cfg         *config.Config     // Installation settings loaded from YAML.
	fs          afero.Fs           // Filesystem the installation lands on.
	run         executor.Runner    // Executes external tools (git, dnf, mix).
	receipts    receipt.Repository // Stores the install receipt.
	actor       *domain.Actor      // Who is running the installation.
	profilePath string             // Profile actually updated, for the receipt.
	skipProfile bool               // Leaves the shell profile untouched when set.
	geteuid     func() int         // Reports the effective user id; swappable in tests.
}

// Run executes the installation sequence and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "elixir-ls-installer")

	ins, err := newRunner(ctx, opts)
	if err != nil {
		logger.ErrorKV(ctx, "Installation failed", "error", err)
		return err
	}

	defer ins.cleanup(ctx)

	if err = ins.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Installation failed", "error", err)
		return err
	}

	logger.Info(ctx, "Installation completed")

	return nil
}

// newRunner prepares the run: it refuses to continue without root privileges
// and writes a marker to avoid concurrent runs. The marker is only written
// once the run is known to proceed, so an already-running installation never
// loses its own marker to a second invocation.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	i := &runner{
		fs:          afero.NewOsFs(),
		run:         executor.NewExecRunner(),
		skipProfile: opts.SkipProfile,
		geteuid:     os.Geteuid,
	}

	actor, err := common.DetectActor()
	if err != nil {
		return i, fmt.Errorf("detect actor: %w", err)
	}

	i.actor = actor

	logger.InfoKV(ctx, "Starting installation",
		"version", version.Short(), "host", actor.Hostname, "user", actor.Username)

	if err = i.requireRoot(ctx); err != nil {
		return i, err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return i, fmt.Errorf("load configuration: %w", err)
	}

	i.cfg = cfg
	i.receipts = receipt.NewFileRepository(i.fs, filepath.Join(cfg.ReleaseDir, receipt.Filename))

	if common.IsInstallerRunningNow(ctx, i.fs) {
		return i, errInstallerAlreadyRunning
	}

	if err = common.WriteRunMarker(i.fs); err != nil {
		return i, err
	}

	return i, nil
}

// Run executes the workflow for this runner instance:
// 1) Verify required tools are resolvable.
// 2) Create the checkout and release directories.
// 3) Install the toolchain packages and verify the build tool.
// 4) Clone the sources and build a production release.
// 5) Wire the launcher, the alias and the shell profile.
// 6) Verify the alias and record the install receipt.
func (i *runner) Run(ctx context.Context) error {
	logger.Info(ctx, "Checking for required tools")

	if err := common.CheckTools(ctx, i.run, i.cfg.RequiredTools()); err != nil {
		return fmt.Errorf("check required tools: %w", err)
	}

	if err := i.prepareDirectories(ctx); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	if err := i.installToolchain(ctx); err != nil {
		return fmt.Errorf("install toolchain: %w", err)
	}

	if err := i.buildRelease(ctx); err != nil {
		return fmt.Errorf("build release: %w", err)
	}

	if err := i.wireLauncher(ctx); err != nil {
		return fmt.Errorf("wire launcher: %w", err)
	}

	if err := i.updateShellProfile(ctx); err != nil {
		return fmt.Errorf("update shell profile: %w", err)
	}

	if err := i.verifyAlias(ctx); err != nil {
		return fmt.Errorf("verify alias: %w", err)
	}

	if err := i.writeReceipt(ctx); err != nil {
		return fmt.Errorf("write install receipt: %w", err)
	}

	logger.Infof(ctx, "Run 'source %s' or open a new shell to start using %s",
		i.cfg.ShellProfile, common.AliasName)

	return nil
}

// requireRoot stops the run before any mutation when not elevated.
func (i *runner) requireRoot(ctx context.Context) error {
	logger.Info(ctx, "Checking for root privileges")

	if id := i.geteuid(); id != 0 {
		return fmt.Errorf("%w (effective uid %d)", errRootRequired, id)
	}

	return nil
}

// prepareDirectories creates the checkout and release directories,
// including missing parents.
func (i *runner) prepareDirectories(ctx context.Context) error {
	for _, dir := range []string{i.cfg.InstallDir, i.cfg.ReleaseDir} {
		logger.InfoKV(ctx, "Creating directory", "path", dir)

		if err := i.fs.MkdirAll(dir, DefaultFileMode); err != nil {
			return err
		}
	}

	return nil
}

// installToolchain installs the runtime and toolchain packages and makes
// sure the build tool they provide is actually usable.
func (i *runner) installToolchain(ctx context.Context) error {
	words, err := executor.ParseLine(i.cfg.InstallCommand)
	if err != nil {
		return err
	}

	command := executor.Command{
		Name: words[0],
		Args: append(words[1:], i.cfg.Packages...),
	}

	logger.InfoKV(ctx, "Installing packages", "command", command.String())

	if err = i.runCommand(ctx, command); err != nil {
		return err
	}

	logger.Info(ctx, "Verifying the build tool is available")

	if _, err = i.run.LookPath(common.BuildToolName); err != nil {
		return fmt.Errorf("%w: %s", common.ErrToolMissing, common.BuildToolName)
	}

	return i.checkElixirVersion(ctx)
}

// checkElixirVersion rejects toolchains older than the configured minimum.
// ElixirLS itself refuses to compile on them, so failing here saves a long
// build that would die halfway through. An empty minimum turns the check off.
func (i *runner) checkElixirVersion(ctx context.Context) error {
	if i.cfg.MinElixirVersion == "" {
		return nil
	}

	minimum, err := goversion.NewVersion(i.cfg.MinElixirVersion)
	if err != nil {
		return fmt.Errorf("parse minimum Elixir version: %w", err)
	}

	output, err := i.outputCommand(ctx, executor.Command{
		Name: common.ElixirExecutable,
		Args: []string{"--version"},
	})
	if err != nil {
		return fmt.Errorf("query Elixir version: %w", err)
	}

	installed, err := common.ParseElixirVersion(string(output))
	if err != nil {
		return err
	}

	if installed.LessThan(minimum) {
		return fmt.Errorf("%w: found %s, need at least %s", errElixirTooOld, installed, minimum)
	}

	logger.InfoKV(ctx, "Elixir toolchain is recent enough", "version", installed.String())

	return nil
}

// buildRelease turns a fresh checkout into a packaged release.
// A previous checkout is removed first so a re-run never fails on it.
func (i *runner) buildRelease(ctx context.Context) error {
	if _, err := i.fs.Stat(i.cfg.InstallDir); err == nil {
		logger.InfoKV(ctx, "Removing previous checkout", "path", i.cfg.InstallDir)

		if err = i.fs.RemoveAll(i.cfg.InstallDir); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Cloning repository", "url", i.cfg.RepositoryURL, "path", i.cfg.InstallDir)

	if err := i.runCommand(ctx, executor.Command{
		Name: common.GitExecutable,
		Args: []string{"clone", i.cfg.RepositoryURL, i.cfg.InstallDir},
	}); err != nil {
		return err
	}

	logger.Info(ctx, "Fetching build dependencies")

	if err := i.runCommand(ctx, executor.Command{
		Name: common.BuildToolName,
		Args: []string{"deps.get"},
		Dir:  i.cfg.InstallDir,
		Env:  productionEnvironment(),
	}); err != nil {
		return err
	}

	logger.Info(ctx, "Compiling in the production profile")

	if err := i.runCommand(ctx, executor.Command{
		Name: common.BuildToolName,
		Args: []string{"compile"},
		Dir:  i.cfg.InstallDir,
		Env:  productionEnvironment(),
	}); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Packaging the release", "path", i.cfg.ReleaseDir)

	return i.runCommand(ctx, executor.Command{
		Name: common.BuildToolName,
		Args: []string{releaseTask, "-o", i.cfg.ReleaseDir},
		Dir:  i.cfg.InstallDir,
		Env:  productionEnvironment(),
	})
}

// wireLauncher marks the generated launcher executable and publishes the
// short aliases. A release without the launcher script is malformed and
// stops the run; the debug adapter is optional and only warned about.
func (i *runner) wireLauncher(ctx context.Context) error {
	launcher := i.cfg.LauncherPath(common.LauncherScriptName)

	if _, err := i.fs.Stat(launcher); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", errLauncherMissing, launcher)
		}

		return err
	}

	if err := i.publishLauncher(ctx, launcher, common.AliasName); err != nil {
		return err
	}

	debugAdapter := i.cfg.LauncherPath(common.DebugAdapterScriptName)
	if _, err := i.fs.Stat(debugAdapter); err != nil {
		// Older releases do not ship the debug adapter.
		logger.WarnKV(ctx, "Debug adapter script not found, skipping", "path", debugAdapter)

		return nil
	}

	return i.publishLauncher(ctx, debugAdapter, common.DebugAdapterAliasName)
}

// publishLauncher marks one launcher script executable and links its alias.
func (i *runner) publishLauncher(ctx context.Context, launcher, alias string) error {
	if err := i.fs.Chmod(launcher, DefaultFileMode); err != nil {
		return err
	}

	aliasPath := i.cfg.AliasPath(alias)

	logger.InfoKV(ctx, "Linking alias", "alias", aliasPath, "target", launcher)

	return i.replaceSymlink(launcher, aliasPath)
}

// replaceSymlink points link at target, dropping any previous link first.
func (i *runner) replaceSymlink(target, link string) error {
	linker, ok := i.fs.(afero.Linker)
	if !ok {
		return &os.LinkError{Op: "symlink", Old: target, New: link, Err: afero.ErrNoSymlink}
	}

	if err := i.fs.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return linker.SymlinkIfPossible(target, link)
}

// updateShellProfile appends the PATH block to the user's profile.
// The block is only appended when absent, so re-runs do not pile up
// duplicate lines; the rewrite itself is atomic and keeps a backup.
func (i *runner) updateShellProfile(ctx context.Context) error {
	if i.skipProfile {
		logger.Warn(ctx, "Skipping shell profile update as requested")
		return nil
	}

	profilePath := i.cfg.ShellProfile

	content, err := afero.ReadFile(i.fs, profilePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if shellprofile.ContainsBlock(string(content), i.cfg.BinDir) {
		logger.InfoKV(ctx, "Shell profile already exports the binary directory", "path", profilePath)
		i.profilePath = profilePath

		return nil
	}

	logger.InfoKV(ctx, "Updating shell profile", "path", profilePath)

	updated := shellprofile.Append(string(content), i.cfg.BinDir)
	if err = shellprofile.Rewrite(profilePath, []byte(updated), shellprofile.DefaultProfileMode); err != nil {
		return err
	}

	i.profilePath = profilePath

	return nil
}

// verifyAlias confirms the freshly linked alias resolves on the search path.
func (i *runner) verifyAlias(ctx context.Context) error {
	path, err := i.run.LookPath(common.AliasName)
	if err != nil {
		return fmt.Errorf("%w: %s", errAliasUnresolvable, common.AliasName)
	}

	logger.InfoKV(ctx, "Alias resolves", "alias", common.AliasName, "path", path)

	return nil
}

// writeReceipt records where every artifact landed inside the release
// directory, for later preflight reports and uninstallation.
func (i *runner) writeReceipt(ctx context.Context) error {
	record := &domain.Receipt{
		Version:      version.Short(),
		Timestamp:    time.Now(),
		Actor:        i.actor.Clone(),
		CheckoutDir:  i.cfg.InstallDir,
		ReleaseDir:   i.cfg.ReleaseDir,
		LauncherPath: i.cfg.LauncherPath(common.LauncherScriptName),
		AliasPath:    i.cfg.AliasPath(common.AliasName),
		ProfilePath:  i.profilePath,
	}

	if err := i.receipts.Save(ctx, record); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Install receipt written",
		"path", filepath.Join(i.cfg.ReleaseDir, receipt.Filename))

	return nil
}

// cleanup removes the run marker. Partly installed state is deliberately
// left in place for inspection.
func (i *runner) cleanup(ctx context.Context) {
	common.RemoveRunMarker(i.fs)
	logger.Info(ctx, "The installer has been stopped")
}
