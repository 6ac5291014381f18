package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidateFillsDefaults ensures an empty configuration ends up fully populated.
func TestValidateFillsDefaults(t *testing.T) {
	t.Parallel()

	cfg := new(Config)
	require.NoError(t, Validate(cfg))

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Equal(t, filepath.Join(home, ".elixir-ls"), cfg.InstallDir)
	require.Equal(t, filepath.Join(home, ".bashrc"), cfg.ShellProfile)
	require.Equal(t, DefaultRepositoryURL, cfg.RepositoryURL)
	require.Equal(t, DefaultReleaseDir, cfg.ReleaseDir)
	require.Equal(t, DefaultBinDir, cfg.BinDir)
	require.Equal(t, DefaultPackageManager, cfg.PackageManager)
	require.Equal(t, DefaultInstallCommand, cfg.InstallCommand)
	require.Equal(t, DefaultPackages(), cfg.Packages)

	// The version gate and the timeout are switches: Validate leaves them
	// alone so an explicit empty or zero value keeps them off.
	require.Empty(t, cfg.MinElixirVersion)
	require.Zero(t, cfg.CommandTimeout)
}

// TestDefaultArmsGateAndTimeout ensures the built-in defaults include an
// armed version gate and command timeout.
func TestDefaultArmsGateAndTimeout(t *testing.T) {
	t.Parallel()

	cfg, err := Default()
	require.NoError(t, err)
	require.Equal(t, DefaultMinElixirVersion, cfg.MinElixirVersion)
	require.Equal(t, DefaultCommandTimeout, cfg.CommandTimeout)
}

// TestValidateRejectsMalformedValues covers relative paths and broken URLs.
func TestValidateRejectsMalformedValues(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	cfg := &Config{RepositoryURL: "not-a-url"}
	require.Error(t, Validate(cfg))

	cfg = &Config{InstallDir: "relative/path"}
	require.Error(t, Validate(cfg))

	cfg = &Config{BinDir: "bin"}
	require.Error(t, Validate(cfg))
}

// TestValidateCustomPackageManager checks the derived install command for a non-dnf host.
func TestValidateCustomPackageManager(t *testing.T) {
	t.Parallel()

	cfg := &Config{PackageManager: "apt-get"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, "apt-get install -y", cfg.InstallCommand)
	require.Equal(t, []string{"git", "apt-get"}, cfg.RequiredTools())
}

// TestRequiredToolsOrder pins the version-control client before the package manager.
func TestRequiredToolsOrder(t *testing.T) {
	t.Parallel()

	cfg, err := Default()
	require.NoError(t, err)
	require.Equal(t, []string{"git", "dnf"}, cfg.RequiredTools())
}

// TestLoadMissingDefaultFallsBack ensures a bare host loads pure defaults.
func TestLoadMissingDefaultFallsBack(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultRepositoryURL, cfg.RepositoryURL)
	require.Equal(t, DefaultMinElixirVersion, cfg.MinElixirVersion)
	require.Equal(t, DefaultCommandTimeout, cfg.CommandTimeout)
}

// TestLoadKeepsGateAndTimeoutDisabled ensures a settings file can switch
// the version gate and the command deadline off.
func TestLoadKeepsGateAndTimeoutDisabled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := "min_elixir_version: \"\"\ncommand_timeout: 0s\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.MinElixirVersion)
	require.Zero(t, cfg.CommandTimeout)
}

// TestLoadMissingExplicitPathFails ensures an explicitly requested file must exist.
func TestLoadMissingExplicitPathFails(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		InstallDir:     "/opt/checkout",
		ShellProfile:   "/root/.bashrc",
		PackageManager: "dnf",
		Packages:       []string{"erlang", "elixir"},
		CommandTimeout: time.Minute,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.InstallDir, loaded.InstallDir)
	require.Equal(t, cfg.Packages, loaded.Packages)
	require.Equal(t, time.Minute, loaded.CommandTimeout)

	// File exists with restricted permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestPathHelpers checks launcher and alias path composition.
func TestPathHelpers(t *testing.T) {
	t.Parallel()

	cfg := &Config{ReleaseDir: "/usr/local/lib/elixir-ls", BinDir: "/usr/local/bin"}
	require.Equal(t, "/usr/local/lib/elixir-ls/language_server.sh", cfg.LauncherPath("language_server.sh"))
	require.Equal(t, "/usr/local/bin/elixir-ls", cfg.AliasPath("elixir-ls"))
}
