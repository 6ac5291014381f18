package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every knob of the installation procedure.
// All fields are optional in the YAML file; Validate fills the defaults,
// except that an empty version gate or a zero command timeout stays off.
type Config struct {
	// InstallDir is where the ElixirLS sources are checked out.
	InstallDir string `yaml:"install_dir"`
	// RepositoryURL is the upstream git repository to clone.
	RepositoryURL string `yaml:"repository_url"`
	// ReleaseDir is the system-wide directory receiving the mix release.
	ReleaseDir string `yaml:"release_dir"`
	// BinDir is the system binary directory receiving the alias symlink.
	BinDir string `yaml:"bin_dir"`
	// ShellProfile is the profile file receiving the PATH block.
	ShellProfile string `yaml:"shell_profile"`
	// PackageManager is the package manager executable; it is also the
	// second entry of the required-tool list checked before any step runs.
	PackageManager string `yaml:"package_manager"`
	// InstallCommand is the command line prefix used to install packages
	// non-interactively. Package names are appended to it verbatim.
	InstallCommand string `yaml:"install_command"`
	// Packages are the system packages providing the runtime and the
	// language toolchain.
	Packages []string `yaml:"packages"`
	// MinElixirVersion is the lowest Elixir version accepted after the
	// toolchain install. Empty disables the check.
	MinElixirVersion string `yaml:"min_elixir_version"`
	// CommandTimeout bounds every external command of the run.
	// Zero disables the deadline.
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

const (
	// DefaultConfigFilename is the default filename for installation settings.
	DefaultConfigFilename = "elixir-ls-installer.yaml"

	// DefaultRepositoryURL is the upstream ElixirLS repository.
	DefaultRepositoryURL = "https://github.com/elixir-lsp/elixir-ls.git"

	// DefaultReleaseDir receives the packaged release.
	DefaultReleaseDir = "/usr/local/lib/elixir-ls"

	// DefaultBinDir receives the alias symlink.
	DefaultBinDir = "/usr/local/bin"

	// DefaultPackageManager installs the toolchain packages.
	DefaultPackageManager = "dnf"

	// DefaultInstallCommand installs packages without prompting.
	DefaultInstallCommand = "dnf install -y"

	// DefaultMinElixirVersion is the floor ElixirLS itself supports.
	DefaultMinElixirVersion = "1.13.0"

	// DefaultCommandTimeout bounds a single external command; compiling
	// ElixirLS on a small machine stays well under it.
	DefaultCommandTimeout = 20 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// defaultInstallDirName is the checkout directory under the user's home.
	defaultInstallDirName = ".elixir-ls"

	// defaultShellProfileName is the profile file under the user's home.
	defaultShellProfileName = ".bashrc"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errPathNotAbsolute is returned when a directory setting is relative.
	errPathNotAbsolute = errors.New("path must be absolute")
)

// DefaultPackages returns the packages providing the Erlang runtime and the
// Elixir toolchain, in install order.
func DefaultPackages() []string {
	return []string{"erlang", "elixir"}
}

// Default returns a configuration with every field set to its default,
// including an armed version gate and command timeout.
func Default() (*Config, error) {
	cfg := &Config{
		MinElixirVersion: DefaultMinElixirVersion,
		CommandTimeout:   DefaultCommandTimeout,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads configuration from the provided path and validates it.
// An empty path means the default filename; if that default file does not
// exist, the built-in defaults are returned instead of an error, so the
// zero-argument invocation works on a bare host. An explicitly provided
// path must exist.
func Load(path string) (*Config, error) {
	usingDefaultPath := path == ""
	if usingDefaultPath {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if usingDefaultPath && errors.Is(err, os.ErrNotExist) {
			return Default()
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for empty fields and rejects malformed values.
// MinElixirVersion and CommandTimeout are left as provided: both are
// switches, and their disabled state is a valid configuration.
//
//nolint:cyclop // Field-by-field defaulting is flat and readable as one function.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.InstallDir == "" || cfg.ShellProfile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}

		if cfg.InstallDir == "" {
			cfg.InstallDir = filepath.Join(home, defaultInstallDirName)
		}

		if cfg.ShellProfile == "" {
			cfg.ShellProfile = filepath.Join(home, defaultShellProfileName)
		}
	}

	if cfg.RepositoryURL == "" {
		cfg.RepositoryURL = DefaultRepositoryURL
	}

	if cfg.ReleaseDir == "" {
		cfg.ReleaseDir = DefaultReleaseDir
	}

	if cfg.BinDir == "" {
		cfg.BinDir = DefaultBinDir
	}

	if cfg.PackageManager == "" {
		cfg.PackageManager = DefaultPackageManager
		if cfg.InstallCommand == "" {
			cfg.InstallCommand = DefaultInstallCommand
		}
	}

	if cfg.InstallCommand == "" {
		// A custom package manager without an install command gets the
		// conventional non-interactive spelling.
		cfg.InstallCommand = cfg.PackageManager + " install -y"
	}

	if len(cfg.Packages) == 0 {
		cfg.Packages = DefaultPackages()
	}

	if _, err := url.ParseRequestURI(cfg.RepositoryURL); err != nil {
		return fmt.Errorf("invalid repository URL: %w", err)
	}

	for name, path := range map[string]string{
		"install_dir":   cfg.InstallDir,
		"release_dir":   cfg.ReleaseDir,
		"bin_dir":       cfg.BinDir,
		"shell_profile": cfg.ShellProfile,
	} {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("%s %q: %w", name, path, errPathNotAbsolute)
		}
	}

	return nil
}

// RequiredTools returns the executables that must be resolvable before any
// installation step runs: the version-control client first, then the
// package manager.
func (c *Config) RequiredTools() []string {
	return []string{"git", c.PackageManager}
}

// LauncherPath returns the location of the generated launcher script inside
// the release directory.
func (c *Config) LauncherPath(script string) string {
	return filepath.Join(c.ReleaseDir, script)
}

// AliasPath returns the location of the named alias inside the system
// binary directory.
func (c *Config) AliasPath(alias string) string {
	return filepath.Join(c.BinDir, strings.TrimSpace(alias))
}
