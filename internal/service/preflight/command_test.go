package preflight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/elixir-ls-installer/internal/config"
	domain "github.com/oshokin/elixir-ls-installer/internal/domain/install"
	"github.com/oshokin/elixir-ls-installer/internal/executor"
	"github.com/oshokin/elixir-ls-installer/internal/logger"
	"github.com/oshokin/elixir-ls-installer/internal/repository/receipt"
	"github.com/oshokin/elixir-ls-installer/internal/shellprofile"
)

var errTestLoad = errors.New("test load error")

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// record is the install receipt to return from Load operations.
	record *domain.Receipt
	// loadErr is the error to return from Load operations.
	loadErr error
}

// Load retrieves the install receipt from the memory repository.
func (m *memoryRepository) Load(context.Context) (*domain.Receipt, error) {
	return m.record, m.loadErr
}

// Save stores the provided receipt in memory, overwriting any previous one.
func (m *memoryRepository) Save(_ context.Context, r *domain.Receipt) error {
	m.record = r

	return nil
}

// observedContext returns a context whose logger records into the returned store.
func observedContext(t *testing.T) (context.Context, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)

	return logger.ToContext(context.Background(), zap.New(core).Sugar()), logs
}

// TestReportToolchain_BuildToolMissing warns when mix is not installed yet.
func TestReportToolchain_BuildToolMissing(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	run := new(executor.RunnerMock)
	run.On("LookPath", "mix").Return("", errors.New("executable file not found in $PATH"))

	reportToolchain(ctx, run, &config.Config{MinElixirVersion: "1.13.0"})
	require.Equal(t, 1, logs.FilterMessage("Build tool not found yet").Len())

	run.AssertNotCalled(t, "Output", mock.Anything, mock.Anything)
}

// TestReportToolchain_OldElixir warns when the installed Elixir is below the minimum.
func TestReportToolchain_OldElixir(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	run := new(executor.RunnerMock)
	run.On("LookPath", "mix").Return("/usr/bin/mix", nil)
	run.On("Output", mock.Anything, executor.Command{Name: "elixir", Args: []string{"--version"}}).
		Return([]byte("Elixir 1.11.4 (compiled with Erlang/OTP 23)\n"), nil)

	reportToolchain(ctx, run, &config.Config{MinElixirVersion: "1.13.0"})
	require.Equal(t, 1, logs.FilterMessage("Elixir is older than the supported minimum").Len())
}

// TestReportToolchain_GateDisabled runs no version query when no minimum
// is configured.
func TestReportToolchain_GateDisabled(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	run := new(executor.RunnerMock)
	run.On("LookPath", "mix").Return("/usr/bin/mix", nil)

	reportToolchain(ctx, run, &config.Config{})
	require.Equal(t, 1, logs.FilterMessage("Build tool found").Len())

	run.AssertNotCalled(t, "Output", mock.Anything, mock.Anything)
}

// TestReportProfile covers the absent, block-present and block-missing cases.
func TestReportProfile(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	var (
		fs  = afero.NewMemMapFs()
		cfg = &config.Config{
			ShellProfile: "/home/developer/.bashrc",
			BinDir:       "/usr/local/bin",
		}
	)

	reportProfile(ctx, fs, cfg)
	require.Equal(t, 1, logs.FilterMessage("Shell profile not found").Len())

	content := shellprofile.Append("alias ll='ls -l'\n", cfg.BinDir)
	require.NoError(t, afero.WriteFile(fs, cfg.ShellProfile, []byte(content), 0o644))

	reportProfile(ctx, fs, cfg)
	require.Equal(t, 1, logs.FilterMessage("Shell profile exports the binary directory").Len())

	require.NoError(t, afero.WriteFile(fs, cfg.ShellProfile, []byte("alias ll='ls -l'\n"), 0o644))

	reportProfile(ctx, fs, cfg)
	require.Equal(t, 1, logs.FilterMessage("Shell profile does not export the binary directory").Len())
}

// TestReportInstallState covers the no-receipt, receipt-present and
// unreadable-receipt paths.
func TestReportInstallState(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(t)

	reportInstallState(ctx, &memoryRepository{loadErr: receipt.ErrNotFound})
	require.Equal(t, 1, logs.FilterMessage("No previous installation recorded").Len())

	reportInstallState(ctx, &memoryRepository{record: &domain.Receipt{
		Version:   "1.0.0",
		Timestamp: time.Now(),
		AliasPath: "/usr/local/bin/elixir-ls",
	}})
	require.Equal(t, 1, logs.FilterMessage("Previous installation found").Len())

	reportInstallState(ctx, &memoryRepository{loadErr: errTestLoad})
	require.Equal(t, 1, logs.FilterMessage("Unable to read install receipt: test load error").Len())
}
