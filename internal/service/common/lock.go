//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/spf13/afero"

	"github.com/oshokin/elixir-ls-installer/internal/logger"
)

const (
	// MarkerFilename marks that the installer is running right now to avoid parallel execution.
	MarkerFilename = "elixir-ls-installer-marker.bin"

	// executableName is the installer binary scanned for when reclaiming a stale marker.
	executableName = "elixir-ls-installer"

	// markerLifetime is the period after which a stale run marker is reclaimed.
	// Compiling the language server from source can legitimately take a long
	// while, so the window is generous.
	markerLifetime = time.Hour
)

// MarkerPath returns the marker location inside the system temporary directory.
func MarkerPath() string {
	return filepath.Join(os.TempDir(), MarkerFilename)
}

// IsInstallerRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsInstallerRunningNow(ctx context.Context, fs afero.Fs) bool {
	logger.Info(ctx, "Checking for the presence of a run marker")

	markerPath := MarkerPath()

	fileInfo, err := fs.Stat(markerPath)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The run marker is too old, attempting cleanup")

		if err = terminateProcessByName(executableName); err != nil {
			return true
		}

		if err = fs.Remove(markerPath); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Run marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// WriteRunMarker creates the marker that flags a run in progress.
func WriteRunMarker(fs afero.Fs) error {
	marker, err := fs.Create(MarkerPath())
	if err != nil {
		return fmt.Errorf("create run marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return fmt.Errorf("close run marker: %w", err)
	}

	return nil
}

// RemoveRunMarker deletes the marker, tolerating one that is already gone.
func RemoveRunMarker(fs afero.Fs) {
	if _, err := fs.Stat(MarkerPath()); err == nil {
		_ = fs.Remove(MarkerPath())
	}
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
