//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// TestRunMarkerLifecycle walks the marker through write, detect and remove.
// TMPDIR is overridden so the test never races a real installer run.
func TestRunMarkerLifecycle(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	var (
		fs  = afero.NewOsFs()
		ctx = context.Background()
	)

	require.False(t, IsInstallerRunningNow(ctx, fs))

	require.NoError(t, WriteRunMarker(fs))
	require.True(t, IsInstallerRunningNow(ctx, fs))

	RemoveRunMarker(fs)
	require.False(t, IsInstallerRunningNow(ctx, fs))

	// Removing twice must not blow up.
	RemoveRunMarker(fs)
}

// TestIsInstallerRunningNow_StaleMarker verifies an expired marker is reclaimed.
func TestIsInstallerRunningNow_StaleMarker(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	fs := afero.NewOsFs()
	require.NoError(t, WriteRunMarker(fs))

	expired := time.Now().Add(-2 * markerLifetime)
	require.NoError(t, fs.Chtimes(MarkerPath(), expired, expired))

	require.False(t, IsInstallerRunningNow(context.Background(), fs))

	_, err := fs.Stat(MarkerPath())
	require.ErrorIs(t, err, os.ErrNotExist)
}
