package receipt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/elixir-ls-installer/internal/domain/install"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(afero.NewMemMapFs(), filepath.Join("/releases", "missing.json"))
	r, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, r)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal receipt.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	var (
		fs   = afero.NewMemMapFs()
		file = filepath.Join("/releases", Filename)
		repo = NewFileRepository(fs, file)
	)

	ts := time.Now().UTC().Truncate(time.Second)
	want := &domain.Receipt{
		Version:   "1.0.0",
		Timestamp: ts,
		Actor: &domain.Actor{
			Hostname: "workstation",
			Username: "developer",
		},
		CheckoutDir:  "/home/developer/.elixir-ls/elixir-ls",
		ReleaseDir:   "/usr/local/lib/elixir-ls",
		LauncherPath: "/usr/local/lib/elixir-ls/language_server.sh",
		AliasPath:    "/usr/local/bin/elixir-ls",
		ProfilePath:  "/home/developer/.bashrc",
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Version, got.Version)
	require.Equal(t, want.Timestamp.Unix(), got.Timestamp.Unix())
	require.Equal(t, want.Actor, got.Actor)
	require.Equal(t, want.AliasPath, got.AliasPath)

	exists, err := afero.Exists(fs, file)
	require.NoError(t, err)
	require.True(t, exists)
}

// TestFileRepository_OmitsEmptyOptionalFields pins the on-disk shape for sparse receipts.
func TestFileRepository_OmitsEmptyOptionalFields(t *testing.T) {
	t.Parallel()

	var (
		fs   = afero.NewMemMapFs()
		file = filepath.Join("/releases", Filename)
		repo = NewFileRepository(fs, file)
	)

	require.NoError(t, repo.Save(context.Background(), &domain.Receipt{Version: "1.0.0"}))

	contents, err := afero.ReadFile(fs, file)
	require.NoError(t, err)
	require.NotContains(t, string(contents), "actor")
	require.NotContains(t, string(contents), "profile_path")

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, got.Actor)
	require.Empty(t, got.ProfilePath)
}
