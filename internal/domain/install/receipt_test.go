package install

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestActorClone verifies that Clone returns a deep copy and handles nil safely.
func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "workstation",
		Username: "developer",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}

// TestReceiptClone verifies that Receipt.Clone copies fields and deep-copies Actor.
func TestReceiptClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Receipt)(nil).Clone())

	ts := time.Now().UTC().Truncate(time.Second)
	r := &Receipt{
		Version:   "1.0.0",
		Timestamp: ts,
		Actor: &Actor{
			Hostname: "workstation",
			Username: "developer",
		},
		CheckoutDir:  "/home/developer/.elixir-ls/elixir-ls",
		ReleaseDir:   "/usr/local/lib/elixir-ls",
		LauncherPath: "/usr/local/lib/elixir-ls/language_server.sh",
		AliasPath:    "/usr/local/bin/elixir-ls",
		ProfilePath:  "/home/developer/.bashrc",
	}

	c := r.Clone()
	require.Equal(t, r, c)
	require.NotSame(t, r, c)

	// Ensure actor pointer is cloned.
	require.NotSame(t, r.Actor, c.Actor)
}
