package install

import "time"

// Actor identifies who performed an installation on the machine.
type Actor struct {
	// Hostname is the machine name where the installation was performed.
	Hostname string
	// Username is the system user who ran the installer.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Receipt records the outcome of a completed installation.
// It captures where every artifact landed so later runs can verify or
// remove the installation without re-deriving paths from configuration.
type Receipt struct {
	// Version is the installer version that produced this installation.
	Version string
	// Timestamp is when the installation finished.
	Timestamp time.Time
	// Actor is the user who ran the installer.
	Actor *Actor
	// CheckoutDir is the source checkout the release was built from.
	CheckoutDir string
	// ReleaseDir is where the packaged release was unpacked.
	ReleaseDir string
	// LauncherPath is the launcher script inside the release.
	LauncherPath string
	// AliasPath is the short-name symlink pointing at the launcher.
	AliasPath string
	// ProfilePath is the shell profile the PATH block was appended to.
	// Empty when the profile update was skipped.
	ProfilePath string
}

// Clone returns a copy of the receipt to avoid leaking internal references.
func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Actor = r.Actor.Clone()

	return &cloned
}
