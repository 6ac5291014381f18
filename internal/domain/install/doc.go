// Package install contains core domain types for the installer business logic.
//
// It defines Actor (who ran the installer) and Receipt (what an installation
// produced and where) with Clone helpers to avoid leaking internal references.
package install
