// Package common holds helpers shared by several services.
//
// It provides utilities to detect the current system actor (hostname/username)
// for the install receipt and a run-marker lock that keeps two installer
// processes from mutating the same machine at once.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
