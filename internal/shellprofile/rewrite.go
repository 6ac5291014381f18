package shellprofile

import (
	"bytes"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// DefaultProfileMode is used when the profile has to be created from scratch.
	DefaultProfileMode os.FileMode = 0o644

	// DefaultChecksumFunction guards profile rewrites against corruption.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// BackupSuffix marks the previous profile version kept next to the new one.
	BackupSuffix = ".old"
)

var errHashUnavailable = errors.New("hash function unavailable")

// Rewrite replaces the file at path with content in one step: the new
// content is written aside, verified against its checksum and renamed over
// the original. The previous version stays next to the new one with
// BackupSuffix so a bad edit can be undone by hand.
func Rewrite(path string, content []byte, mode os.FileMode) error {
	if !DefaultChecksumFunction.Available() {
		return fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err := hasher.Write(content); err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	// The apply below renames the current file aside first, so a missing
	// profile has to exist, even empty, before it can be replaced.
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) {
		var file *os.File

		if file, err = os.Create(filepath.Clean(path)); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}

		if err = file.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
	}

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: mode,
		Checksum:   hasher.Sum(nil),
		Hash:       DefaultChecksumFunction,
		// Without an explicit location the previous version is dropped
		// after a successful apply; naming one keeps it as the backup.
		OldSavePath: path + BackupSuffix,
	}

	if err := goupdate.Apply(bytes.NewReader(content), options); err != nil {
		return fmt.Errorf("apply rewrite of %s: %w", path, err)
	}

	return nil
}
