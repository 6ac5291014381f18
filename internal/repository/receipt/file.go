package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/oshokin/elixir-ls-installer/internal/config"
	domain "github.com/oshokin/elixir-ls-installer/internal/domain/install"
)

// Filename is the receipt file kept inside the release directory.
const Filename = "install-receipt.json"

// Repository defines persistence operations for the install receipt.
type Repository interface {
	Load(ctx context.Context) (*domain.Receipt, error)
	Save(ctx context.Context, receipt *domain.Receipt) error
}

// FileRepository persists the install receipt to a JSON file on disk.
type FileRepository struct {
	// fs is the filesystem the receipt file lives on.
	fs afero.Fs
	// path is the filesystem location of the JSON receipt file.
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

// ErrNotFound is returned when the receipt file does not exist yet.
var ErrNotFound = errors.New("receipt not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(fs afero.Fs, path string) *FileRepository {
	return &FileRepository{
		fs:   fs,
		path: filepath.Clean(path),
	}
}

// Load reads the receipt from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt file: %w", err)
	}

	var file receiptFile
	if err = json.Unmarshal(contents, &file); err != nil {
		return nil, fmt.Errorf("decode receipt file: %w", err)
	}

	return fromFile(&file), nil
}

// Save writes the receipt to disk using an indented JSON representation.
func (r *FileRepository) Save(_ context.Context, receipt *domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(toFile(receipt), "", "  ")
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	if err = afero.WriteFile(r.fs, r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write receipt file: %w", err)
	}

	return nil
}

// actorFile is the on-disk JSON shape of an Actor.
type actorFile struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
}

// receiptFile is the on-disk JSON shape of a Receipt.
type receiptFile struct {
	Version      string     `json:"version"`
	Timestamp    time.Time  `json:"timestamp"`
	Actor        *actorFile `json:"actor,omitempty"`
	CheckoutDir  string     `json:"checkout_dir"`
	ReleaseDir   string     `json:"release_dir"`
	LauncherPath string     `json:"launcher_path"`
	AliasPath    string     `json:"alias_path"`
	ProfilePath  string     `json:"profile_path,omitempty"`
}

// fromFile converts the on-disk representation into the domain Receipt model.
func fromFile(file *receiptFile) *domain.Receipt {
	var actor *domain.Actor
	if file.Actor != nil {
		actor = &domain.Actor{
			Hostname: file.Actor.Hostname,
			Username: file.Actor.Username,
		}
	}

	return &domain.Receipt{
		Version:      file.Version,
		Timestamp:    file.Timestamp,
		Actor:        actor,
		CheckoutDir:  file.CheckoutDir,
		ReleaseDir:   file.ReleaseDir,
		LauncherPath: file.LauncherPath,
		AliasPath:    file.AliasPath,
		ProfilePath:  file.ProfilePath,
	}
}

// toFile converts the domain Receipt model into the on-disk representation.
func toFile(receipt *domain.Receipt) *receiptFile {
	var actor *actorFile
	if receipt.Actor != nil {
		actor = &actorFile{
			Hostname: receipt.Actor.Hostname,
			Username: receipt.Actor.Username,
		}
	}

	return &receiptFile{
		Version:      receipt.Version,
		Timestamp:    receipt.Timestamp,
		Actor:        actor,
		CheckoutDir:  receipt.CheckoutDir,
		ReleaseDir:   receipt.ReleaseDir,
		LauncherPath: receipt.LauncherPath,
		AliasPath:    receipt.AliasPath,
		ProfilePath:  receipt.ProfilePath,
	}
}
