package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dtroode/gatekeeper/internal/credential"
	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.CredentialBackend = (*CredentialFile)(nil)

// CredentialFile keeps the credential mapping as a JSON object on the local
// filesystem. A missing file is an empty mapping.
type CredentialFile struct {
	path string
	perm os.FileMode
}

func NewCredentialFile(path string) *CredentialFile {
	return &CredentialFile{
		path: path,
		perm: 0o600,
	}
}

func (f *CredentialFile) Load(_ context.Context) (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	return credential.Decode(data)
}

// Save writes the mapping to a temporary file in the same directory and
// renames it over the target, so readers see either the old or the new file.
func (f *CredentialFile) Save(_ context.Context, credentials map[string]string) error {
	data, err := credential.Encode(credentials)
	if err != nil {
		return err
	}

	return writeAtomic(f.path, data, f.perm)
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	done := false
	defer func() {
		if !done {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace credentials file: %w", err)
	}
	done = true

	if err := syncDir(dir); err != nil {
		return fmt.Errorf("failed to sync parent directory: %w", err)
	}
	return nil
}

// syncDir flushes the directory entry so a completed rename survives a crash.
var syncDir = func(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
