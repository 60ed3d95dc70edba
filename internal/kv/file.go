// Package kv implements the key-value blob stores contact lists persist to.
package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidKey indicates a key is empty or contains path traversal components.
var ErrInvalidKey = errors.New("kv: invalid key")

// FileStore persists each key as a JSON file under a base directory.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a FileStore that saves blobs under baseDir.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// Get reads the blob for key.
// Returns (value, true, nil) if found, ("", false, nil) if not found.
func (s *FileStore) Get(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv: reading %s: %w", p, err)
	}
	return string(data), true, nil
}

// Set replaces the blob for key. The write goes to a temp file that is
// renamed over the old one, so readers never see a partial blob.
func (s *FileStore) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("kv: creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.baseDir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("kv: writing %s: %w", p, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("kv: writing %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kv: writing %s: %w", p, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("kv: writing %s: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("kv: writing %s: %w", p, err)
	}
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }

// path returns the filesystem path for a key.
// It rejects keys that are empty, dot-segments, or contain path separators.
func (s *FileStore) path(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, key+".json"), nil
}

// checkKey rejects keys that are empty, dot-segments, or contain path separators.
func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || key != filepath.Base(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
