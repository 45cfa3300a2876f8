// Local filesystem blob store for development and tests.
//
// Information Hiding:
// - Directory layout under the base dir
// - Path traversal guarding

package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBlobDir is the fallback base directory for local blobs.
const DefaultBlobDir = "~/.atelier/blobs"

// FSStore implements Store on a local directory. Object paths map to
// files under the base dir. SignedURL returns a file:// URL; the
// validity window is not enforced locally.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem store rooted at dir, expanding a
// leading ~ and creating the directory if needed. An empty dir selects
// DefaultBlobDir.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		dir = DefaultBlobDir
	}

	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blob directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	return &FSStore{baseDir: abs}, nil
}

// resolve maps an object path to a file under baseDir, rejecting paths
// that would escape it.
func (f *FSStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object path: %s", path)
	}
	return filepath.Join(f.baseDir, clean), nil
}

// Upload writes one object. The content type is not recorded; local
// consumers rely on file extensions.
func (f *FSStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	target, err := f.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write object %s: %w", path, err)
	}
	return nil
}

// Remove deletes the named objects. Missing objects are skipped.
func (f *FSStore) Remove(ctx context.Context, paths []string) error {
	for _, path := range paths {
		target, err := f.resolve(path)
		if err != nil {
			return err
		}
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove object %s: %w", path, err)
		}
	}
	return nil
}

// SignedURL returns a file:// URL for an existing object.
func (f *FSStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	target, err := f.resolve(path)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("failed to stat object %s: %w", path, err)
	}
	return "file://" + filepath.ToSlash(target), nil
}

// Verify FSStore implements Store
var _ Store = (*FSStore)(nil)
