package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/util"
)

// Store implements ObjectStore using the local filesystem. Objects are served
// back by the API under publicBase.
type Store struct {
	baseDir    string
	publicBase string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir, publicBase string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir, publicBase: publicBase}, nil
}

func (s *Store) path(key string) (string, error) {
	if util.HasTraversal(key) || filepath.IsAbs(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	clean := util.CleanKey(key)
	if clean == "" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

// Exists reports whether a regular file is stored at key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fullPath, err := s.path(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, object.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Put writes the reader to disk at key. The content is written to a sibling
// temp file first so readers never observe a partial object.
func (s *Store) Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fullPath, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("write body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return 0, fmt.Errorf("rename: %w", err)
	}
	_ = contentType
	return written, nil
}

// MakePublic is a no-op: every object is readable through the files route.
func (s *Store) MakePublic(ctx context.Context, key string) error {
	return ctx.Err()
}

// PublicURL returns the URL the API serves key from.
func (s *Store) PublicURL(key string) string {
	return object.JoinURL(s.publicBase, key)
}

// Bucket returns the store's root directory.
func (s *Store) Bucket() string {
	return s.baseDir
}

var _ object.ObjectStore = (*Store)(nil)
