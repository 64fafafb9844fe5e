package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving objects by key
// inside a single bucket.
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Put writes r to key, replacing any existing object.
	Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
	MakePublic(ctx context.Context, key string) error
	PublicURL(key string) string
	Bucket() string
}

// ReadText downloads the object at key and returns it as a string.
func ReadText(ctx context.Context, store ObjectStore, key string) (string, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return "", fmt.Errorf("read object %s: %w", key, err)
	}
	return buf.String(), nil
}

// PutText uploads s to key as text/plain.
func PutText(ctx context.Context, store ObjectStore, key, s string) (int64, error) {
	return store.Put(ctx, key, "text/plain", strings.NewReader(s))
}

// DownloadFile copies the object at key into a local file at dst.
func DownloadFile(ctx context.Context, store ObjectStore, key, dst string) error {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		_ = f.Close()
		return fmt.Errorf("download %s: %w", key, err)
	}
	return f.Close()
}

// PutFile uploads the local file at src to key.
func PutFile(ctx context.Context, store ObjectStore, key, contentType, src string) (int64, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()
	return store.Put(ctx, key, contentType, f)
}

// JoinURL appends key to base with a single separating slash.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
