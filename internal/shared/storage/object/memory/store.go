// Package memory is an in-process ObjectStore for tests and local runs.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"resume-tailor/internal/shared/storage/object"
)

// Object is a stored blob and its metadata.
type Object struct {
	Data        []byte
	ContentType string
	Public      bool
}

// Store keeps objects in a map guarded by a mutex.
type Store struct {
	mu         sync.RWMutex
	bucket     string
	publicBase string
	objects    map[string]Object

	// Hooks for tests to inject failures.
	PutErr        error
	MakePublicErr error
}

// New creates an empty store. publicBase prefixes the URLs PublicURL returns.
func New(bucket, publicBase string) *Store {
	return &Store{
		bucket:     bucket,
		publicBase: publicBase,
		objects:    make(map[string]Object),
	}
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, object.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(obj.Data)), nil
}

func (s *Store) Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.PutErr != nil {
		return 0, s.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{Data: data, ContentType: contentType}
	return int64(len(data)), nil
}

func (s *Store) MakePublic(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.MakePublicErr != nil {
		return s.MakePublicErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, object.ErrNotFound)
	}
	obj.Public = true
	s.objects[key] = obj
	return nil
}

func (s *Store) PublicURL(key string) string {
	return object.JoinURL(s.publicBase, key)
}

func (s *Store) Bucket() string {
	return s.bucket
}

// Get returns a copy of the object stored at key.
func (s *Store) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return Object{}, false
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return obj, true
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

var _ object.ObjectStore = (*Store)(nil)
