// Package gcs stores objects in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
)

const publicHost = "https://storage.googleapis.com"

// Store implements ObjectStore on top of a GCS bucket.
type Store struct {
	client *storage.Client
	bucket string
}

// New creates a GCS client using application default credentials, or the
// service-account file at credentialsFile when set.
func New(ctx context.Context, bucket, credentialsFile string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return NewWithClient(client, bucket), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *storage.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

func (s *Store) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(key)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("gcs attrs bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return true, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", key, object.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("gcs read bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return r, nil
}

func (s *Store) Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	w := s.object(key).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("gcs write bucket=%s key=%s: %w", s.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("gcs finalize bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return n, nil
}

// MakePublic grants allUsers read access to key. Buckets with uniform
// bucket-level access reject object ACLs; that case is logged and ignored.
func (s *Store) MakePublic(ctx context.Context, key string) error {
	err := s.object(key).ACL().Set(ctx, storage.AllUsers, storage.RoleReader)
	if err == nil {
		return nil
	}
	if isUniformAccessError(err) {
		telemetry.Warn("gcs.make_public.uniform_access", map[string]any{
			"bucket": s.bucket,
			"key":    key,
			"error":  err,
		})
		return nil
	}
	return fmt.Errorf("gcs make public bucket=%s key=%s: %w", s.bucket, key, err)
}

func (s *Store) PublicURL(key string) string {
	return PublicURL(s.bucket, key)
}

func (s *Store) Bucket() string {
	return s.bucket
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// PublicURL is the anonymous-read URL for key in bucket.
func PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", publicHost, bucket, strings.TrimLeft(key, "/"))
}

func isUniformAccessError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusBadRequest {
		return false
	}
	if strings.Contains(strings.ToLower(gerr.Message), "uniform bucket-level access") {
		return true
	}
	for _, item := range gerr.Errors {
		if item.Reason == "invalid" && strings.Contains(strings.ToLower(item.Message), "uniform") {
			return true
		}
	}
	return false
}

var _ object.ObjectStore = (*Store)(nil)
