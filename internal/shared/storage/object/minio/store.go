// Package minio stores objects in a MinIO (or other S3-compatible) bucket.
package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resume-tailor/internal/shared/storage/object"
)

// Options configures the MinIO store.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicURL overrides the base of returned URLs; defaults to the endpoint.
	PublicURL string
}

// Store implements ObjectStore using minio-go.
type Store struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// New connects to MinIO and creates the bucket when missing.
func New(ctx context.Context, opts Options) (*Store, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket exists %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket %s: %w", opts.Bucket, err)
		}
	}

	base := opts.PublicURL
	if base == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, opts.Endpoint)
	}

	return &Store{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: object.JoinURL(base, opts.Bucket),
	}, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("minio stat bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return true, nil
}

// Open fetches key. GetObject is lazy, so the object is stat'ed first to
// surface a missing key here rather than on first Read.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio get bucket=%s key=%s: %w", s.bucket, key, err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, object.ErrNotFound)
		}
		return nil, fmt.Errorf("minio stat bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return obj, nil
}

func (s *Store) Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("minio put bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return info.Size, nil
}

// MakePublic installs an anonymous read policy covering key's prefix. MinIO
// has no per-object ACLs.
func (s *Store) MakePublic(ctx context.Context, key string) error {
	policy, err := readPolicy(s.bucket, key)
	if err != nil {
		return err
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("minio set policy bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *Store) PublicURL(key string) string {
	return object.JoinURL(s.publicBase, key)
}

func (s *Store) Bucket() string {
	return s.bucket
}

type policyStatement struct {
	Effect    string              `json:"Effect"`
	Principal map[string][]string `json:"Principal"`
	Action    []string            `json:"Action"`
	Resource  []string            `json:"Resource"`
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

func readPolicy(bucket, key string) (string, error) {
	resource := fmt.Sprintf("arn:aws:s3:::%s/%s", bucket, key)
	if dir := path.Dir(strings.TrimLeft(key, "/")); dir != "." {
		resource = fmt.Sprintf("arn:aws:s3:::%s/%s/*", bucket, dir)
	}
	p := bucketPolicy{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string][]string{"AWS": {"*"}},
			Action:    []string{"s3:GetObject"},
			Resource:  []string{resource},
		}},
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode bucket policy: %w", err)
	}
	return string(raw), nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

var _ object.ObjectStore = (*Store)(nil)
