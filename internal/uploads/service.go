package uploads

import (
	"context"
	"io"
	"strings"
	"time"

	"resume-tailor/internal/history"
	"resume-tailor/internal/shared/apperr"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/util"
)

const (
	texSuffix          = ".tex"
	defaultContentType = "application/octet-stream"
	defaultMaxBytes    = 10 << 20
)

// Upload is one multipart .tex submission.
type Upload struct {
	Name        string
	Filename    string
	ContentType string
	Body        io.Reader
}

// Result is where the upload landed.
type Result struct {
	URL   string
	Key   string
	Bytes int64
}

type Service struct {
	Store    object.ObjectStore
	MaxBytes int64
	Recorder *history.Recorder
}

func (s *Service) maxBytes() int64 {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return defaultMaxBytes
}

// ObjectKey is "<name>/<filename>" with no escaping, so a name containing
// "/" nests the object deeper.
func ObjectKey(name, filename string) string {
	return name + "/" + filename
}

// Save validates u and writes it to "<name>/<filename>", replacing any
// existing object.
func (s *Service) Save(ctx context.Context, u Upload) (res Result, err error) {
	start := time.Now()
	done := metrics.Track(metrics.OpUpload)
	defer func() {
		done(err)
		s.Recorder.Record(ctx, history.Run{
			Kind:       history.KindUpload,
			OutputKey:  res.Key,
			DurationMs: time.Since(start).Milliseconds(),
		}, err)
	}()

	if u.Body == nil || u.Filename == "" || strings.TrimSpace(u.Name) == "" {
		return Result{}, apperr.Validation("Missing file or name")
	}
	if !strings.HasSuffix(u.Filename, texSuffix) {
		return Result{}, apperr.Validation("File must be a .tex file")
	}
	if util.HasTraversal(u.Name) || util.HasTraversal(u.Filename) {
		return Result{}, apperr.Validation("invalid name or filename")
	}

	key := ObjectKey(u.Name, u.Filename)
	if strings.Contains(u.Name, "/") {
		telemetry.Warn("upload.key.nested_name", map[string]any{
			"name":       u.Name,
			"key":        key,
			"request_id": telemetry.RequestID(ctx),
		})
	}

	contentType := strings.TrimSpace(u.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	n, err := s.Store.Put(ctx, key, contentType, u.Body)
	if err != nil {
		return Result{}, apperr.Unclassified("", err)
	}
	return Result{URL: s.Store.PublicURL(key), Key: key, Bytes: n}, nil
}
