package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/shared/telemetry"
)

// Recorder writes runs on a best-effort basis: persistence failures are
// logged and never returned to the caller.
type Recorder struct {
	Repo Repo
	Now  func() time.Time
}

// NewRecorder constructs a Recorder. A nil repo disables recording.
func NewRecorder(repo Repo) *Recorder {
	return &Recorder{Repo: repo, Now: time.Now}
}

// Record stores run, filling ID, CreatedAt and Status from err when unset.
func (r *Recorder) Record(ctx context.Context, run Run, err error) {
	if r == nil || r.Repo == nil {
		return
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		run.CreatedAt = now().UTC()
	}
	if run.RequestID == "" {
		run.RequestID = telemetry.RequestID(ctx)
	}
	if run.Status == "" {
		run.Status = StatusSucceeded
		if err != nil {
			run.Status = StatusFailed
		}
	}
	if err != nil && run.Error == "" {
		run.Error = err.Error()
	}

	// The request context may already be cancelled when the handler failed.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if werr := r.Repo.Create(writeCtx, run); werr != nil {
		telemetry.Warn("history.record.failed", map[string]any{
			"request_id": run.RequestID,
			"kind":       run.Kind,
			"error":      werr,
		})
	}
}

// List proxies to the repo.
func (r *Recorder) List(ctx context.Context, kind string, limit, offset int) ([]Run, error) {
	if r == nil || r.Repo == nil {
		return []Run{}, nil
	}
	return r.Repo.List(ctx, kind, limit, offset)
}
