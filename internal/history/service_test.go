package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/shared/telemetry"
)

type failingRepo struct{ calls int }

func (f *failingRepo) Create(ctx context.Context, run Run) error {
	f.calls++
	return errors.New("db down")
}

func (f *failingRepo) List(ctx context.Context, kind string, limit, offset int) ([]Run, error) {
	return nil, errors.New("db down")
}

func TestRecorderFillsDefaults(t *testing.T) {
	repo := NewMemoryRepo()
	rec := NewRecorder(repo)
	fixed := time.Date(2026, time.April, 2, 9, 30, 0, 0, time.UTC)
	rec.Now = func() time.Time { return fixed }

	ctx := telemetry.WithRequestID(context.Background(), "req-7")
	rec.Record(ctx, Run{Kind: KindUpload, OutputKey: "alice/resume.tex"}, nil)
	rec.Record(ctx, Run{Kind: KindCompile, SourceKey: "alice/resume.tex"}, errors.New("LaTeX compilation failed"))

	runs, err := rec.List(context.Background(), "", 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byKind := map[string]Run{}
	for _, r := range runs {
		byKind[r.Kind] = r
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, "req-7", r.RequestID)
		assert.Equal(t, fixed, r.CreatedAt)
	}
	assert.Equal(t, StatusSucceeded, byKind[KindUpload].Status)
	assert.Equal(t, StatusFailed, byKind[KindCompile].Status)
	assert.Equal(t, "LaTeX compilation failed", byKind[KindCompile].Error)
}

func TestRecorderSwallowsRepoErrors(t *testing.T) {
	repo := &failingRepo{}
	rec := NewRecorder(repo)

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), Run{Kind: KindTailor}, nil)
	})
	assert.Equal(t, 1, repo.calls)
}

func TestRecorderWritesAfterCancel(t *testing.T) {
	repo := NewMemoryRepo()
	rec := NewRecorder(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, Run{Kind: KindTailor}, context.Canceled)

	runs, err := repo.List(context.Background(), KindTailor, 0, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	rec.Record(context.Background(), Run{Kind: KindTailor}, nil)
	runs, err := rec.List(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
