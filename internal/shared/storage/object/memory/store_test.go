package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/shared/storage/object"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New("resumes", "https://storage.example.com/resumes")

	ok, err := s.Exists(ctx, "alice/resume.tex")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Put(ctx, "alice/resume.tex", "text/plain", strings.NewReader(`\documentclass{article}`))
	require.NoError(t, err)
	assert.EqualValues(t, 23, n)

	ok, err = s.Exists(ctx, "alice/resume.tex")
	require.NoError(t, err)
	assert.True(t, ok)

	text, err := object.ReadText(ctx, s, "alice/resume.tex")
	require.NoError(t, err)
	assert.Equal(t, `\documentclass{article}`, text)

	assert.Equal(t, "https://storage.example.com/resumes/alice/resume.tex", s.PublicURL("alice/resume.tex"))
	assert.Equal(t, "resumes", s.Bucket())
}

func TestStoreOpenMissing(t *testing.T) {
	s := New("b", "http://x")
	_, err := s.Open(context.Background(), "nope.tex")
	assert.ErrorIs(t, err, object.ErrNotFound)
}

func TestStorePutOverwritesAndMakePublic(t *testing.T) {
	ctx := context.Background()
	s := New("b", "http://x")

	_, err := object.PutText(ctx, s, "k.tex", "one")
	require.NoError(t, err)
	_, err = object.PutText(ctx, s, "k.tex", "two")
	require.NoError(t, err)
	require.NoError(t, s.MakePublic(ctx, "k.tex"))

	obj, ok := s.Get("k.tex")
	require.True(t, ok)
	assert.Equal(t, "two", string(obj.Data))
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.True(t, obj.Public)
	assert.Equal(t, 1, s.Len())

	assert.ErrorIs(t, s.MakePublic(ctx, "missing"), object.ErrNotFound)
}
