package minio

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPolicyScopesToPrefix(t *testing.T) {
	raw, err := readPolicy("resumes", "pdfs/temp.pdf")
	require.NoError(t, err)

	var p bucketPolicy
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Len(t, p.Statement, 1)
	assert.Equal(t, []string{"arn:aws:s3:::resumes/pdfs/*"}, p.Statement[0].Resource)
	assert.Equal(t, []string{"s3:GetObject"}, p.Statement[0].Action)
	assert.Equal(t, "Allow", p.Statement[0].Effect)
}

func TestReadPolicyTopLevelKey(t *testing.T) {
	raw, err := readPolicy("resumes", "resume.pdf")
	require.NoError(t, err)

	var p bucketPolicy
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, []string{"arn:aws:s3:::resumes/resume.pdf"}, p.Statement[0].Resource)
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}))
	assert.True(t, isNotFound(minio.ErrorResponse{StatusCode: http.StatusNotFound}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}))
	assert.False(t, isNotFound(errors.New("dial tcp: refused")))
}
