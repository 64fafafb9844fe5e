package gcs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		bucket, key, want string
	}{
		{bucket: "resumes", key: "alice/resume_updated.tex", want: "https://storage.googleapis.com/resumes/alice/resume_updated.tex"},
		{bucket: "resumes", key: "/pdfs/temp.pdf", want: "https://storage.googleapis.com/resumes/pdfs/temp.pdf"},
	}
	for _, tt := range tests {
		if got := PublicURL(tt.bucket, tt.key); got != tt.want {
			t.Fatalf("PublicURL(%q, %q) = %q, want %q", tt.bucket, tt.key, got, tt.want)
		}
	}
}

func TestIsUniformAccessError(t *testing.T) {
	uniform := &googleapi.Error{
		Code:    http.StatusBadRequest,
		Message: "Cannot use ACL API to update object policy when uniform bucket-level access is enabled.",
	}
	byReason := &googleapi.Error{
		Code:   http.StatusBadRequest,
		Errors: []googleapi.ErrorItem{{Reason: "invalid", Message: "Uniform access is on"}},
	}
	forbidden := &googleapi.Error{Code: http.StatusForbidden, Message: "uniform bucket-level access"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "message", err: uniform, want: true},
		{name: "wrapped", err: fmt.Errorf("acl: %w", uniform), want: true},
		{name: "reason", err: byReason, want: true},
		{name: "forbidden", err: forbidden, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniformAccessError(tt.err); got != tt.want {
				t.Fatalf("isUniformAccessError() = %v, want %v", got, tt.want)
			}
		})
	}
}
