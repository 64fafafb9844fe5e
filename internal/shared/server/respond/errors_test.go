package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/shared/apperr"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantCode    string
		wantDetails interface{}
	}{
		{
			name:       "validation",
			err:        apperr.Validation("Missing .tex file path"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing .tex file path",
			wantCode:   "validation_error",
		},
		{
			name:       "not found wrapped",
			err:        fmt.Errorf("compile: %w", apperr.NotFound("The .tex file does not exist in storage")),
			wantStatus: http.StatusNotFound,
			wantError:  "The .tex file does not exist in storage",
			wantCode:   "not_found",
		},
		{
			name:        "compilation with details",
			err:         apperr.Compilation("LaTeX compilation failed", "exit status 1", nil),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "LaTeX compilation failed",
			wantCode:    "compilation_error",
			wantDetails: "exit status 1",
		},
		{
			name:       "raw error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "connection reset",
			wantCode:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

			FromError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantDetails, body["details"])
		})
	}
}
