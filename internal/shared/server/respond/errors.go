package respond

import (
	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/apperr"
	"resume-tailor/internal/shared/telemetry"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if details != nil {
		fields["details"] = details
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// FromError translates a service error into a response. Unknown errors are
// reported as unclassified with their raw message.
func FromError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	kind := apperr.KindOf(err)

	message := err.Error()
	var details interface{}
	if e, ok := asAppErr(err); ok {
		message = e.Message
		if e.Details != "" {
			details = e.Details
		}
	}
	Error(c, status, kind.String(), message, details)
}
