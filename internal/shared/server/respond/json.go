package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/apperr"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

func asAppErr(err error) (*apperr.Error, bool) {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
