package tailor

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/apperr"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// RegisterRoutes attaches the tailoring route.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/generate-resume", h.generate)
}

func (h *Handler) generate(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.FromError(c, apperr.Validation("invalid request body"))
		return
	}
	c.Set(middleware.SourceKeyField, req.LatexFilePath)

	res, err := h.Service.Tailor(c.Request.Context(), req)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set(middleware.OutputKeyField, res.OutputKey)

	respond.OK(c, response{
		Message:         "Resume updated successfully",
		UpdatedLatexURL: res.UpdatedLatexURL,
	})
}
