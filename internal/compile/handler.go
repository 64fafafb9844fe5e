package compile

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/apperr"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

// Handler exposes the compile service over HTTP.
type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/convert_tex_to_pdf", h.convert)
}

type convertRequest struct {
	TexFilePath string `json:"tex_file_path"`
}

type convertResponse struct {
	Message   string `json:"message"`
	PDFURL    string `json:"pdf_url"`
	PageCount int    `json:"page_count,omitempty"`
}

func (h *Handler) convert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.FromError(c, apperr.Validation("invalid request body"))
		return
	}
	c.Set(middleware.SourceKeyField, req.TexFilePath)

	res, err := h.Service.Convert(c.Request.Context(), req.TexFilePath)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set(middleware.OutputKeyField, res.OutputKey)

	respond.OK(c, convertResponse{
		Message:   "PDF generated successfully",
		PDFURL:    res.PDFURL,
		PageCount: res.PageCount,
	})
}
