package uploads

import (
	"errors"
	"fmt"
	"net/http"

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

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/upload-resume", h.upload)
}

type uploadResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

func (h *Handler) upload(c *gin.Context) {
	limit := h.Service.maxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.FromError(c, apperr.Validation(fmt.Sprintf("Upload exceeds the %d byte limit", limit)))
			return
		}
		respond.FromError(c, apperr.Validation("Missing file or name"))
		return
	}
	defer file.Close()

	name := c.Request.PostFormValue("name")
	u := Upload{
		Name:        name,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	c.Set(middleware.SourceKeyField, header.Filename)

	res, err := h.Service.Save(c.Request.Context(), u)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set(middleware.OutputKeyField, res.Key)

	respond.OK(c, uploadResponse{
		Message: "File uploaded successfully",
		URL:     res.URL,
	})
}
