package history

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/apperr"
	"resume-tailor/internal/shared/server/respond"
)

// Handler serves the run history.
type Handler struct {
	Recorder *Recorder
}

// NewHandler constructs a Handler.
func NewHandler(rec *Recorder) *Handler {
	return &Handler{Recorder: rec}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/history", h.list)
}

type runResponse struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Kind       string    `json:"kind"`
	SourceKey  string    `json:"source_key,omitempty"`
	OutputKey  string    `json:"output_key,omitempty"`
	Model      string    `json:"model,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) list(c *gin.Context) {
	kind := strings.TrimSpace(c.Query("kind"))
	switch kind {
	case "", KindTailor, KindUpload, KindCompile:
	default:
		respond.FromError(c, apperr.Validation("kind must be one of tailor, upload, compile"))
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		respond.FromError(c, apperr.Validation("limit must be an integer"))
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		respond.FromError(c, apperr.Validation("offset must be an integer"))
		return
	}

	runs, err := h.Recorder.List(c.Request.Context(), kind, limit, offset)
	if err != nil {
		respond.FromError(c, apperr.Unclassified("failed to list history", err))
		return
	}

	out := make([]runResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, runResponse{
			ID:         r.ID,
			RequestID:  r.RequestID,
			Kind:       r.Kind,
			SourceKey:  r.SourceKey,
			OutputKey:  r.OutputKey,
			Model:      r.Model,
			Status:     r.Status,
			Error:      r.Error,
			DurationMs: r.DurationMs,
			CreatedAt:  r.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, out)
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
