// Package summarize serves POST /summarize, a single chat completion over
// caller-supplied text.
package summarize

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/apperr"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/server/respond"
)

var validate = validator.New()

type Request struct {
	Text string `json:"text" validate:"required"`
}

type response struct {
	Summary string `json:"summary"`
}

type Service struct {
	LLM       llm.Client
	Model     string
	MaxTokens int
}

// Summarize returns the model's summary of text with surrounding whitespace
// trimmed.
func (s *Service) Summarize(ctx context.Context, text string) (summary string, err error) {
	done := metrics.Track(metrics.OpSummarize)
	defer func() { done(err) }()

	req := Request{Text: strings.TrimSpace(text)}
	if err := validate.Struct(req); err != nil {
		return "", apperr.Validation("Missing text")
	}

	resp, err := s.LLM.Chat(ctx, llm.ChatRequest{
		Model:     s.Model,
		System:    llm.SummarySystemPrompt,
		User:      llm.SummaryPrompt(text),
		MaxTokens: s.MaxTokens,
	})
	if err != nil {
		return "", apperr.Unclassified("", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/summarize", h.summarize)
}

func (h *Handler) summarize(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.FromError(c, apperr.Validation("invalid request body"))
		return
	}
	summary, err := h.Service.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, response{Summary: summary})
}
