package llm

import (
	"context"
	"errors"
)

// Client abstracts chat-completion providers.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// ChatRequest is a single-turn exchange: one system and one user message.
type ChatRequest struct {
	Model  string
	System string
	User   string
	// MaxTokens caps the completion length; zero leaves the provider default.
	MaxTokens   int
	Temperature *float32
}

// ChatResponse carries the first completion's text.
type ChatResponse struct {
	Text  string
	Model string
	Usage *Usage
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderClient stands in when no provider credentials are set.
type PlaceholderClient struct{}

// Chat returns ErrNotConfigured.
func (PlaceholderClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	_ = ctx
	_ = req
	return ChatResponse{}, ErrNotConfigured
}
