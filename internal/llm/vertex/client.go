// Package vertex implements llm.Client with Gemini models on Vertex AI.
package vertex

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/telemetry"
)

// Client wraps a Vertex AI genai client.
type Client struct {
	client *genai.Client
}

// NewClient creates a Vertex AI client using application default credentials.
func NewClient(ctx context.Context, projectID, region string) (*Client, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("vertex: project id and region cannot be empty")
	}
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	model := c.client.GenerativeModel(req.Model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return llm.ChatResponse{}, fmt.Errorf("vertex generate content: %w", err)
	}
	text, err := extractText(resp)
	if err != nil {
		return llm.ChatResponse{}, err
	}

	out := llm.ChatResponse{Text: text, Model: req.Model}
	if resp.UsageMetadata != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	fields := map[string]any{"provider": "vertex", "model": req.Model}
	if out.Usage != nil {
		fields["total_tokens"] = out.Usage.TotalTokens
	}
	telemetry.Info("llm.usage", fields)
	return out, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

var _ llm.Client = (*Client)(nil)
