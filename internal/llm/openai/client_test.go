package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-tailor/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(" ", "", 0); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestChatSendsMessagesAndReturnsContentVerbatim(t *testing.T) {
	var mu sync.Mutex
	var lastBody map[string]any
	var lastAuth, lastPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		lastBody = payload
		lastAuth = r.Header.Get("Authorization")
		lastPath = r.URL.Path
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-2024","choices":[{"message":{"role":"assistant","content":"  \\documentclass{article}\n"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL+"/v1/", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := client.Chat(context.Background(), llm.ChatRequest{
		Model:  "gpt-4o",
		System: llm.TailorSystemPrompt,
		User:   "tailor this",
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Text != "  \\documentclass{article}\n" {
		t.Fatalf("expected untrimmed content, got %q", resp.Text)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Fatalf("expected usage total 15, got %+v", resp.Usage)
	}

	mu.Lock()
	defer mu.Unlock()
	if lastPath != "/v1/chat/completions" {
		t.Fatalf("unexpected path %q", lastPath)
	}
	if lastAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", lastAuth)
	}
	if lastBody["model"] != "gpt-4o" {
		t.Fatalf("unexpected model %v", lastBody["model"])
	}
	msgs, _ := lastBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != llm.TailorSystemPrompt {
		t.Fatalf("unexpected system message %v", first)
	}
	if _, ok := lastBody["max_tokens"]; ok {
		t.Fatalf("expected max_tokens to be omitted")
	}
	if _, ok := lastBody["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted")
	}
}

func TestChatSendsMaxTokens(t *testing.T) {
	var maxTokens any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		maxTokens = payload["max_tokens"]
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"short"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient("k", server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Chat(context.Background(), llm.ChatRequest{Model: "gpt-4o-mini", User: "x", MaxTokens: 150}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if maxTokens != float64(150) {
		t.Fatalf("expected max_tokens 150, got %v", maxTokens)
	}
}

func TestChatSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client, _ := NewClient("bad", server.URL, time.Second)
	_, err := client.Chat(context.Background(), llm.ChatRequest{Model: "gpt-4o", User: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "Incorrect API key provided") {
		t.Fatalf("unexpected error %q", err.Error())
	}
}

func TestChatNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client, _ := NewClient("k", server.URL, time.Second)
	_, err := client.Chat(context.Background(), llm.ChatRequest{Model: "gpt-4o", User: "x"})
	if err == nil || !strings.Contains(err.Error(), "openai http status 502: upstream down") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestChatMissingChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, _ := NewClient("k", server.URL, time.Second)
	_, err := client.Chat(context.Background(), llm.ChatRequest{Model: "gpt-4o", User: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing choices") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestChatRetriesWithoutTemperature(t *testing.T) {
	var mu sync.Mutex
	var reqBodies []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		reqBodies = append(reqBodies, payload)
		callNum := len(reqBodies)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if callNum == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported value: 'temperature' does not support 0 with this model.","type":"invalid_request_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client, _ := NewClient("k", server.URL, time.Second)
	temp := float32(0)
	resp, err := client.Chat(context.Background(), llm.ChatRequest{Model: "gpt-4o-mini", User: "x", Temperature: &temp})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("unexpected text %q", resp.Text)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reqBodies) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqBodies))
	}
	if _, ok := reqBodies[0]["temperature"]; !ok {
		t.Fatalf("expected first request to include temperature")
	}
	if _, ok := reqBodies[1]["temperature"]; ok {
		t.Fatalf("expected retry request to omit temperature")
	}
}

func TestChatOmitsTemperatureForGPT5(t *testing.T) {
	var hasTemp bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, hasTemp = payload["temperature"]
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client, _ := NewClient("k", server.URL, time.Second)
	temp := float32(0.2)
	if _, err := client.Chat(context.Background(), llm.ChatRequest{Model: "gpt-5-mini", User: "x", Temperature: &temp}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if hasTemp {
		t.Fatalf("expected temperature to be omitted for gpt-5 models")
	}
}
