package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAnthropicService(t *testing.T) {
	service := NewAnthropicService("test-api-key", "claude-sonnet-4-20250514", 10*time.Second, discardLogger())

	if service.apiKey != "test-api-key" {
		t.Errorf("Expected API key test-api-key, got %s", service.apiKey)
	}
	if service.modelName != "claude-sonnet-4-20250514" {
		t.Errorf("Expected model name claude-sonnet-4-20250514, got %s", service.modelName)
	}
	if service.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
}

func TestAnthropicService_DefaultModel(t *testing.T) {
	service := NewAnthropicService("test-key", "", 10*time.Second, discardLogger())
	if service.modelName != DefaultAnthropicModel {
		t.Errorf("Expected default model %s, got %s", DefaultAnthropicModel, service.modelName)
	}
}

func TestAnthropicService_IsConfigured(t *testing.T) {
	configured := NewAnthropicService("test-key", "", 10*time.Second, discardLogger())
	if !configured.IsConfigured() {
		t.Error("Expected service with API key to be configured")
	}

	unconfigured := NewAnthropicService("", "", 10*time.Second, discardLogger())
	if unconfigured.IsConfigured() {
		t.Error("Expected service without API key to not be configured")
	}
	if _, err := unconfigured.GenerateText(context.Background(), "sys", "user", 0.2, 100); err == nil {
		t.Error("Expected error from unconfigured service")
	}
}

func TestAnthropicService_GenerateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("Expected path /messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Expected anthropic-version header to be set")
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.System != "system prompt" {
			t.Errorf("Expected system prompt to be forwarded, got %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "user prompt" {
			t.Errorf("Expected single user message, got %+v", req.Messages)
		}
		if req.Temperature == nil || *req.Temperature != 0.2 {
			t.Errorf("Expected temperature 0.2, got %v", req.Temperature)
		}
		if req.MaxTokens != 150 {
			t.Errorf("Expected max_tokens 150, got %d", req.MaxTokens)
		}

		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContentBlock{{Type: "text", Text: `{"type":"look"}`}},
			Model:   req.Model,
		})
	}))
	defer server.Close()

	service := NewAnthropicService("test-key", "", 10*time.Second, discardLogger())
	service.baseURL = server.URL

	got, err := service.GenerateText(context.Background(), "system prompt", "user prompt", 0.2, 150)
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if got != `{"type":"look"}` {
		t.Errorf("Expected response text, got %q", got)
	}
}

func TestAnthropicService_GenerateTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error","message":"slow down"}}`, "status 429"},
		{"api error body", http.StatusOK, `{"error":{"type":"invalid_request_error","message":"bad model"}}`, "invalid_request_error"},
		{"empty content", http.StatusOK, `{"content":[]}`, "no content"},
		{"malformed json", http.StatusOK, `{not json`, "unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			service := NewAnthropicService("test-key", "", 10*time.Second, discardLogger())
			service.baseURL = server.URL

			_, err := service.GenerateText(context.Background(), "sys", "user", 0.2, 150)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
