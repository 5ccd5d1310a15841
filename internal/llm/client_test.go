package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComplete_Success(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		resp := ChatResponse{
			Model: "gpt-4o-mini-2024",
			Choices: []ChatChoice{
				{Message: Message{Role: "assistant", Content: `{"tasks": []}`}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gpt-4o-mini", "openai")
	got, err := client.Complete(context.Background(),
		[]Message{{Role: "user", Content: "extract tasks"}},
		ChatParams{SystemPrompt: "be terse", MaxTokens: 100, Temperature: 0.2})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if got.Content != `{"tasks": []}` {
		t.Errorf("Content = %q", got.Content)
	}
	if got.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", got.Provider)
	}
	// The response's concrete model name wins over the configured alias.
	if got.Model != "gpt-4o-mini-2024" {
		t.Errorf("Model = %q, want gpt-4o-mini-2024", got.Model)
	}

	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("request messages = %v, want system prompt prepended", gotReq.Messages)
	}
	if gotReq.MaxTokens != 100 {
		t.Errorf("MaxTokens = %d, want 100", gotReq.MaxTokens)
	}
}

func TestComplete_RetryableStatuses(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		wantUnavailable bool
	}{
		{"unauthorized", http.StatusUnauthorized, true},
		{"forbidden quota", http.StatusForbidden, true},
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"bad request is terminal", http.StatusBadRequest, false},
		{"not found is terminal", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": "nope"}`))
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "gpt-4o-mini", "openai")
			_, err := client.Complete(context.Background(),
				[]Message{{Role: "user", Content: "hi"}}, ChatParams{})
			if err == nil {
				t.Fatal("Complete() error = nil, want error")
			}
			if errors.Is(err, ErrUnavailable) != tt.wantUnavailable {
				t.Errorf("errors.Is(err, ErrUnavailable) = %v, want %v (err: %v)",
					!tt.wantUnavailable, tt.wantUnavailable, err)
			}
		})
	}
}

func TestComplete_TransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, "test-key", "gpt-4o-mini", "openai")
	_, err := client.Complete(context.Background(),
		[]Message{{Role: "user", Content: "hi"}}, ChatParams{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Complete() error = %v, want ErrUnavailable", err)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gpt-4o-mini", "openai")
	_, err := client.Complete(context.Background(),
		[]Message{{Role: "user", Content: "hi"}}, ChatParams{})
	if err == nil {
		t.Fatal("Complete() error = nil, want error for empty choices")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("empty choices must not read as retryable")
	}
}

func TestEmbedTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %q, want /v1/embeddings", r.URL.Path)
		}
		var req EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}

		resp := EmbeddingsResponse{}
		for range req.Input {
			resp.Data = append(resp.Data, EmbeddingData{Embedding: []float64{0.1, 0.2, 0.3}})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "test-key", "text-embedding-3-small")
	got, err := client.EmbedTexts(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d vectors, want 2", len(got))
	}
	if len(got[0]) != 3 || got[0][1] != 0.2 {
		t.Errorf("vector = %v", got[0])
	}
}

func TestEmbedTexts_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(EmbeddingsResponse{
			Data: []EmbeddingData{{Embedding: []float64{0.1}}},
		})
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "test-key", "text-embedding-3-small")
	if _, err := client.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("EmbedTexts() error = nil, want count mismatch error")
	}
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:1", "test-key", "text-embedding-3-small")
	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Error("EmbedTexts(nil) error = nil, want error")
	}
}

func TestProvider_Name(t *testing.T) {
	p := NewProvider(Settings{Provider: "openai", BaseURL: "http://localhost", Model: "gpt-4o-mini"})
	if got := p.Name(); got != "openai" {
		t.Errorf("Name() = %q, want openai", got)
	}
}
