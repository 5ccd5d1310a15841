package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a chat-completions client for OpenAI-compatible APIs.
// It never truncates the caller's prompt; keeping messages within the
// provider's context window is the caller's responsibility.
type Client struct {
	BaseURL  string
	APIKey   string
	Model    string
	Provider string
	client   *http.Client
}

// NewClient creates a new chat completion client. provider is the
// human-readable backend name reported in Completion results.
func NewClient(baseURL, apiKey, model, provider string) *Client {
	return &Client{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Model:    model,
		Provider: provider,
		client:   newHTTPClient(),
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
}

// Complete sends a chat completion request and returns the first choice.
// Retryable provider failures (auth, quota, rate limit, timeout) wrap
// ErrUnavailable.
func (c *Client) Complete(ctx context.Context, messages []Message, params ChatParams) (Completion, error) {
	url := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)

	all := messages
	if params.SystemPrompt != "" {
		all = make([]Message, 0, len(messages)+1)
		all = append(all, Message{Role: "system", Content: params.SystemPrompt})
		all = append(all, messages...)
	}

	payload := ChatRequest{
		Model:       c.Model,
		Messages:    all,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Completion{}, transportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return Completion{}, statusError(resp.StatusCode, raw)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return Completion{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return Completion{}, fmt.Errorf("no choices returned")
	}

	model := chatResp.Model
	if model == "" {
		model = c.Model
	}

	return Completion{
		Content:  chatResp.Choices[0].Message.Content,
		Provider: c.Provider,
		Model:    model,
	}, nil
}
