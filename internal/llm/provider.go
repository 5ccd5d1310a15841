package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks inboxpilot/internal/llm CompletionProvider

import "context"

// CompletionProvider is the uniform contract a language-model backend must
// satisfy. Implementations differ by provider but must surface retryable
// failures as ErrUnavailable, never silently truncate prompts, and report
// which concrete provider/model served each completion.
type CompletionProvider interface {
	// Complete sends a chat-style request and returns the generated content.
	Complete(ctx context.Context, messages []Message, params ChatParams) (Completion, error)
	// Embed returns an embedding for the text at the provider's native
	// width, not yet normalized to the stored width.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Name identifies the provider for logging and the audit trail.
	Name() string
}

// Settings carries provider selection and credentials, with the chat and
// embedding endpoints separated since backends often host them on different
// servers.
type Settings struct {
	Provider         string
	BaseURL          string
	APIKey           string
	Model            string
	EmbeddingBaseURL string
	EmbeddingModel   string
}

// Provider bundles a chat client and an embeddings client behind the
// CompletionProvider contract.
type Provider struct {
	chat  *Client
	embed *EmbeddingsClient
}

var _ CompletionProvider = (*Provider)(nil)

// NewProvider builds a provider from settings. An empty EmbeddingBaseURL
// falls back to the chat BaseURL.
func NewProvider(s Settings) *Provider {
	embedBase := s.EmbeddingBaseURL
	if embedBase == "" {
		embedBase = s.BaseURL
	}
	return &Provider{
		chat:  NewClient(s.BaseURL, s.APIKey, s.Model, s.Provider),
		embed: NewEmbeddingsClient(embedBase, s.APIKey, s.EmbeddingModel),
	}
}

// Complete sends a chat completion request.
func (p *Provider) Complete(ctx context.Context, messages []Message, params ChatParams) (Completion, error) {
	return p.chat.Complete(ctx, messages, params)
}

// Embed generates an embedding for a single text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.embed.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Name returns the provider name reported on completions.
func (p *Provider) Name() string {
	return p.chat.Provider
}
