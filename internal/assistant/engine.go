// Package assistant answers natural-language questions about the mailbox by
// retrieving relevant emails and tasks and grounding a completion on them.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/llm"
	"inboxpilot/internal/search"
)

const (
	defaultK = 5
	maxK     = 20
)

// AskRequest is a question about mailbox content.
type AskRequest struct {
	Question string `json:"question"`
	// K caps how many retrieved items ground the answer; defaults to 5.
	K int `json:"k,omitempty"`
}

// Reference points at an email or task that grounded the answer.
type Reference struct {
	Kind      string  `json:"kind"`
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Sender    string  `json:"sender,omitempty"`
	MatchType string  `json:"match_type"`
	Score     float32 `json:"score"`
}

// AskResponse carries the generated answer with its grounding references.
type AskResponse struct {
	Answer     string      `json:"answer"`
	References []Reference `json:"references"`
	Model      string      `json:"model"`
}

// Engine answers questions grounded on retrieved mailbox content.
type Engine struct {
	retriever *search.Retriever
	provider  llm.CompletionProvider
}

// NewEngine creates an assistant engine.
func NewEngine(retriever *search.Retriever, provider llm.CompletionProvider) *Engine {
	return &Engine{retriever: retriever, provider: provider}
}

const answerSystemPrompt = "You are an email assistant that answers questions " +
	"using only the provided context from the user's mailbox. If the context " +
	"does not contain enough information to answer, say so plainly. Mention " +
	"senders and subjects when citing emails."

// Ask retrieves the most relevant emails and tasks for the question and
// generates an answer grounded on them. Retrieval uses the same hybrid path
// as search, so a degraded vector store degrades grounding quality but never
// fails the question.
func (e *Engine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, fmt.Errorf("question must not be empty")
	}

	k := req.K
	if k <= 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}

	results, err := e.retriever.Search(ctx, question, search.TargetAll, k)
	if err != nil {
		return AskResponse{}, fmt.Errorf("failed to retrieve context: %w", err)
	}

	logger.InfoContext(ctx, "ask retrieval completed",
		"question_length", len(question), "results", len(results), "k", k)

	if len(results) == 0 {
		return AskResponse{
			Answer:     "I couldn't find anything in your mailbox relevant to that question.",
			References: []Reference{},
			Model:      e.provider.Name(),
		}, nil
	}

	messages := []llm.Message{
		{Role: "user", Content: question + "\n\n" + formatContext(results)},
	}

	completion, err := e.provider.Complete(ctx, messages, llm.ChatParams{
		SystemPrompt: answerSystemPrompt,
		Temperature:  0.7,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return AskResponse{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	references := make([]Reference, 0, len(results))
	for _, r := range results {
		references = append(references, Reference{
			Kind:      r.Kind,
			ID:        r.ID,
			Title:     r.Title,
			Sender:    r.Sender,
			MatchType: r.MatchType,
			Score:     r.Score,
		})
	}

	return AskResponse{
		Answer:     completion.Content,
		References: references,
		Model:      fmt.Sprintf("%s/%s", completion.Provider, completion.Model),
	}, nil
}

// formatContext renders retrieved items into the block the model reads.
func formatContext(results []search.Result) string {
	var b strings.Builder
	b.WriteString("--- Context from mailbox ---\n\n")
	for _, r := range results {
		switch r.Kind {
		case "email":
			b.WriteString(fmt.Sprintf("[Email] From: %s\nSubject: %s\n", r.Sender, r.Title))
		default:
			b.WriteString(fmt.Sprintf("[Task] Title: %s\n", r.Title))
		}
		b.WriteString(fmt.Sprintf("Content: %s\n\n", r.Snippet))
	}
	b.WriteString("--- End Context ---")
	return b.String()
}
