// Package extractor drives a completion provider to turn one email into
// structured, confidence-scored task records.
package extractor

import (
	"context"
	"errors"
	"fmt"

	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/llm"
	"inboxpilot/internal/metrics"
	"inboxpilot/internal/storage"
)

// Extractor prompts the completion provider with an email, parses the
// structured task list, and persists accepted tasks.
//
// Failure semantics: only provider unavailability (llm.ErrUnavailable)
// propagates to the caller, because that attempt must stay retryable.
// Malformed output is absorbed as zero tasks; a category constraint
// violation on insert is retried once with the category nulled.
type Extractor struct {
	provider llm.CompletionProvider
	tasks    storage.TaskStore
}

// New creates an Extractor.
func New(provider llm.CompletionProvider, tasks storage.TaskStore) *Extractor {
	return &Extractor{
		provider: provider,
		tasks:    tasks,
	}
}

// Extract runs one extraction pass over one email. Every extracted task is
// created with needs_review set; the extractor is optimistic about
// detecting tasks but never trusts them unsupervised, and review status is
// only cleared by an external human action.
func (e *Extractor) Extract(ctx context.Context, email *storage.EmailRecord) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	system, user := buildMessages(email)
	completion, err := e.provider.Complete(ctx, []llm.Message{{Role: "user", Content: user}}, llm.ChatParams{
		SystemPrompt: system,
		MaxTokens:    1024,
		Temperature:  0.2,
	})
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			metrics.IncProviderError("unavailable")
			return Result{}, fmt.Errorf("completion provider unavailable for email %s: %w", email.ID, err)
		}
		// Any other completion failure is terminal for this email within
		// the run and surfaces as zero tasks.
		logger.WarnContext(ctx, "completion failed, recording zero tasks",
			"email_id", email.ID, "error", err)
		metrics.IncProviderError("completion")
		return Result{ModelUsed: e.provider.Name()}, nil
	}

	modelUsed := fmt.Sprintf("%s/%s", completion.Provider, completion.Model)
	result := Result{ModelUsed: modelUsed}

	parsed := parseTasks(completion.Content)
	if len(parsed) == 0 {
		logger.InfoContext(ctx, "no tasks extracted", "email_id", email.ID)
		return result, nil
	}

	for _, mt := range parsed {
		record := e.buildRecord(email, mt, modelUsed)
		if err := e.insertWithCategoryFallback(ctx, record); err != nil {
			logger.ErrorContext(ctx, "failed to persist task",
				"email_id", email.ID, "title", record.Title, "error", err)
			continue
		}
		category := "none"
		if record.Category != nil {
			category = *record.Category
		}
		metrics.IncTaskExtracted(category)
		result.Tasks = append(result.Tasks, record)
	}

	logger.InfoContext(ctx, "extraction completed",
		"email_id", email.ID, "tasks", len(result.Tasks), "model", modelUsed)
	return result, nil
}

// buildRecord maps one model task entry onto a stored task record.
func (e *Extractor) buildRecord(email *storage.EmailRecord, mt modelTask, modelUsed string) *storage.TaskRecord {
	// The entry's verbatim response bytes are retained for the audit trail,
	// so fields the model reported outside the parsed shape are kept too.
	raw := mt.raw
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	return &storage.TaskRecord{
		EmailID:              email.ID,
		Title:                mt.Title,
		Description:          mt.Description,
		SourceSnippet:        mt.SourceSnippet,
		Category:             mapCategory(mt.Category),
		Priority:             mapPriority(mt.Priority),
		DueHint:              mt.DueDate,
		DueDate:              parseDueDate(mt.DueDate),
		AIGenerated:          true,
		AIConfidence:         mapConfidence(mt.Confidence),
		AIModel:              modelUsed,
		NeedsReview:          true,
		OriginalAISuggestion: string(raw),
	}
}

// insertWithCategoryFallback persists a task, retrying once with the
// category nulled when the schema rejects it. Category validity must never
// block task creation.
func (e *Extractor) insertWithCategoryFallback(ctx context.Context, record *storage.TaskRecord) error {
	err := e.tasks.Insert(ctx, record)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrConstraint) || record.Category == nil {
		return err
	}

	record.Category = nil
	return e.tasks.Insert(ctx, record)
}
