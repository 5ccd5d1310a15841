// Package pipeline runs batch extraction passes: select unprocessed emails,
// drive extraction and embedding per item, and mark each item processed at
// most once per pass regardless of outcome.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/extractor"
	"inboxpilot/internal/llm"
	"inboxpilot/internal/mailtext"
	"inboxpilot/internal/metrics"
	"inboxpilot/internal/storage"
	"inboxpilot/internal/vectorstore"
)

const (
	defaultLimit = 25
	// defaultRPS applies when the constructor gets a non-positive rate;
	// rate.NewLimiter(0, 1) would let one call through and then block
	// every worker until context cancellation.
	defaultRPS = 2
	// claimLease bounds how long an in-flight claim blocks other runs.
	// An expired claim is treated as abandoned and can be re-claimed.
	claimLease = 10 * time.Minute
	// maxEmbedRunes bounds the text sent to the embedding endpoint.
	maxEmbedRunes = 4000
)

// Options selects the emails for one run.
type Options struct {
	// Limit caps the selected set; defaults to 25.
	Limit int
	// DaysBack, when positive, restricts to emails received within the
	// trailing window.
	DaysBack int
	// UnprocessedOnly restricts to emails with no processed marker.
	UnprocessedOnly bool
}

// RunResult reports one completed run. A run always reports counts;
// "0 tasks created, N emails processed" is a valid terminal state.
type RunResult struct {
	Processed int `json:"processed"`
	TaskCount int `json:"task_count"`
}

// Orchestrator coordinates batch extraction runs. It holds no state between
// runs beyond what the processed_for_tasks marker makes visible, so
// re-running with the same parameters after a successful pass selects
// nothing.
type Orchestrator struct {
	emails    storage.EmailStore
	extractor *extractor.Extractor
	provider  llm.CompletionProvider
	vectors   *vectorstore.Adapter
	workers   int
	limiter   *rate.Limiter
}

// New creates an Orchestrator. workers bounds concurrent extractions
// (1 reproduces strictly sequential processing); rps caps provider calls
// per second across the whole run. vectors may be nil to skip embedding
// generation entirely.
func New(emails storage.EmailStore, ex *extractor.Extractor, provider llm.CompletionProvider, vectors *vectorstore.Adapter, workers int, rps float64) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	if rps <= 0 {
		rps = defaultRPS
	}
	return &Orchestrator{
		emails:    emails,
		extractor: ex,
		provider:  provider,
		vectors:   vectors,
		workers:   workers,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Run executes one batch pass and reports counts. Emails are selected
// newest-first and claimed individually before extraction, so concurrent
// runs over the same mailbox never double-process a row. Extraction
// failures other than provider unavailability still consume the attempt:
// the email is marked processed with zero tasks. Provider unavailability
// releases the claim instead, leaving the email selectable by a later run.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (RunResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := storage.ExtractionQuery{
		Limit:           limit,
		UnprocessedOnly: opts.UnprocessedOnly,
	}
	if opts.DaysBack > 0 {
		since := time.Now().UTC().AddDate(0, 0, -opts.DaysBack)
		query.Since = &since
	}

	emails, err := o.emails.ListForExtraction(ctx, query)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to select emails: %w", err)
	}

	logger.InfoContext(ctx, "batch run started",
		"selected", len(emails), "limit", limit, "workers", o.workers)

	var processed, taskCount atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, email := range emails {
		g.Go(func() error {
			o.processOne(gctx, email, &processed, &taskCount)
			return nil
		})
	}
	_ = g.Wait()

	result := RunResult{
		Processed: int(processed.Load()),
		TaskCount: int(taskCount.Load()),
	}
	logger.InfoContext(ctx, "batch run completed",
		"processed", result.Processed, "tasks", result.TaskCount)
	return result, nil
}

// processOne claims, extracts, embeds, and marks one email. All failures
// are absorbed here; the run always completes its selected set.
func (o *Orchestrator) processOne(ctx context.Context, email *storage.EmailRecord, processed, taskCount *atomic.Int64) {
	logger := contextutil.LoggerFromContext(ctx)

	claimed, err := o.emails.Claim(ctx, email.ID, claimLease)
	if err != nil {
		logger.ErrorContext(ctx, "failed to claim email", "email_id", email.ID, "error", err)
		return
	}
	if !claimed {
		metrics.IncEmailProcessed("claim_skipped")
		logger.DebugContext(ctx, "email already claimed or processed", "email_id", email.ID)
		return
	}

	if err := o.limiter.Wait(ctx); err != nil {
		o.release(ctx, email.ID)
		return
	}

	result, err := o.extractor.Extract(ctx, email)
	if err != nil {
		// Provider unavailability is the one retryable condition: the
		// email must not be marked processed.
		logger.WarnContext(ctx, "extraction retryable, releasing claim",
			"email_id", email.ID, "error", err)
		metrics.IncEmailProcessed("retryable")
		o.release(ctx, email.ID)
		return
	}

	taskCount.Add(int64(len(result.Tasks)))

	o.embed(ctx, email, result.Tasks)

	if err := o.emails.MarkProcessed(ctx, email.ID, time.Now().UTC()); err != nil {
		logger.ErrorContext(ctx, "failed to mark email processed", "email_id", email.ID, "error", err)
		o.release(ctx, email.ID)
		return
	}

	metrics.IncEmailProcessed("processed")
	processed.Add(1)
}

// embed generates and stores vectors for the email and its new tasks.
// Embedding failures are logged and never block the processed marker.
func (o *Orchestrator) embed(ctx context.Context, email *storage.EmailRecord, tasks []*storage.TaskRecord) {
	if o.vectors == nil {
		return
	}
	logger := contextutil.LoggerFromContext(ctx)

	body := mailtext.BodyText(email.BodyText, email.BodyHTML)
	text := mailtext.Truncate(email.Subject+"\n\n"+body, maxEmbedRunes)

	if vec, ok := o.embedText(ctx, text); ok {
		normalized := vectorstore.Normalize(vec, o.vectors.Width())
		if err := o.vectors.Upsert(ctx, email.ID, vectorstore.KindEmail, normalized, email.ReceivedAt.Unix()); err != nil {
			logger.WarnContext(ctx, "failed to upsert email vector", "email_id", email.ID, "error", err)
		} else if err := o.emails.SaveEmbedding(ctx, email.ID, normalized); err != nil {
			logger.WarnContext(ctx, "failed to save email embedding", "email_id", email.ID, "error", err)
		}
	}

	for _, task := range tasks {
		text := mailtext.Truncate(task.Title+"\n\n"+task.Description, maxEmbedRunes)
		vec, ok := o.embedText(ctx, text)
		if !ok {
			continue
		}
		normalized := vectorstore.Normalize(vec, o.vectors.Width())
		if err := o.vectors.Upsert(ctx, task.ID, vectorstore.KindTask, normalized, task.CreatedAt.Unix()); err != nil {
			logger.WarnContext(ctx, "failed to upsert task vector", "task_id", task.ID, "error", err)
		}
	}
}

func (o *Orchestrator) embedText(ctx context.Context, text string) ([]float32, bool) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, false
	}
	vec, err := o.provider.Embed(ctx, text)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "embedding generation failed", "error", err)
		metrics.IncProviderError("embedding")
		return nil, false
	}
	return vec, true
}

func (o *Orchestrator) release(ctx context.Context, id string) {
	if err := o.emails.ReleaseClaim(ctx, id); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to release claim", "email_id", id, "error", err)
	}
}
