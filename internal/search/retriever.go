// Package search merges lexical and semantic matching into one ranked
// result list per query. The lexical path has no external dependency and
// always runs; the semantic path is strictly additive and its absence is a
// normal, tested operating mode.
package search

import (
	"context"
	"sort"
	"strings"

	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/llm"
	"inboxpilot/internal/mailtext"
	"inboxpilot/internal/metrics"
	"inboxpilot/internal/storage"
	"inboxpilot/internal/vectorstore"
)

const (
	// minSemanticQueryLen gates the semantic path: shorter queries are not
	// worth an embedding round-trip.
	minSemanticQueryLen = 2
	defaultLimit        = 20
	snippetRunes        = 200
)

// Lexical scores by matched field, ascending (lower = better). They are
// fixed constants so the lexical-only ordering is identical whether or not
// the vector store is healthy.
const (
	scoreTitleMatch  = float32(0.10)
	scoreSenderMatch = float32(0.15)
	scoreBodyMatch   = float32(0.20)
)

// Retriever answers hybrid search queries over emails and tasks.
type Retriever struct {
	emails   storage.EmailStore
	tasks    storage.TaskStore
	provider llm.CompletionProvider
	vectors  *vectorstore.Adapter
}

// NewRetriever creates a Retriever. provider and vectors may be nil, in
// which case every query is served lexically.
func NewRetriever(emails storage.EmailStore, tasks storage.TaskStore, provider llm.CompletionProvider, vectors *vectorstore.Adapter) *Retriever {
	return &Retriever{
		emails:   emails,
		tasks:    tasks,
		provider: provider,
		vectors:  vectors,
	}
}

// Search returns up to limit results for the query, ordered by ascending
// merged score with ties broken by recency. The lexical path always runs;
// semantic lookup is attempted only when the query is non-trivial and the
// embedding capability is available right now, and any semantic failure
// still yields the full lexical result set.
func (r *Retriever) Search(ctx context.Context, query string, target Target, limit int) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if target == "" {
		target = TargetAll
	}

	merged := make(map[string]*Result)

	if err := r.lexical(ctx, query, target, limit, merged); err != nil {
		return nil, err
	}

	mode := MatchKeyword
	if r.semanticAvailable(ctx, query) {
		r.semantic(ctx, query, target, limit, merged)
		mode = "hybrid"
	}
	metrics.IncSearchRequest(mode)

	results := make([]Result, 0, len(merged))
	for _, res := range merged {
		results = append(results, *res)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return results[i].Timestamp.After(results[j].Timestamp)
	})

	if len(results) > limit {
		results = results[:limit]
	}

	logger.InfoContext(ctx, "search completed",
		"query_length", len(query), "target", string(target), "mode", mode, "results", len(results))
	return results, nil
}

// lexical runs the substring path over the requested targets.
func (r *Retriever) lexical(ctx context.Context, query string, target Target, limit int, merged map[string]*Result) error {
	lower := strings.ToLower(query)

	if target == TargetEmails || target == TargetAll {
		emails, err := r.emails.SearchLexical(ctx, query, limit)
		if err != nil {
			return err
		}
		for _, email := range emails {
			res := emailResult(email, MatchKeyword, lexicalEmailScore(email, lower))
			merged[mergeKey(res.Kind, res.ID)] = &res
		}
	}

	if target == TargetTasks || target == TargetAll {
		tasks, err := r.tasks.SearchLexical(ctx, query, limit)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			res := taskResult(task, MatchKeyword, lexicalTaskScore(task, lower))
			merged[mergeKey(res.Kind, res.ID)] = &res
		}
	}

	return nil
}

// semanticAvailable is the capability check for the semantic branch.
func (r *Retriever) semanticAvailable(ctx context.Context, query string) bool {
	if len([]rune(query)) < minSemanticQueryLen {
		return false
	}
	if r.provider == nil || r.vectors == nil {
		return false
	}
	return r.vectors.Available(ctx)
}

// semantic embeds the query and merges nearest-neighbor hits. Failures are
// absorbed: the caller still gets the lexical results.
func (r *Retriever) semantic(ctx context.Context, query string, target Target, limit int, merged map[string]*Result) {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := r.provider.Embed(ctx, query)
	if err != nil {
		logger.WarnContext(ctx, "query embedding failed, serving lexical results only", "error", err)
		metrics.IncProviderError("embedding")
		return
	}
	vec := vectorstore.Normalize(raw, r.vectors.Width())

	if target == TargetEmails || target == TargetAll {
		for _, hit := range r.vectors.Query(ctx, vec, vectorstore.KindEmail, limit) {
			r.mergeEmailHit(ctx, hit, merged)
		}
	}
	if target == TargetTasks || target == TargetAll {
		for _, hit := range r.vectors.Query(ctx, vec, vectorstore.KindTask, limit) {
			r.mergeTaskHit(ctx, hit, merged)
		}
	}
}

func (r *Retriever) mergeEmailHit(ctx context.Context, hit vectorstore.Hit, merged map[string]*Result) {
	key := mergeKey("email", hit.RecordID)
	score := normalizeDistance(hit.Distance)

	if existing, ok := merged[key]; ok {
		existing.MatchType = MatchBoth
		if score < existing.Score {
			existing.Score = score
		}
		return
	}

	email, err := r.emails.GetByID(ctx, hit.RecordID)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "semantic hit has no email row", "record_id", hit.RecordID, "error", err)
		return
	}
	res := emailResult(email, MatchSemantic, score)
	merged[key] = &res
}

func (r *Retriever) mergeTaskHit(ctx context.Context, hit vectorstore.Hit, merged map[string]*Result) {
	key := mergeKey("task", hit.RecordID)
	score := normalizeDistance(hit.Distance)

	if existing, ok := merged[key]; ok {
		existing.MatchType = MatchBoth
		if score < existing.Score {
			existing.Score = score
		}
		return
	}

	task, err := r.tasks.GetByID(ctx, hit.RecordID)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "semantic hit has no task row", "record_id", hit.RecordID, "error", err)
		return
	}
	res := taskResult(task, MatchSemantic, score)
	merged[key] = &res
}

// lexicalEmailScore assigns the best (lowest) matching-field score.
func lexicalEmailScore(email *storage.EmailRecord, lowerQuery string) float32 {
	switch {
	case strings.Contains(strings.ToLower(email.Subject), lowerQuery):
		return scoreTitleMatch
	case strings.Contains(strings.ToLower(email.Sender), lowerQuery):
		return scoreSenderMatch
	default:
		return scoreBodyMatch
	}
}

func lexicalTaskScore(task *storage.TaskRecord, lowerQuery string) float32 {
	if strings.Contains(strings.ToLower(task.Title), lowerQuery) {
		return scoreTitleMatch
	}
	return scoreBodyMatch
}

// normalizeDistance maps a cosine distance (0..2) onto the shared [0,1]
// score scale.
func normalizeDistance(d float32) float32 {
	if d < 0 {
		return 0
	}
	n := d / 2
	if n > 1 {
		return 1
	}
	return n
}

func emailResult(email *storage.EmailRecord, matchType string, score float32) Result {
	body := mailtext.BodyText(email.BodyText, email.BodyHTML)
	return Result{
		Kind:      "email",
		ID:        email.ID,
		Title:     email.Subject,
		Snippet:   mailtext.Truncate(body, snippetRunes),
		Sender:    email.Sender,
		MatchType: matchType,
		Score:     score,
		Timestamp: email.ReceivedAt,
	}
}

func taskResult(task *storage.TaskRecord, matchType string, score float32) Result {
	return Result{
		Kind:      "task",
		ID:        task.ID,
		Title:     task.Title,
		Snippet:   mailtext.Truncate(task.Description, snippetRunes),
		MatchType: matchType,
		Score:     score,
		Timestamp: task.CreatedAt,
	}
}

func mergeKey(kind, id string) string {
	return kind + ":" + id
}
