package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	llm_mocks "inboxpilot/internal/llm/mocks"
	"inboxpilot/internal/storage"
	"inboxpilot/internal/vectorstore"
	vectorstore_mocks "inboxpilot/internal/vectorstore/mocks"
)

func newTestStores(t *testing.T) (*storage.EmailRepo, *storage.TaskRepo) {
	t.Helper()

	db, err := storage.New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return storage.NewEmailRepo(db), storage.NewTaskRepo(db)
}

func seedSearchData(t *testing.T, emails *storage.EmailRepo, tasks *storage.TaskRepo) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := []*storage.EmailRecord{
		{
			ID: "email-subject", AccountID: "acct-1", Sender: "alice@example.com",
			Subject: "Budget planning", BodyText: "see attachment",
			ReceivedAt: base,
		},
		{
			ID: "email-body", AccountID: "acct-1", Sender: "bob@example.com",
			Subject: "Lunch", BodyText: "we should discuss the budget",
			ReceivedAt: base.AddDate(0, 0, 1),
		},
		{
			ID: "email-other", AccountID: "acct-1", Sender: "carol@example.com",
			Subject: "Hello", BodyText: "nothing relevant",
			ReceivedAt: base.AddDate(0, 0, 2),
		},
	}
	for _, e := range rows {
		if err := emails.Insert(ctx, e); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	task := &storage.TaskRecord{
		ID: "task-budget", EmailID: "email-subject",
		Title: "Review budget draft", Priority: storage.PriorityMedium,
		CreatedAt: base.AddDate(0, 0, 3),
	}
	if err := tasks.Insert(ctx, task); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
}

func TestSearch_LexicalOnlyWithoutVectorStore(t *testing.T) {
	emails, tasks := newTestStores(t)
	seedSearchData(t, emails, tasks)

	r := NewRetriever(emails, tasks, nil, nil)
	results, err := r.Search(context.Background(), "budget", TargetAll, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	for _, res := range results {
		if res.MatchType != MatchKeyword {
			t.Errorf("MatchType = %q, want %q without a vector store", res.MatchType, MatchKeyword)
		}
	}

	// Subject and title matches outrank the body match; the tie between
	// the email subject match and the task title match breaks by recency.
	if results[0].ID != "task-budget" {
		t.Errorf("results[0].ID = %s, want task-budget (same score, newer)", results[0].ID)
	}
	if results[1].ID != "email-subject" {
		t.Errorf("results[1].ID = %s, want email-subject", results[1].ID)
	}
	if results[2].ID != "email-body" {
		t.Errorf("results[2].ID = %s, want email-body (body match scores worst)", results[2].ID)
	}
}

func TestSearch_TargetRestricts(t *testing.T) {
	emails, tasks := newTestStores(t)
	seedSearchData(t, emails, tasks)

	r := NewRetriever(emails, tasks, nil, nil)

	results, err := r.Search(context.Background(), "budget", TargetTasks, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Kind != "task" {
		t.Errorf("TargetTasks results = %v, want only the task", results)
	}

	results, err = r.Search(context.Background(), "budget", TargetEmails, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("TargetEmails returned %d results, want 2", len(results))
	}
	for _, res := range results {
		if res.Kind != "email" {
			t.Errorf("Kind = %q, want email", res.Kind)
		}
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	emails, tasks := newTestStores(t)

	r := NewRetriever(emails, tasks, nil, nil)
	results, err := r.Search(context.Background(), "   ", TargetAll, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results != nil {
		t.Errorf("Search(blank) = %v, want nil", results)
	}
}

func TestSearch_SemanticMergeTagsBoth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedSearchData(t, emails, tasks)

	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 8)

	store.EXPECT().CollectionExists(gomock.Any(), "mail").Return(true, nil)
	provider.EXPECT().Embed(gomock.Any(), "budget").Return([]float32{0.1, 0.2}, nil)

	// Semantic path surfaces the lexical subject match (merged, lower score
	// wins) plus an email the lexical path missed.
	store.EXPECT().
		Query(gomock.Any(), "mail", gomock.Any(), 10, map[string]any{"kind": vectorstore.KindEmail}).
		Return([]vectorstore.Hit{
			{RecordID: "email-subject", Distance: 0.05},
			{RecordID: "email-other", Distance: 0.30},
		}, nil)
	store.EXPECT().
		Query(gomock.Any(), "mail", gomock.Any(), 10, map[string]any{"kind": vectorstore.KindTask}).
		Return(nil, nil)

	r := NewRetriever(emails, tasks, provider, adapter)
	results, err := r.Search(context.Background(), "budget", TargetAll, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	byID := make(map[string]Result)
	for _, res := range results {
		byID[res.ID] = res
	}

	both, ok := byID["email-subject"]
	if !ok {
		t.Fatal("email-subject missing from results")
	}
	if both.MatchType != MatchBoth {
		t.Errorf("email-subject MatchType = %q, want %q", both.MatchType, MatchBoth)
	}
	// 0.05/2 = 0.025 beats the lexical subject score of 0.10.
	if both.Score != 0.025 {
		t.Errorf("email-subject Score = %v, want 0.025", both.Score)
	}

	semantic, ok := byID["email-other"]
	if !ok {
		t.Fatal("email-other missing from results")
	}
	if semantic.MatchType != MatchSemantic {
		t.Errorf("email-other MatchType = %q, want %q", semantic.MatchType, MatchSemantic)
	}
}

func TestSearch_SemanticFailureFallsBackToLexical(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedSearchData(t, emails, tasks)

	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 8)

	store.EXPECT().CollectionExists(gomock.Any(), "mail").Return(true, nil)
	provider.EXPECT().Embed(gomock.Any(), "budget").Return(nil, errors.New("embedding endpoint down"))

	r := NewRetriever(emails, tasks, provider, adapter)
	results, err := r.Search(context.Background(), "budget", TargetAll, 10)
	if err != nil {
		t.Fatalf("Search() error = %v, want lexical fallback", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want the full lexical set", len(results))
	}
}

func TestSearch_UnavailableStoreSkipsSemantic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedSearchData(t, emails, tasks)

	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 8)

	// The capability probe fails, so no embedding call is ever made.
	store.EXPECT().CollectionExists(gomock.Any(), "mail").Return(false, errors.New("down"))

	r := NewRetriever(emails, tasks, provider, adapter)
	results, err := r.Search(context.Background(), "budget", TargetAll, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3 lexical results", len(results))
	}
	for _, res := range results {
		if res.MatchType != MatchKeyword {
			t.Errorf("MatchType = %q, want %q when store is down", res.MatchType, MatchKeyword)
		}
	}
}

func TestSearch_LimitAppliesAfterMerge(t *testing.T) {
	emails, tasks := newTestStores(t)
	seedSearchData(t, emails, tasks)

	r := NewRetriever(emails, tasks, nil, nil)
	results, err := r.Search(context.Background(), "budget", TargetAll, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// The worst-scoring match (body) is the one cut.
	for _, res := range results {
		if res.ID == "email-body" {
			t.Error("limit kept the worst match instead of the best ones")
		}
	}
}
