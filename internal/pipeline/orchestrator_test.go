package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"inboxpilot/internal/extractor"
	"inboxpilot/internal/llm"
	llm_mocks "inboxpilot/internal/llm/mocks"
	"inboxpilot/internal/storage"
)

const oneTaskResponse = `{"tasks": [{
	"title": "Submit quarterly report",
	"category": "Report_Generation_Submission",
	"priority": "P2_High",
	"confidence": 0.9
}]}`

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

func seedEmails(t *testing.T, emails *storage.EmailRepo, n int) {
	t.Helper()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		email := &storage.EmailRecord{
			ID:         fmt.Sprintf("email-%d", i),
			AccountID:  "acct-1",
			Sender:     "alice@example.com",
			Subject:    fmt.Sprintf("Subject %d", i),
			BodyText:   "Please submit the quarterly report by Friday.",
			ReceivedAt: base.AddDate(0, 0, i),
		}
		if err := emails.Insert(context.Background(), email); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
}

func TestRun_ProcessesAndCounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedEmails(t, emails, 3)

	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(llm.Completion{Content: oneTaskResponse, Provider: "openai", Model: "gpt-4o-mini"}, nil).
		Times(3)

	o := New(emails, extractor.New(provider, tasks), provider, nil, 1, 100)
	result, err := o.Run(context.Background(), Options{UnprocessedOnly: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Processed != 3 {
		t.Errorf("Processed = %d, want 3", result.Processed)
	}
	if result.TaskCount != 3 {
		t.Errorf("TaskCount = %d, want 3", result.TaskCount)
	}

	for i := 0; i < 3; i++ {
		got, err := emails.GetByID(context.Background(), fmt.Sprintf("email-%d", i))
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.ProcessedForTasks == nil {
			t.Errorf("email-%d not marked processed", i)
		}
		if got.ClaimedAt != nil {
			t.Errorf("email-%d claim not cleared", i)
		}
	}
}

func TestRun_NonPositiveRateStillProcesses(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedEmails(t, emails, 2)

	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(llm.Completion{Content: oneTaskResponse, Provider: "openai", Model: "gpt-4o-mini"}, nil).
		Times(2)

	// A zero rate must fall back to a sane default instead of building a
	// limiter that blocks every worker after the first call.
	o := New(emails, extractor.New(provider, tasks), provider, nil, 2, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := o.Run(ctx, Options{UnprocessedOnly: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Processed != 2 {
		t.Errorf("Processed = %d, want 2", result.Processed)
	}
}

func TestRun_SecondRunSelectsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedEmails(t, emails, 2)

	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(llm.Completion{Content: oneTaskResponse, Provider: "openai", Model: "gpt-4o-mini"}, nil).
		Times(2)

	o := New(emails, extractor.New(provider, tasks), provider, nil, 2, 100)
	opts := Options{UnprocessedOnly: true}

	first, err := o.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Processed != 2 {
		t.Fatalf("first Processed = %d, want 2", first.Processed)
	}

	second, err := o.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Processed != 0 || second.TaskCount != 0 {
		t.Errorf("second Run() = %+v, want zero work", second)
	}
}

func TestRun_ProviderUnavailableLeavesEmailRetryable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedEmails(t, emails, 1)

	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(llm.Completion{}, fmt.Errorf("status 503: %w", llm.ErrUnavailable))

	o := New(emails, extractor.New(provider, tasks), provider, nil, 1, 100)
	result, err := o.Run(context.Background(), Options{UnprocessedOnly: true})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil (run always completes)", err)
	}
	if result.Processed != 0 {
		t.Errorf("Processed = %d, want 0", result.Processed)
	}

	got, err := emails.GetByID(context.Background(), "email-0")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ProcessedForTasks != nil {
		t.Error("email marked processed despite provider being unavailable")
	}
	if got.ClaimedAt != nil {
		t.Error("claim not released, a later run could not retry the email")
	}

	// The same email is selected again once the provider recovers.
	provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(llm.Completion{Content: oneTaskResponse, Provider: "openai", Model: "gpt-4o-mini"}, nil)

	result, err = o.Run(context.Background(), Options{UnprocessedOnly: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Processed != 1 || result.TaskCount != 1 {
		t.Errorf("retry Run() = %+v, want 1 processed, 1 task", result)
	}
}

func TestRun_MalformedOutputStillMarksProcessed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedEmails(t, emails, 1)

	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(llm.Completion{Content: "not json at all", Provider: "openai", Model: "gpt-4o-mini"}, nil)

	o := New(emails, extractor.New(provider, tasks), provider, nil, 1, 100)
	result, err := o.Run(context.Background(), Options{UnprocessedOnly: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Processed != 1 {
		t.Errorf("Processed = %d, want 1", result.Processed)
	}
	if result.TaskCount != 0 {
		t.Errorf("TaskCount = %d, want 0", result.TaskCount)
	}

	got, err := emails.GetByID(context.Background(), "email-0")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ProcessedForTasks == nil {
		t.Error("malformed output must still consume the attempt")
	}
}

func TestRun_SequentialOrderNewestFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedEmails(t, emails, 3)

	var (
		mu       sync.Mutex
		subjects []string
	)
	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (llm.Completion, error) {
			firstLine, _, _ := strings.Cut(messages[0].Content, "\n")
			mu.Lock()
			subjects = append(subjects, firstLine)
			mu.Unlock()
			return llm.Completion{Content: `{"tasks": []}`, Provider: "openai", Model: "gpt-4o-mini"}, nil
		}).
		Times(3)

	// One worker reproduces strictly sequential, newest-first processing.
	o := New(emails, extractor.New(provider, tasks), provider, nil, 1, 100)
	if _, err := o.Run(context.Background(), Options{UnprocessedOnly: true}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"Subject: Subject 2", "Subject: Subject 1", "Subject: Subject 0"}
	if len(subjects) != len(want) {
		t.Fatalf("got %d completions, want %d", len(subjects), len(want))
	}
	for i, w := range want {
		if subjects[i] != w {
			t.Errorf("processing order[%d] = %q, want %q", i, subjects[i], w)
		}
	}
}

func TestRun_LimitCapsSelection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	emails, tasks := newTestStores(t)
	seedEmails(t, emails, 5)

	provider := llm_mocks.NewMockCompletionProvider(ctrl)
	provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(llm.Completion{Content: `{"tasks": []}`, Provider: "openai", Model: "gpt-4o-mini"}, nil).
		Times(2)

	o := New(emails, extractor.New(provider, tasks), provider, nil, 1, 100)
	result, err := o.Run(context.Background(), Options{Limit: 2, UnprocessedOnly: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Processed != 2 {
		t.Errorf("Processed = %d, want 2", result.Processed)
	}
}
