package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_task_store.go -package=mocks inboxpilot/internal/storage TaskStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// ErrConstraint is returned when an insert violates a schema constraint,
// most notably a category value outside the stored vocabulary. Callers can
// retry with the offending field nulled.
var ErrConstraint = errors.New("schema constraint violation")

// TaskStore defines the interface for task storage operations.
type TaskStore interface {
	// Insert stores a task. A category outside the stored vocabulary
	// returns ErrConstraint.
	Insert(ctx context.Context, task *TaskRecord) error
	// GetByID gets a task by ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)
	// SearchLexical returns tasks whose title or description contains the
	// query (case-insensitive substring), newest first.
	SearchLexical(ctx context.Context, query string, limit int) ([]*TaskRecord, error)
	// ListNeedingReview returns tasks awaiting human review, newest first.
	ListNeedingReview(ctx context.Context, limit int) ([]*TaskRecord, error)
	// CountByEmail returns how many tasks were extracted from an email.
	CountByEmail(ctx context.Context, emailID string) (int, error)
}

// TaskRepo provides methods for task operations.
// It implements the TaskStore interface.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo creates a new TaskRepo.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = `id, email_id, title, description, source_snippet, category,
	priority, due_hint, due_date, status, ai_generated, ai_confidence, ai_model,
	needs_review, original_ai_suggestion, created_at`

// Insert stores a task, generating an ID when unset.
func (r *TaskRepo) Insert(ctx context.Context, task *TaskRecord) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.Status == "" {
		task.Status = "pending"
	}

	var category any
	if task.Category != nil {
		category = *task.Category
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, email_id, title, description, source_snippet, category,
			priority, due_hint, due_date, status, ai_generated, ai_confidence, ai_model,
			needs_review, original_ai_suggestion, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.EmailID, task.Title, task.Description, task.SourceSnippet,
		category, task.Priority, task.DueHint, nullTime(task.DueDate), task.Status,
		task.AIGenerated, task.AIConfidence, task.AIModel, task.NeedsReview,
		task.OriginalAISuggestion, task.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: %v", ErrConstraint, err)
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// GetByID gets a task by ID. Returns ErrNotFound if missing.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*TaskRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return task, nil
}

// SearchLexical returns tasks whose title or description contains the query,
// newest first.
func (r *TaskRepo) SearchLexical(ctx context.Context, query string, limit int) ([]*TaskRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := likePattern(query)

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+` FROM tasks
		 WHERE title LIKE ? ESCAPE '\'
		    OR description LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectTasks(rows)
}

// ListNeedingReview returns tasks awaiting human review, newest first.
// The review queue is this predicate, not a separate table.
func (r *TaskRepo) ListNeedingReview(ctx context.Context, limit int) ([]*TaskRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+` FROM tasks
		 WHERE needs_review = 1 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list review queue: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectTasks(rows)
}

// CountByEmail returns how many tasks were extracted from an email.
func (r *TaskRepo) CountByEmail(ctx context.Context, emailID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE email_id = ?", emailID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func scanTask(row rowScanner) (*TaskRecord, error) {
	var (
		task     TaskRecord
		category sql.NullString
		dueDate  sql.NullTime
	)

	err := row.Scan(&task.ID, &task.EmailID, &task.Title, &task.Description,
		&task.SourceSnippet, &category, &task.Priority, &task.DueHint, &dueDate,
		&task.Status, &task.AIGenerated, &task.AIConfidence, &task.AIModel,
		&task.NeedsReview, &task.OriginalAISuggestion, &task.CreatedAt)
	if err != nil {
		return nil, err
	}

	if category.Valid {
		c := category.String
		task.Category = &c
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}

	return &task, nil
}

func collectTasks(rows *sql.Rows) ([]*TaskRecord, error) {
	var tasks []*TaskRecord
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}
