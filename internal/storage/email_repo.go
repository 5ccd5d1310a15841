package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_email_store.go -package=mocks inboxpilot/internal/storage EmailStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ExtractionQuery selects emails for a batch extraction run.
type ExtractionQuery struct {
	// Limit caps the selected set. Required, must be positive.
	Limit int
	// Since restricts to emails received at or after the given time.
	Since *time.Time
	// UnprocessedOnly restricts to emails with no processed marker yet.
	UnprocessedOnly bool
}

// EmailStore defines the interface for email storage operations.
type EmailStore interface {
	// Insert stores an email row (ingestion boundary).
	Insert(ctx context.Context, email *EmailRecord) error
	// GetByID gets an email by ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*EmailRecord, error)
	// ListForExtraction selects candidate emails newest-first.
	ListForExtraction(ctx context.Context, q ExtractionQuery) ([]*EmailRecord, error)
	// Claim atomically claims an email for extraction. It returns false if
	// the email is already processed or held by an unexpired claim.
	Claim(ctx context.Context, id string, lease time.Duration) (bool, error)
	// ReleaseClaim clears an extraction claim without marking processed.
	ReleaseClaim(ctx context.Context, id string) error
	// MarkProcessed stamps the processed marker and clears the claim.
	MarkProcessed(ctx context.Context, id string, at time.Time) error
	// SaveEmbedding stores the fixed-width vector denormalized on the row.
	SaveEmbedding(ctx context.Context, id string, vec []float32) error
	// SearchLexical returns emails whose subject, sender, or body contains
	// the query (case-insensitive substring), newest first.
	SearchLexical(ctx context.Context, query string, limit int) ([]*EmailRecord, error)
}

// EmailRepo provides methods for email operations.
// It implements the EmailStore interface.
type EmailRepo struct {
	db *sql.DB
}

// NewEmailRepo creates a new EmailRepo.
func NewEmailRepo(db *sql.DB) *EmailRepo {
	return &EmailRepo{db: db}
}

const emailColumns = `id, account_id, sender, recipients, subject, body_text,
	body_html, thread_id, received_at, processed_for_tasks, claimed_at, embedding`

// Insert stores an email row.
func (r *EmailRepo) Insert(ctx context.Context, email *EmailRecord) error {
	recipients, err := json.Marshal(email.Recipients)
	if err != nil {
		return fmt.Errorf("failed to encode recipients: %w", err)
	}

	var embedding any
	if email.Embedding != nil {
		encoded, err := json.Marshal(email.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %w", err)
		}
		embedding = string(encoded)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO emails (id, account_id, sender, recipients, subject, body_text,
			body_html, thread_id, received_at, processed_for_tasks, claimed_at, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		email.ID, email.AccountID, email.Sender, string(recipients), email.Subject,
		email.BodyText, nullString(email.BodyHTML), nullString(email.ThreadID),
		email.ReceivedAt, nullTime(email.ProcessedForTasks), nullTime(email.ClaimedAt),
		embedding,
	)
	if err != nil {
		return fmt.Errorf("failed to insert email: %w", err)
	}
	return nil
}

// GetByID gets an email by ID. Returns ErrNotFound if missing.
func (r *EmailRepo) GetByID(ctx context.Context, id string) (*EmailRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+emailColumns+" FROM emails WHERE id = ?", id)
	email, err := scanEmail(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query email: %w", err)
	}
	return email, nil
}

// ListForExtraction selects candidate emails newest-first.
func (r *EmailRepo) ListForExtraction(ctx context.Context, q ExtractionQuery) ([]*EmailRecord, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	var (
		conds []string
		args  []any
	)
	if q.UnprocessedOnly {
		conds = append(conds, "processed_for_tasks IS NULL")
	}
	if q.Since != nil {
		conds = append(conds, "received_at >= ?")
		args = append(args, *q.Since)
	}

	query := "SELECT " + emailColumns + " FROM emails"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY received_at DESC LIMIT ?"
	args = append(args, q.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectEmails(rows)
}

// Claim atomically claims an email for extraction. The claim succeeds only
// when the email is unprocessed and either unclaimed or held by a claim
// older than the lease, so two concurrent runs never double-process a row.
func (r *EmailRepo) Claim(ctx context.Context, id string, lease time.Duration) (bool, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-lease)

	res, err := r.db.ExecContext(ctx,
		`UPDATE emails SET claimed_at = ?
		 WHERE id = ? AND processed_for_tasks IS NULL
		   AND (claimed_at IS NULL OR claimed_at < ?)`,
		now, id, cutoff,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	return n > 0, nil
}

// ReleaseClaim clears an extraction claim without marking the email
// processed, so a later run can retry it.
func (r *EmailRepo) ReleaseClaim(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE emails SET claimed_at = NULL WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to release claim: %w", err)
	}
	return nil
}

// MarkProcessed stamps the processed marker and clears the claim.
func (r *EmailRepo) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE emails SET processed_for_tasks = ?, claimed_at = NULL WHERE id = ?",
		at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark email processed: %w", err)
	}
	return nil
}

// SaveEmbedding stores the fixed-width vector denormalized on the email row.
func (r *EmailRepo) SaveEmbedding(ctx context.Context, id string, vec []float32) error {
	encoded, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE emails SET embedding = ? WHERE id = ?", string(encoded), id)
	if err != nil {
		return fmt.Errorf("failed to save embedding: %w", err)
	}
	return nil
}

// SearchLexical returns emails whose subject, sender, or body contains the
// query, newest first. SQLite LIKE is case-insensitive for ASCII, which is
// the substring-match contract the lexical index promises.
func (r *EmailRepo) SearchLexical(ctx context.Context, query string, limit int) ([]*EmailRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := likePattern(query)

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+emailColumns+` FROM emails
		 WHERE subject LIKE ? ESCAPE '\'
		    OR sender LIKE ? ESCAPE '\'
		    OR body_text LIKE ? ESCAPE '\'
		 ORDER BY received_at DESC LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search emails: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectEmails(rows)
}

// likePattern builds a substring LIKE pattern with metacharacters escaped.
func likePattern(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	q = strings.ReplaceAll(q, "%", `\%`)
	q = strings.ReplaceAll(q, "_", `\_`)
	return "%" + q + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmail(row rowScanner) (*EmailRecord, error) {
	var (
		email      EmailRecord
		recipients string
		bodyHTML   sql.NullString
		threadID   sql.NullString
		processed  sql.NullTime
		claimed    sql.NullTime
		embedding  sql.NullString
	)

	err := row.Scan(&email.ID, &email.AccountID, &email.Sender, &recipients,
		&email.Subject, &email.BodyText, &bodyHTML, &threadID, &email.ReceivedAt,
		&processed, &claimed, &embedding)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(recipients), &email.Recipients); err != nil {
		return nil, fmt.Errorf("failed to decode recipients: %w", err)
	}
	email.BodyHTML = bodyHTML.String
	email.ThreadID = threadID.String
	if processed.Valid {
		t := processed.Time
		email.ProcessedForTasks = &t
	}
	if claimed.Valid {
		t := claimed.Time
		email.ClaimedAt = &t
	}
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &email.Embedding); err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
	}

	return &email, nil
}

func collectEmails(rows *sql.Rows) ([]*EmailRecord, error) {
	var emails []*EmailRecord
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emails: %w", err)
	}
	return emails, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
