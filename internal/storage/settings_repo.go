package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SettingsStore defines the interface for provider settings lookups.
type SettingsStore interface {
	// Get returns the provider settings for a user. Returns ErrNotFound if
	// the user has no stored selection.
	Get(ctx context.Context, userID string) (*ProviderSettings, error)
	// Upsert stores a user's provider selection.
	Upsert(ctx context.Context, s *ProviderSettings) error
}

// SettingsRepo provides methods for provider settings operations.
// It implements the SettingsStore interface.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the provider settings for a user.
func (r *SettingsRepo) Get(ctx context.Context, userID string) (*ProviderSettings, error) {
	var s ProviderSettings
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, provider, model, api_key, base_url, embedding_model,
			embedding_base_url, updated_at
		 FROM provider_settings WHERE user_id = ?`, userID,
	).Scan(&s.UserID, &s.Provider, &s.Model, &s.APIKey, &s.BaseURL,
		&s.EmbeddingModel, &s.EmbeddingBaseURL, &s.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query provider settings: %w", err)
	}
	return &s, nil
}

// Upsert stores a user's provider selection.
func (r *SettingsRepo) Upsert(ctx context.Context, s *ProviderSettings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO provider_settings (user_id, provider, model, api_key, base_url,
			embedding_model, embedding_base_url, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id) DO UPDATE SET
			provider = excluded.provider, model = excluded.model,
			api_key = excluded.api_key, base_url = excluded.base_url,
			embedding_model = excluded.embedding_model,
			embedding_base_url = excluded.embedding_base_url,
			updated_at = CURRENT_TIMESTAMP`,
		s.UserID, s.Provider, s.Model, s.APIKey, s.BaseURL,
		s.EmbeddingModel, s.EmbeddingBaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert provider settings: %w", err)
	}
	return nil
}
