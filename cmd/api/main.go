package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"inboxpilot/internal/assistant"
	"inboxpilot/internal/config"
	"inboxpilot/internal/extractor"
	"inboxpilot/internal/http"
	"inboxpilot/internal/llm"
	"inboxpilot/internal/pipeline"
	"inboxpilot/internal/search"
	"inboxpilot/internal/storage"
	"inboxpilot/internal/vectorstore"
)

// General API information
//
// This API stores incoming email, extracts actionable tasks from it with a
// completion provider, and serves hybrid keyword/semantic search and
// question answering over both.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: InboxPilot API
//   description: |
//     Email task extraction and retrieval API. Emails arrive through the
//     intake endpoint, batch runs turn them into tasks, and search works
//     across both even when the vector store is down.
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	emailRepo := storage.NewEmailRepo(db)
	taskRepo := storage.NewTaskRepo(db)
	settingsRepo := storage.NewSettingsRepo(db)

	ctx := context.Background()

	// Provider settings: a stored per-user row overrides the environment.
	provider := llm.NewProvider(providerSettings(ctx, settingsRepo, cfg))
	slog.Info("Completion provider configured", "provider", provider.Name(), "model", cfg.LLMModelName)

	// Vector store is optional: search and extraction degrade to lexical
	// and no-embedding paths when it is absent or unreachable.
	var adapter *vectorstore.Adapter
	qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		slog.Warn("Qdrant unavailable, running in degraded mode", "error", err)
	} else {
		if err := qdrantStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingWidth); err != nil {
			slog.Warn("Failed to ensure Qdrant collection, running in degraded mode", "error", err)
		} else {
			slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingWidth)
		}
		adapter = vectorstore.NewAdapter(qdrantStore, cfg.QdrantCollection, cfg.EmbeddingWidth)
	}

	taskExtractor := extractor.New(provider, taskRepo)
	orchestrator := pipeline.New(emailRepo, taskExtractor, provider, adapter,
		cfg.ExtractWorkers, cfg.ProviderRPS)
	retriever := search.NewRetriever(emailRepo, taskRepo, provider, adapter)
	engine := assistant.NewEngine(retriever, provider)
	slog.Info("Extraction pipeline initialized", "workers", cfg.ExtractWorkers, "rps", cfg.ProviderRPS)

	deps := &http.Deps{
		DB:           db,
		Emails:       emailRepo,
		Tasks:        taskRepo,
		Orchestrator: orchestrator,
		Retriever:    retriever,
		Assistant:    engine,
		Vectors:      adapter,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// providerSettings resolves provider credentials, preferring the stored
// per-user row over environment configuration.
func providerSettings(ctx context.Context, repo *storage.SettingsRepo, cfg *config.Config) llm.Settings {
	settings := llm.Settings{
		Provider:         cfg.ProviderName,
		BaseURL:          cfg.LLMBaseURL,
		APIKey:           cfg.LLMAPIKey,
		Model:            cfg.LLMModelName,
		EmbeddingBaseURL: cfg.EmbeddingBaseURL,
		EmbeddingModel:   cfg.EmbeddingModelName,
	}

	stored, err := repo.Get(ctx, "default")
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Failed to read stored provider settings", "error", err)
		}
		return settings
	}

	if stored.Provider != "" {
		settings.Provider = stored.Provider
	}
	if stored.BaseURL != "" {
		settings.BaseURL = stored.BaseURL
	}
	if stored.APIKey != "" {
		settings.APIKey = stored.APIKey
	}
	if stored.Model != "" {
		settings.Model = stored.Model
	}
	if stored.EmbeddingBaseURL != "" {
		settings.EmbeddingBaseURL = stored.EmbeddingBaseURL
	}
	if stored.EmbeddingModel != "" {
		settings.EmbeddingModel = stored.EmbeddingModel
	}
	return settings
}
