// Package http wires the API routes and request middleware.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inboxpilot/internal/assistant"
	"inboxpilot/internal/handlers"
	"inboxpilot/internal/pipeline"
	"inboxpilot/internal/search"
	"inboxpilot/internal/storage"
	"inboxpilot/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB           *sql.DB
	Emails       storage.EmailStore
	Tasks        storage.TaskStore
	Orchestrator *pipeline.Orchestrator
	Retriever    *search.Retriever
	Assistant    *assistant.Engine
	Vectors      *vectorstore.Adapter
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(CORS)

	emailsHandler := handlers.NewEmailsHandler(deps.Emails)
	extractHandler := handlers.NewExtractHandler(deps.Orchestrator)
	searchHandler := handlers.NewSearchHandler(deps.Retriever)
	askHandler := handlers.NewAskHandler(deps.Assistant)
	reviewHandler := handlers.NewReviewHandler(deps.Tasks)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Vectors)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/emails", emailsHandler)
		r.Method(http.MethodPost, "/extract", extractHandler)
		r.Method(http.MethodGet, "/search", searchHandler)
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodGet, "/review", reviewHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
