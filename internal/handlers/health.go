package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/vectorstore"
)

// HealthHandler reports the health of the service and its dependencies.
type HealthHandler struct {
	db                 *sql.DB
	vectors            *vectorstore.Adapter
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. vectors may be nil when the
// service runs without a vector store.
func NewHealthHandler(db *sql.DB, vectors *vectorstore.Adapter) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		vectors:            vectors,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// An unreachable vector store degrades search rather than breaking it, so it
// reports "degraded" with 200; only a database failure is unhealthy.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: System is healthy or degraded
//	'503':
//	  description: System is unhealthy
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.db.PingContext(checkCtx); err != nil {
		logger.ErrorContext(ctx, "database health check failed", "error", err)
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.vectors == nil {
		checks["vector_store"] = "disabled"
	} else if h.vectors.Available(checkCtx) {
		checks["vector_store"] = "ok"
	} else {
		logger.WarnContext(ctx, "vector store health check failed")
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
		if status == "healthy" {
			status = "degraded"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if len(issues) > 0 {
		response.Issues = issues
	}

	writeJSON(w, httpStatus, response)
}
