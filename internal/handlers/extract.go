package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/pipeline"
)

// batchRunner is satisfied by pipeline.Orchestrator.
type batchRunner interface {
	Run(ctx context.Context, opts pipeline.Options) (pipeline.RunResult, error)
}

// ExtractHandler triggers a batch extraction run.
type ExtractHandler struct {
	runner batchRunner
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(runner batchRunner) *ExtractHandler {
	return &ExtractHandler{runner: runner}
}

// ExtractRequest represents the HTTP request payload for batch extraction.
//
// swagger:model ExtractRequest
type ExtractRequest struct {
	// Limit caps how many emails one run selects. Defaults to 25.
	Limit int `json:"limit,omitempty"`
	// DaysBack restricts selection to the trailing window, 0 means no window.
	DaysBack int `json:"days_back,omitempty"`
	// UnprocessedOnly restricts to emails without a processed marker.
	// Omitted means true.
	UnprocessedOnly *bool `json:"unprocessed_only,omitempty"`
}

// ServeHTTP handles HTTP requests for batch extraction runs.
//
// swagger:route POST /api/extract extractTasks
//
// # Run a batch task-extraction pass
//
// Selects emails per the request filters, extracts tasks from each, and
// returns how many emails were processed and how many tasks were created.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Run completed, counts reported
//	'400':
//	  description: Invalid request body
//	'500':
//	  description: Email selection failed
func (h *ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req := ExtractRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WarnContext(ctx, "invalid request body", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Limit < 0 || req.DaysBack < 0 {
		writeError(w, http.StatusBadRequest, "limit and days_back must not be negative")
		return
	}

	unprocessedOnly := true
	if req.UnprocessedOnly != nil {
		unprocessedOnly = *req.UnprocessedOnly
	}

	result, err := h.runner.Run(ctx, pipeline.Options{
		Limit:           req.Limit,
		DaysBack:        req.DaysBack,
		UnprocessedOnly: unprocessedOnly,
	})
	if err != nil {
		logger.ErrorContext(ctx, "batch run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to run extraction")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
