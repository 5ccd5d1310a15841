package handlers

import (
	"net/http"
	"strconv"

	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/storage"
)

const defaultReviewLimit = 50

// ReviewHandler lists tasks awaiting human review.
type ReviewHandler struct {
	tasks storage.TaskStore
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(tasks storage.TaskStore) *ReviewHandler {
	return &ReviewHandler{tasks: tasks}
}

// ReviewResponse represents the HTTP response payload for the review queue.
//
// swagger:model ReviewResponse
type ReviewResponse struct {
	Tasks []*storage.TaskRecord `json:"tasks"`
	Count int                   `json:"count"`
}

// ServeHTTP handles HTTP requests for the review queue.
//
// swagger:route GET /api/review listReviewQueue
//
// # List tasks needing review
//
// Every extracted task lands here until a human confirms it.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Tasks with needs_review set, newest first
//	'500':
//	  description: Query failed
func (h *ReviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := defaultReviewLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	tasks, err := h.tasks.ListNeedingReview(ctx, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list review queue", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list review queue")
		return
	}
	if tasks == nil {
		tasks = []*storage.TaskRecord{}
	}

	writeJSON(w, http.StatusOK, ReviewResponse{Tasks: tasks, Count: len(tasks)})
}
