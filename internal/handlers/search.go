package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/search"
)

const maxSearchLimit = 100

// SearchHandler serves hybrid search over emails and tasks.
type SearchHandler struct {
	retriever *search.Retriever
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(retriever *search.Retriever) *SearchHandler {
	return &SearchHandler{retriever: retriever}
}

// SearchResponse represents the HTTP response payload for searches.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

// ServeHTTP handles HTTP requests for searches.
//
// swagger:route GET /api/search searchMailbox
//
// # Search emails and tasks
//
// Runs hybrid keyword and semantic search. Query parameters: q (required),
// target (emails, tasks, or all; defaults to all), limit (defaults to 20).
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Ranked results, best match first
//	'400':
//	  description: Missing query or invalid parameter
//	'500':
//	  description: Search failed
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	target := search.TargetAll
	switch t := r.URL.Query().Get("target"); t {
	case "", string(search.TargetAll):
	case string(search.TargetEmails):
		target = search.TargetEmails
	case string(search.TargetTasks):
		target = search.TargetTasks
	default:
		writeError(w, http.StatusBadRequest, "target must be emails, tasks, or all")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results, err := h.retriever.Search(ctx, query, target, limit)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if results == nil {
		results = []search.Result{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Query: query, Results: results})
}
