package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"inboxpilot/internal/assistant"
	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/llm"
)

// AskHandler answers questions about mailbox content.
type AskHandler struct {
	engine *assistant.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine *assistant.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest represents the HTTP request payload for questions.
// This mirrors assistant.AskRequest but is defined here for HTTP layer
// separation.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// ServeHTTP handles HTTP requests for questions.
//
// swagger:route POST /api/ask askQuestion
//
// # Ask a question about the mailbox
//
// Retrieves relevant emails and tasks and generates an answer grounded on
// them, with references to the items used.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Answer with references
//	'400':
//	  description: Invalid request or empty question
//	'502':
//	  description: Completion provider unavailable
//	'500':
//	  description: Internal server error
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	resp, err := h.engine.Ask(ctx, assistant.AskRequest{
		Question: req.Question,
		K:        req.K,
	})
	if err != nil {
		logger.ErrorContext(ctx, "ask failed", "error", err)
		if errors.Is(err, llm.ErrUnavailable) {
			writeError(w, http.StatusBadGateway, "Completion provider unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
