package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"inboxpilot/internal/contextutil"
	"inboxpilot/internal/storage"
)

// EmailsHandler accepts emails into the store. Sync connectors (IMAP,
// Gmail) live outside this service and deliver through this endpoint.
type EmailsHandler struct {
	emails storage.EmailStore
}

// NewEmailsHandler creates a new EmailsHandler.
func NewEmailsHandler(emails storage.EmailStore) *EmailsHandler {
	return &EmailsHandler{emails: emails}
}

// EmailRequest represents the HTTP request payload for email intake.
//
// swagger:model EmailRequest
type EmailRequest struct {
	ID         string    `json:"id,omitempty"`
	AccountID  string    `json:"account_id"`
	Sender     string    `json:"sender"`
	Recipients []string  `json:"recipients,omitempty"`
	Subject    string    `json:"subject"`
	BodyText   string    `json:"body_text,omitempty"`
	BodyHTML   string    `json:"body_html,omitempty"`
	ThreadID   string    `json:"thread_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// EmailResponse represents the HTTP response payload for email intake.
//
// swagger:model EmailResponse
type EmailResponse struct {
	ID string `json:"id"`
}

// ServeHTTP handles HTTP requests for email intake.
//
// swagger:route POST /api/emails ingestEmail
//
// # Store an incoming email
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'201':
//	  description: Email stored
//	'400':
//	  description: Invalid request body or missing fields
//	'500':
//	  description: Insert failed
func (h *EmailsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Sender) == "" {
		writeError(w, http.StatusBadRequest, "Sender is required")
		return
	}
	if req.BodyText == "" && req.BodyHTML == "" && req.Subject == "" {
		writeError(w, http.StatusBadRequest, "Email must have a subject or a body")
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	record := &storage.EmailRecord{
		ID:         id,
		AccountID:  req.AccountID,
		Sender:     req.Sender,
		Recipients: req.Recipients,
		Subject:    req.Subject,
		BodyText:   req.BodyText,
		BodyHTML:   req.BodyHTML,
		ThreadID:   req.ThreadID,
		ReceivedAt: receivedAt,
	}
	if err := h.emails.Insert(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to insert email", "email_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store email")
		return
	}

	logger.InfoContext(ctx, "email stored", "email_id", id, "sender", req.Sender)
	writeJSON(w, http.StatusCreated, EmailResponse{ID: id})
}
