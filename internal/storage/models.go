package storage

import "time"

// Task categories as stored. The model reports a wider instruction
// vocabulary that the extractor maps onto these values; anything outside
// the enumeration is stored as a null category.
const (
	CategoryFollowUp              = "follow_up"
	CategoryReportSubmission      = "report_submission"
	CategoryMeetingPrep           = "meeting_prep"
	CategoryReviewApproval        = "review_approval"
	CategoryResearch              = "research"
	CategoryPlanning              = "planning"
	CategoryExternalCommunication = "external_communication"
	CategoryInternalProjectTask   = "internal_project_task"
	CategoryAdministrative        = "administrative"
	CategoryUrgent                = "urgent"
	CategoryInformationOnly       = "information_only"
	CategoryPersonalReminder      = "personal_reminder"
)

// Stored task priorities, derived from the model's 4-level scale.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// EmailRecord is an ingested email. Rows are created by the external sync
// subsystem; the pipeline only reads them and writes the processed marker,
// the claim timestamp, and the denormalized embedding.
type EmailRecord struct {
	ID         string
	AccountID  string
	Sender     string
	Recipients []string
	Subject    string
	BodyText   string
	BodyHTML   string
	ThreadID   string
	ReceivedAt time.Time

	// ProcessedForTasks is nil until an extraction pass has run over the
	// email; it is set exactly once per pass attempt.
	ProcessedForTasks *time.Time
	// ClaimedAt marks an in-flight extraction claim (see EmailStore.Claim).
	ClaimedAt *time.Time
	// Embedding is the fixed-width stored vector, nil until generated.
	Embedding []float32
}

// TaskRecord is a task extracted from one email. The extractor never
// mutates a task after creation; edits are a human-review concern.
type TaskRecord struct {
	ID            string
	EmailID       string
	Title         string
	Description   string
	SourceSnippet string
	// Category is nil when the model's category fell outside the stored
	// vocabulary or the first insert hit the schema constraint.
	Category *string
	Priority string
	DueHint  string
	DueDate  *time.Time
	Status   string

	AIGenerated  bool
	AIConfidence int
	AIModel      string
	NeedsReview  bool
	// OriginalAISuggestion retains the raw model output verbatim for audit.
	OriginalAISuggestion string

	CreatedAt time.Time
}

// ProviderSettings selects which completion provider and model serve a
// user's requests. Read as configuration input; ownership of the settings
// UI is external.
type ProviderSettings struct {
	UserID           string
	Provider         string
	Model            string
	APIKey           string
	BaseURL          string
	EmbeddingModel   string
	EmbeddingBaseURL string
	UpdatedAt        time.Time
}
