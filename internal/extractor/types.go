package extractor

import (
	"encoding/json"

	"inboxpilot/internal/storage"
)

// Result reports one extraction pass over one email. Zero tasks is a valid,
// common outcome: malformed model output and taskless emails both land here.
type Result struct {
	// Tasks are the persisted task records, at most maxTasksPerEmail.
	Tasks []*storage.TaskRecord
	// ModelUsed identifies the provider/model that served the request.
	ModelUsed string
}

// modelTask is the shape of one entry in the model's tasks array. Every
// field is loosely typed on purpose; validation happens after parse.
type modelTask struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	SourceSnippet string   `json:"source_snippet"`
	Category      string   `json:"category"`
	Priority      string   `json:"priority"`
	DueDate       string   `json:"due_date"`
	Confidence    *float64 `json:"confidence"`

	// raw is the verbatim entry from the model response. It is stored
	// unmodified for the audit trail, so fields outside this struct shape
	// are not lost.
	raw json.RawMessage
}

// modelEnvelope is the required top-level response object. Entries stay raw
// until parsed individually so the verbatim bytes survive.
type modelEnvelope struct {
	Tasks []json.RawMessage `json:"tasks"`
}
