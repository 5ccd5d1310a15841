package search

import "time"

// Target restricts a search to emails, tasks, or both.
type Target string

const (
	TargetEmails Target = "emails"
	TargetTasks  Target = "tasks"
	TargetAll    Target = "all"
)

// Match types on a result. A record surfaced by both paths is tagged
// keyword+semantic and keeps the better score.
const (
	MatchKeyword  = "keyword"
	MatchSemantic = "semantic"
	MatchBoth     = "keyword+semantic"
)

// Result is one ranked search hit. Results are transient: rebuilt per
// query, never persisted.
type Result struct {
	// Kind is "email" or "task".
	Kind string `json:"kind"`
	// ID of the underlying record.
	ID string `json:"id"`
	// Title is the email subject or task title.
	Title string `json:"title"`
	// Snippet is a short excerpt of the body or description.
	Snippet string `json:"snippet"`
	// Sender is set for email results.
	Sender string `json:"sender,omitempty"`
	// MatchType tags how the record was found.
	MatchType string `json:"match_type"`
	// Score is normalized to [0,1], ascending: smaller is a better match.
	Score float32 `json:"score"`
	// Timestamp is the record's recency, used to break score ties.
	Timestamp time.Time `json:"timestamp"`
}
