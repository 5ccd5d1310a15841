package extractor

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"inboxpilot/internal/storage"
)

// defaultConfidence is used when the model omits the confidence field.
const defaultConfidence = 85

// categoryByVocab maps the instruction vocabulary onto stored categories.
// A category outside the map is stored as null rather than trusted.
var categoryByVocab = map[string]string{
	"follow_up":                    storage.CategoryFollowUp,
	"report_generation_submission": storage.CategoryReportSubmission,
	"meeting_preparation":          storage.CategoryMeetingPrep,
	"review_approval":              storage.CategoryReviewApproval,
	"research_investigation":       storage.CategoryResearch,
	"planning_organization":        storage.CategoryPlanning,
	"external_communication":       storage.CategoryExternalCommunication,
	"internal_project_task":        storage.CategoryInternalProjectTask,
	"administrative":               storage.CategoryAdministrative,
	"urgent_response":              storage.CategoryUrgent,
	"information_only":             storage.CategoryInformationOnly,
	"personal_reminder":            storage.CategoryPersonalReminder,
}

// parseTasks parses the model's response content. Malformed JSON, a missing
// tasks key, or any other shape problem yields zero tasks, never an error:
// a malformed-but-successful model call is common and must not abort the
// batch. At most maxTasksPerEmail entries are kept.
func parseTasks(content string) []modelTask {
	cleaned := stripCodeFences(content)

	var envelope modelEnvelope
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil
	}
	if envelope.Tasks == nil {
		return nil
	}

	entries := envelope.Tasks
	if len(entries) > maxTasksPerEmail {
		entries = entries[:maxTasksPerEmail]
	}

	// Entries that are not objects or carry no title cannot become tasks.
	var kept []modelTask
	for _, raw := range entries {
		var t modelTask
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}
		if strings.TrimSpace(t.Title) == "" {
			continue
		}
		t.raw = raw
		kept = append(kept, t)
	}
	return kept
}

// stripCodeFences removes a surrounding markdown code fence, which chat
// models frequently wrap JSON in despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// mapCategory converts a model-reported category to the stored vocabulary.
// Unknown values map to nil.
func mapCategory(raw string) *string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if stored, ok := categoryByVocab[key]; ok {
		return &stored
	}
	return nil
}

// mapPriority converts the model's 4-level scale to the stored 3 levels:
// critical and high collapse to high. Unknown values default to medium.
func mapPriority(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "p1_critical", "critical", "p2_high", "high":
		return storage.PriorityHigh
	case "p4_low", "low":
		return storage.PriorityLow
	default:
		return storage.PriorityMedium
	}
}

// mapConfidence converts the model's 0.0-1.0 confidence to the stored 0-100
// score, defaulting when absent and clamping out-of-range values.
func mapConfidence(raw *float64) int {
	if raw == nil {
		return defaultConfidence
	}
	score := int(math.Round(*raw * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// dueDateLayouts are tried in order when parsing the due-date hint.
var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// parseDueDate attempts to turn the free-text hint into a concrete date.
// The hint is stored regardless; the parsed date is best-effort.
func parseDueDate(hint string) *time.Time {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, hint); err == nil {
			return &t
		}
	}
	return nil
}
