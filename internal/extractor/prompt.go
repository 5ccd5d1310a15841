package extractor

import (
	"fmt"
	"strings"
	"time"

	"inboxpilot/internal/mailtext"
	"inboxpilot/internal/storage"
)

const (
	// maxTasksPerEmail caps the tasks array the model is asked for.
	maxTasksPerEmail = 3
	// maxPromptBodyRunes bounds the email body included in the prompt.
	maxPromptBodyRunes = 6000
)

// Instruction vocabularies the model is asked to use. The parser maps them
// onto the stored enums and defaults anything outside them.
var categoryVocabulary = []string{
	"Follow_Up",
	"Report_Generation_Submission",
	"Meeting_Preparation",
	"Review_Approval",
	"Research_Investigation",
	"Planning_Organization",
	"External_Communication",
	"Internal_Project_Task",
	"Administrative",
	"Urgent_Response",
	"Information_Only",
	"Personal_Reminder",
}

var priorityVocabulary = []string{"P1_Critical", "P2_High", "P3_Medium", "P4_Low"}

const systemPrompt = `You are an assistant that extracts actionable tasks from emails.
Respond with a single JSON object and nothing else. The object must have a
"tasks" array with at most %d entries. Each entry has these fields:
  "title": short imperative task title
  "description": one or two sentences of detail
  "source_snippet": verbatim quote from the email that justifies the task
  "category": one of [%s]
  "priority": one of [%s]
  "due_date": due date hint as free text, or "" if none
  "confidence": your certainty from 0.0 to 1.0
If the email contains no actionable tasks, return {"tasks": []}.`

// buildMessages constructs the fixed instruction set plus the email content.
func buildMessages(email *storage.EmailRecord) (system string, user string) {
	system = fmt.Sprintf(systemPrompt,
		maxTasksPerEmail,
		strings.Join(categoryVocabulary, ", "),
		strings.Join(priorityVocabulary, ", "),
	)

	body := mailtext.BodyText(email.BodyText, email.BodyHTML)
	body = mailtext.Truncate(body, maxPromptBodyRunes)

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", email.Subject)
	fmt.Fprintf(&b, "From: %s\n", email.Sender)
	fmt.Fprintf(&b, "Received: %s\n\n", email.ReceivedAt.UTC().Format(time.RFC3339))
	b.WriteString(body)

	return system, b.String()
}
