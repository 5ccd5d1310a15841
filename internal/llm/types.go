package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// SystemPrompt, when non-empty, is prepended as a system message.
	SystemPrompt string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float32
}

// Completion is the result of a chat completion call. Provider and Model
// identify which backend served the request; the extraction audit trail
// stores them alongside every generated task.
type Completion struct {
	Content  string
	Provider string
	Model    string
}
