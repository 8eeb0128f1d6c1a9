// Package llm wraps the text generation provider behind a small interface
// so the engine can be tested without network access.
package llm

import "context"

// Prompt is one chat-completion request: a system/user message pair, the
// model to use, and the output token budget.
type Prompt struct {
	System    string
	User      string
	Model     string
	MaxTokens int
}

// Client sends a prompt to the generation provider and returns the raw text.
type Client interface {
	Complete(ctx context.Context, apiKey string, prompt Prompt) (string, error)
}
