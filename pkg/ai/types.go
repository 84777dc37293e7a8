package ai

import "context"

// CompletionRequest is a fully rendered prompt ready to send to a model.
type CompletionRequest struct {
	Prompt string
	// System overrides the default system instruction when set.
	System string
}

// Completion is the text a model produced for a prompt.
type Completion struct {
	Model            string `json:"model"`
	Output           string `json:"output"`
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
}

// Completer runs prompts against a language model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}
