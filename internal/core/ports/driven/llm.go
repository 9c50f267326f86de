package driven

import (
	"context"
)

// CompletionRequest is a single system + user prompt exchange
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int

	// JSONMode asks the provider for a JSON object response
	JSONMode bool
}

// LLMService provides text generation.
// Provider failures are returned wrapped in domain.ErrGenerationFailed.
type LLMService interface {
	// Complete runs one generation call and returns the response text
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
